// Package gini implements the Gini coefficient estimator used for
// transaction price inequality.
// 0 = 완전 평등, 1에 가까울수록 불평등.
package gini

import (
	"math"
	"sort"
)

// epsilon keeps the denominator positive when every value is equal or zero.
const epsilon = 1e-7

// Coefficient computes the Gini coefficient of values.
//
// 계산 순서 (원래 분석 코드와 동일해야 함):
//  1. 음수가 있으면 최솟값을 빼서 전체를 0 이상으로 이동
//  2. 모든 원소에 epsilon(1e-7) 더함
//  3. 오름차순 정렬
//  4. sum((2*i - n - 1) * x_i) / (n * sum(x))  (i는 1부터)
//
// n <= 1이면 관례적으로 1을 반환한다 (단일 원소 그룹은 최대 불평등 취급).
// Input is never mutated.
func Coefficient(values []float64) float64 {
	n := len(values)
	if n <= 1 {
		return 1
	}

	sorted := make([]float64, n)
	copy(sorted, values)

	minVal := sorted[0]
	for _, v := range sorted {
		if v < minVal {
			minVal = v
		}
	}
	if minVal < 0 {
		for i := range sorted {
			sorted[i] -= minVal
		}
	}

	for i := range sorted {
		sorted[i] += epsilon
	}

	sort.Float64s(sorted)

	var weighted, total float64
	for i, v := range sorted {
		index := float64(i + 1)
		weighted += (2*index - float64(n) - 1) * v
		total += v
	}

	return weighted / (float64(n) * total)
}

// Round rounds g to the given number of decimal places.
// 집계기는 지니계수를 소수 4자리로 내보낸다.
func Round(g float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(g*pow) / pow
}
