package analyzer

import (
	"github.com/rs/zerolog"

	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/internal/schema"
)

// RegionMapReport carries the join outcome of one run.
type RegionMapReport struct {
	Rows      int
	Matched   int
	Unmatched int // 참조 테이블에 코드가 없는 행 (행 자체는 유지됨)
}

// MapRegions left-joins transactions against the code reference so every row
// gains 시도명/시군구명 (또는 읍면동명) labels.
//
// 참조 테이블은 조인 전에 코드 기준으로 중복 제거한다 (첫 행 우선) —
// conn_code에는 과거 개편으로 같은 코드가 여러 번 나온다. 매칭 실패 행은
// 라벨 없이 유지된다 (left join, inner 아님).
func MapRegions(txs []contracts.Transaction, ref []contracts.RegionRow, granularity schema.RegionGranularity, log zerolog.Logger) ([]contracts.Transaction, RegionMapReport) {
	byCode := make(map[string]contracts.RegionRow, len(ref))
	for _, r := range ref {
		code := r.DistrictCode
		if granularity == schema.GranularityNeighborhood {
			code = r.NeighborhoodCode
		}
		if code == "" {
			continue
		}
		if _, exists := byCode[code]; !exists {
			byCode[code] = r
		}
	}

	report := RegionMapReport{Rows: len(txs)}
	out := make([]contracts.Transaction, len(txs))
	for i := range txs {
		out[i] = txs[i]
		r, ok := byCode[txs[i].RegionCode]
		if !ok {
			report.Unmatched++
			continue
		}
		report.Matched++
		out[i].Province = r.Province
		out[i].District = r.District
		if granularity == schema.GranularityNeighborhood && r.NeighborhoodName != "" {
			out[i].Neighborhood = r.NeighborhoodName
		}
	}

	log.Info().
		Int("rows", report.Rows).
		Int("matched", report.Matched).
		Int("unmatched", report.Unmatched).
		Msg("region mapping completed")

	return out, report
}
