package analyzer

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/jini/internal/contracts"
)

// OutlierTarget selects the column the filter operates on.
type OutlierTarget int

const (
	TargetUnitPrice OutlierTarget = iota // 평당거래금액 (기본)
	TargetDealAmount
)

// OutlierFilter removes log-scale IQR outliers per (광역시, 거래년) cohort.
// 플래그가 아니라 필터다: 제거된 행은 출력 배치에 없다.
type OutlierFilter struct {
	target OutlierTarget
	log    zerolog.Logger
}

// NewOutlierFilter creates a filter over the given target column.
func NewOutlierFilter(target OutlierTarget, log zerolog.Logger) *OutlierFilter {
	return &OutlierFilter{
		target: target,
		log:    log.With().Str("component", "analyzer.outlier").Logger(),
	}
}

// Filter partitions txs by (metro code prefix, year) and, per partition
// independently: drops non-positive target values, applies log1p, computes
// Q1−1.5·IQR / Q3+1.5·IQR bounds on the log scale, and keeps only rows
// within bounds. Bounds are reported back-transformed (expm1) and rounded.
//
// 파티션끼리 공유 상태가 없으므로 병렬로 돌리고, 결과는 입력 순서 기준으로
// 합친다 — 최종 정렬은 집계 단계가 한다.
func (f *OutlierFilter) Filter(ctx context.Context, txs []contracts.Transaction) ([]contracts.Transaction, []contracts.PartitionBounds, error) {
	type partKey struct {
		metro string
		year  int
	}

	parts := make(map[partKey][]int)
	var keyOrder []partKey
	for i := range txs {
		k := partKey{metro: txs[i].MetroCode(), year: txs[i].Year}
		if _, ok := parts[k]; !ok {
			keyOrder = append(keyOrder, k)
		}
		parts[k] = append(parts[k], i)
	}
	sort.Slice(keyOrder, func(i, j int) bool {
		if keyOrder[i].metro != keyOrder[j].metro {
			return keyOrder[i].metro < keyOrder[j].metro
		}
		return keyOrder[i].year < keyOrder[j].year
	})

	keep := make([]bool, len(txs))
	bounds := make([]contracts.PartitionBounds, len(keyOrder))

	g, ctx := errgroup.WithContext(ctx)
	for bi, k := range keyOrder {
		bi, k := bi, k
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			bounds[bi] = f.filterPartition(k.metro, k.year, parts[k], txs, keep)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := make([]contracts.Transaction, 0, len(txs))
	removed := 0
	for i := range txs {
		if keep[i] {
			out = append(out, txs[i])
		} else {
			removed++
		}
	}

	f.log.Info().
		Int("rows_in", len(txs)).
		Int("rows_out", len(out)).
		Int("removed", removed).
		Int("partitions", len(keyOrder)).
		Msg("outlier filtering completed")

	return out, bounds, nil
}

// TotalRemoved sums the per-partition removed counts.
func TotalRemoved(bounds []contracts.PartitionBounds) int {
	total := 0
	for _, b := range bounds {
		total += b.Removed
	}
	return total
}

// filterPartition marks kept rows of one partition. 각 파티션은 keep의
// 서로소 구간만 쓰므로 락 없이 병렬 실행해도 안전하다.
func (f *OutlierFilter) filterPartition(metro string, year int, idxs []int, txs []contracts.Transaction, keep []bool) contracts.PartitionBounds {
	b := contracts.PartitionBounds{Metro: metro, Year: year}

	// 0 이하 값은 로그 변환 전에 떨어뜨린다
	var logValues []float64
	var positive []int
	for _, i := range idxs {
		v := f.targetValue(&txs[i])
		if v <= 0 {
			continue
		}
		positive = append(positive, i)
		logValues = append(logValues, math.Log1p(v))
	}

	b.Removed = len(idxs) - len(positive)
	if len(positive) == 0 {
		return b
	}

	sorted := make([]float64, len(logValues))
	copy(sorted, logValues)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	for j, i := range positive {
		if logValues[j] >= lower && logValues[j] <= upper {
			keep[i] = true
		} else {
			b.Removed++
		}
	}

	// 경계는 원래 스케일로 환산해서 보고
	b.LowerBound = math.Round(math.Expm1(lower))
	b.UpperBound = math.Round(math.Expm1(upper))
	return b
}

func (f *OutlierFilter) targetValue(tx *contracts.Transaction) float64 {
	if f.target == TargetDealAmount {
		return tx.DealAmount
	}
	return tx.UnitPrice
}

// quantile computes the q-th quantile of sorted values with linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
