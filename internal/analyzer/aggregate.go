package analyzer

import (
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/internal/gini"
	"github.com/wonny/jini/internal/schema"
)

// Aggregator computes grouped statistics: 거래수, 평균거래금액,
// 거래금액지니계수, and optionally the same pair over 평당거래금액.
// 그룹 키 조합은 설정으로 주어진다 (시군구/법정동 × 년/연월).
type Aggregator struct {
	cfg Config
	log zerolog.Logger
}

// NewAggregator creates an aggregator. cfg는 이미 Validate를 통과했어야 한다.
func NewAggregator(cfg Config, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		cfg: cfg.withDefaults(),
		log: log.With().Str("component", "analyzer.aggregator").Logger(),
	}
}

type group struct {
	stat       contracts.GroupStat
	amounts    []float64
	unitPrices []float64
}

// Aggregate produces one GroupStat per distinct key combination, sorted by
// the configured time direction, then province priority, then region code.
func (a *Aggregator) Aggregate(txs []contracts.Transaction) ([]contracts.GroupStat, error) {
	if err := schema.ValidateGroupKeys(a.cfg.GroupKeys); err != nil {
		return nil, err
	}

	groups := make(map[string]*group)
	order := make([]string, 0)

	var sb strings.Builder
	for i := range txs {
		tx := &txs[i]
		sb.Reset()
		for _, k := range a.cfg.GroupKeys {
			sb.WriteString(keyValue(tx, k))
			sb.WriteByte('\x00')
		}
		key := sb.String()

		g, ok := groups[key]
		if !ok {
			g = &group{stat: statKeys(tx, a.cfg.GroupKeys)}
			groups[key] = g
			order = append(order, key)
		}
		g.amounts = append(g.amounts, tx.DealAmount)
		if a.cfg.WithUnitPrice {
			g.unitPrices = append(g.unitPrices, tx.UnitPrice)
		}
	}

	degenerate := 0
	stats := make([]contracts.GroupStat, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		g.stat.Count = len(g.amounts)
		g.stat.MeanAmount = round(mean(g.amounts), 1)
		g.stat.GiniAmount = gini.Round(gini.Coefficient(g.amounts), 4)
		if a.cfg.WithUnitPrice {
			g.stat.MeanUnitPrice = round(mean(g.unitPrices), 1)
			g.stat.GiniUnitPrice = gini.Round(gini.Coefficient(g.unitPrices), 4)
		}
		// 구성원 1건 이하: 지니계수는 관례값 1. 데이터 손상이 아니라
		// 정의된 동작이므로 플래그만 남긴다.
		if g.stat.Count <= 1 {
			g.stat.DegenerateGroup = true
			degenerate++
		}
		stats = append(stats, g.stat)
	}

	a.sortStats(stats)

	a.log.Info().
		Int("rows", len(txs)).
		Int("groups", len(stats)).
		Int("degenerate_groups", degenerate).
		Msg("aggregation completed")

	return stats, nil
}

// keyValue extracts one group-key value from a transaction.
func keyValue(tx *contracts.Transaction, k schema.GroupKey) string {
	switch k {
	case schema.KeyYear:
		return tx.DealDate.Format("2006")
	case schema.KeyYearMonth:
		return tx.YearMonth()
	case schema.KeyRegionCode:
		return tx.RegionCode
	case schema.KeyProvince:
		return tx.Province
	case schema.KeyDistrict:
		return tx.District
	case schema.KeyNeighborhood:
		return tx.Neighborhood
	}
	return ""
}

// statKeys fills only the key fields of a GroupStat from its first member.
func statKeys(tx *contracts.Transaction, keys []schema.GroupKey) contracts.GroupStat {
	var s contracts.GroupStat
	for _, k := range keys {
		switch k {
		case schema.KeyYear:
			s.Year = tx.Year
		case schema.KeyYearMonth:
			s.YearMonth = tx.YearMonth()
		case schema.KeyRegionCode:
			s.RegionCode = tx.RegionCode
		case schema.KeyProvince:
			s.Province = tx.Province
		case schema.KeyDistrict:
			s.District = tx.District
		case schema.KeyNeighborhood:
			s.Neighborhood = tx.Neighborhood
		}
	}
	return s
}

// sortStats orders result rows: time key first (direction per config), then
// province priority, then region code ascending, then name keys for a
// deterministic tail.
func (a *Aggregator) sortStats(stats []contracts.GroupStat) {
	priority := func(province string) int {
		if p, ok := a.cfg.ProvincePriority[province]; ok {
			return p
		}
		return provincePriorityFallback
	}

	sort.SliceStable(stats, func(i, j int) bool {
		si, sj := &stats[i], &stats[j]

		if si.YearMonth != sj.YearMonth {
			if a.cfg.SortTimeDesc {
				return si.YearMonth > sj.YearMonth
			}
			return si.YearMonth < sj.YearMonth
		}
		if si.Year != sj.Year {
			if a.cfg.SortTimeDesc {
				return si.Year > sj.Year
			}
			return si.Year < sj.Year
		}

		if pi, pj := priority(si.Province), priority(sj.Province); pi != pj {
			return pi < pj
		}
		if si.RegionCode != sj.RegionCode {
			return si.RegionCode < sj.RegionCode
		}
		if si.Province != sj.Province {
			return si.Province < sj.Province
		}
		if si.District != sj.District {
			return si.District < sj.District
		}
		return si.Neighborhood < sj.Neighborhood
	})
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
