package analyzer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/jini/internal/analyzer"
	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/internal/schema"
	"github.com/wonny/jini/internal/store"
)

func fixtureStore(t *testing.T) *store.Memory {
	t.Helper()

	m := store.NewMemory()
	m.SetTable("apt_raw", &contracts.RawBatch{
		Table:   "apt_raw",
		Columns: []string{"년", "월", "일", "지역코드", "거래금액", "전용면적", "법정동"},
		Rows: []contracts.RawRow{
			{"년": "2023", "월": "6", "일": "1", "지역코드": "11110", "거래금액": "10,000", "전용면적": "10", "법정동": "사직동"},
			{"년": "2023", "월": "6", "일": "2", "지역코드": "11110", "거래금액": "20,000", "전용면적": "10", "법정동": "사직동"},
			{"년": "2023", "월": "6", "일": "3", "지역코드": "11140", "거래금액": "30,000", "전용면적": "10", "법정동": "소공동"},
			{"년": "2023", "월": "6", "일": "4", "지역코드": "11140", "거래금액": "40,000", "전용면적": "10", "법정동": "소공동"},
			{"년": "2023", "월": "6", "일": "5", "지역코드": "11140", "거래금액": "50,000", "전용면적": "10", "법정동": "소공동"},
		},
	})
	m.SetRegions([]contracts.RegionRow{
		{Province: "서울특별시", District: "종로구", DistrictCode: "11110"},
		{Province: "서울특별시", District: "중구", DistrictCode: "11140"},
	})
	return m
}

func pipelineConfig() analyzer.Config {
	return analyzer.Config{
		PropertyType:      schema.PropertyApartment,
		TransactionKind:   schema.KindSale,
		RegionGranularity: schema.GranularityDistrict,
		GroupKeys:         []schema.GroupKey{schema.KeyYear, schema.KeyProvince, schema.KeyDistrict, schema.KeyRegionCode},
		WithUnitPrice:     true,
	}
}

func TestPipeline_EndToEnd(t *testing.T) {
	m := fixtureStore(t)

	p, err := analyzer.NewPipeline(pipelineConfig(), m, m, m, zerolog.Nop())
	require.NoError(t, err)

	report, stats, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, report.RowsRead)
	assert.Equal(t, 5, report.RowsNormalized)
	assert.Equal(t, 0, report.RowsSkipped)
	assert.Equal(t, 5, report.RowsAfterDedup)
	assert.Equal(t, 2, report.Groups)

	require.Len(t, stats, 2)
	byCode := map[string]contracts.GroupStat{}
	for _, s := range stats {
		byCode[s.RegionCode] = s
	}

	assert.Equal(t, 2, byCode["11110"].Count)
	assert.Equal(t, 15000.0, byCode["11110"].MeanAmount)
	assert.Equal(t, "종로구", byCode["11110"].District)

	assert.Equal(t, 3, byCode["11140"].Count)
	assert.Equal(t, 40000.0, byCode["11140"].MeanAmount)
	assert.Equal(t, "중구", byCode["11140"].District)

	// 결과는 싱크에도 저장됐다
	saved := m.Stats("아파트_매매_시군구_지니계수")
	assert.Len(t, saved, 2)
}

func TestPipeline_DuplicatesAndBadRows(t *testing.T) {
	m := store.NewMemory()
	m.SetTable("apt_raw", &contracts.RawBatch{
		Table:   "apt_raw",
		Columns: []string{"년", "월", "일", "지역코드", "거래금액", "전용면적"},
		Rows: []contracts.RawRow{
			{"년": "2023", "월": "6", "일": "1", "지역코드": "11110", "거래금액": "10,000", "전용면적": "10"},
			{"년": "2023", "월": "6", "일": "1", "지역코드": "11110", "거래금액": "10,000", "전용면적": "10"}, // 중복
			{"년": "2023", "월": "2", "일": "31", "지역코드": "11110", "거래금액": "10,000", "전용면적": "10"}, // 잘못된 날짜
		},
	})
	m.SetRegions([]contracts.RegionRow{
		{Province: "서울특별시", District: "종로구", DistrictCode: "11110"},
	})

	p, err := analyzer.NewPipeline(pipelineConfig(), m, m, m, zerolog.Nop())
	require.NoError(t, err)

	report, stats, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.RowsRead)
	assert.Equal(t, 2, report.RowsNormalized)
	assert.Equal(t, 1, report.RowsSkipped)
	assert.Equal(t, 1, report.SkipReasons["일"])
	assert.Equal(t, 1, report.DuplicatesRemoved)
	assert.Equal(t, 1, report.RowsAfterDedup)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].Count)
	assert.True(t, stats[0].DegenerateGroup)
}

func TestPipeline_UnmatchedRegionRetained(t *testing.T) {
	m := store.NewMemory()
	m.SetTable("apt_raw", &contracts.RawBatch{
		Table:   "apt_raw",
		Columns: []string{"년", "월", "일", "지역코드", "거래금액", "전용면적"},
		Rows: []contracts.RawRow{
			{"년": "2023", "월": "6", "일": "1", "지역코드": "99999", "거래금액": "10,000", "전용면적": "10"},
		},
	})
	m.SetRegions(nil)

	p, err := analyzer.NewPipeline(pipelineConfig(), m, m, m, zerolog.Nop())
	require.NoError(t, err)

	report, stats, err := p.Run(context.Background())
	require.NoError(t, err)

	// 미매칭은 에러가 아니라 품질 신호 — 행은 유지된다
	assert.Equal(t, 1, report.UnmatchedRegion)
	require.Len(t, stats, 1)
	assert.Equal(t, "", stats[0].Province)
	assert.Equal(t, "99999", stats[0].RegionCode)
}

func TestPipeline_InvalidConfig(t *testing.T) {
	cfg := pipelineConfig()
	cfg.PropertyType = "villa"

	_, err := analyzer.NewPipeline(cfg, store.NewMemory(), nil, nil, zerolog.Nop())
	require.Error(t, err)

	var cfgErr *contracts.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestPipeline_WithOutlierFilter(t *testing.T) {
	m := store.NewMemory()
	rows := []contracts.RawRow{}
	days := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	for _, d := range days {
		rows = append(rows, contracts.RawRow{
			"년": "2023", "월": "6", "일": d, "지역코드": "11110", "거래금액": "10,000", "전용면적": "10",
		})
	}
	// 극단값 한 건
	rows = append(rows, contracts.RawRow{
		"년": "2023", "월": "6", "일": "9", "지역코드": "11110", "거래금액": "900,000,000", "전용면적": "10",
	})
	m.SetTable("apt_raw", &contracts.RawBatch{
		Table:   "apt_raw",
		Columns: []string{"년", "월", "일", "지역코드", "거래금액", "전용면적"},
		Rows:    rows,
	})
	m.SetRegions([]contracts.RegionRow{
		{Province: "서울특별시", District: "종로구", DistrictCode: "11110"},
	})

	cfg := pipelineConfig()
	cfg.FilterOutliers = true

	p, err := analyzer.NewPipeline(cfg, m, m, m, zerolog.Nop())
	require.NoError(t, err)

	report, stats, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.OutliersRemoved)
	require.Len(t, stats, 1)
	assert.Equal(t, 8, stats[0].Count)
	assert.Equal(t, 10000.0, stats[0].MeanAmount)
}
