package analyzer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/internal/schema"
)

func labeledTx(year int, province, district, code string, amount float64) contracts.Transaction {
	return contracts.Transaction{
		DealDate:   time.Date(year, 6, 15, 0, 0, 0, 0, time.UTC),
		Year:       year,
		RegionCode: code,
		Province:   province,
		District:   district,
		DealAmount: amount,
		UnitPrice:  amount / 10 * PyeongPerSquareMeter,
	}
}

func TestAggregate_MeanAndCount(t *testing.T) {
	cfg := saleConfig()
	cfg.GroupKeys = []schema.GroupKey{schema.KeyYear, schema.KeyRegionCode}
	a := NewAggregator(cfg, testLog())

	txs := []contracts.Transaction{
		labeledTx(2023, "서울특별시", "종로구", "11110", 10000),
		labeledTx(2023, "서울특별시", "종로구", "11110", 20000),
		labeledTx(2023, "서울특별시", "중구", "11140", 30000),
		labeledTx(2023, "서울특별시", "중구", "11140", 40000),
		labeledTx(2023, "서울특별시", "중구", "11140", 50000),
	}

	stats, err := a.Aggregate(txs)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byCode := map[string]contracts.GroupStat{}
	for _, s := range stats {
		byCode[s.RegionCode] = s
	}

	assert.Equal(t, 2, byCode["11110"].Count)
	assert.Equal(t, 15000.0, byCode["11110"].MeanAmount)
	assert.Equal(t, 3, byCode["11140"].Count)
	assert.Equal(t, 40000.0, byCode["11140"].MeanAmount)

	// 그룹 거래수 합 == 입력 행 수
	total := 0
	for _, s := range stats {
		total += s.Count
	}
	assert.Equal(t, len(txs), total)
}

func TestAggregate_CountConservation(t *testing.T) {
	cfg := saleConfig()
	cfg.GroupKeys = []schema.GroupKey{schema.KeyYear, schema.KeyProvince, schema.KeyDistrict}
	a := NewAggregator(cfg, testLog())

	var txs []contracts.Transaction
	districts := []struct{ p, d, c string }{
		{"서울특별시", "종로구", "11110"},
		{"경기도", "수원시", "41110"},
		{"부산광역시", "해운대구", "26350"},
	}
	for y := 2021; y <= 2023; y++ {
		for i, d := range districts {
			for k := 0; k <= i; k++ {
				txs = append(txs, labeledTx(y, d.p, d.d, d.c, float64(10000*(k+1))))
			}
		}
	}

	stats, err := a.Aggregate(txs)
	require.NoError(t, err)

	total := 0
	for _, s := range stats {
		total += s.Count
	}
	assert.Equal(t, len(txs), total)
}

func TestAggregate_GiniRounding(t *testing.T) {
	cfg := saleConfig()
	cfg.GroupKeys = []schema.GroupKey{schema.KeyRegionCode}
	a := NewAggregator(cfg, testLog())

	stats, err := a.Aggregate([]contracts.Transaction{
		labeledTx(2023, "서울특별시", "종로구", "11110", 10000),
		labeledTx(2023, "서울특별시", "종로구", "11110", 20000),
	})
	require.NoError(t, err)
	require.Len(t, stats, 1)

	// gini([10000, 20000]) = 10000/60000 = 0.1666... → 소수 4자리 0.1667
	assert.Equal(t, 0.1667, stats[0].GiniAmount)
}

func TestAggregate_DegenerateGroup(t *testing.T) {
	cfg := saleConfig()
	cfg.GroupKeys = []schema.GroupKey{schema.KeyRegionCode}
	a := NewAggregator(cfg, testLog())

	stats, err := a.Aggregate([]contracts.Transaction{
		labeledTx(2023, "서울특별시", "종로구", "11110", 10000),
	})
	require.NoError(t, err)
	require.Len(t, stats, 1)

	assert.True(t, stats[0].DegenerateGroup)
	assert.Equal(t, 1.0, stats[0].GiniAmount)
	assert.Equal(t, 1, stats[0].Count)
}

func TestAggregate_UnknownKeyFailsFast(t *testing.T) {
	cfg := saleConfig()
	cfg.GroupKeys = []schema.GroupKey{"apartment_name"}
	a := NewAggregator(cfg, testLog())

	_, err := a.Aggregate([]contracts.Transaction{labeledTx(2023, "서울특별시", "종로구", "11110", 10000)})
	require.Error(t, err)

	var cfgErr *contracts.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr), "want ConfigurationError, got %T", err)
}

func TestAggregate_SortProvincePriority(t *testing.T) {
	// 같은 연도 안에서는 서울 → 경기 → 나머지(코드 오름차순)
	cfg := saleConfig()
	cfg.GroupKeys = []schema.GroupKey{schema.KeyYear, schema.KeyProvince, schema.KeyDistrict}
	cfg.SortTimeDesc = false
	a := NewAggregator(cfg, testLog())

	txs := []contracts.Transaction{
		labeledTx(2023, "부산광역시", "해운대구", "26350", 10000),
		labeledTx(2023, "경기도", "수원시", "41110", 10000),
		labeledTx(2022, "서울특별시", "종로구", "11110", 10000),
		labeledTx(2023, "서울특별시", "종로구", "11110", 10000),
		labeledTx(2023, "강원특별자치도", "춘천시", "51110", 10000),
	}

	stats, err := a.Aggregate(txs)
	require.NoError(t, err)
	require.Len(t, stats, 5)

	assert.Equal(t, 2022, stats[0].Year)
	assert.Equal(t, "서울특별시", stats[1].Province)
	assert.Equal(t, "경기도", stats[2].Province)
	// 우선순위 밖 시도는 안정적 잔여 그룹으로 (자연 키 순)
	assert.Equal(t, "강원특별자치도", stats[3].Province)
	assert.Equal(t, "부산광역시", stats[4].Province)
}

func TestAggregate_SortTimeDescending(t *testing.T) {
	cfg := saleConfig()
	cfg.GroupKeys = []schema.GroupKey{schema.KeyYear, schema.KeyRegionCode}
	cfg.SortTimeDesc = true
	a := NewAggregator(cfg, testLog())

	txs := []contracts.Transaction{
		labeledTx(2021, "서울특별시", "종로구", "11110", 10000),
		labeledTx(2023, "서울특별시", "종로구", "11110", 10000),
		labeledTx(2022, "서울특별시", "종로구", "11110", 10000),
	}

	stats, err := a.Aggregate(txs)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, []int{2023, 2022, 2021}, []int{stats[0].Year, stats[1].Year, stats[2].Year})
}

func TestAggregate_UnitPricePair(t *testing.T) {
	cfg := saleConfig()
	cfg.GroupKeys = []schema.GroupKey{schema.KeyRegionCode}
	cfg.WithUnitPrice = true
	a := NewAggregator(cfg, testLog())

	stats, err := a.Aggregate([]contracts.Transaction{
		labeledTx(2023, "서울특별시", "종로구", "11110", 10000),
		labeledTx(2023, "서울특별시", "종로구", "11110", 20000),
	})
	require.NoError(t, err)
	require.Len(t, stats, 1)

	assert.NotZero(t, stats[0].MeanUnitPrice)
	// 평당가는 거래금액의 상수배라 지니계수는 동일 (스케일 불변)
	assert.Equal(t, stats[0].GiniAmount, stats[0].GiniUnitPrice)
}
