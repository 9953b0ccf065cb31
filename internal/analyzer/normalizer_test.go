package analyzer

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/internal/schema"
)

func testLog() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func saleConfig() Config {
	return Config{
		PropertyType:      schema.PropertyApartment,
		TransactionKind:   schema.KindSale,
		RegionGranularity: schema.GranularityDistrict,
		GroupKeys:         []schema.GroupKey{schema.KeyYear, schema.KeyProvince, schema.KeyDistrict},
		WithUnitPrice:     true,
	}
}

func saleRow(code, amount, area string) contracts.RawRow {
	return contracts.RawRow{
		"년": "2023", "월": "6", "일": "15",
		"지역코드": code, "거래금액": amount, "전용면적": area,
		"법정동": "사직동", "건축년도": "2005",
	}
}

func TestNormalize_Sale(t *testing.T) {
	n := NewNormalizer(saleConfig(), testLog())

	batch := &contracts.RawBatch{
		Table:   "apt_raw",
		Columns: []string{"년", "월", "일", "지역코드", "거래금액", "전용면적", "법정동", "건축년도"},
		Rows: []contracts.RawRow{
			saleRow("11110", "10,000", "10"),
		},
	}

	result, err := n.Normalize(batch)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Empty(t, result.Skipped)

	tx := result.Transactions[0]
	assert.Equal(t, float64(10000), tx.DealAmount)
	assert.Equal(t, float64(10), tx.Area)
	assert.Equal(t, "11110", tx.RegionCode)
	assert.Equal(t, 2023, tx.Year)
	assert.Equal(t, "2023-06-15", tx.DealDate.Format("2006-01-02"))
	// 10000 / 10 * 3.30579 = 3305.79
	assert.InDelta(t, 3305.79, tx.UnitPrice, 1e-9)
	assert.Equal(t, 2005, tx.BuildingYear)
}

func TestNormalize_LeaseTransform(t *testing.T) {
	// 보증금 50,000,000 + 월세 200,000 * 100/6 = 53,333,333.33 (소수 2자리)
	n := NewNormalizer(saleConfig(), testLog())

	batch := &contracts.RawBatch{
		Table:   "apt_lease_raw",
		Columns: []string{"년", "월", "일", "지역코드", "보증금액", "월세금액", "전용면적"},
		Rows: []contracts.RawRow{
			{
				"년": "2023", "월": "1", "일": "2",
				"지역코드": "11110", "보증금액": "50,000,000", "월세금액": "200,000",
				"전용면적": "84.9",
			},
		},
	}

	result, err := n.Normalize(batch)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)

	tx := result.Transactions[0]
	assert.Equal(t, int64(50000000), tx.Deposit)
	assert.Equal(t, int64(200000), tx.MonthlyRent)
	assert.Equal(t, 53333333.33, tx.DealAmount)
}

func TestNormalize_PureLeaseKeepsDeposit(t *testing.T) {
	// 월세 0이면 환산 결과는 보증금 그대로 (전세)
	n := NewNormalizer(saleConfig(), testLog())

	batch := &contracts.RawBatch{
		Table:   "apt_lease_raw",
		Columns: []string{"년", "월", "일", "지역코드", "보증금액", "월세금액", "전용면적"},
		Rows: []contracts.RawRow{
			{
				"년": "2022", "월": "3", "일": "10",
				"지역코드": "41135", "보증금액": "300,000,000", "월세금액": "",
				"전용면적": "59.8",
			},
		},
	}

	result, err := n.Normalize(batch)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, float64(300000000), result.Transactions[0].DealAmount)
}

func TestNormalize_HouseUsesTotalFloorArea(t *testing.T) {
	cfg := saleConfig()
	cfg.PropertyType = schema.PropertyHouse
	n := NewNormalizer(cfg, testLog())

	batch := &contracts.RawBatch{
		Table:   "house_raw",
		Columns: []string{"년", "월", "일", "지역코드", "거래금액", "연면적"},
		Rows: []contracts.RawRow{
			{
				"년": "2023", "월": "7", "일": "1",
				"지역코드": "11140", "거래금액": "90,000", "연면적": "120.5",
			},
		},
	}

	result, err := n.Normalize(batch)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, 120.5, result.Transactions[0].Area)
}

func TestNormalize_RowLevelFailures(t *testing.T) {
	tests := []struct {
		name      string
		row       contracts.RawRow
		wantField string
	}{
		{
			name:      "non-numeric amount",
			row:       saleRow("11110", "십만", "10"),
			wantField: "거래금액",
		},
		{
			name: "invalid day of month",
			row: contracts.RawRow{
				"년": "2023", "월": "2", "일": "31",
				"지역코드": "11110", "거래금액": "10,000", "전용면적": "10",
			},
			wantField: "일",
		},
		{
			name: "zero area",
			row: contracts.RawRow{
				"년": "2023", "월": "6", "일": "15",
				"지역코드": "11110", "거래금액": "10,000", "전용면적": "0",
			},
			wantField: "전용면적",
		},
		{
			name: "missing region code",
			row: contracts.RawRow{
				"년": "2023", "월": "6", "일": "15",
				"거래금액": "10,000", "전용면적": "10",
			},
			wantField: "지역코드",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(saleConfig(), testLog())
			batch := &contracts.RawBatch{
				Columns: []string{"년", "월", "일", "지역코드", "거래금액", "전용면적"},
				Rows:    []contracts.RawRow{saleRow("11110", "20,000", "20"), tt.row},
			}

			result, err := n.Normalize(batch)
			require.NoError(t, err, "row failure must not abort the batch")

			// 정상 행은 살아남는다
			require.Len(t, result.Transactions, 1)
			require.Len(t, result.Skipped, 1)
			assert.Equal(t, tt.wantField, result.Skipped[0].Field)
			assert.Equal(t, 1, result.Skipped[0].Row)
		})
	}
}

func TestNormalize_MissingValuesBecomeZero(t *testing.T) {
	// 결측 정수 필드는 캐스팅 실패가 아니라 0
	n := NewNormalizer(saleConfig(), testLog())

	batch := &contracts.RawBatch{
		Columns: []string{"년", "월", "일", "지역코드", "거래금액", "전용면적", "건축년도"},
		Rows: []contracts.RawRow{
			{
				"년": "2023", "월": "6", "일": "15",
				"지역코드": "11110", "거래금액": "10,000", "전용면적": "10",
				"건축년도": "",
			},
		},
	}

	result, err := n.Normalize(batch)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, 0, result.Transactions[0].BuildingYear)
}

func TestNormalize_LegacyUnitConversion(t *testing.T) {
	cfg := saleConfig()
	cfg.UnitConversion = PyeongPerSquareMeterLegacy
	n := NewNormalizer(cfg, testLog())

	batch := &contracts.RawBatch{
		Columns: []string{"년", "월", "일", "지역코드", "거래금액", "전용면적"},
		Rows:    []contracts.RawRow{saleRow("11110", "10,000", "10")},
	}

	result, err := n.Normalize(batch)
	require.NoError(t, err)
	require.Len(t, result.Transactions, 1)
	assert.InDelta(t, 3306.0, result.Transactions[0].UnitPrice, 1e-9)
}
