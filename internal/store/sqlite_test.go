package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/wonny/jini/internal/contracts"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLite_RawBatchRoundTrip(t *testing.T) {
	s := NewSQLite(openTestDB(t), zerolog.Nop())
	ctx := context.Background()

	batch := &contracts.RawBatch{
		Table:   "apt_raw",
		Columns: []string{"년", "월", "일", "지역코드", "거래금액", "전용면적"},
		Rows: []contracts.RawRow{
			{"년": "2015", "월": "1", "일": "10", "지역코드": "11110", "거래금액": "10,000", "전용면적": "10"},
			{"년": "2015", "월": "1", "일": "11", "지역코드": "11140", "거래금액": "30,000", "전용면적": "10"},
		},
	}
	require.NoError(t, s.SaveRawBatch(ctx, "apt_raw", batch))

	got, err := s.LoadTransactions(ctx, "apt_raw")
	require.NoError(t, err)
	assert.Equal(t, batch.Columns, got.Columns)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "10,000", got.Rows[0]["거래금액"])
	assert.Equal(t, "11140", got.Rows[1]["지역코드"])
}

func TestSQLite_RawBatchAppends(t *testing.T) {
	s := NewSQLite(openTestDB(t), zerolog.Nop())
	ctx := context.Background()

	batch := &contracts.RawBatch{
		Table:   "apt_raw",
		Columns: []string{"년", "지역코드"},
		Rows:    []contracts.RawRow{{"년": "2015", "지역코드": "11110"}},
	}
	require.NoError(t, s.SaveRawBatch(ctx, "apt_raw", batch))
	require.NoError(t, s.SaveRawBatch(ctx, "apt_raw", batch))

	got, err := s.LoadTransactions(ctx, "apt_raw")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}

func TestSQLite_StatsRoundTrip(t *testing.T) {
	s := NewSQLite(openTestDB(t), zerolog.Nop())
	ctx := context.Background()

	stats := []contracts.GroupStat{
		{Year: 2015, RegionCode: "11110", Province: "서울특별시", District: "종로구", Count: 2, MeanAmount: 15000.0, GiniAmount: 0.1667},
		{Year: 2016, RegionCode: "11140", Province: "서울특별시", District: "중구", Count: 3, MeanAmount: 40000.0, GiniAmount: 0.1111},
	}
	const table = "아파트_매매_시군구_지니계수"
	require.NoError(t, s.SaveStats(ctx, table, stats))

	got, err := s.LoadStats(ctx, table, 0, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 15000.0, got[0].MeanAmount)
	assert.Equal(t, 0.1667, got[0].GiniAmount)
	assert.Equal(t, "종로구", got[0].District)

	// 연도 필터
	byYear, err := s.LoadStats(ctx, table, 2016, "")
	require.NoError(t, err)
	require.Len(t, byYear, 1)
	assert.Equal(t, "11140", byYear[0].RegionCode)

	// 지역코드 필터
	byCode, err := s.LoadStats(ctx, table, 0, "11110")
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	assert.Equal(t, 2, byCode[0].Count)
}

func TestSQLite_SaveStatsOverwrites(t *testing.T) {
	s := NewSQLite(openTestDB(t), zerolog.Nop())
	ctx := context.Background()

	const table = "아파트_매매_시군구_지니계수"
	require.NoError(t, s.SaveStats(ctx, table, []contracts.GroupStat{{Year: 2015, Count: 1}}))
	require.NoError(t, s.SaveStats(ctx, table, []contracts.GroupStat{{Year: 2016, Count: 2}}))

	got, err := s.LoadStats(ctx, table, 0, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2016, got[0].Year)
}

func TestSQLite_LoadRegionCodes(t *testing.T) {
	db := openTestDB(t)
	s := NewSQLite(db, zerolog.Nop())
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `CREATE TABLE conn_code ("시도명" TEXT, "시군구명" TEXT, "시군구코드" TEXT, "행정동코드" TEXT, "읍면동명" TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO conn_code VALUES ('서울특별시', '종로구', '11110', '1111010100', '청운동')`)
	require.NoError(t, err)

	rows, err := s.LoadRegionCodes(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "서울특별시", rows[0].Province)
	assert.Equal(t, "11110", rows[0].DistrictCode)
	assert.Equal(t, "청운동", rows[0].NeighborhoodName)
}

func TestSQLite_TableCounts(t *testing.T) {
	s := NewSQLite(openTestDB(t), zerolog.Nop())
	ctx := context.Background()

	batch := &contracts.RawBatch{
		Table:   "apt_raw",
		Columns: []string{"년"},
		Rows:    []contracts.RawRow{{"년": "2015"}, {"년": "2016"}},
	}
	require.NoError(t, s.SaveRawBatch(ctx, "apt_raw", batch))

	counts, err := s.TableCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts["apt_raw"])
}
