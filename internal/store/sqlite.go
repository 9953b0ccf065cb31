package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wonny/jini/internal/contracts"
)

// SQLite implements the pipeline repositories over the local snapshot file
// (RealEstate.db 상당). 원시 테이블은 전부 TEXT로 적재된다 — 타입은
// 정규화 단계 책임이다.
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLite wraps an open handle.
func NewSQLite(db *sql.DB, log zerolog.Logger) *SQLite {
	return &SQLite{db: db, log: log.With().Str("component", "store.sqlite").Logger()}
}

// LoadTransactions implements contracts.TableSource.
func (s *SQLite) LoadTransactions(ctx context.Context, table string) (*contracts.RawBatch, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM %s`, quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	batch := &contracts.RawBatch{Table: table, Columns: cols}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make(contracts.RawRow, len(cols))
		for i, c := range cols {
			row[c] = stringify(values[i])
		}
		batch.Rows = append(batch.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.log.Debug().Str("table", table).Int("rows", len(batch.Rows)).Msg("table loaded")
	return batch, nil
}

// LoadRegionCodes implements contracts.RegionRepository (conn_code 테이블).
func (s *SQLite) LoadRegionCodes(ctx context.Context) ([]contracts.RegionRow, error) {
	query := `SELECT "시도명", "시군구명", "시군구코드", "행정동코드", "읍면동명" FROM conn_code`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query conn_code: %w", err)
	}
	defer rows.Close()

	var out []contracts.RegionRow
	for rows.Next() {
		var province, district, districtCode, nbCode, nbName sql.NullString
		if err := rows.Scan(&province, &district, &districtCode, &nbCode, &nbName); err != nil {
			return nil, fmt.Errorf("scan conn_code: %w", err)
		}
		out = append(out, contracts.RegionRow{
			Province:         province.String,
			District:         district.String,
			DistrictCode:     districtCode.String,
			NeighborhoodCode: nbCode.String,
			NeighborhoodName: nbName.String,
		})
	}
	return out, rows.Err()
}

// statColumns is the flat result table layout, 원본 결과 CSV와 같은 구성.
var statColumns = []string{
	"년", "연월", "지역코드", "시도명", "시군구명", "법정동",
	"거래수", "평균거래금액", "거래금액지니계수", "평균평당거래금액", "평당거래지니계수",
}

// SaveStats implements contracts.TableSink. 결과 테이블은 실행마다 새로
// 계산되므로 덮어쓴다.
func (s *SQLite) SaveStats(ctx context.Context, table string, stats []contracts.GroupStat) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, quoteIdent(table))); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}

	cols := make([]string, len(statColumns))
	for i, c := range statColumns {
		cols[i] = quoteIdent(c)
	}
	create := fmt.Sprintf(`CREATE TABLE %s (%s)`, quoteIdent(table), strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statColumns)), ", ")
	insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteIdent(table), strings.Join(cols, ", "), placeholders)

	for i := range stats {
		st := &stats[i]
		if _, err := tx.ExecContext(ctx, insert,
			st.Year, st.YearMonth, st.RegionCode, st.Province, st.District, st.Neighborhood,
			st.Count, st.MeanAmount, st.GiniAmount, st.MeanUnitPrice, st.GiniUnitPrice,
		); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.log.Info().Str("table", table).Int("rows", len(stats)).Msg("stats saved")
	return nil
}

// SaveRawBatch implements contracts.RawSink (수집기 append 저장).
func (s *SQLite) SaveRawBatch(ctx context.Context, table string, batch *contracts.RawBatch) error {
	if batch.Len() == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	cols := make([]string, len(batch.Columns))
	for i, c := range batch.Columns {
		cols[i] = quoteIdent(c) + " TEXT"
	}
	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s)`, quoteIdent(table), strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	quoted := make([]string, len(batch.Columns))
	for i, c := range batch.Columns {
		quoted[i] = quoteIdent(c)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(batch.Columns)), ", ")
	insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteIdent(table), strings.Join(quoted, ", "), placeholders)

	args := make([]any, len(batch.Columns))
	for _, row := range batch.Rows {
		for i, c := range batch.Columns {
			args[i] = row[c]
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// LoadStats implements contracts.StatsReader.
func (s *SQLite) LoadStats(ctx context.Context, table string, year int, regionCode string) ([]contracts.GroupStat, error) {
	query := fmt.Sprintf(`SELECT "년", "연월", "지역코드", "시도명", "시군구명", "법정동",
		"거래수", "평균거래금액", "거래금액지니계수", "평균평당거래금액", "평당거래지니계수"
		FROM %s WHERE 1=1`, quoteIdent(table))
	var args []any
	if year != 0 {
		query += ` AND "년" = ?`
		args = append(args, year)
	}
	if regionCode != "" {
		query += ` AND "지역코드" = ?`
		args = append(args, regionCode)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []contracts.GroupStat
	for rows.Next() {
		var st contracts.GroupStat
		var yearMonth, code, province, district, nb sql.NullString
		if err := rows.Scan(&st.Year, &yearMonth, &code, &province, &district, &nb,
			&st.Count, &st.MeanAmount, &st.GiniAmount, &st.MeanUnitPrice, &st.GiniUnitPrice); err != nil {
			return nil, err
		}
		st.YearMonth = yearMonth.String
		st.RegionCode = code.String
		st.Province = province.String
		st.District = district.String
		st.Neighborhood = nb.String
		out = append(out, st)
	}
	return out, rows.Err()
}

// TableCounts returns row counts per table, 운영 status 조회용.
func (s *SQLite) TableCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(tables))
	for _, name := range tables {
		var c int
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdent(name))).Scan(&c); err != nil {
			return nil, err
		}
		counts[name] = c
	}
	return counts, nil
}

// quoteIdent quotes an identifier (한글 테이블/컬럼명 사용).
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// stringify renders a scanned value back to its raw string form.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
