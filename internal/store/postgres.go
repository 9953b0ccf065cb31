package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/wonny/jini/internal/contracts"
)

// Postgres implements the pipeline repositories over a server-side store.
// 스키마는 SQLite 스냅샷과 동일하다.
type Postgres struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPostgres wraps an open pool.
func NewPostgres(pool *pgxpool.Pool, log zerolog.Logger) *Postgres {
	return &Postgres{pool: pool, log: log.With().Str("component", "store.postgres").Logger()}
}

// LoadTransactions implements contracts.TableSource.
func (p *Postgres) LoadTransactions(ctx context.Context, table string) (*contracts.RawBatch, error) {
	rows, err := p.pool.Query(ctx, fmt.Sprintf(`SELECT * FROM %s`, quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	batch := &contracts.RawBatch{Table: table, Columns: cols}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
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

	p.log.Debug().Str("table", table).Int("rows", len(batch.Rows)).Msg("table loaded")
	return batch, nil
}

// LoadRegionCodes implements contracts.RegionRepository.
func (p *Postgres) LoadRegionCodes(ctx context.Context) ([]contracts.RegionRow, error) {
	query := `SELECT "시도명", "시군구명", "시군구코드", "행정동코드", "읍면동명" FROM conn_code`
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query conn_code: %w", err)
	}
	defer rows.Close()

	var out []contracts.RegionRow
	for rows.Next() {
		var r contracts.RegionRow
		if err := rows.Scan(&r.Province, &r.District, &r.DistrictCode, &r.NeighborhoodCode, &r.NeighborhoodName); err != nil {
			return nil, fmt.Errorf("scan conn_code: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveStats implements contracts.TableSink.
func (p *Postgres) SaveStats(ctx context.Context, table string, stats []contracts.GroupStat) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, quoteIdent(table))); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}

	create := fmt.Sprintf(`CREATE TABLE %s (
		"년" INTEGER, "연월" TEXT, "지역코드" TEXT, "시도명" TEXT, "시군구명" TEXT, "법정동" TEXT,
		"거래수" INTEGER, "평균거래금액" DOUBLE PRECISION, "거래금액지니계수" DOUBLE PRECISION,
		"평균평당거래금액" DOUBLE PRECISION, "평당거래지니계수" DOUBLE PRECISION
	)`, quoteIdent(table))
	if _, err := tx.Exec(ctx, create); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	cols := make([]string, len(statColumns))
	placeholders := make([]string, len(statColumns))
	for i, c := range statColumns {
		cols[i] = quoteIdent(c)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteIdent(table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	for i := range stats {
		st := &stats[i]
		if _, err := tx.Exec(ctx, insert,
			st.Year, st.YearMonth, st.RegionCode, st.Province, st.District, st.Neighborhood,
			st.Count, st.MeanAmount, st.GiniAmount, st.MeanUnitPrice, st.GiniUnitPrice,
		); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	p.log.Info().Str("table", table).Int("rows", len(stats)).Msg("stats saved")
	return nil
}

// SaveRawBatch implements contracts.RawSink. 대량 적재라 CopyFrom을 쓴다.
func (p *Postgres) SaveRawBatch(ctx context.Context, table string, batch *contracts.RawBatch) error {
	if batch.Len() == 0 {
		return nil
	}

	cols := make([]string, len(batch.Columns))
	for i, c := range batch.Columns {
		cols[i] = quoteIdent(c) + " TEXT"
	}
	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s)`, quoteIdent(table), strings.Join(cols, ", "))
	if _, err := p.pool.Exec(ctx, create); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	rows := make([][]any, len(batch.Rows))
	for ri, row := range batch.Rows {
		vals := make([]any, len(batch.Columns))
		for i, c := range batch.Columns {
			vals[i] = row[c]
		}
		rows[ri] = vals
	}

	_, err := p.pool.CopyFrom(ctx, pgx.Identifier{table}, batch.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", table, err)
	}
	return nil
}

// LoadStats implements contracts.StatsReader.
func (p *Postgres) LoadStats(ctx context.Context, table string, year int, regionCode string) ([]contracts.GroupStat, error) {
	query := fmt.Sprintf(`SELECT "년", "연월", "지역코드", "시도명", "시군구명", "법정동",
		"거래수", "평균거래금액", "거래금액지니계수", "평균평당거래금액", "평당거래지니계수"
		FROM %s WHERE 1=1`, quoteIdent(table))
	var args []any
	if year != 0 {
		args = append(args, year)
		query += fmt.Sprintf(` AND "년" = $%d`, len(args))
	}
	if regionCode != "" {
		args = append(args, regionCode)
		query += fmt.Sprintf(` AND "지역코드" = $%d`, len(args))
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []contracts.GroupStat
	for rows.Next() {
		var st contracts.GroupStat
		if err := rows.Scan(&st.Year, &st.YearMonth, &st.RegionCode, &st.Province, &st.District, &st.Neighborhood,
			&st.Count, &st.MeanAmount, &st.GiniAmount, &st.MeanUnitPrice, &st.GiniUnitPrice); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
