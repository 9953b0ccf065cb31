package contracts

import "context"

// ⭐ SSOT: 파이프라인이 소비/생산하는 저장소 인터페이스는 여기서만 정의
// 구현체는 internal/store 아래에 (sqlite, postgres, memory).

// TableSource loads one raw transaction table snapshot.
// 파이프라인은 전역 커넥션이 아니라 주입받은 소스만 읽는다.
type TableSource interface {
	LoadTransactions(ctx context.Context, table string) (*RawBatch, error)
}

// RegionRepository loads the code↔name reference table (conn_code).
type RegionRepository interface {
	LoadRegionCodes(ctx context.Context) ([]RegionRow, error)
}

// TableSink persists the grouped statistics of one run.
type TableSink interface {
	SaveStats(ctx context.Context, table string, stats []GroupStat) error
}

// RawSink appends raw rows collected from an external source.
// 수집기(molit)가 쓰고, TableSource가 다시 읽는다.
type RawSink interface {
	SaveRawBatch(ctx context.Context, table string, batch *RawBatch) error
}

// StatsReader serves previously computed statistics (API 조회용).
type StatsReader interface {
	LoadStats(ctx context.Context, table string, year int, regionCode string) ([]GroupStat, error)
}
