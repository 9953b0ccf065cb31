package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/internal/schema"
)

// Exporter writes the final grouped-statistic table to a flat file.
// store/csvexport가 구현한다.
type Exporter interface {
	Export(keys []schema.GroupKey, stats []contracts.GroupStat, name string) (string, error)
}

// Pipeline is one full analysis run over one raw table:
// load → normalize → dedup → region map → (outlier) → aggregate → save.
// 소스/싱크는 주입받는다 — 전역 커넥션 같은 건 없다.
type Pipeline struct {
	cfg      Config
	source   contracts.TableSource
	regions  contracts.RegionRepository
	sink     contracts.TableSink
	exporter Exporter // nil이면 CSV 내보내기 생략
	log      zerolog.Logger
}

// NewPipeline validates cfg once and wires the stages.
func NewPipeline(cfg Config, source contracts.TableSource, regions contracts.RegionRepository, sink contracts.TableSink, log zerolog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:     cfg.withDefaults(),
		source:  source,
		regions: regions,
		sink:    sink,
		log:     log.With().Str("component", "analyzer.pipeline").Logger(),
	}, nil
}

// WithExporter attaches a flat-file exporter for the final table.
func (p *Pipeline) WithExporter(e Exporter) *Pipeline {
	p.exporter = e
	return p
}

// Run executes one run and reports row counts at every stage so silently
// dropped data is visible to the operator.
func (p *Pipeline) Run(ctx context.Context) (*contracts.RunReport, []contracts.GroupStat, error) {
	table, err := schema.TableName(p.cfg.PropertyType, p.cfg.TransactionKind)
	if err != nil {
		return nil, nil, err
	}

	report := &contracts.RunReport{
		Table:     table,
		StartedAt: time.Now(),
	}

	batch, err := p.source.LoadTransactions(ctx, table)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", table, err)
	}
	report.RowsRead = batch.Len()
	p.log.Info().Str("table", table).Int("rows", batch.Len()).Msg("batch loaded")

	normalized, err := NewNormalizer(p.cfg, p.log).Normalize(batch)
	if err != nil {
		return nil, nil, fmt.Errorf("normalize %s: %w", table, err)
	}
	report.RowsNormalized = len(normalized.Transactions)
	report.RowsSkipped = len(normalized.Skipped)
	report.SkipReasons = normalized.SkipReasons()

	txs, dedup := Deduplicate(normalized.Transactions, p.cfg.DedupColumns, p.log)
	report.DuplicatesRemoved = dedup.Removed
	report.RowsAfterDedup = dedup.After

	ref, err := p.regions.LoadRegionCodes(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load region codes: %w", err)
	}
	txs, mapped := MapRegions(txs, ref, p.cfg.RegionGranularity, p.log)
	report.UnmatchedRegion = mapped.Unmatched

	if p.cfg.FilterOutliers {
		filtered, bounds, ferr := NewOutlierFilter(TargetUnitPrice, p.log).Filter(ctx, txs)
		if ferr != nil {
			return nil, nil, fmt.Errorf("outlier filter: %w", ferr)
		}
		report.OutliersRemoved = TotalRemoved(bounds)
		txs = filtered
	}

	stats, err := NewAggregator(p.cfg, p.log).Aggregate(txs)
	if err != nil {
		return nil, nil, err
	}
	report.Groups = len(stats)

	resultTable := p.resultTable()
	if p.sink != nil {
		if err := p.sink.SaveStats(ctx, resultTable, stats); err != nil {
			return nil, nil, fmt.Errorf("save stats to %s: %w", resultTable, err)
		}
	}

	if p.exporter != nil {
		path, eerr := p.exporter.Export(p.cfg.GroupKeys, stats, resultTable)
		if eerr != nil {
			return nil, nil, fmt.Errorf("export %s: %w", resultTable, eerr)
		}
		p.log.Info().Str("path", path).Msg("result exported")
	}

	report.FinishedAt = time.Now()
	p.log.Info().
		Int("rows_read", report.RowsRead).
		Int("rows_normalized", report.RowsNormalized).
		Int("rows_after_dedup", report.RowsAfterDedup).
		Int("groups", report.Groups).
		Msg("run completed")

	return report, stats, nil
}

// resultTable names the grouped output, 원본 결과 파일 명명 그대로
// (예: 아파트_매매_시군구_지니계수).
func (p *Pipeline) resultTable() string {
	gran := "시군구"
	if p.cfg.RegionGranularity == schema.GranularityNeighborhood {
		gran = "법정동"
	}
	return schema.ResultName(p.cfg.PropertyType, p.cfg.TransactionKind) + "_" + gran + "_지니계수"
}
