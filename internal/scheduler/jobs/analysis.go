package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/jini/internal/analyzer"
	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/internal/schema"
	"github.com/wonny/jini/pkg/config"
	"github.com/wonny/jini/pkg/logger"
)

// districtGroupKeys is the standard 시군구 aggregation used by the
// scheduled run.
var districtGroupKeys = []schema.GroupKey{
	schema.KeyYear, schema.KeyRegionCode, schema.KeyProvince, schema.KeyDistrict,
}

// AnalysisJob recomputes the inequality statistics of every table
// variant after a collection run.
// ⭐ SSOT: 정기 분석 스케줄은 이 Job에서만
type AnalysisJob struct {
	source   contracts.TableSource
	regions  contracts.RegionRepository
	sink     contracts.TableSink
	exporter analyzer.Exporter
	config   *config.Config
	logger   *logger.Logger
}

// NewAnalysisJob creates the scheduled analysis job. exporter는 nil이면
// CSV를 만들지 않는다.
func NewAnalysisJob(source contracts.TableSource, regions contracts.RegionRepository, sink contracts.TableSink, exporter analyzer.Exporter, cfg *config.Config, log *logger.Logger) *AnalysisJob {
	return &AnalysisJob{
		source:   source,
		regions:  regions,
		sink:     sink,
		exporter: exporter,
		config:   cfg,
		logger:   log,
	}
}

// Name returns the job name.
func (j *AnalysisJob) Name() string {
	return "analysis"
}

// Schedule runs on the 2nd of every month at 05:00, 수집 후 두 시간 뒤.
func (j *AnalysisJob) Schedule() string {
	return "0 0 5 2 * *"
}

// Run recomputes statistics for every table variant.
func (j *AnalysisJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled analysis")

	for _, v := range tableVariants {
		cfg := analyzer.Config{
			PropertyType:      v.Property,
			TransactionKind:   v.Kind,
			RegionGranularity: schema.GranularityDistrict,
			GroupKeys:         districtGroupKeys,
			WithUnitPrice:     true,
			UnitConversion:    j.config.Pipeline.UnitConversion,
			LeaseRate:         j.config.Pipeline.LeaseRate,
		}

		pipeline, err := analyzer.NewPipeline(cfg, j.source, j.regions, j.sink, j.logger.Component("pipeline"))
		if err != nil {
			return fmt.Errorf("build pipeline %s/%s: %w", v.Property, v.Kind, err)
		}
		if j.exporter != nil {
			pipeline = pipeline.WithExporter(j.exporter)
		}

		report, stats, err := pipeline.Run(ctx)
		if err != nil {
			return fmt.Errorf("run pipeline %s/%s: %w", v.Property, v.Kind, err)
		}

		j.logger.WithFields(map[string]interface{}{
			"property_type": v.Property,
			"kind":          v.Kind,
			"rows_read":     report.RowsRead,
			"groups":        len(stats),
		}).Info("Variant analyzed")
	}

	j.logger.Info("Scheduled analysis completed successfully")
	return nil
}
