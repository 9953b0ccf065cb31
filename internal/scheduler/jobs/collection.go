// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/jini/internal/external/molit"
	"github.com/wonny/jini/internal/schema"
	"github.com/wonny/jini/pkg/config"
	"github.com/wonny/jini/pkg/logger"
)

// tableVariants enumerates every collected (유형, 거래구분) pair.
var tableVariants = []struct {
	Property schema.PropertyType
	Kind     schema.TransactionKind
}{
	{schema.PropertyApartment, schema.KindSale},
	{schema.PropertyApartment, schema.KindLease},
	{schema.PropertyRowHouse, schema.KindSale},
	{schema.PropertyRowHouse, schema.KindLease},
	{schema.PropertyHouse, schema.KindSale},
	{schema.PropertyHouse, schema.KindLease},
	{schema.PropertyOfficetel, schema.KindSale},
	{schema.PropertyOfficetel, schema.KindLease},
}

// MonthlyCollectionJob pulls the previous month of every table variant
// from the open API into the raw store.
// ⭐ SSOT: 월간 수집 스케줄은 이 Job에서만
type MonthlyCollectionJob struct {
	collector *molit.Collector
	config    *config.Config
	logger    *logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewMonthlyCollectionJob creates the monthly collection job.
func NewMonthlyCollectionJob(col *molit.Collector, cfg *config.Config, log *logger.Logger) *MonthlyCollectionJob {
	return &MonthlyCollectionJob{
		collector: col,
		config:    cfg,
		logger:    log,
		now:       time.Now,
	}
}

// Name returns the job name.
func (j *MonthlyCollectionJob) Name() string {
	return "monthly_collection"
}

// Schedule runs on the 2nd of every month at 03:00. 전월 거래는 신고
// 지연이 있어 월초 직후가 아니라 하루 띄운다.
func (j *MonthlyCollectionJob) Schedule() string {
	return "0 0 3 2 * *"
}

// Run collects the previous month for every table variant.
func (j *MonthlyCollectionJob) Run(ctx context.Context) error {
	month := j.now().AddDate(0, -1, 0).Format("200601")

	districts, err := molit.LoadDistrictCodes(j.config.Molit.LawdCodeFile)
	if err != nil {
		return fmt.Errorf("load district codes: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"month":     month,
		"districts": len(districts),
	}).Info("Starting monthly collection")

	var failed int
	for _, v := range tableVariants {
		report, err := j.collector.Collect(ctx, v.Property, v.Kind, []string{month}, districts)
		if err != nil {
			return fmt.Errorf("collect %s/%s: %w", v.Property, v.Kind, err)
		}
		failed += report.FailedPages

		j.logger.WithFields(map[string]interface{}{
			"property_type": v.Property,
			"kind":          v.Kind,
			"rows":          report.RowsSaved,
			"failed_pages":  report.FailedPages,
		}).Info("Variant collected")
	}

	if failed > 0 {
		j.logger.WithField("failed_pages", failed).Warn("Monthly collection finished with failed pages")
	} else {
		j.logger.Info("Monthly collection completed successfully")
	}
	return nil
}
