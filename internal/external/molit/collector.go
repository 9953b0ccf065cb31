package molit

import (
	"context"

	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/internal/schema"
	"github.com/wonny/jini/pkg/logger"
)

// Collector walks (연월 × 시군구) pages of one table variant and appends
// everything into the raw store. 원천 테이블은 그대로 쌓기만 하고 정리는
// 분석 파이프라인 몫이다.
type Collector struct {
	client *Client
	sink   contracts.RawSink
	logger *logger.Logger
}

// CollectReport summarizes one collection run.
type CollectReport struct {
	Months      int
	Districts   int
	RowsSaved   int
	EmptyPages  int
	FailedPages int
}

// NewCollector builds a collector over an API client and a raw sink.
func NewCollector(client *Client, sink contracts.RawSink, log *logger.Logger) *Collector {
	return &Collector{client: client, sink: sink, logger: log}
}

// Collect fetches every (month, district) page and appends the rows to
// the variant's raw table. 개별 페이지 실패는 집계만 하고 계속 간다.
func (c *Collector) Collect(ctx context.Context, pt schema.PropertyType, kind schema.TransactionKind, months, districts []string) (CollectReport, error) {
	report := CollectReport{Months: len(months), Districts: len(districts)}
	table, err := schema.TableName(pt, kind)
	if err != nil {
		return report, err
	}

	for _, month := range months {
		monthRows := 0
		for _, code := range districts {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			batch, err := c.client.FetchDeals(ctx, pt, kind, code, month)
			if err != nil {
				report.FailedPages++
				c.logger.WithError(err).WithFields(map[string]interface{}{
					"lawd_cd":  code,
					"deal_ymd": month,
				}).Warn("Page fetch failed")
				continue
			}
			if batch.Len() == 0 {
				report.EmptyPages++
				continue
			}

			if err := c.sink.SaveRawBatch(ctx, table, batch); err != nil {
				return report, err
			}
			monthRows += batch.Len()
			report.RowsSaved += batch.Len()
		}

		c.logger.WithFields(map[string]interface{}{
			"table": table,
			"month": month,
			"rows":  monthRows,
		}).Info("Month collected")
	}
	return report, nil
}
