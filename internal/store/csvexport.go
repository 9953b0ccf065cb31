package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/wonny/jini/internal/contracts"
	"github.com/wonny/jini/internal/schema"
)

// csvKeyHeader maps a group-by dimension to its 결과 CSV 헤더.
var csvKeyHeader = map[schema.GroupKey]string{
	schema.KeyYear:         "년",
	schema.KeyYearMonth:    "연월",
	schema.KeyRegionCode:   "지역코드",
	schema.KeyProvince:     "시도명",
	schema.KeyDistrict:     "시군구명",
	schema.KeyNeighborhood: "법정동",
}

// csvStatHeader is the fixed metric column block following the key columns.
var csvStatHeader = []string{"거래수", "평균거래금액", "거래금액지니계수", "평균평당거래금액", "평당거래지니계수"}

// CSVExporter writes group statistics as UTF-8 CSV files under a result
// directory. 파일명은 결과 테이블명 그대로 쓴다.
type CSVExporter struct {
	dir string
	log zerolog.Logger
}

// NewCSVExporter creates the result directory if missing.
func NewCSVExporter(dir string, log zerolog.Logger) (*CSVExporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create result dir %s: %w", dir, err)
	}
	return &CSVExporter{dir: dir, log: log.With().Str("component", "store.csv").Logger()}, nil
}

// Export writes one result file and returns its path. Key columns come
// first in the configured order, then the metric block.
func (e *CSVExporter) Export(keys []schema.GroupKey, stats []contracts.GroupStat, name string) (string, error) {
	path := filepath.Join(e.dir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := make([]string, 0, len(keys)+len(csvStatHeader))
	for _, k := range keys {
		header = append(header, csvKeyHeader[k])
	}
	header = append(header, csvStatHeader...)
	if err := w.Write(header); err != nil {
		return "", err
	}

	record := make([]string, 0, len(header))
	for i := range stats {
		st := &stats[i]
		record = record[:0]
		for _, k := range keys {
			record = append(record, keyValue(st, k))
		}
		record = append(record,
			strconv.Itoa(st.Count),
			formatFloat(st.MeanAmount),
			formatFloat(st.GiniAmount),
			formatFloat(st.MeanUnitPrice),
			formatFloat(st.GiniUnitPrice),
		)
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	e.log.Info().Str("path", path).Int("rows", len(stats)).Msg("csv exported")
	return path, nil
}

func keyValue(st *contracts.GroupStat, key schema.GroupKey) string {
	switch key {
	case schema.KeyYear:
		return strconv.Itoa(st.Year)
	case schema.KeyYearMonth:
		return st.YearMonth
	case schema.KeyRegionCode:
		return st.RegionCode
	case schema.KeyProvince:
		return st.Province
	case schema.KeyDistrict:
		return st.District
	case schema.KeyNeighborhood:
		return st.Neighborhood
	}
	return ""
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
