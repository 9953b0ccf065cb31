package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/jini/internal/analyzer"
	"github.com/wonny/jini/internal/schema"
	"github.com/wonny/jini/internal/store"
	"github.com/wonny/jini/pkg/config"
	"github.com/wonny/jini/pkg/logger"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [property_type] [kind]",
	Short: "지니계수 통계 계산",
	Long: `한 테이블 변형의 불평등 통계를 계산해 결과 테이블에 저장합니다.

이 명령어는:
- 원시 거래 테이블 로드 및 정규화
- 중복 제거, 법정동코드 결합
- (옵션) 이상치 제거
- 그룹별 평균/지니계수 집계 및 저장

property_type: apt | rowhouse | house | officetel
kind:          sale | lease

Example:
  go run ./cmd/jini analyze apt sale
  go run ./cmd/jini analyze apt lease --neighborhood
  go run ./cmd/jini analyze officetel sale --outliers --csv
  go run ./cmd/jini analyze house sale --group-keys year_month,region_code`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

var (
	analyzeNeighborhood bool
	analyzeOutliers     bool
	analyzeCSV          bool
	analyzeGroupKeys    string
	analyzeLegacyUnit   bool
	analyzeTimeDesc     bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&analyzeNeighborhood, "neighborhood", false, "법정동 단위로 집계 (기본은 시군구)")
	analyzeCmd.Flags().BoolVar(&analyzeOutliers, "outliers", false, "평당가 이상치 제거 변형 실행")
	analyzeCmd.Flags().BoolVar(&analyzeCSV, "csv", false, "결과를 CSV로도 내보내기")
	analyzeCmd.Flags().StringVar(&analyzeGroupKeys, "group-keys", "", "집계 키 (쉼표 구분, 기본 year,region_code,province,district)")
	analyzeCmd.Flags().BoolVar(&analyzeLegacyUnit, "legacy-unit", false, "구버전 평 환산 상수(3.306) 사용")
	analyzeCmd.Flags().BoolVar(&analyzeTimeDesc, "time-desc", false, "시간 키 내림차순 정렬")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	pt := schema.PropertyType(args[0])
	kind := schema.TransactionKind(args[1])

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	st, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	pipelineCfg := analyzer.Config{
		PropertyType:      pt,
		TransactionKind:   kind,
		RegionGranularity: schema.GranularityDistrict,
		GroupKeys:         parseGroupKeys(analyzeGroupKeys),
		WithUnitPrice:     true,
		SortTimeDesc:      analyzeTimeDesc,
		UnitConversion:    cfg.Pipeline.UnitConversion,
		LeaseRate:         cfg.Pipeline.LeaseRate,
		FilterOutliers:    analyzeOutliers,
	}
	if analyzeNeighborhood {
		pipelineCfg.RegionGranularity = schema.GranularityNeighborhood
		if analyzeGroupKeys == "" {
			pipelineCfg.GroupKeys = []schema.GroupKey{
				schema.KeyYear, schema.KeyRegionCode, schema.KeyProvince,
				schema.KeyDistrict, schema.KeyNeighborhood,
			}
		}
	}
	if analyzeLegacyUnit {
		pipelineCfg.UnitConversion = analyzer.PyeongPerSquareMeterLegacy
	}

	pipeline, err := analyzer.NewPipeline(pipelineCfg, st, st, st, log.Component("pipeline"))
	if err != nil {
		return err
	}

	if analyzeCSV {
		exporter, err := store.NewCSVExporter(cfg.Pipeline.ResultDir, log.Component("csv"))
		if err != nil {
			return err
		}
		pipeline = pipeline.WithExporter(exporter)
	}

	PrintRunHeader("jini analyze", fmt.Sprintf("%s / %s", pt, kind))

	report, stats, err := pipeline.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	PrintRunReport(report)
	PrintCompletion(fmt.Sprintf("%d groups computed", len(stats)))
	return nil
}

// parseGroupKeys splits the --group-keys flag; empty means the standard
// 시군구 집계.
func parseGroupKeys(raw string) []schema.GroupKey {
	if raw == "" {
		return []schema.GroupKey{
			schema.KeyYear, schema.KeyRegionCode, schema.KeyProvince, schema.KeyDistrict,
		}
	}

	var keys []schema.GroupKey
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			keys = append(keys, schema.GroupKey(part))
		}
	}
	return keys
}
