package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/jini/internal/external/molit"
	"github.com/wonny/jini/internal/schema"
	"github.com/wonny/jini/pkg/config"
	"github.com/wonny/jini/pkg/httputil"
	"github.com/wonny/jini/pkg/logger"
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect [property_type] [kind]",
	Short: "실거래가 수집",
	Long: `국토교통부 open API에서 실거래 데이터를 수집해 원시 테이블에 쌓습니다.

이 명령어는:
- 법정동코드 전체자료에서 시군구 코드 로드
- (연월 × 시군구) 조합별 호출 (레이트리밋 적용)
- 원시 테이블에 그대로 append

property_type: apt | rowhouse | house | officetel
kind:          sale | lease

Example:
  go run ./cmd/jini collect apt sale --from 201501 --to 201512
  go run ./cmd/jini collect officetel lease --from 202401 --to 202401`,
	Args: cobra.ExactArgs(2),
	RunE: runCollect,
}

var (
	collectFrom string
	collectTo   string
)

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&collectFrom, "from", "", "시작 연월 (YYYYMM)")
	collectCmd.Flags().StringVar(&collectTo, "to", "", "끝 연월 (YYYYMM)")
	collectCmd.MarkFlagRequired("from")
	collectCmd.MarkFlagRequired("to")
}

func runCollect(cmd *cobra.Command, args []string) error {
	pt := schema.PropertyType(args[0])
	kind := schema.TransactionKind(args[1])

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Molit.ServiceKey == "" {
		return fmt.Errorf("MOLIT_SERVICE_KEY is required for collection")
	}
	log := logger.New(cfg)

	months, err := molit.MonthRange(collectFrom, collectTo)
	if err != nil {
		return err
	}

	districts, err := molit.LoadDistrictCodes(cfg.Molit.LawdCodeFile)
	if err != nil {
		return fmt.Errorf("load district codes: %w", err)
	}

	st, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	httpClient := httputil.New(log).WithRateLimit(cfg.Molit.RatePerSec)
	client := molit.NewClient(httpClient, cfg, log)
	collector := molit.NewCollector(client, st, log)

	PrintRunHeader("jini collect", fmt.Sprintf("%s / %s, %s ~ %s (%d개 시군구)",
		pt, kind, collectFrom, collectTo, len(districts)))

	report, err := collector.Collect(cmd.Context(), pt, kind, months, districts)
	if err != nil {
		return fmt.Errorf("collect: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Months       : %d\n", report.Months)
	fmt.Printf("  Rows saved   : %d\n", report.RowsSaved)
	fmt.Printf("  Empty pages  : %d\n", report.EmptyPages)
	fmt.Printf("  Failed pages : %d\n", report.FailedPages)

	PrintCompletion(fmt.Sprintf("%d rows collected", report.RowsSaved))
	return nil
}
