package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/jini/internal/external/molit"
	"github.com/wonny/jini/pkg/config"
	"github.com/wonny/jini/pkg/httputil"
	"github.com/wonny/jini/pkg/logger"
)

// downloadCmd represents the download-xlsx command
var downloadCmd = &cobra.Command{
	Use:   "download-xlsx",
	Short: "조건별 자료제공 XLSX 전수 다운로드",
	Long: `rtmobile 조건별 자료제공에서 월별 XLSX 파일을 내려받아 보관합니다.

open API와 달리 시군구 쪼개기 없이 전국 단위 파일을 받습니다.
유형(4종) × 거래구분(2종) 전부를 월 단위로 순회합니다.

Example:
  go run ./cmd/jini download-xlsx --from 2023-01 --to 2023-12
  go run ./cmd/jini download-xlsx --from 2007-05 --to 2024-05 --dir data/xlsx`,
	RunE: runDownload,
}

var (
	downloadFrom string
	downloadTo   string
	downloadDir  string
)

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&downloadFrom, "from", "", "시작 연월 (YYYY-MM)")
	downloadCmd.Flags().StringVar(&downloadTo, "to", "", "끝 연월 (YYYY-MM)")
	downloadCmd.Flags().StringVar(&downloadDir, "dir", "data/xlsx", "저장 디렉터리")
	downloadCmd.MarkFlagRequired("from")
	downloadCmd.MarkFlagRequired("to")
}

func runDownload(cmd *cobra.Command, args []string) error {
	from, err := time.Parse("2006-01", downloadFrom)
	if err != nil {
		return fmt.Errorf("invalid --from %q: %w", downloadFrom, err)
	}
	to, err := time.Parse("2006-01", downloadTo)
	if err != nil {
		return fmt.Errorf("invalid --to %q: %w", downloadTo, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	httpClient := httputil.New(log).WithRateLimit(cfg.Molit.RatePerSec)
	downloader := molit.NewXLSXDownloader(httpClient, cfg, downloadDir, log)

	PrintRunHeader("jini download-xlsx", fmt.Sprintf("%s ~ %s → %s", downloadFrom, downloadTo, downloadDir))

	saved, failed, err := downloader.SaveRange(cmd.Context(),
		from.Year(), int(from.Month()), to.Year(), int(to.Month()))
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Files saved  : %d\n", saved)
	fmt.Printf("  Files failed : %d\n", failed)

	PrintCompletion(fmt.Sprintf("%d files downloaded", saved))
	return nil
}
