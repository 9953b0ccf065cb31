package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/jini/internal/store"
	"github.com/wonny/jini/pkg/config"
	"github.com/wonny/jini/pkg/database"
	"github.com/wonny/jini/pkg/logger"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "스냅샷 테이블 현황",
	Long: `SQLite 스냅샷의 테이블별 행 수를 표시합니다.

수집이 어디까지 쌓였는지, 결과 테이블이 생성됐는지 한눈에 봅니다.

Example:
  go run ./cmd/jini status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== jini Snapshot Status ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Store != "sqlite" {
		return fmt.Errorf("status supports the sqlite backend only (STORE=%s)", cfg.Store)
	}
	log := logger.New(cfg)

	db, err := database.NewSQLite(cfg)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	counts, err := store.NewSQLite(db.DB, log.Component("store")).TableCounts(cmd.Context())
	if err != nil {
		return fmt.Errorf("table counts: %w", err)
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("\n  %s (%d tables)\n\n", cfg.SQLite.Path, len(names))
	for _, name := range names {
		fmt.Printf("  %-40s %10d rows\n", name, counts[name])
	}
	return nil
}
