package commands

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/jini/pkg/config"
	"github.com/wonny/jini/pkg/database"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "스토리지 연결 테스트",
	Long: `설정된 스토리지 백엔드 연결을 테스트합니다.

이 명령어는:
- config에서 STORE 백엔드 로드
- 연결 생성 및 Ping 테스트

Example:
  go run ./cmd/jini test-db
  STORE=postgres go run ./cmd/jini test-db`,
	RunE: runTestDB,
}

func init() {
	rootCmd.AddCommand(testDBCmd)
}

func runTestDB(cmd *cobra.Command, args []string) error {
	fmt.Println("=== jini Storage Connection Test ===")

	fmt.Println("Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	fmt.Printf("✅ Config loaded (ENV: %s, STORE: %s)\n", cfg.Env, cfg.Store)

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	switch cfg.Store {
	case "sqlite":
		fmt.Printf("   Path: %s\n\n", cfg.SQLite.Path)
		db, err := database.NewSQLite(cfg)
		if err != nil {
			return fmt.Errorf("❌ Failed to open sqlite: %w", err)
		}
		defer db.Close()

		if err := db.Ping(ctx); err != nil {
			return fmt.Errorf("❌ Failed to ping sqlite: %w", err)
		}

	case "postgres":
		fmt.Printf("   Database URL: %s\n\n", maskPassword(cfg.Postgres.URL))
		db, err := database.NewPostgres(cfg)
		if err != nil {
			return fmt.Errorf("❌ Failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.Ping(ctx); err != nil {
			return fmt.Errorf("❌ Failed to ping database: %w", err)
		}

	default:
		return fmt.Errorf("❌ Unknown store backend %q", cfg.Store)
	}

	fmt.Println("✅ Ping successful")
	return nil
}

// maskPassword hides the credential part of a connection URL.
func maskPassword(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.User == nil {
		return rawURL
	}
	if _, has := parsed.User.Password(); has {
		masked := url.UserPassword(parsed.User.Username(), "****")
		return strings.Replace(rawURL, parsed.User.String(), masked.String(), 1)
	}
	return rawURL
}
