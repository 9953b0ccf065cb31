package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/jini/pkg/config"
	"github.com/wonny/jini/pkg/logger"
)

// testLoggerCmd represents the test-logger command
var testLoggerCmd = &cobra.Command{
	Use:   "test-logger",
	Short: "Logger 기능 테스트",
	Long: `구조화된 로깅 기능을 테스트합니다.

이 명령어는:
- JSON/Console 포맷 테스트
- 구조화된 필드 로깅
- 에러 컨텍스트 로깅

Example:
  go run ./cmd/jini test-logger`,
	RunE: runTestLogger,
}

func init() {
	rootCmd.AddCommand(testLoggerCmd)
}

func runTestLogger(cmd *cobra.Command, args []string) error {
	fmt.Println("=== jini Logger Test ===")

	fmt.Println("1. JSON Format (Production)")
	fmt.Println("--------------------------------")
	log := logger.New(&config.Config{Env: "production", LogLevel: "info", LogFormat: "json"})
	log.Info("JSON format log")
	log.WithField("table", "apt_raw").Info("Structured field")
	fmt.Println()

	fmt.Println("2. Console Format (Development)")
	fmt.Println("--------------------------------")
	log = logger.New(&config.Config{Env: "development", LogLevel: "debug", LogFormat: "console"})
	log.Debug("Console format log")
	log.Warn("Warning level")
	fmt.Println()

	fmt.Println("3. Structured Logging with Fields")
	fmt.Println("--------------------------------")
	log.WithFields(map[string]interface{}{
		"property_type": "apt",
		"kind":          "sale",
		"rows":          12345,
	}).Info("Pipeline run")
	fmt.Println()

	fmt.Println("4. Error Logging")
	fmt.Println("--------------------------------")
	log.WithError(errors.New("connection refused")).Error("Collection failed")
	fmt.Println()

	fmt.Println("✅ All logger tests completed!")
	return nil
}
