package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jini",
	Short: "jini - 부동산 실거래 불평등 통계 파이프라인",
	Long: `jini Unified CLI

국토교통부 실거래가를 수집하고 지역·기간별 지니계수 통계를 계산합니다.
수집 → 정규화 → 중복 제거 → 지역 결합 → (이상치 제거) → 집계 순으로 흐릅니다.

Usage:
  go run ./cmd/jini [command]

Examples:
  go run ./cmd/jini analyze apt sale
  go run ./cmd/jini collect apt sale --from 201501 --to 201512
  go run ./cmd/jini api
  go run ./cmd/jini scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
