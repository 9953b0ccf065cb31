package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Storage backends
	SQLite   SQLiteConfig
	Postgres PostgresConfig
	Store    string // sqlite | postgres

	// External APIs
	Molit MolitConfig

	// Pipeline defaults
	Pipeline PipelineConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// SQLiteConfig holds the local snapshot database configuration.
// 원본 분석 환경의 RealEstate.db에 해당.
type SQLiteConfig struct {
	Path string
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// MolitConfig holds 국토교통부 실거래가 open-API configuration.
type MolitConfig struct {
	ServiceKey  string
	BaseURL     string  // open API
	XlsxBaseURL string  // 조건별 자료제공 (엑셀 다운로드)
	RatePerSec  float64 // API 호출 rate limit
	LawdCodeFile string // 법정동코드 전체자료 (cp949 txt)
}

// PipelineConfig holds the analyzer defaults.
// 상세한 실행별 설정은 analyzer.Config가 들고, 여기는 환경 기본값만.
type PipelineConfig struct {
	UnitConversion float64 // 평↔㎡ 환산 상수
	LeaseRate      float64 // 전월세 환산율
	ResultDir      string  // CSV 결과 디렉터리
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Store: getEnv("STORE", "sqlite"),

		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "data/RealEstate.db"),
		},

		Postgres: PostgresConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Molit: MolitConfig{
			ServiceKey:   getEnv("MOLIT_SERVICE_KEY", ""),
			BaseURL:      getEnv("MOLIT_BASE_URL", "http://openapi.molit.go.kr/OpenAPI_ToolInstallPackage/service/rest/RTMSOBJSvc"),
			XlsxBaseURL:  getEnv("MOLIT_XLSX_BASE_URL", "https://rtmobile.molit.go.kr"),
			RatePerSec:   getEnvAsFloat("MOLIT_RATE_PER_SEC", 5),
			LawdCodeFile: getEnv("MOLIT_LAWD_CODE_FILE", "data/법정동코드 전체자료.txt"),
		},

		Pipeline: PipelineConfig{
			UnitConversion: getEnvAsFloat("UNIT_CONVERSION", 3.30579),
			LeaseRate:      getEnvAsFloat("LEASE_RATE", 6),
			ResultDir:      getEnv("RESULT_DIR", "report/result"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Store {
	case "sqlite":
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE=sqlite")
		}
	case "postgres":
		if c.Postgres.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE=postgres")
		}
	default:
		return fmt.Errorf("STORE must be one of: sqlite, postgres")
	}

	if c.Pipeline.UnitConversion <= 0 {
		return fmt.Errorf("UNIT_CONVERSION must be positive")
	}
	if c.Pipeline.LeaseRate <= 0 {
		return fmt.Errorf("LEASE_RATE must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
