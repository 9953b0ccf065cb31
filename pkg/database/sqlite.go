package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wonny/jini/pkg/config"
)

// SQLiteDB wraps a database/sql handle on the local snapshot file.
// ⭐ SSOT: SQLite 연결은 이 패키지에서만 생성
type SQLiteDB struct {
	DB   *sql.DB
	Path string
}

// NewSQLite opens the local snapshot database (RealEstate.db 상당).
func NewSQLite(cfg *config.Config) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// modernc sqlite는 단일 writer만 허용
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	return &SQLiteDB{DB: db, Path: cfg.SQLite.Path}, nil
}

// Close closes the underlying handle.
func (s *SQLiteDB) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// Ping checks if the database is accessible
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}
