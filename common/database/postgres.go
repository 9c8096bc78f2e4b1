package database

import (
	"database/sql"
	"fmt"

	"seatplan/common/config"

	_ "github.com/lib/pq"
)

// NewPostgresDB 创建PostgreSQL数据库连接
func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 设置连接池参数
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// EnsureSchema 创建 seatplan 所需的表（幂等）
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Close 关闭数据库连接
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS placement_runs (
		run_id         UUID PRIMARY KEY,
		seed           BIGINT NOT NULL,
		total_students INTEGER NOT NULL,
		placed_count   INTEGER NOT NULL,
		unplaced_count INTEGER NOT NULL,
		relaxed_count  INTEGER NOT NULL,
		result         JSONB NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS room_layouts (
		room_name     TEXT PRIMARY KEY,
		door          TEXT NOT NULL DEFAULT 'left',
		layout_config JSONB NOT NULL
	)`,
}
