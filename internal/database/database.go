package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/hxnx/aboutbot/internal/logger"
	_ "github.com/lib/pq"
)

var (
	db   *sql.DB
	once sync.Once
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (cfg *Config) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.DBName, cfg.SSLMode,
	)

	if cfg.Password != "" {
		connStr += fmt.Sprintf(" password=%s", cfg.Password)
	}
	return connStr
}

func Initialize(cfg *Config) error {
	var initError error

	once.Do(func() {
		conn, err := sql.Open("postgres", cfg.ConnectionString())
		if err != nil {
			initError = fmt.Errorf("failed to open database: %w", err)
			return
		}

		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(2)
		conn.SetConnMaxLifetime(5 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := conn.PingContext(ctx); err != nil {
			_ = conn.Close()
			initError = fmt.Errorf("failed to ping database: %w", err)
			return
		}

		if err := runMigrations(ctx, conn); err != nil {
			_ = conn.Close()
			initError = fmt.Errorf("failed to run migrations: %w", err)
			return
		}

		db = conn
		logger.Component("database").Info("connection established")
	})

	return initError
}

var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS command_usage (
		id BIGSERIAL PRIMARY KEY,
		guild_id TEXT NOT NULL DEFAULT '',
		channel_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		command TEXT NOT NULL,
		used_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`,
	`CREATE INDEX IF NOT EXISTS command_usage_command_idx ON command_usage (command);`,
}

func runMigrations(ctx context.Context, conn *sql.DB) error {
	for _, m := range migrations {
		if _, err := conn.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("failed to execute migration: %w\nQuery: %s", err, m)
		}
	}
	logger.Component("database").Info("migrations completed", "count", len(migrations))
	return nil
}

func GetDB() *sql.DB {
	return db
}

func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}
