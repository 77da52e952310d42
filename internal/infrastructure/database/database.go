package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config controls the bot's PostgreSQL connection.
type Config struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	SlowQuery       time.Duration
}

// Connect opens the bot database. A URL style DSN naming a database the
// server does not have yet gets that database created first.
func Connect(ctx context.Context, cfg Config, log zerolog.Logger) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}
	log = log.With().Str("component", "database").Logger()

	created, err := createIfMissing(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("ensure database: %w", err)
	}
	if created != "" {
		log.Info().Str("database", created).Msg("database created")
	}

	if cfg.SlowQuery <= 0 {
		cfg.SlowQuery = time.Second
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(gormWriter{log: log}, gormlogger.Config{
			SlowThreshold:             cfg.SlowQuery,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("retrieve sql db: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// Ping checks that the underlying connection pool can reach the database.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gormWriter sends gorm's slow query and error lines to zerolog.
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Warn().Msgf(format, args...)
}

// AdminDSN returns the DSN of the maintenance database on the same server
// together with the target database name. ok is false for key=value DSNs
// and for DSNs that already point at the maintenance database.
func AdminDSN(dsn string) (admin, name string, ok bool) {
	u, err := url.Parse(dsn)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return "", "", false
	}
	name = strings.TrimPrefix(u.Path, "/")
	if name == "" || name == "postgres" {
		return "", "", false
	}
	adminURL := *u
	adminURL.Path = "/postgres"
	return adminURL.String(), name, true
}

// createIfMissing returns the name of the database it created, or "".
func createIfMissing(ctx context.Context, dsn string) (string, error) {
	admin, name, ok := AdminDSN(dsn)
	if !ok {
		return "", nil
	}

	sqlDB, err := sql.Open("postgres", admin)
	if err != nil {
		return "", err
	}
	defer sqlDB.Close()

	var exists bool
	if err := sqlDB.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists); err != nil {
		return "", err
	}
	if exists {
		return "", nil
	}
	if _, err := sqlDB.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(name)); err != nil {
		return "", err
	}
	return name, nil
}
