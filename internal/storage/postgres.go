package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/iglide21/BabyBuddy-sub001/internal"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

// OpenPostgresPool connects to dsn and verifies the connection.
func OpenPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Minute * 30
	poolConfig.MaxConnIdleTime = time.Minute * 5
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// MigratePostgres applies (or with down, reverts) every embedded migration.
func MigratePostgres(pool *pgxpool.Pool, down bool) error {
	src, err := iofs.New(postgresMigrations, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	// The migrate driver closes its *sql.DB, so it gets its own handle on the pool.
	driver, err := migratepgx.WithInstance(stdlib.OpenDBFromPool(pool), &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("creating migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// NewPostgresStorage connects, migrates and returns a Store backed by the pool.
func NewPostgresStorage(ctx context.Context, dsn string, logger internal.Logger) (*SQLStore, error) {
	pool, err := OpenPostgresPool(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if err := MigratePostgres(pool, false); err != nil {
		logger.Errorf("failed to migrate postgres: %v", err)
		pool.Close()
		return nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	s := newSQLStore(db, postgresDialect, NewTxUnitOfWork(db), logger)
	s.close = func() error {
		err := db.Close()
		pool.Close()
		return err
	}
	logger.Infof("storage: postgres ready")
	return s, nil
}
