package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/wedding-ledger/db/migrate"
	"github.com/joseph-ayodele/wedding-ledger/internal/common"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ConfigFrom maps the application database section onto the pool settings.
func ConfigFrom(c common.DatabaseConfig) Config {
	return Config{
		DSN:              c.DSN,
		MaxConns:         c.MaxConns,
		MinConns:         c.MinConns,
		MaxConnLifetime:  c.MaxConnLifetime,
		MaxConnIdleTime:  c.MaxConnIdleTime,
		DialTimeout:      c.DialTimeout,
		StatementTimeout: c.StatementTimeout,
	}
}

// Open creates a pgx pool, wraps it for ent's SQL driver, and returns both.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*entsql.Driver, *pgxpool.Pool, error) {
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database dsn", "error", err)
		return nil, nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "wedding-ledger"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, nil, err
	}

	// Wrap pool as *sql.DB for ent
	db := stdlib.OpenDBFromPool(pool)
	drv := entsql.OpenDB(dialect.Postgres, db)

	logger.Info("successfully connected to database")
	return drv, pool, nil
}

// OpenSQLite opens a named in-memory SQLite database. Every open of the same
// name shares one database for as long as the driver stays open.
func OpenSQLite(name string, logger *slog.Logger) (*entsql.Driver, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		logger.Error("failed to open sqlite", "error", err)
		return nil, err
	}
	// one connection keeps the in-memory database alive and serialises writers
	db.SetMaxOpenConns(1)
	return entsql.OpenDB(dialect.SQLite, db), nil
}

// Database is an opened, migrated driver plus whatever must be released with it.
type Database struct {
	Driver *entsql.Driver
	Pool   *pgxpool.Pool
	logger *slog.Logger
}

// InitDatabase opens Postgres (or in-memory SQLite when inMemory is set) and
// creates the schema.
func InitDatabase(ctx context.Context, cfg common.DatabaseConfig, inMemory bool, logger *slog.Logger) (*Database, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Database{logger: logger}
	if inMemory || cfg.InMemory {
		drv, err := OpenSQLite("weddingledger", logger)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "open sqlite", errors.Join(common.ErrDatabase, err))
		}
		d.Driver = drv
		logger.Info("using in-memory sqlite database")
	} else {
		if cfg.DSN == "" {
			return nil, common.NewAppError("CONFIG_ERROR", "DB_URL is required unless running in-memory", common.ErrInvalidInput)
		}
		drv, pool, err := Open(ctx, ConfigFrom(cfg), logger)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "open postgres", errors.Join(common.ErrDatabase, err))
		}
		d.Driver, d.Pool = drv, pool
	}

	if err := migrate.Create(ctx, d.Driver); err != nil {
		d.Close()
		return nil, common.NewAppError("DB_ERROR", "migrate schema", errors.Join(common.ErrDatabase, err))
	}
	logger.Info("database schema ready", "dialect", d.Driver.Dialect())
	return d, nil
}

// Close closes the database connections gracefully.
func (d *Database) Close() {
	if d == nil {
		return
	}
	d.logger.Info("closing database connections")
	if d.Driver != nil {
		if err := d.Driver.Close(); err != nil {
			d.logger.Error("failed to close sql driver", "error", err)
		}
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
	d.logger.Info("database connections closed")
}

// HealthCheck pings the pool when there is one, the plain *sql.DB otherwise.
func (d *Database) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if d == nil || d.Driver == nil {
		return errors.New("database not initialised")
	}
	d.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	var err error
	if d.Pool != nil {
		err = d.Pool.Ping(ctx)
	} else {
		err = d.Driver.DB().PingContext(ctx)
	}
	if err != nil {
		return err
	}
	d.logger.Debug("database ping successful")
	return nil
}

// Store opens a session handle over this database.
func (d *Database) Store() Store {
	return NewStore(d.Driver, d.logger)
}
