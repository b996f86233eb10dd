package connkit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/fernandezvara/connkit/hooks"
)

// DB wraps bun.DB with the configuration it was resolved from
type DB struct {
	*bun.DB
	config   Config
	resolved ClientConfig
}

// Open resolves the configuration and creates a database connection.
//
// Resolution runs in order: build the client config (parsing and merging
// overrides), dispatch the connection-type transformer, then hand the final
// connection to the driver. Raw connection strings that were never merged
// reach the driver verbatim. A transformed connection carrying a dial
// function is opened through pgx so the managed stream is used; everything
// else goes through the Bun pgdriver connector.
func Open(ctx context.Context, cfg Config, ov *Overrides) (*DB, error) {
	// Apply defaults for zero values
	cfg.applyDefaults()

	if cfg.Connection.IsZero() {
		return nil, &Error{
			Code:    CodeConnectionFailed,
			Message: "database connection configuration is required",
			Op:      "Open",
		}
	}

	resolved, err := BuildClientConfig(cfg, ov)
	if err != nil {
		return nil, err
	}

	// Transformer dispatch happens here, immediately before driver handoff.
	conn, err := cfg.Transformers.Apply(ctx, resolved.Connection)
	if err != nil {
		return nil, err
	}
	resolved.Connection = conn

	sqlDB, err := openSQL(cfg, resolved)
	if err != nil {
		return nil, err
	}

	// Configure pool, per-call overrides winning over config defaults
	pool := resolved.Pool
	if pool == nil {
		pool = &PoolConfig{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		}
	}
	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)

	bunDB := bun.NewDB(sqlDB, pgdialect.New())

	db := &DB{
		DB:       bunDB,
		config:   cfg,
		resolved: resolved,
	}

	// Add observability hooks. Debug on the resolved config forces query
	// logging even when the source config left it off.
	logQueries := cfg.LogQueries || resolved.Debug
	if cfg.Logger != nil && (logQueries || cfg.LogSlowQueries > 0) {
		bunDB.AddQueryHook(hooks.NewLoggerHook(cfg.Logger, logQueries, cfg.LogSlowQueries))
	}
	if cfg.MetricsRegistry != nil {
		hook, err := hooks.NewMetricsHook(cfg.MetricsRegistry)
		if err != nil {
			return nil, fmt.Errorf("connkit: failed to create metrics hook: %w", err)
		}
		bunDB.AddQueryHook(hook)
	}
	if cfg.Tracer != nil {
		bunDB.AddQueryHook(hooks.NewTracingHook(cfg.Tracer))
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	if err := bunDB.PingContext(pingCtx); err != nil {
		_ = bunDB.Close()
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return nil, wrapPgError(pgErr, "Open")
		}
		return nil, &Error{
			Code:    CodeConnectionFailed,
			Message: "failed to connect to database",
			Op:      "Open",
			Cause:   err,
		}
	}

	return db, nil
}

// openSQL creates the sql.DB for a resolved connection.
func openSQL(cfg Config, resolved ClientConfig) (*sql.DB, error) {
	conn := resolved.Connection

	if conn.DialFunc != nil {
		pgxCfg, err := pgx.ParseConfig(conn.URL())
		if err != nil {
			return nil, &Error{
				Code:    CodeMalformedConnectionString,
				Message: "transformed connection does not render to a valid URL",
				Op:      "Open",
				Cause:   err,
			}
		}

		pgxCfg.DialFunc = conn.DialFunc
		pgxCfg.ConnectTimeout = cfg.DialTimeout
		// The managed stream is already encrypted; driver-level TLS would
		// double-wrap it.
		pgxCfg.TLSConfig = nil
		pgxCfg.Fallbacks = nil
		if len(resolved.SearchPath) > 0 {
			pgxCfg.RuntimeParams["search_path"] = strings.Join(resolved.SearchPath, ",")
		}

		return stdlib.OpenDB(*pgxCfg), nil
	}

	opts := []pgdriver.Option{
		pgdriver.WithDSN(conn.URL()),
		pgdriver.WithDialTimeout(cfg.DialTimeout),
		pgdriver.WithReadTimeout(cfg.ReadTimeout),
		pgdriver.WithWriteTimeout(cfg.WriteTimeout),
	}
	if len(resolved.SearchPath) > 0 {
		opts = append(opts, pgdriver.WithConnParams(map[string]interface{}{
			"search_path": strings.Join(resolved.SearchPath, ","),
		}))
	}

	return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Ping verifies the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return wrapError(err, "Ping")
	}
	return nil
}

// Stats returns connection pool statistics
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// Bun returns the underlying bun.DB for direct access
func (db *DB) Bun() *bun.DB {
	return db.DB
}

// Config returns the source configuration
func (db *DB) Config() Config {
	return db.config
}

// Resolved returns the client config this connection was opened with,
// after override merging and transformer dispatch
func (db *DB) Resolved() ClientConfig {
	return db.resolved
}
