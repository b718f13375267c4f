package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // goqu dialect
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // goqu dialect
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const (
	tableUsers    = "users"
	tableItems    = "items"
	tableBookings = "bookings"
	tableComments = "comments"
	tableRequests = "item_requests"
)

// DB is the SQL implementation of domain.Store.
type DB struct {
	*sqlx.DB
	driver  string
	dialect goqu.DialectWrapper
	logger  *zerolog.Logger
}

var _ domain.Store = (*DB)(nil)

// Open connects to the database selected by cfg.Driver and ensures the schema exists.
func Open(cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return NewDB(cfg.Path, logger)
	case config.DriverPostgres:
		return NewPostgresDB(cfg.Postgres, logger)
	default:
		return nil, fmt.Errorf("unsupported sql driver: %q", cfg.Driver)
	}
}

// NewDB opens a sqlite database at path, creating parent directories as needed.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	inMemory := path == ":memory:" || strings.Contains(path, "mode=memory")
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path
	if !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}

	conn, err := sqlx.Open(config.DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if inMemory {
		// every pooled connection would otherwise see its own empty database
		conn.SetMaxOpenConns(1)
	}

	db, err := newDB(conn, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	logger.Info().Str("driver", config.DriverSQLite).Str("path", path).Msg("Database initialized")
	return db, nil
}

func NewPostgresDB(cfg config.PostgresConfig, logger *zerolog.Logger) (*DB, error) {
	conn, err := sqlx.Open(config.DriverPostgres, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxConnections > 0 {
		conn.SetMaxOpenConns(cfg.MaxConnections)
	}

	db, err := newDB(conn, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	logger.Info().Str("driver", config.DriverPostgres).Str("host", cfg.Host).Str("dbname", cfg.DBName).Msg("Database initialized")
	return db, nil
}

// NewFromSQLX wraps an existing connection without touching the schema.
func NewFromSQLX(conn *sqlx.DB, logger *zerolog.Logger) *DB {
	return &DB{
		DB:      conn,
		driver:  conn.DriverName(),
		dialect: goqu.Dialect(conn.DriverName()),
		logger:  logger,
	}
}

func newDB(conn *sqlx.DB, logger *zerolog.Logger) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := NewFromSQLX(conn, logger)
	if err := db.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return db, nil
}

func (db *DB) Driver() string {
	return db.driver
}

func (db *DB) migrate(ctx context.Context) error {
	for _, query := range schemaFor(db.driver) {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// insert runs an INSERT ... RETURNING id statement written with ? placeholders.
func (db *DB) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := db.QueryRowxContext(ctx, db.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// exec runs a mutation and reports ErrNotFound when it touched no rows.
func (db *DB) exec(ctx context.Context, what string, query string, args ...interface{}) error {
	res, err := db.ExecContext(ctx, db.Rebind(query), args...)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	return nil
}

func (db *DB) selectDataset(ctx context.Context, dest interface{}, ds *goqu.SelectDataset) error {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	db.logger.Debug().Str("query", query).Msg("select")
	return db.SelectContext(ctx, dest, query, args...)
}

func (db *DB) getDataset(ctx context.Context, dest interface{}, ds *goqu.SelectDataset) error {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	db.logger.Debug().Str("query", query).Msg("get")
	return db.GetContext(ctx, dest, query, args...)
}

// mapError translates driver constraint errors into domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		case "23503":
			return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		}
	}

	return err
}

func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %d", domain.ErrNotFound, what, id)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}

// dbTime normalizes timestamps before they reach the database.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
