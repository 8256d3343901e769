package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	// Register the "sqlite" and "pgx" database/sql drivers.
	_ "github.com/glebarez/go-sqlite"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Dialect identifies the SQL engine behind a connection.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// driverName returns the database/sql driver registered for the dialect.
func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

// ErrEmptyURL is returned by ParseURL when no storage location is configured.
var ErrEmptyURL = errors.New("database url is empty")

// ParseURL works out which engine a storage URL refers to and returns the
// DSN to hand to its driver.
//
// postgres:// and postgresql:// URLs select PostgreSQL. Anything else is a
// SQLite database: sqlite:///notes.db and sqlite:////var/lib/notes.db are
// accepted as well as bare paths, and sqlite:// on its own means an
// in-memory database.
func ParseURL(raw string) (Dialect, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", ErrEmptyURL
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DialectPostgres, raw, nil
	case strings.HasPrefix(lower, "sqlite:///"):
		return DialectSQLite, raw[len("sqlite:///"):], nil
	case strings.HasPrefix(lower, "sqlite://"):
		rest := raw[len("sqlite://"):]
		if rest == "" {
			rest = ":memory:"
		}
		return DialectSQLite, rest, nil
	default:
		return DialectSQLite, raw, nil
	}
}

// PoolConfig holds connection pool settings. They only apply to PostgreSQL;
// SQLite always uses a single connection.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolConfig returns pool settings suitable for a small service.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Open connects to the database described by rawURL and verifies the
// connection with a ping.
func Open(ctx context.Context, rawURL string, pool PoolConfig, logger *slog.Logger) (*sql.DB, Dialect, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dialect, dsn, err := ParseURL(rawURL)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database connection: %w", err)
	}

	switch dialect {
	case DialectSQLite:
		// SQLite allows a single writer. One shared connection serializes
		// writes and keeps :memory: databases alive for the process lifetime.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	default:
		if pool.MaxOpenConns <= 0 {
			pool = DefaultPoolConfig()
		}
		db.SetMaxOpenConns(pool.MaxOpenConns)
		db.SetMaxIdleConns(pool.MaxIdleConns)
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	if dialect == DialectSQLite {
		for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA foreign_keys = ON"} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, "", fmt.Errorf("failed to configure sqlite: %w", err)
			}
		}
	}

	logger.Info("database connection established", slog.String("dialect", string(dialect)))
	return db, dialect, nil
}

// Rebind rewrites the ? placeholders of query into the form expected by the
// dialect. Queries in this package never contain ? inside string literals.
func Rebind(d Dialect, query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
