// Package db opens the relational store (PostgreSQL through lib/pq or an
// embedded SQLite file through modernc.org/sqlite) and owns its schema.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq" // PostgreSQL driver
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"bikebuild/config"
)

// Dialect identifies the SQL flavour behind a connection.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	if d == SQLite {
		return config.DriverSQLite
	}
	return config.DriverPostgres
}

// Rebind rewrites '?' placeholders into the dialect's native form. Queries
// are written with '?' and must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// DB is an open connection pool plus its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to the database described by cfg and verifies the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	var dialect Dialect
	switch cfg.Driver {
	case config.DriverPostgres:
		dialect = Postgres
	case config.DriverSQLite:
		dialect = SQLite
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	conn, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}
	if dialect == SQLite {
		// One writer at a time; callers never nest statements outside their tx.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return &DB{DB: conn, Dialect: dialect}, nil
}

// IsForeignKeyViolation reports whether err was raised by a failed foreign
// key check on either backend.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return true
		}
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "FOREIGN KEY")
	}
	return false
}
