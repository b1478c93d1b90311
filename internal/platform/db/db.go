package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver names registered with database/sql.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Dialect adapts queries written with ? placeholders to the target database.
type Dialect string

func (d Dialect) Driver() string { return string(d) }

// Rebind rewrites ? placeholders as $1, $2, ... for Postgres.
// Queries must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Placeholders returns n comma-separated ? placeholders for an IN list.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// DB is a connection pool together with its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to Postgres (driver "pgx") or SQLite (driver "sqlite") and verifies the connection.
func Open(driver, databaseURL string) (*DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("openDB: unsupported driver %q", driver)
	}

	conn, err := sql.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("openDB: open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// SQLite allows one writer; a single connection also keeps :memory: databases alive.
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(10)
		conn.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("openDB: verify %s connection: %w", driver, err)
	}

	if driver == DriverSQLite {
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("openDB: enable sqlite foreign keys: %w", err)
		}
	}

	return &DB{DB: conn, Dialect: Dialect(driver)}, nil
}

// Rebind is shorthand for d.Dialect.Rebind.
func (d *DB) Rebind(query string) string { return d.Dialect.Rebind(query) }
