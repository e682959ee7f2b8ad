// Package migrate creates entity tables in a database and keeps a ledger of
// schema sync runs.
package migrate

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/conduit-lang/entitymeta/internal/orm/codegen"
)

// Target is a resolved database URL
type Target struct {
	Driver  string
	DSN     string
	Dialect codegen.Dialect
}

// ParseURL resolves the driver for a database URL. postgres:// and
// postgresql:// use pgx; sqlite://, file: and *.db paths use sqlite3.
func ParseURL(url string) (Target, error) {
	switch {
	case url == "":
		return Target{}, fmt.Errorf("database URL is empty (set database.url or DATABASE_URL)")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return Target{Driver: "pgx", DSN: url, Dialect: codegen.Postgres}, nil
	case strings.HasPrefix(url, "sqlite://"):
		return Target{Driver: "sqlite3", DSN: strings.TrimPrefix(url, "sqlite://"), Dialect: codegen.SQLite}, nil
	case strings.HasPrefix(url, "file:"), strings.HasSuffix(url, ".db"), strings.HasSuffix(url, ".sqlite"):
		return Target{Driver: "sqlite3", DSN: url, Dialect: codegen.SQLite}, nil
	}
	return Target{}, fmt.Errorf("unsupported database URL %q", url)
}

// Open opens and pings the database behind a URL
func Open(url string) (*sql.DB, codegen.Dialect, error) {
	target, err := ParseURL(url)
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(target.Driver, target.DSN)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, target.Dialect, nil
}
