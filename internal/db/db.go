package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

//go:embed schema_sqlite.sql schema_postgres.sql
var schemaFS embed.FS

func ParseDialect(name string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(name))) {
	case DialectSQLite:
		return DialectSQLite, nil
	case DialectPostgres, "pgx", "postgresql":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", name)
	}
}

// Open connects to the store and applies the schema for the dialect. For
// SQLite, dsn is a file path or ":memory:".
func Open(dialect Dialect, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("db dsn is required")
	}

	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case DialectSQLite:
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err == nil && isMemoryPath(dsn) {
			// Every connection to :memory: is a separate database.
			db.SetMaxOpenConns(1)
		}
	case DialectPostgres:
		db, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		return nil, err
	}

	if err := applySchema(context.Background(), db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func applySchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	schemaSQL, err := schemaFS.ReadFile(fmt.Sprintf("schema_%s.sql", dialect))
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	if dialect == DialectPostgres {
		if err := ensureOptionalTaskDescription(ctx, db); err != nil {
			return err
		}
	}

	return nil
}

// ensureOptionalTaskDescription relaxes tasks.description_task on databases
// created with the column declared NOT NULL.
func ensureOptionalTaskDescription(ctx context.Context, db *sql.DB) error {
	var nullable string
	err := db.QueryRowContext(ctx, `SELECT is_nullable FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = 'tasks' AND column_name = 'description_task'`).Scan(&nullable)
	if err != nil {
		return fmt.Errorf("check tasks.description_task column: %w", err)
	}
	if nullable == "YES" {
		return nil
	}

	if _, err := db.ExecContext(ctx, "ALTER TABLE tasks ALTER COLUMN description_task DROP NOT NULL"); err != nil {
		return fmt.Errorf("relax tasks.description_task: %w", err)
	}
	return nil
}
