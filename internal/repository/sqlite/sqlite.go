// Package sqlite implements the repository interfaces on top of SQLite.
//
// modernc.org/sqlite is a pure Go translation of SQLite: no cgo, so the binary
// cross-compiles like any other Go program. The schema lives in migrations/
// and is applied with golang-migrate from files embedded into the binary.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Ly-yang/wechat-editor/internal/repository"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps a sql.DB connection pool and implements every repository
// interface.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

var (
	_ repository.UserRepository       = (*DB)(nil)
	_ repository.ArticleRepository    = (*DB)(nil)
	_ repository.MaterialRepository   = (*DB)(nil)
	_ repository.TemplateRepository   = (*DB)(nil)
	_ repository.SuggestionRepository = (*DB)(nil)
	_ repository.StatsRepository      = (*DB)(nil)
)

// New opens the database at dbPath and migrates it to the latest schema.
//
// dbPath examples:
//   - "data/wechat_editor.db" → file-based database
//   - ":memory:"              → in-memory database, used by tests
//
// Pragmas are passed in the DSN so they apply to every pooled connection,
// not only the first one.
func New(dbPath string) (*DB, error) {
	memory := dbPath == ":memory:"

	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if !memory {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each connection to ":memory:" is its own empty database, so tests must
	// stay on one. A file database allows a few readers next to the writer.
	if memory {
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(4)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if err := runMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return &DB{conn: conn, now: utcNow}, nil
}

// NewFromConn wraps an existing pool without migrating it. Tests use it with
// go-sqlmock.
func NewFromConn(conn *sql.DB) *DB {
	return &DB{conn: conn, now: utcNow}
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func utcNow() time.Time { return time.Now().UTC() }

// runMigrations applies every pending up migration.
//
// The migrate instance is deliberately not closed: closing it closes the
// database driver, and with it the *sql.DB the repositories keep using.
func runMigrations(conn *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// constraintCode returns the extended SQLite result code of a constraint
// violation, or 0 when err is something else.
func constraintCode(err error) int {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return 0
	}
	switch code := sqliteErr.Code(); code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE,
		sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY,
		sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY,
		sqlite3.SQLITE_CONSTRAINT_CHECK,
		sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return code
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func isForeignKeyViolation(err error) bool {
	return constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}

// violatedColumn extracts "email" from "UNIQUE constraint failed: users.email".
func violatedColumn(err error, table string) string {
	msg := err.Error()
	i := strings.Index(msg, table+".")
	if i < 0 {
		return ""
	}
	col := msg[i+len(table)+1:]
	if j := strings.IndexAny(col, " ,)"); j >= 0 {
		col = col[:j]
	}
	return col
}

// checkAffected turns "no row matched" into notFound.
func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
