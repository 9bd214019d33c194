package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const (
	// DefaultQueryTimeout bounds single statements issued outside a
	// transaction.
	DefaultQueryTimeout = 30 * time.Second
	// LongQueryTimeout bounds one migration file.
	LongQueryTimeout = 5 * time.Minute

	defaultStatementTimeoutMS = 30_000
	maxStatementTimeoutMS     = 3_600_000
	defaultConnMaxIdleTime    = 2 * time.Minute

	// migrationLockID serializes RunMigrations across processes sharing a
	// database.
	migrationLockID = 0x62617365 // "base"
)

//go:embed migrations/*.up.sql
var migrationFS embed.FS

// Migrations returns the embedded schema migrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

// DB is the shared connection pool. Repositories take it by pointer.
type DB struct {
	*sql.DB
}

type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	// StatementTimeoutMS is applied server-side to every pooled connection.
	// Zero selects the 30s default.
	StatementTimeoutMS int
}

func (c Config) statementTimeoutMS() (int, error) {
	switch {
	case c.StatementTimeoutMS == 0:
		return defaultStatementTimeoutMS, nil
	case c.StatementTimeoutMS < 0 || c.StatementTimeoutMS > maxStatementTimeoutMS:
		return 0, fmt.Errorf("statement timeout %dms outside [1, %d]", c.StatementTimeoutMS, maxStatementTimeoutMS)
	default:
		return c.StatementTimeoutMS, nil
	}
}

// New opens and pings the pool described by cfg.
func New(cfg Config) (*DB, error) {
	timeoutMS, err := cfg.statementTimeoutMS()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", withStatementTimeout(cfg.URL, timeoutMS))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	idle := cfg.ConnMaxIdleTime
	if idle <= 0 {
		idle = defaultConnMaxIdleTime
	}
	db.SetConnMaxIdleTime(idle)

	ctx, cancel := withTimeout(context.Background(), DefaultQueryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{db}, nil
}

// withStatementTimeout adds a libpq options parameter setting
// statement_timeout on each new session.
func withStatementTimeout(connURL string, timeoutMS int) string {
	opt := "options=" + url.PathEscape(fmt.Sprintf("-c statement_timeout=%d", timeoutMS))
	if strings.Contains(connURL, "?") {
		return connURL + "&" + opt
	}
	return connURL + "?" + opt
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// RunMigrations applies the *.up.sql files of fsys that are not yet listed in
// schema_migrations, in lexical order, each in its own transaction.
func (db *DB) RunMigrations(ctx context.Context, fsys fs.FS) error {
	logger := slog.Default().With("component", "migrations")

	files, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire migration connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, migrationLockID); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockID)

	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, conn)
	if err != nil {
		return err
	}

	for _, name := range files {
		if applied[name] {
			continue
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		start := time.Now()
		if err := applyMigration(ctx, conn, name, string(body)); err != nil {
			return err
		}
		logger.Info("migration applied", "version", name, "elapsed", time.Since(start).String())
	}
	return nil
}

func appliedVersions(ctx context.Context, conn *sql.Conn) (map[string]bool, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func applyMigration(ctx context.Context, conn *sql.Conn, version, body string) error {
	ctx, cancel := withTimeout(ctx, LongQueryTimeout)
	defer cancel()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SET LOCAL lock_timeout = '10s'`); err != nil {
		return fmt.Errorf("set lock_timeout for %s: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("exec migration %s: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
		return fmt.Errorf("record migration %s: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", version, err)
	}
	return nil
}
