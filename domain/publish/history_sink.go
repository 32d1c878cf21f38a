package publish

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect names the SQL backend of a HistorySink.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect accepts "sqlite" (default) and "postgres"/"pgx".
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(s) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	}
	return "", fmt.Errorf("unknown history dialect %q", s)
}

// HistorySink appends every published record to a publish_history table,
// tagged with the session ID. Records are buffered and written in one
// transaction per batch on Flush.
type HistorySink struct {
	db        *sql.DB
	pool      *pgxpool.Pool
	dialect   Dialect
	sessionID uuid.UUID
	logger    *slog.Logger
	pending   []Record
}

// OpenHistory connects to dsn and creates the history table if needed. For
// sqlite the DSN is a file path; for postgres a pgx connection string.
func OpenHistory(ctx context.Context, dialect Dialect, dsn string, sessionID uuid.UUID, logger *slog.Logger) (*HistorySink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &HistorySink{dialect: dialect, sessionID: sessionID, logger: logger}
	switch dialect {
	case DialectPostgres:
		pc, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse history dsn: %w", err)
		}
		pc.MaxConns = 2
		pc.ConnConfig.RuntimeParams["application_name"] = "score-ocr"
		pool, err := pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			return nil, fmt.Errorf("connect history db: %w", err)
		}
		s.pool = pool
		s.db = stdlib.OpenDBFromPool(pool)
	default:
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open history db: %w", err)
		}
		// Single writer; avoids SQLITE_BUSY from the pool.
		db.SetMaxOpenConns(1)
		s.db = db
	}
	if err := s.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	logger.Info("publish history ready", "dialect", string(dialect), "session_id", sessionID.String())
	return s, nil
}

func (s *HistorySink) migrate(ctx context.Context) error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	ts := "TEXT"
	if s.dialect == DialectPostgres {
		id = "BIGSERIAL PRIMARY KEY"
		ts = "TIMESTAMPTZ"
	}
	ddl := `CREATE TABLE IF NOT EXISTS publish_history (
	id ` + id + `,
	session_id TEXT NOT NULL,
	slot INTEGER NOT NULL,
	text TEXT NOT NULL,
	status TEXT NOT NULL,
	published_at ` + ts + ` NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create publish_history: %w", err)
	}
	return nil
}

func (s *HistorySink) Publish(_ context.Context, rec Record) error {
	s.pending = append(s.pending, rec)
	return nil
}

// Flush writes the buffered batch. On failure the batch is dropped.
func (s *HistorySink) Flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	batch := s.pending
	s.pending = nil

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, s.insertSQL())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("history prepare: %w", err)
	}
	defer stmt.Close()
	for _, rec := range batch {
		var at any = rec.At.UTC()
		if s.dialect == DialectSQLite {
			at = rec.At.UTC().Format("2006-01-02T15:04:05.000Z07:00")
		}
		if _, err := stmt.ExecContext(ctx, s.sessionID.String(), rec.Slot, rec.Text, rec.Status, at); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("history insert slot %d: %w", rec.Slot, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history commit: %w", err)
	}
	s.logger.Debug("history flushed", "rows", len(batch))
	return nil
}

func (s *HistorySink) insertSQL() string {
	cols := "session_id, slot, text, status, published_at"
	ph := make([]string, 5)
	for i := range ph {
		if s.dialect == DialectPostgres {
			ph[i] = "$" + strconv.Itoa(i+1)
		} else {
			ph[i] = "?"
		}
	}
	return "INSERT INTO publish_history (" + cols + ") VALUES (" + strings.Join(ph, ", ") + ")"
}

// DB exposes the underlying handle (used by tests and tooling).
func (s *HistorySink) DB() *sql.DB { return s.db }

func (s *HistorySink) Close() error {
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}
