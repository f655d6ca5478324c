package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/2beens/betterlife/internal/telemetry/tracing"
)

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS kv_entry
(
    key        TEXT PRIMARY KEY,
    value      BLOB     NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const sqliteUpsertSQL = `INSERT INTO kv_entry (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps the whole store in a single SQLite file. Meant for
// single instance deployments and local development.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath. ":memory:" gives a
// throwaway database.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer; also keeps ":memory:" to a single database
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv_entry table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.sqlite.get")
	defer func() {
		if errors.Is(err, ErrNotFound) {
			span.End()
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var value []byte
	err = s.db.QueryRowContext(ctx, `SELECT value FROM kv_entry WHERE key = ?;`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select value: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.sqlite.set")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if _, err := s.db.ExecContext(ctx, sqliteUpsertSQL, key, value); err != nil {
		return fmt.Errorf("upsert value: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, keys ...string) (err error) {
	if len(keys) == 0 {
		return nil
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.sqlite.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entry WHERE key IN (`+placeholders+`);`, args...); err != nil {
		return fmt.Errorf("delete values: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Keys(ctx context.Context, pattern string) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.sqlite.keys")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	// GLOB, unlike LIKE, is case sensitive
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT key FROM kv_entry WHERE key GLOB ? ORDER BY key;`,
		globPattern(pattern),
	)
	if err != nil {
		return nil, fmt.Errorf("select keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *SQLiteStore) Apply(ctx context.Context, ops ...Op) (err error) {
	if len(ops) == 0 {
		return nil
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.sqlite.apply")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("kvstore sqlite apply, rollback: %s", rbErr)
		}
	}()

	for _, op := range ops {
		switch op.Kind {
		case OpSet:
			if _, err := tx.ExecContext(ctx, sqliteUpsertSQL, op.Key, op.Value); err != nil {
				return fmt.Errorf("upsert %s: %w", op.Key, err)
			}
		case OpDelete:
			if _, err := tx.ExecContext(ctx, `DELETE FROM kv_entry WHERE key = ?;`, op.Key); err != nil {
				return fmt.Errorf("delete %s: %w", op.Key, err)
			}
		default:
			return fmt.Errorf("unknown op kind: %d", op.Kind)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// globPattern keeps '*' as the only wildcard, the other GLOB metacharacters
// are bracketed into literals.
func globPattern(pattern string) string {
	var sb strings.Builder
	for _, r := range pattern {
		switch r {
		case '?':
			sb.WriteString("[?]")
		case '[':
			sb.WriteString("[[]")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
