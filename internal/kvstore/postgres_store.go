package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/betterlife/internal/telemetry/tracing"
	"github.com/2beens/betterlife/pkg"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv_entry
(
    key        VARCHAR PRIMARY KEY,
    value      BYTEA       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const upsertSQL = `INSERT INTO kv_entry (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at;`

var _ Store = (*PostgresStore)(nil)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// EnsureSchema creates the kv_entry table if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	if pkg.IsUniqueViolationError(err) {
		// another instance created the table at the same time
		log.Debugln("kv_entry table created concurrently")
		return nil
	}
	if err != nil {
		return fmt.Errorf("create kv_entry table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.postgres.get")
	defer func() {
		if errors.Is(err, ErrNotFound) {
			span.End()
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var value []byte
	err = s.db.QueryRow(ctx, `SELECT value FROM kv_entry WHERE key = $1;`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select value: %w", err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.postgres.set")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if _, err := s.db.Exec(ctx, upsertSQL, key, value); err != nil {
		return fmt.Errorf("upsert value: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, keys ...string) (err error) {
	if len(keys) == 0 {
		return nil
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.postgres.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if _, err := s.db.Exec(ctx, `DELETE FROM kv_entry WHERE key = ANY($1);`, keys); err != nil {
		return fmt.Errorf("delete values: %w", err)
	}
	return nil
}

func (s *PostgresStore) Keys(ctx context.Context, pattern string) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.postgres.keys")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := s.db.Query(
		ctx,
		`SELECT key FROM kv_entry WHERE key LIKE $1 ESCAPE '\' ORDER BY key;`,
		likePattern(pattern),
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

func (s *PostgresStore) Apply(ctx context.Context, ops ...Op) (err error) {
	if len(ops) == 0 {
		return nil
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.postgres.apply")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("kvstore apply, rollback: %s", rbErr)
		}
	}()

	for _, op := range ops {
		if err := applyOp(ctx, tx, op); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func applyOp(ctx context.Context, db execer, op Op) error {
	switch op.Kind {
	case OpSet:
		if _, err := db.Exec(ctx, upsertSQL, op.Key, op.Value); err != nil {
			return fmt.Errorf("upsert %s: %w", op.Key, err)
		}
	case OpDelete:
		if _, err := db.Exec(ctx, `DELETE FROM kv_entry WHERE key = $1;`, op.Key); err != nil {
			return fmt.Errorf("delete %s: %w", op.Key, err)
		}
	default:
		return fmt.Errorf("unknown op kind: %d", op.Kind)
	}
	return nil
}

// likePattern turns a '*' glob into a LIKE pattern, escaping LIKE's own wildcards.
func likePattern(glob string) string {
	var sb strings.Builder
	for _, r := range glob {
		switch r {
		case '*':
			sb.WriteRune('%')
		case '%', '_', '\\':
			sb.WriteRune('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
