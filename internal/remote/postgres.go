package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openrelief/fieldsync/internal/models"
)

const DefaultCallTimeout = 10 * time.Second

// PostgresStore keeps the shared copy of field records in one jsonb
// table. The merge upsert leans on jsonb concatenation: fields absent
// from the new body stay untouched, with no read-modify-write round
// trip.
type PostgresStore struct {
	pool        *pgxpool.Pool
	callTimeout time.Duration
}

func NewPostgresStore(pool *pgxpool.Pool, callTimeout time.Duration) *PostgresStore {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &PostgresStore{pool: pool, callTimeout: callTimeout}
}

// EnsureSchema creates the shared records table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	query := `CREATE TABLE IF NOT EXISTS field_records (
	              id TEXT PRIMARY KEY,
	              kind TEXT NOT NULL,
	              owner_id TEXT NOT NULL,
	              doc JSONB NOT NULL,
	              updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	          );
	          CREATE INDEX IF NOT EXISTS idx_field_records_kind_owner ON field_records (kind, owner_id)`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure remote schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, doc Document) error {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	query := `INSERT INTO field_records (id, kind, owner_id, doc)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (id) DO UPDATE SET
	              doc = field_records.doc || EXCLUDED.doc,
	              updated_at = now()`
	if _, err := s.pool.Exec(ctx, query, doc.ID, string(doc.Kind), doc.OwnerID, doc.Body); err != nil {
		return fmt.Errorf("failed to upsert %s %s: %w", doc.Kind, doc.ID, err)
	}
	return nil
}

func (s *PostgresStore) QueryByOwner(ctx context.Context, kind models.Kind, ownerID string) ([]Document, error) {
	query := `SELECT id, kind, owner_id, doc FROM field_records WHERE kind = $1 AND owner_id = $2`
	return s.query(ctx, query, string(kind), ownerID)
}

func (s *PostgresStore) QueryAll(ctx context.Context, kind models.Kind) ([]Document, error) {
	query := `SELECT id, kind, owner_id, doc FROM field_records WHERE kind = $1`
	return s.query(ctx, query, string(kind))
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query remote records: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var kind string
		var body []byte
		if err := rows.Scan(&doc.ID, &kind, &doc.OwnerID, &body); err != nil {
			return nil, fmt.Errorf("failed to scan remote record: %w", err)
		}
		doc.Kind = models.Kind(kind)
		doc.Body = json.RawMessage(body)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating remote records: %w", err)
	}
	return docs, nil
}
