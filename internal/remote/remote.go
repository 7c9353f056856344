// Package remote defines the narrow contract against the shared remote
// store and its Postgres adapter. The engine only ever needs three
// operations: an idempotent merge upsert keyed by record id, a query
// scoped to one owner, and a global query for kinds everyone can see.
package remote

import (
	"context"
	"encoding/json"

	"github.com/openrelief/fieldsync/internal/models"
)

// Document is one record as it travels over the wire. Body is the
// entity's JSON shape; the engine never interprets it here.
type Document struct {
	ID      string          `json:"id"`
	Kind    models.Kind     `json:"kind"`
	OwnerID string          `json:"owner_id"`
	Body    json.RawMessage `json:"body"`
}

// Store is the remote side of reconciliation.
//
// Upsert has merge semantics: fields absent from Body are left
// untouched on an existing document, and repeating the same upsert is
// safe. A per-call timeout is applied inside the implementation so one
// stalled call cannot hold up a whole batch.
type Store interface {
	Upsert(ctx context.Context, doc Document) error
	QueryByOwner(ctx context.Context, kind models.Kind, ownerID string) ([]Document, error)
	QueryAll(ctx context.Context, kind models.Kind) ([]Document, error)
}
