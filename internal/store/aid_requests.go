package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/openrelief/fieldsync/internal/models"
)

type SQLiteAidRequestStore struct {
	db *sql.DB
}

func NewSQLiteAidRequestStore(db *sql.DB) *SQLiteAidRequestStore {
	return &SQLiteAidRequestStore{db: db}
}

var aidRequestColumns = map[string]bool{
	"category":        true,
	"quantity":        true,
	"urgency":         true,
	"notes":           true,
	"delivery_status": true,
	"approved":        true,
	"sync_status":     true,
	"updated_at":      true,
}

func (s *SQLiteAidRequestStore) Create(ctx context.Context, req *models.AidRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := models.NowMillis()
	if req.CreatedAt == 0 {
		req.CreatedAt = now
	}
	if req.UpdatedAt == 0 {
		req.UpdatedAt = now
	}
	if req.SyncStatus == "" {
		req.SyncStatus = models.SyncPending
	}
	if req.DeliveryStatus == "" {
		req.DeliveryStatus = "requested"
	}

	query := `INSERT INTO aid_requests (id, owner_id, category, quantity, urgency, notes, delivery_status, approved, sync_status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		req.ID, req.OwnerID, req.Category, req.Quantity, req.Urgency, req.Notes,
		req.DeliveryStatus, req.Approved, string(req.SyncStatus),
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create aid request: %w", err)
	}
	return nil
}

const aidRequestSelect = `SELECT id, owner_id, category, quantity, urgency, notes, delivery_status, approved, sync_status, created_at, updated_at FROM aid_requests`

func scanAidRequest(row interface{ Scan(...any) error }) (*models.AidRequest, error) {
	var req models.AidRequest
	var status string
	err := row.Scan(
		&req.ID, &req.OwnerID, &req.Category, &req.Quantity, &req.Urgency, &req.Notes,
		&req.DeliveryStatus, &req.Approved, &status,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.SyncStatus = models.SyncStatus(status)
	return &req, nil
}

func (s *SQLiteAidRequestStore) GetByID(ctx context.Context, id string) (*models.AidRequest, error) {
	req, err := scanAidRequest(s.db.QueryRowContext(ctx, aidRequestSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get aid request: %w", err)
	}
	return req, nil
}

func (s *SQLiteAidRequestStore) ListByStatus(ctx context.Context, statuses ...models.SyncStatus) ([]*models.AidRequest, error) {
	marks, args := statusPlaceholders(statuses)
	rows, err := s.db.QueryContext(ctx, aidRequestSelect+` WHERE sync_status IN (`+marks+`) ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query aid requests: %w", err)
	}
	defer rows.Close()

	var reqs []*models.AidRequest
	for rows.Next() {
		req, err := scanAidRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan aid request: %w", err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aid requests: %w", err)
	}
	return reqs, nil
}

func (s *SQLiteAidRequestStore) UpdateStatus(ctx context.Context, ids []string, status models.SyncStatus) error {
	return updateStatus(ctx, s.db, "aid_requests", ids, status)
}

func (s *SQLiteAidRequestStore) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return updateFields(ctx, s.db, "aid_requests", aidRequestColumns, id, fields)
}
