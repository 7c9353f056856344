package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/openrelief/fieldsync/internal/models"
)

type SQLiteVolunteerStore struct {
	db *sql.DB
}

func NewSQLiteVolunteerStore(db *sql.DB) *SQLiteVolunteerStore {
	return &SQLiteVolunteerStore{db: db}
}

var volunteerColumns = map[string]bool{
	"name":        true,
	"phone":       true,
	"skills":      true,
	"assignment":  true,
	"verified":    true,
	"sync_status": true,
	"updated_at":  true,
}

func (s *SQLiteVolunteerStore) Create(ctx context.Context, vol *models.Volunteer) error {
	if vol.ID == "" {
		vol.ID = uuid.NewString()
	}
	now := models.NowMillis()
	if vol.CreatedAt == 0 {
		vol.CreatedAt = now
	}
	if vol.UpdatedAt == 0 {
		vol.UpdatedAt = now
	}
	if vol.SyncStatus == "" {
		vol.SyncStatus = models.SyncPending
	}

	query := `INSERT INTO volunteers (id, owner_id, name, phone, skills, assignment, verified, sync_status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		vol.ID, vol.OwnerID, vol.Name, vol.Phone, vol.Skills,
		vol.Assignment, vol.Verified, string(vol.SyncStatus),
		vol.CreatedAt, vol.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create volunteer: %w", err)
	}
	return nil
}

const volunteerSelect = `SELECT id, owner_id, name, phone, skills, assignment, verified, sync_status, created_at, updated_at FROM volunteers`

func scanVolunteer(row interface{ Scan(...any) error }) (*models.Volunteer, error) {
	var vol models.Volunteer
	var status string
	err := row.Scan(
		&vol.ID, &vol.OwnerID, &vol.Name, &vol.Phone, &vol.Skills,
		&vol.Assignment, &vol.Verified, &status,
		&vol.CreatedAt, &vol.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	vol.SyncStatus = models.SyncStatus(status)
	return &vol, nil
}

func (s *SQLiteVolunteerStore) GetByID(ctx context.Context, id string) (*models.Volunteer, error) {
	vol, err := scanVolunteer(s.db.QueryRowContext(ctx, volunteerSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get volunteer: %w", err)
	}
	return vol, nil
}

func (s *SQLiteVolunteerStore) ListByStatus(ctx context.Context, statuses ...models.SyncStatus) ([]*models.Volunteer, error) {
	marks, args := statusPlaceholders(statuses)
	rows, err := s.db.QueryContext(ctx, volunteerSelect+` WHERE sync_status IN (`+marks+`) ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query volunteers: %w", err)
	}
	defer rows.Close()

	var vols []*models.Volunteer
	for rows.Next() {
		vol, err := scanVolunteer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan volunteer: %w", err)
		}
		vols = append(vols, vol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating volunteers: %w", err)
	}
	return vols, nil
}

func (s *SQLiteVolunteerStore) UpdateStatus(ctx context.Context, ids []string, status models.SyncStatus) error {
	return updateStatus(ctx, s.db, "volunteers", ids, status)
}

func (s *SQLiteVolunteerStore) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return updateFields(ctx, s.db, "volunteers", volunteerColumns, id, fields)
}
