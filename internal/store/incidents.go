package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/openrelief/fieldsync/internal/models"
)

type SQLiteIncidentStore struct {
	db *sql.DB
}

func NewSQLiteIncidentStore(db *sql.DB) *SQLiteIncidentStore {
	return &SQLiteIncidentStore{db: db}
}

var incidentColumns = map[string]bool{
	"type":          true,
	"severity":      true,
	"description":   true,
	"latitude":      true,
	"longitude":     true,
	"action_status": true,
	"sync_status":   true,
	"updated_at":    true,
}

func (s *SQLiteIncidentStore) Create(ctx context.Context, inc *models.Incident) error {
	if inc.ID == "" {
		inc.ID = uuid.NewString()
	}
	now := models.NowMillis()
	if inc.CreatedAt == 0 {
		inc.CreatedAt = now
	}
	if inc.UpdatedAt == 0 {
		inc.UpdatedAt = now
	}
	if inc.SyncStatus == "" {
		inc.SyncStatus = models.SyncPending
	}
	if inc.ActionStatus == "" {
		inc.ActionStatus = models.IncidentReported
	}

	query := `INSERT INTO incidents (id, owner_id, type, severity, description, latitude, longitude, action_status, sync_status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		inc.ID, inc.OwnerID, inc.Type, inc.Severity, inc.Description,
		inc.Latitude, inc.Longitude, inc.ActionStatus, string(inc.SyncStatus),
		inc.CreatedAt, inc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}

	for i := range inc.Attachments {
		att := &inc.Attachments[i]
		att.RecordID = inc.ID
		att.Index = i
		if att.UploadState == "" {
			att.UploadState = models.UploadLocalOnly
		}
		if att.Quality == "" {
			att.Quality = models.QualityNone
		}
		if err := s.UpdateAttachment(ctx, att); err != nil {
			return err
		}
	}
	return nil
}

const incidentSelect = `SELECT id, owner_id, type, severity, description, latitude, longitude, action_status, sync_status, created_at, updated_at FROM incidents`

func scanIncident(row interface{ Scan(...any) error }) (*models.Incident, error) {
	var inc models.Incident
	var status string
	err := row.Scan(
		&inc.ID, &inc.OwnerID, &inc.Type, &inc.Severity, &inc.Description,
		&inc.Latitude, &inc.Longitude, &inc.ActionStatus, &status,
		&inc.CreatedAt, &inc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inc.SyncStatus = models.SyncStatus(status)
	return &inc, nil
}

func (s *SQLiteIncidentStore) GetByID(ctx context.Context, id string) (*models.Incident, error) {
	inc, err := scanIncident(s.db.QueryRowContext(ctx, incidentSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}
	if inc.Attachments, err = s.Attachments(ctx, inc.ID); err != nil {
		return nil, err
	}
	return inc, nil
}

func (s *SQLiteIncidentStore) ListByStatus(ctx context.Context, statuses ...models.SyncStatus) ([]*models.Incident, error) {
	marks, args := statusPlaceholders(statuses)
	rows, err := s.db.QueryContext(ctx, incidentSelect+` WHERE sync_status IN (`+marks+`) ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var incidents []*models.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incidents: %w", err)
	}

	for _, inc := range incidents {
		if inc.Attachments, err = s.Attachments(ctx, inc.ID); err != nil {
			return nil, err
		}
	}
	return incidents, nil
}

func (s *SQLiteIncidentStore) UpdateStatus(ctx context.Context, ids []string, status models.SyncStatus) error {
	return updateStatus(ctx, s.db, "incidents", ids, status)
}

func (s *SQLiteIncidentStore) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return updateFields(ctx, s.db, "incidents", incidentColumns, id, fields)
}

// ListWithPendingMedia returns incidents owning at least one attachment
// below high_uploaded.
func (s *SQLiteIncidentStore) ListWithPendingMedia(ctx context.Context) ([]*models.Incident, error) {
	query := incidentSelect + ` WHERE id IN (
		SELECT DISTINCT record_id FROM attachments WHERE upload_state != ?
	) ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, query, string(models.UploadHighUploaded))
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents with pending media: %w", err)
	}
	defer rows.Close()

	var incidents []*models.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incidents: %w", err)
	}

	for _, inc := range incidents {
		if inc.Attachments, err = s.Attachments(ctx, inc.ID); err != nil {
			return nil, err
		}
	}
	return incidents, nil
}

func (s *SQLiteIncidentStore) Attachments(ctx context.Context, recordID string) ([]models.Attachment, error) {
	query := `SELECT record_id, idx, local_path, remote_locator, upload_state, quality
	          FROM attachments WHERE record_id = ? ORDER BY idx ASC`
	rows, err := s.db.QueryContext(ctx, query, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	var atts []models.Attachment
	for rows.Next() {
		var att models.Attachment
		var state, quality string
		if err := rows.Scan(&att.RecordID, &att.Index, &att.LocalPath, &att.RemoteLocator, &state, &quality); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		att.UploadState = models.UploadState(state)
		att.Quality = models.MediaQuality(quality)
		atts = append(atts, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachments: %w", err)
	}
	return atts, nil
}

// UpdateAttachment upserts one attachment row keyed (record_id, idx).
func (s *SQLiteIncidentStore) UpdateAttachment(ctx context.Context, att *models.Attachment) error {
	query := `INSERT INTO attachments (record_id, idx, local_path, remote_locator, upload_state, quality)
	          VALUES (?, ?, ?, ?, ?, ?)
	          ON CONFLICT (record_id, idx) DO UPDATE SET
	              local_path = excluded.local_path,
	              remote_locator = excluded.remote_locator,
	              upload_state = excluded.upload_state,
	              quality = excluded.quality`
	_, err := s.db.ExecContext(ctx, query,
		att.RecordID, att.Index, att.LocalPath, att.RemoteLocator,
		string(att.UploadState), string(att.Quality),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert attachment: %w", err)
	}
	return nil
}
