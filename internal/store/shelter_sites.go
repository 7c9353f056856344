package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/openrelief/fieldsync/internal/models"
)

type SQLiteShelterSiteStore struct {
	db *sql.DB
}

func NewSQLiteShelterSiteStore(db *sql.DB) *SQLiteShelterSiteStore {
	return &SQLiteShelterSiteStore{db: db}
}

var shelterSiteColumns = map[string]bool{
	"name":        true,
	"address":     true,
	"latitude":    true,
	"longitude":   true,
	"capacity":    true,
	"occupancy":   true,
	"status":      true,
	"sync_status": true,
	"updated_at":  true,
}

func (s *SQLiteShelterSiteStore) Create(ctx context.Context, site *models.ShelterSite) error {
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	now := models.NowMillis()
	if site.CreatedAt == 0 {
		site.CreatedAt = now
	}
	if site.UpdatedAt == 0 {
		site.UpdatedAt = now
	}
	if site.SyncStatus == "" {
		site.SyncStatus = models.SyncPending
	}
	if site.Status == "" {
		site.Status = "open"
	}

	query := `INSERT INTO shelter_sites (id, owner_id, name, address, latitude, longitude, capacity, occupancy, status, sync_status, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		site.ID, site.OwnerID, site.Name, site.Address, site.Latitude, site.Longitude,
		site.Capacity, site.Occupancy, site.Status, string(site.SyncStatus),
		site.CreatedAt, site.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create shelter site: %w", err)
	}
	return nil
}

const shelterSiteSelect = `SELECT id, owner_id, name, address, latitude, longitude, capacity, occupancy, status, sync_status, created_at, updated_at FROM shelter_sites`

func scanShelterSite(row interface{ Scan(...any) error }) (*models.ShelterSite, error) {
	var site models.ShelterSite
	var status string
	err := row.Scan(
		&site.ID, &site.OwnerID, &site.Name, &site.Address, &site.Latitude, &site.Longitude,
		&site.Capacity, &site.Occupancy, &site.Status, &status,
		&site.CreatedAt, &site.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	site.SyncStatus = models.SyncStatus(status)
	return &site, nil
}

func (s *SQLiteShelterSiteStore) GetByID(ctx context.Context, id string) (*models.ShelterSite, error) {
	site, err := scanShelterSite(s.db.QueryRowContext(ctx, shelterSiteSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shelter site: %w", err)
	}
	return site, nil
}

func (s *SQLiteShelterSiteStore) ListByStatus(ctx context.Context, statuses ...models.SyncStatus) ([]*models.ShelterSite, error) {
	marks, args := statusPlaceholders(statuses)
	rows, err := s.db.QueryContext(ctx, shelterSiteSelect+` WHERE sync_status IN (`+marks+`) ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shelter sites: %w", err)
	}
	defer rows.Close()

	var sites []*models.ShelterSite
	for rows.Next() {
		site, err := scanShelterSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shelter site: %w", err)
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shelter sites: %w", err)
	}
	return sites, nil
}

func (s *SQLiteShelterSiteStore) UpdateStatus(ctx context.Context, ids []string, status models.SyncStatus) error {
	return updateStatus(ctx, s.db, "shelter_sites", ids, status)
}

func (s *SQLiteShelterSiteStore) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	return updateFields(ctx, s.db, "shelter_sites", shelterSiteColumns, id, fields)
}
