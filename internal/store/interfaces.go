package store

import (
	"context"
	"errors"

	"github.com/openrelief/fieldsync/internal/models"
)

// ErrNotFound is returned when a record id has no local row.
var ErrNotFound = errors.New("not found")

// Every store error other than ErrNotFound signals local storage
// corruption and is fatal to the enclosing sync call.

type IncidentStore interface {
	Create(ctx context.Context, inc *models.Incident) error
	GetByID(ctx context.Context, id string) (*models.Incident, error)
	ListByStatus(ctx context.Context, statuses ...models.SyncStatus) ([]*models.Incident, error)
	UpdateStatus(ctx context.Context, ids []string, status models.SyncStatus) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error

	// ListWithPendingMedia returns incidents that have at least one
	// attachment not yet at high_uploaded.
	ListWithPendingMedia(ctx context.Context) ([]*models.Incident, error)
	Attachments(ctx context.Context, recordID string) ([]models.Attachment, error)
	UpdateAttachment(ctx context.Context, att *models.Attachment) error
}

type AidRequestStore interface {
	Create(ctx context.Context, req *models.AidRequest) error
	GetByID(ctx context.Context, id string) (*models.AidRequest, error)
	ListByStatus(ctx context.Context, statuses ...models.SyncStatus) ([]*models.AidRequest, error)
	UpdateStatus(ctx context.Context, ids []string, status models.SyncStatus) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
}

type ShelterSiteStore interface {
	Create(ctx context.Context, site *models.ShelterSite) error
	GetByID(ctx context.Context, id string) (*models.ShelterSite, error)
	ListByStatus(ctx context.Context, statuses ...models.SyncStatus) ([]*models.ShelterSite, error)
	UpdateStatus(ctx context.Context, ids []string, status models.SyncStatus) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
}

type VolunteerStore interface {
	Create(ctx context.Context, vol *models.Volunteer) error
	GetByID(ctx context.Context, id string) (*models.Volunteer, error)
	ListByStatus(ctx context.Context, statuses ...models.SyncStatus) ([]*models.Volunteer, error)
	UpdateStatus(ctx context.Context, ids []string, status models.SyncStatus) error
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
}
