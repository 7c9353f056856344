package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrelief/fieldsync/internal/database"
	"github.com/openrelief/fieldsync/internal/models"
)

func newTestStores(t *testing.T) *SQLiteStores {
	t.Helper()
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStores(db)
}

func TestIncidentStore_CreateDefaults(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	inc := &models.Incident{
		Type:     "flood",
		Severity: "high",
		Attachments: []models.Attachment{
			{LocalPath: "/tmp/a.jpg"},
			{LocalPath: "/tmp/b.jpg"},
		},
	}
	inc.OwnerID = "owner-1"

	require.NoError(t, stores.Incidents.Create(ctx, inc))
	assert.NotEmpty(t, inc.ID, "ID should be generated")
	assert.Equal(t, models.SyncPending, inc.SyncStatus)
	assert.NotZero(t, inc.CreatedAt)

	got, err := stores.Incidents.GetByID(ctx, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IncidentReported, got.ActionStatus)
	require.Len(t, got.Attachments, 2)
	assert.Equal(t, models.UploadLocalOnly, got.Attachments[0].UploadState)
	assert.Equal(t, models.QualityNone, got.Attachments[0].Quality)
	assert.Equal(t, 1, got.Attachments[1].Index)
}

func TestIncidentStore_GetByID_NotFound(t *testing.T) {
	stores := newTestStores(t)

	_, err := stores.Incidents.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIncidentStore_ListByStatusAndUpdateStatus(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	a := &models.Incident{Type: "fire", Severity: "low"}
	b := &models.Incident{Type: "flood", Severity: "high"}
	require.NoError(t, stores.Incidents.Create(ctx, a))
	require.NoError(t, stores.Incidents.Create(ctx, b))

	pending, err := stores.Incidents.ListByStatus(ctx, models.SyncPending, models.SyncFailed)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, stores.Incidents.UpdateStatus(ctx, []string{a.ID, b.ID}, models.SyncSynced))

	pending, err = stores.Incidents.ListByStatus(ctx, models.SyncPending, models.SyncFailed)
	require.NoError(t, err)
	assert.Empty(t, pending)

	synced, err := stores.Incidents.ListByStatus(ctx, models.SyncSynced)
	require.NoError(t, err)
	assert.Len(t, synced, 2)
}

func TestUpdateFields_WhitelistAndMissingRow(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	inc := &models.Incident{Type: "fire", Severity: "low"}
	require.NoError(t, stores.Incidents.Create(ctx, inc))

	// Unknown column is refused outright
	err := stores.Incidents.UpdateFields(ctx, inc.ID, map[string]any{"id": "evil"})
	assert.Error(t, err)

	// Missing row surfaces ErrNotFound
	err = stores.Incidents.UpdateFields(ctx, "missing", map[string]any{"action_status": "resolved"})
	assert.ErrorIs(t, err, ErrNotFound)

	// Admin-field update does not touch sync_status or updated_at
	before, err := stores.Incidents.GetByID(ctx, inc.ID)
	require.NoError(t, err)
	require.NoError(t, stores.Incidents.UpdateFields(ctx, inc.ID, map[string]any{"action_status": "resolved"}))
	after, err := stores.Incidents.GetByID(ctx, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, "resolved", after.ActionStatus)
	assert.Equal(t, before.SyncStatus, after.SyncStatus)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestIncidentStore_ListWithPendingMedia(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	done := &models.Incident{Type: "fire", Severity: "low", Attachments: []models.Attachment{
		{LocalPath: "/tmp/a.jpg", UploadState: models.UploadHighUploaded, Quality: models.QualityHigh},
	}}
	partial := &models.Incident{Type: "flood", Severity: "high", Attachments: []models.Attachment{
		{LocalPath: "/tmp/b.jpg", UploadState: models.UploadLowUploaded, Quality: models.QualityLow},
	}}
	bare := &models.Incident{Type: "storm", Severity: "medium"}
	require.NoError(t, stores.Incidents.Create(ctx, done))
	require.NoError(t, stores.Incidents.Create(ctx, partial))
	require.NoError(t, stores.Incidents.Create(ctx, bare))

	pending, err := stores.Incidents.ListWithPendingMedia(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, partial.ID, pending[0].ID)
}

func TestIncidentStore_UpdateAttachmentUpsert(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	inc := &models.Incident{Type: "fire", Severity: "low", Attachments: []models.Attachment{
		{LocalPath: "/tmp/a.jpg"},
	}}
	require.NoError(t, stores.Incidents.Create(ctx, inc))

	att := inc.Attachments[0]
	att.RemoteLocator = "https://obj/bucket/key"
	att.UploadState = models.UploadLowUploaded
	att.Quality = models.QualityLow
	require.NoError(t, stores.Incidents.UpdateAttachment(ctx, &att))

	atts, err := stores.Incidents.Attachments(ctx, inc.ID)
	require.NoError(t, err)
	require.Len(t, atts, 1, "upsert must not duplicate the row")
	assert.Equal(t, models.UploadLowUploaded, atts[0].UploadState)
	assert.Equal(t, "https://obj/bucket/key", atts[0].RemoteLocator)
}

func TestAidRequestStore_RoundTrip(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	req := &models.AidRequest{Category: "water", Quantity: 20, Urgency: "high"}
	req.OwnerID = "owner-1"
	require.NoError(t, stores.AidRequests.Create(ctx, req))
	assert.Equal(t, "requested", req.DeliveryStatus)

	got, err := stores.AidRequests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Quantity)
	assert.Equal(t, models.SyncPending, got.SyncStatus)

	require.NoError(t, stores.AidRequests.UpdateFields(ctx, req.ID, map[string]any{
		"delivery_status": "delivered",
		"approved":        true,
	}))
	got, err = stores.AidRequests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "delivered", got.DeliveryStatus)
	assert.True(t, got.Approved)
}

func TestShelterSiteAndVolunteerStores_RoundTrip(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	site := &models.ShelterSite{Name: "Community Hall", Capacity: 120}
	require.NoError(t, stores.ShelterSites.Create(ctx, site))
	assert.Equal(t, "open", site.Status)

	require.NoError(t, stores.ShelterSites.UpdateFields(ctx, site.ID, map[string]any{"occupancy": 45}))
	gotSite, err := stores.ShelterSites.GetByID(ctx, site.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, gotSite.Occupancy)

	vol := &models.Volunteer{Name: "Sam", Phone: "555-0101", Skills: "first aid"}
	require.NoError(t, stores.Volunteers.Create(ctx, vol))

	require.NoError(t, stores.Volunteers.UpdateFields(ctx, vol.ID, map[string]any{
		"assignment": "north shelter",
		"verified":   true,
	}))
	gotVol, err := stores.Volunteers.GetByID(ctx, vol.ID)
	require.NoError(t, err)
	assert.Equal(t, "north shelter", gotVol.Assignment)
	assert.True(t, gotVol.Verified)
	assert.Equal(t, models.SyncPending, gotVol.SyncStatus, "admin updates never change sync status")
}
