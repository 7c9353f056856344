package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/openrelief/fieldsync/internal/models"
	"github.com/openrelief/fieldsync/internal/remote"
	"github.com/openrelief/fieldsync/internal/store"
)

// pushItem is one push-eligible record, already encoded for the wire.
type pushItem struct {
	id  string
	doc remote.Document
}

// entityAdapter bridges one entity kind between the local record store
// and the remote document shape. Pull merging happens here: only
// administratively-controlled fields ever flow remote→local for a
// record that already exists, and sync status is never touched by it.
type entityAdapter interface {
	kind() models.Kind
	listPushable(ctx context.Context) ([]pushItem, error)
	markStatus(ctx context.Context, ids []string, status models.SyncStatus) error
	fetchRemote(ctx context.Context, rs remote.Store, ownerID string) ([]remote.Document, error)
	// applyRemote inserts an unknown record as synced, or overwrites
	// changed admin fields on a known one. The bool reports whether
	// anything was written. Errors are local-storage faults; a
	// malformed body is logged and skipped.
	applyRemote(ctx context.Context, doc remote.Document) (bool, error)
}

func encodeBody(v any) (json.RawMessage, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record body: %w", err)
	}
	return body, nil
}

// --- incidents ---

type incidentAdapter struct {
	store  store.IncidentStore
	logger *zap.Logger
}

func (a *incidentAdapter) kind() models.Kind { return models.KindIncident }

func (a *incidentAdapter) listPushable(ctx context.Context) ([]pushItem, error) {
	records, err := a.store.ListByStatus(ctx, models.SyncPending, models.SyncFailed)
	if err != nil {
		return nil, err
	}
	items := make([]pushItem, 0, len(records))
	for _, rec := range records {
		body, err := encodeBody(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, pushItem{id: rec.ID, doc: remote.Document{
			ID: rec.ID, Kind: models.KindIncident, OwnerID: rec.OwnerID, Body: body,
		}})
	}
	return items, nil
}

func (a *incidentAdapter) markStatus(ctx context.Context, ids []string, status models.SyncStatus) error {
	return a.store.UpdateStatus(ctx, ids, status)
}

func (a *incidentAdapter) fetchRemote(ctx context.Context, rs remote.Store, ownerID string) ([]remote.Document, error) {
	return rs.QueryByOwner(ctx, models.KindIncident, ownerID)
}

func (a *incidentAdapter) applyRemote(ctx context.Context, doc remote.Document) (bool, error) {
	var in models.Incident
	if err := json.Unmarshal(doc.Body, &in); err != nil {
		a.logger.Warn("skipping malformed remote incident", zap.String("id", doc.ID), zap.Error(err))
		return false, nil
	}
	in.ID = doc.ID
	in.OwnerID = doc.OwnerID

	local, err := a.store.GetByID(ctx, doc.ID)
	if errors.Is(err, store.ErrNotFound) {
		in.SyncStatus = models.SyncSynced
		return true, a.store.Create(ctx, &in)
	}
	if err != nil {
		return false, err
	}

	if local.ActionStatus == in.ActionStatus {
		return false, nil
	}
	return true, a.store.UpdateFields(ctx, doc.ID, map[string]any{
		"action_status": in.ActionStatus,
	})
}

// --- aid requests ---

type aidRequestAdapter struct {
	store  store.AidRequestStore
	logger *zap.Logger
}

func (a *aidRequestAdapter) kind() models.Kind { return models.KindAidRequest }

func (a *aidRequestAdapter) listPushable(ctx context.Context) ([]pushItem, error) {
	records, err := a.store.ListByStatus(ctx, models.SyncPending, models.SyncFailed)
	if err != nil {
		return nil, err
	}
	items := make([]pushItem, 0, len(records))
	for _, rec := range records {
		body, err := encodeBody(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, pushItem{id: rec.ID, doc: remote.Document{
			ID: rec.ID, Kind: models.KindAidRequest, OwnerID: rec.OwnerID, Body: body,
		}})
	}
	return items, nil
}

func (a *aidRequestAdapter) markStatus(ctx context.Context, ids []string, status models.SyncStatus) error {
	return a.store.UpdateStatus(ctx, ids, status)
}

func (a *aidRequestAdapter) fetchRemote(ctx context.Context, rs remote.Store, ownerID string) ([]remote.Document, error) {
	return rs.QueryByOwner(ctx, models.KindAidRequest, ownerID)
}

func (a *aidRequestAdapter) applyRemote(ctx context.Context, doc remote.Document) (bool, error) {
	var in models.AidRequest
	if err := json.Unmarshal(doc.Body, &in); err != nil {
		a.logger.Warn("skipping malformed remote aid request", zap.String("id", doc.ID), zap.Error(err))
		return false, nil
	}
	in.ID = doc.ID
	in.OwnerID = doc.OwnerID

	local, err := a.store.GetByID(ctx, doc.ID)
	if errors.Is(err, store.ErrNotFound) {
		in.SyncStatus = models.SyncSynced
		return true, a.store.Create(ctx, &in)
	}
	if err != nil {
		return false, err
	}

	fields := map[string]any{}
	if local.DeliveryStatus != in.DeliveryStatus {
		fields["delivery_status"] = in.DeliveryStatus
	}
	if local.Approved != in.Approved {
		fields["approved"] = in.Approved
	}
	if len(fields) == 0 {
		return false, nil
	}
	return true, a.store.UpdateFields(ctx, doc.ID, fields)
}

// --- shelter sites ---

type shelterSiteAdapter struct {
	store  store.ShelterSiteStore
	logger *zap.Logger
}

func (a *shelterSiteAdapter) kind() models.Kind { return models.KindShelterSite }

func (a *shelterSiteAdapter) listPushable(ctx context.Context) ([]pushItem, error) {
	records, err := a.store.ListByStatus(ctx, models.SyncPending, models.SyncFailed)
	if err != nil {
		return nil, err
	}
	items := make([]pushItem, 0, len(records))
	for _, rec := range records {
		body, err := encodeBody(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, pushItem{id: rec.ID, doc: remote.Document{
			ID: rec.ID, Kind: models.KindShelterSite, OwnerID: rec.OwnerID, Body: body,
		}})
	}
	return items, nil
}

func (a *shelterSiteAdapter) markStatus(ctx context.Context, ids []string, status models.SyncStatus) error {
	return a.store.UpdateStatus(ctx, ids, status)
}

// Shelter sites are globally visible: everyone pulls the full set.
func (a *shelterSiteAdapter) fetchRemote(ctx context.Context, rs remote.Store, _ string) ([]remote.Document, error) {
	return rs.QueryAll(ctx, models.KindShelterSite)
}

func (a *shelterSiteAdapter) applyRemote(ctx context.Context, doc remote.Document) (bool, error) {
	var in models.ShelterSite
	if err := json.Unmarshal(doc.Body, &in); err != nil {
		a.logger.Warn("skipping malformed remote shelter site", zap.String("id", doc.ID), zap.Error(err))
		return false, nil
	}
	in.ID = doc.ID
	in.OwnerID = doc.OwnerID

	local, err := a.store.GetByID(ctx, doc.ID)
	if errors.Is(err, store.ErrNotFound) {
		in.SyncStatus = models.SyncSynced
		return true, a.store.Create(ctx, &in)
	}
	if err != nil {
		return false, err
	}

	fields := map[string]any{}
	if local.Occupancy != in.Occupancy {
		fields["occupancy"] = in.Occupancy
	}
	if local.Status != in.Status {
		fields["status"] = in.Status
	}
	if len(fields) == 0 {
		return false, nil
	}
	return true, a.store.UpdateFields(ctx, doc.ID, fields)
}

// --- volunteers ---

type volunteerAdapter struct {
	store  store.VolunteerStore
	logger *zap.Logger
}

func (a *volunteerAdapter) kind() models.Kind { return models.KindVolunteer }

func (a *volunteerAdapter) listPushable(ctx context.Context) ([]pushItem, error) {
	records, err := a.store.ListByStatus(ctx, models.SyncPending, models.SyncFailed)
	if err != nil {
		return nil, err
	}
	items := make([]pushItem, 0, len(records))
	for _, rec := range records {
		body, err := encodeBody(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, pushItem{id: rec.ID, doc: remote.Document{
			ID: rec.ID, Kind: models.KindVolunteer, OwnerID: rec.OwnerID, Body: body,
		}})
	}
	return items, nil
}

func (a *volunteerAdapter) markStatus(ctx context.Context, ids []string, status models.SyncStatus) error {
	return a.store.UpdateStatus(ctx, ids, status)
}

func (a *volunteerAdapter) fetchRemote(ctx context.Context, rs remote.Store, ownerID string) ([]remote.Document, error) {
	return rs.QueryByOwner(ctx, models.KindVolunteer, ownerID)
}

func (a *volunteerAdapter) applyRemote(ctx context.Context, doc remote.Document) (bool, error) {
	var in models.Volunteer
	if err := json.Unmarshal(doc.Body, &in); err != nil {
		a.logger.Warn("skipping malformed remote volunteer", zap.String("id", doc.ID), zap.Error(err))
		return false, nil
	}
	in.ID = doc.ID
	in.OwnerID = doc.OwnerID

	local, err := a.store.GetByID(ctx, doc.ID)
	if errors.Is(err, store.ErrNotFound) {
		in.SyncStatus = models.SyncSynced
		return true, a.store.Create(ctx, &in)
	}
	if err != nil {
		return false, err
	}

	fields := map[string]any{}
	if local.Assignment != in.Assignment {
		fields["assignment"] = in.Assignment
	}
	if local.Verified != in.Verified {
		fields["verified"] = in.Verified
	}
	if len(fields) == 0 {
		return false, nil
	}
	return true, a.store.UpdateFields(ctx, doc.ID, fields)
}
