package services

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/openrelief/fieldsync/internal/media"
	"github.com/openrelief/fieldsync/internal/models"
	"github.com/openrelief/fieldsync/internal/netmon"
	"github.com/openrelief/fieldsync/internal/remote"
	"github.com/openrelief/fieldsync/internal/store"
)

const (
	DefaultMaxUploadAttempts  = 3
	defaultRetryFirstInterval = 500 * time.Millisecond
)

// attachmentAction is one cell of the (tier, uploadState) decision
// table.
type attachmentAction int

const (
	actionSkip attachmentAction = iota
	actionUploadLow
	actionUploadHigh
	actionUpgradeToHigh
)

// decideAttachment maps current network tier and upload state to the
// action that moves the attachment toward high_uploaded without
// wasting a constrained link. high_uploaded is terminal.
func decideAttachment(tier netmon.Tier, state models.UploadState) attachmentAction {
	if state == models.UploadHighUploaded {
		return actionSkip
	}
	switch tier {
	case netmon.TierPoor:
		if state == models.UploadLocalOnly {
			return actionUploadLow
		}
		return actionSkip
	case netmon.TierGood, netmon.TierExcellent:
		if state == models.UploadLocalOnly {
			return actionUploadHigh
		}
		return actionUpgradeToHigh
	default:
		return actionSkip
	}
}

// RecordMediaOutcome summarizes one record's attachment pass.
type RecordMediaOutcome struct {
	RecordID string `json:"record_id"`
	Uploaded int    `json:"uploaded"`
	Failed   int    `json:"failed"`
	Skipped  int    `json:"skipped"`
}

// AttachmentEngine drives incident photos toward high_uploaded
// opportunistically. All processing is sequential: one photo uploads
// at a time, keeping bandwidth use predictable on shared links.
type AttachmentEngine struct {
	incidents     store.IncidentStore
	pipeline      media.Pipeline
	remote        remote.Store
	monitor       netmon.Monitor
	logger        *zap.Logger
	maxAttempts   int
	firstInterval time.Duration

	inFlight atomic.Bool
}

// AttachmentEngineConfig wires an AttachmentEngine. Remote may be nil;
// when set, freshly uploaded locators are merged into the record's
// remote document after each record completes.
type AttachmentEngineConfig struct {
	Incidents         store.IncidentStore
	Pipeline          media.Pipeline
	Remote            remote.Store
	Monitor           netmon.Monitor
	Logger            *zap.Logger
	MaxUploadAttempts int
	RetryFirstDelay   time.Duration
}

func NewAttachmentEngine(cfg AttachmentEngineConfig) *AttachmentEngine {
	if cfg.MaxUploadAttempts <= 0 {
		cfg.MaxUploadAttempts = DefaultMaxUploadAttempts
	}
	if cfg.RetryFirstDelay <= 0 {
		cfg.RetryFirstDelay = defaultRetryFirstInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &AttachmentEngine{
		incidents:     cfg.Incidents,
		pipeline:      cfg.Pipeline,
		remote:        cfg.Remote,
		monitor:       cfg.Monitor,
		logger:        cfg.Logger,
		maxAttempts:   cfg.MaxUploadAttempts,
		firstInterval: cfg.RetryFirstDelay,
	}
}

// SyncAllPending processes every record that still has an attachment
// below high_uploaded, sequentially. A call while another is running
// is a no-op returning an empty outcome list. Store errors are fatal;
// upload failures are counted and retried by the next cycle.
func (e *AttachmentEngine) SyncAllPending(ctx context.Context) ([]RecordMediaOutcome, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil, nil
	}
	defer e.inFlight.Store(false)

	records, err := e.incidents.ListWithPendingMedia(ctx)
	if err != nil {
		return nil, err
	}

	outcomes := make([]RecordMediaOutcome, 0, len(records))
	for _, rec := range records {
		outcome, err := e.syncRecordMedia(ctx, rec)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// SyncIncidentMedia runs one attachment pass for a single incident,
// outside the batch guard. Used right after a successful author push
// and by manual retries.
func (e *AttachmentEngine) SyncIncidentMedia(ctx context.Context, recordID string) (RecordMediaOutcome, error) {
	rec, err := e.incidents.GetByID(ctx, recordID)
	if err != nil {
		return RecordMediaOutcome{}, err
	}
	if len(rec.PendingMedia()) == 0 {
		return RecordMediaOutcome{RecordID: rec.ID, Skipped: len(rec.Attachments)}, nil
	}
	return e.syncRecordMedia(ctx, rec)
}

// syncRecordMedia walks one record's attachments. The network tier is
// re-read per attachment so a link change mid-batch is honored.
func (e *AttachmentEngine) syncRecordMedia(ctx context.Context, rec *models.Incident) (RecordMediaOutcome, error) {
	outcome := RecordMediaOutcome{RecordID: rec.ID}

	changed := false
	for i := range rec.Attachments {
		att := &rec.Attachments[i]
		tier := netmon.Classify(e.monitor.Current())

		switch e.syncAttachment(ctx, att, tier) {
		case attachmentUploaded:
			changed = true
			outcome.Uploaded++
		case attachmentFailed:
			outcome.Failed++
		default:
			outcome.Skipped++
		}
	}

	if changed && e.remote != nil && rec.SyncStatus == models.SyncSynced {
		e.pushLocators(ctx, rec)
	}
	return outcome, nil
}

type attachmentResult int

const (
	attachmentSkipped attachmentResult = iota
	attachmentUploaded
	attachmentFailed
)

func (e *AttachmentEngine) syncAttachment(ctx context.Context, att *models.Attachment, tier netmon.Tier) attachmentResult {
	action := decideAttachment(tier, att.UploadState)
	if action == actionSkip {
		return attachmentSkipped
	}

	if att.LocalPath == "" {
		// Original was cleaned up before a rendition made it out.
		e.logger.Warn("attachment has no local file to upload",
			zap.String("record_id", att.RecordID), zap.Int("index", att.Index))
		return attachmentFailed
	}

	var profile media.Profile
	switch action {
	case actionUploadLow:
		profile = media.ProfileLow
	default:
		profile = media.ProfileHigh
	}

	compressed, err := e.pipeline.Compress(ctx, att.LocalPath, profile)
	if err != nil {
		e.logger.Warn("failed to compress attachment",
			zap.String("record_id", att.RecordID), zap.Int("index", att.Index), zap.Error(err))
		return attachmentFailed
	}

	key := media.ObjectKey(att.RecordID, att.Index, profile.Quality)
	locator, err := e.uploadWithRetry(ctx, compressed, key)
	if err != nil {
		e.logger.Warn("attachment upload exhausted retries",
			zap.String("record_id", att.RecordID), zap.Int("index", att.Index),
			zap.String("tier", tier.String()), zap.Error(err))
		return attachmentFailed
	}

	// Upload-before-delete: the low rendition is only removed once the
	// high one is confirmed, so the record never loses its cloud copy.
	if action == actionUpgradeToHigh {
		lowKey := media.ObjectKey(att.RecordID, att.Index, models.QualityLow)
		if err := e.pipeline.Delete(ctx, lowKey); err != nil {
			e.logger.Warn("failed to delete superseded low-quality object",
				zap.String("key", lowKey), zap.Error(err))
		}
	}

	att.RemoteLocator = locator
	att.Quality = profile.Quality
	if profile.Quality == models.QualityHigh {
		att.UploadState = models.UploadHighUploaded
	} else {
		att.UploadState = models.UploadLowUploaded
	}

	if err := e.incidents.UpdateAttachment(ctx, att); err != nil {
		e.logger.Error("failed to persist attachment state",
			zap.String("record_id", att.RecordID), zap.Int("index", att.Index), zap.Error(err))
		return attachmentFailed
	}
	return attachmentUploaded
}

// uploadWithRetry bounds each upload in an exponential backoff loop.
// Exhaustion leaves the attachment exactly where it was.
func (e *AttachmentEngine) uploadWithRetry(ctx context.Context, localPath, objectKey string) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.firstInterval

	return backoff.Retry(ctx, func() (string, error) {
		return e.pipeline.Upload(ctx, localPath, objectKey)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(uint(e.maxAttempts)))
}

// pushLocators merges the record's current locators into its remote
// document. Merge-upsert makes this safe after the author push.
func (e *AttachmentEngine) pushLocators(ctx context.Context, rec *models.Incident) {
	atts, err := e.incidents.Attachments(ctx, rec.ID)
	if err != nil {
		e.logger.Error("failed to load attachments for locator push",
			zap.String("record_id", rec.ID), zap.Error(err))
		return
	}
	cloud := make([]models.Attachment, 0, len(atts))
	for i := range atts {
		if atts[i].CloudBacked() {
			cloud = append(cloud, atts[i])
		}
	}
	body, err := json.Marshal(map[string]any{"attachments": cloud})
	if err != nil {
		e.logger.Error("failed to encode locator document",
			zap.String("record_id", rec.ID), zap.Error(err))
		return
	}
	doc := remote.Document{ID: rec.ID, Kind: models.KindIncident, OwnerID: rec.OwnerID, Body: body}
	if err := e.remote.Upsert(ctx, doc); err != nil {
		e.logger.Warn("failed to push attachment locators",
			zap.String("record_id", rec.ID), zap.Error(err))
	}
}
