package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/openrelief/fieldsync/internal/identity"
	"github.com/openrelief/fieldsync/internal/models"
	"github.com/openrelief/fieldsync/internal/netmon"
	"github.com/openrelief/fieldsync/internal/remote"
	"github.com/openrelief/fieldsync/internal/store"
)

const (
	DefaultSyncInterval      = 5 * time.Minute
	DefaultReconnectDebounce = 3 * time.Second
)

// PushResult reports one push pass. Failures counts remote rejections
// per kind; those records stay failed and are retried next cycle.
type PushResult struct {
	Synced     int                 `json:"synced"`
	Failures   map[models.Kind]int `json:"failures,omitempty"`
	InProgress bool                `json:"in_progress,omitempty"`
	Offline    bool                `json:"offline,omitempty"`
}

// PullResult reports one pull pass. Authenticated=false means there
// was no identity to pull for; nothing was attempted and no error is
// raised.
type PullResult struct {
	Applied       int  `json:"applied"`
	Authenticated bool `json:"authenticated"`
	InProgress    bool `json:"in_progress,omitempty"`
	Offline       bool `json:"offline,omitempty"`
}

// SyncResult reports one full reconciliation cycle.
type SyncResult struct {
	Downloaded     int    `json:"downloaded"`
	Synced         int    `json:"synced"`
	AlreadyRunning bool   `json:"already_running,omitempty"`
	Offline        bool   `json:"offline,omitempty"`
	Status         Status `json:"status"`
}

// Orchestrator is the single coordinator of bidirectional
// reconciliation. One instance owns the in-flight flag, the debounce
// timer and the status bus; running two against the same local store
// is not supported.
type Orchestrator struct {
	adapters    []entityAdapter
	remote      remote.Store
	monitor     netmon.Monitor
	identity    identity.Provider
	attachments *AttachmentEngine
	bus         *StatusBus
	logger      *zap.Logger

	debounce time.Duration
	interval time.Duration

	inFlight atomic.Bool

	mu          sync.Mutex
	resyncTimer *time.Timer
}

// OrchestratorConfig wires an Orchestrator. Attachments may be nil
// when the deployment has no object store.
type OrchestratorConfig struct {
	Incidents    store.IncidentStore
	AidRequests  store.AidRequestStore
	ShelterSites store.ShelterSiteStore
	Volunteers   store.VolunteerStore

	Remote      remote.Store
	Monitor     netmon.Monitor
	Identity    identity.Provider
	Attachments *AttachmentEngine
	Logger      *zap.Logger

	SyncInterval      time.Duration
	ReconnectDebounce time.Duration
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = DefaultSyncInterval
	}
	if cfg.ReconnectDebounce <= 0 {
		cfg.ReconnectDebounce = DefaultReconnectDebounce
	}
	return &Orchestrator{
		adapters: []entityAdapter{
			&incidentAdapter{store: cfg.Incidents, logger: cfg.Logger},
			&aidRequestAdapter{store: cfg.AidRequests, logger: cfg.Logger},
			&shelterSiteAdapter{store: cfg.ShelterSites, logger: cfg.Logger},
			&volunteerAdapter{store: cfg.Volunteers, logger: cfg.Logger},
		},
		remote:      cfg.Remote,
		monitor:     cfg.Monitor,
		identity:    cfg.Identity,
		attachments: cfg.Attachments,
		bus:         NewStatusBus(),
		logger:      cfg.Logger,
		debounce:    cfg.ReconnectDebounce,
		interval:    cfg.SyncInterval,
	}
}

// SubscribeStatus registers a status listener; the returned handle
// unsubscribes it.
func (o *Orchestrator) SubscribeStatus(fn func(Status)) (unsubscribe func()) {
	return o.bus.Subscribe(fn)
}

// LastStatus returns the most recently broadcast status.
func (o *Orchestrator) LastStatus() Status {
	return o.bus.Last()
}

// Push uploads every push-eligible record. Guarded by the same
// in-flight flag as FullSync: a concurrent call returns InProgress
// without doing work.
func (o *Orchestrator) Push(ctx context.Context) (*PushResult, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return &PushResult{InProgress: true}, nil
	}
	defer o.inFlight.Store(false)

	if !o.monitor.Current().Online() {
		o.bus.Publish(StatusOffline)
		return &PushResult{Offline: true}, nil
	}

	res, err := o.push(ctx)
	if err != nil {
		o.bus.Publish(StatusError)
		return nil, err
	}
	return res, nil
}

// Pull downloads the identity's visible remote set and merges it.
func (o *Orchestrator) Pull(ctx context.Context) (*PullResult, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return &PullResult{InProgress: true}, nil
	}
	defer o.inFlight.Store(false)

	if !o.monitor.Current().Online() {
		o.bus.Publish(StatusOffline)
		return &PullResult{Offline: true}, nil
	}

	res, err := o.pull(ctx)
	if err != nil {
		o.bus.Publish(StatusError)
		return nil, err
	}
	return res, nil
}

// FullSync runs pull then push, strictly sequential, under the
// single-flight guard. Concurrent callers get AlreadyRunning and no
// second reconciliation happens.
func (o *Orchestrator) FullSync(ctx context.Context) (*SyncResult, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return &SyncResult{AlreadyRunning: true, Status: o.bus.Last()}, nil
	}
	defer o.inFlight.Store(false)

	if !o.monitor.Current().Online() {
		o.bus.Publish(StatusOffline)
		return &SyncResult{Offline: true, Status: StatusOffline}, nil
	}

	o.bus.Publish(StatusDownloading)
	pullRes, err := o.pull(ctx)
	if err != nil {
		o.bus.Publish(StatusError)
		return nil, err
	}

	o.bus.Publish(StatusSyncing)
	pushRes, err := o.push(ctx)
	if err != nil {
		o.bus.Publish(StatusError)
		return nil, err
	}

	o.bus.Publish(StatusSuccess)
	return &SyncResult{
		Downloaded: pullRes.Applied,
		Synced:     pushRes.Synced,
		Status:     StatusSuccess,
	}, nil
}

// push sends each kind's batch independently: one record's rejection
// never aborts its kind, and one kind's total failure never aborts the
// others. Local storage errors are the only fatal path.
func (o *Orchestrator) push(ctx context.Context) (*PushResult, error) {
	res := &PushResult{Failures: make(map[models.Kind]int)}

	total := 0
	for _, ad := range o.adapters {
		items, err := ad.listPushable(ctx)
		if err != nil {
			return nil, err
		}
		total += len(items)
		if len(items) == 0 {
			continue
		}

		var accepted, rejected []string
		for _, item := range items {
			if err := o.remote.Upsert(ctx, item.doc); err != nil {
				o.logger.Warn("remote rejected record",
					zap.String("kind", string(ad.kind())), zap.String("id", item.id), zap.Error(err))
				rejected = append(rejected, item.id)
				continue
			}
			accepted = append(accepted, item.id)
		}

		if err := ad.markStatus(ctx, accepted, models.SyncSynced); err != nil {
			return nil, err
		}
		if err := ad.markStatus(ctx, rejected, models.SyncFailed); err != nil {
			return nil, err
		}

		res.Synced += len(accepted)
		if len(rejected) > 0 {
			res.Failures[ad.kind()] = len(rejected)
		}

		if ad.kind() == models.KindIncident && len(accepted) > 0 && o.attachments != nil {
			if _, err := o.attachments.SyncAllPending(ctx); err != nil {
				return nil, err
			}
		}
	}

	if total == 0 {
		o.bus.Publish(StatusIdle)
	}
	return res, nil
}

// pull fetches each kind's visible remote set and applies it. An
// unknown id is inserted locally as synced; a known one only has its
// administratively-controlled fields overwritten (remote wins for
// those, and only those). Author fields and sync status never move.
func (o *Orchestrator) pull(ctx context.Context) (*PullResult, error) {
	ownerID, ok := o.identity.CurrentIdentity()
	if !ok {
		o.logger.Info("pull skipped: not authenticated")
		return &PullResult{Authenticated: false}, nil
	}

	res := &PullResult{Authenticated: true}
	for _, ad := range o.adapters {
		docs, err := ad.fetchRemote(ctx, o.remote, ownerID)
		if err != nil {
			o.logger.Warn("failed to fetch remote records",
				zap.String("kind", string(ad.kind())), zap.Error(err))
			continue
		}
		for _, doc := range docs {
			applied, err := ad.applyRemote(ctx, doc)
			if err != nil {
				return nil, err
			}
			if applied {
				res.Applied++
			}
		}
	}
	return res, nil
}

// Start subscribes to connectivity transitions and launches the
// periodic trigger. Both funnel into FullSync's single-flight guard.
// Cancelling ctx stops everything, including any pending debounced
// resync.
func (o *Orchestrator) Start(ctx context.Context) {
	unsubscribe := o.monitor.Subscribe(func(s netmon.State) {
		if s.Online() {
			o.scheduleResync(ctx)
		}
	})

	go func() {
		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				unsubscribe()
				o.cancelPendingResync()
				return
			case <-ticker.C:
				if !o.monitor.Current().Online() {
					continue
				}
				if _, err := o.FullSync(ctx); err != nil {
					o.logger.Error("periodic sync failed", zap.Error(err))
				}
			}
		}
	}()
}

// scheduleResync arms the debounced reconnect trigger, replacing any
// pending one so flapping connectivity collapses into a single run.
func (o *Orchestrator) scheduleResync(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.resyncTimer != nil {
		o.resyncTimer.Stop()
	}
	o.resyncTimer = time.AfterFunc(o.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := o.FullSync(ctx); err != nil {
			o.logger.Error("reconnect sync failed", zap.Error(err))
		}
	})
}

func (o *Orchestrator) cancelPendingResync() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.resyncTimer != nil {
		o.resyncTimer.Stop()
		o.resyncTimer = nil
	}
}
