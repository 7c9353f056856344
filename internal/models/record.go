package models

import "time"

// SyncStatus governs push eligibility of a locally stored record.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

// Kind identifies an entity kind in the local and remote stores.
type Kind string

const (
	KindIncident    Kind = "incident"
	KindAidRequest  Kind = "aid_request"
	KindShelterSite Kind = "shelter_site"
	KindVolunteer   Kind = "volunteer"
)

// RecordMeta is the common shape shared by every syncable record.
// Timestamps are epoch milliseconds; UpdatedAt is rewritten on every
// local author-side mutation but never by a pull.
type RecordMeta struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	SyncStatus SyncStatus `json:"-"`
	CreatedAt  int64      `json:"created_at"`
	UpdatedAt  int64      `json:"updated_at"`
}

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
