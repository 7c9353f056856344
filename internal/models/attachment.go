package models

// UploadState tracks how much of an attachment has reached the remote
// object store. It is monotone: HighUploaded is terminal and no
// transition ever moves backwards.
type UploadState string

const (
	UploadLocalOnly    UploadState = "local_only"
	UploadLowUploaded  UploadState = "low_uploaded"
	UploadHighUploaded UploadState = "high_uploaded"
)

// MediaQuality is the quality tier currently represented by an
// attachment's remote locator.
type MediaQuality string

const (
	QualityNone MediaQuality = "none"
	QualityLow  MediaQuality = "low"
	QualityHigh MediaQuality = "high"
)

// Attachment is one photographic asset belonging to an incident.
// Attachments live in their own table keyed (record_id, idx), so a
// record's photos are ordinary rows rather than parallel arrays.
type Attachment struct {
	RecordID      string       `json:"record_id"`
	Index         int          `json:"index"`
	LocalPath     string       `json:"-"`
	RemoteLocator string       `json:"remote_locator,omitempty"`
	UploadState   UploadState  `json:"upload_state"`
	Quality       MediaQuality `json:"quality"`
}

// CloudBacked reports whether some rendition of the photo has been
// durably uploaded.
func (a *Attachment) CloudBacked() bool {
	return a.UploadState != UploadLocalOnly
}
