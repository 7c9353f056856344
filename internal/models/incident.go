package models

// Incident action status values set by coordinators, not by the
// reporting author.
const (
	IncidentReported   = "reported"
	IncidentInProgress = "in_progress"
	IncidentResolved   = "resolved"
)

// Incident is a field report of an event requiring response. Type,
// severity, description and location are author fields, set once at
// creation; ActionStatus is administratively controlled and may be
// changed remotely by a coordinator.
type Incident struct {
	RecordMeta
	Type        string  `json:"type"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	ActionStatus string `json:"action_status"`

	// Attachments are synced through the object store, not through
	// the record document; only locators travel in the body.
	Attachments []Attachment `json:"attachments,omitempty"`
}

// PendingMedia returns the attachments that have not yet reached
// high_uploaded.
func (i *Incident) PendingMedia() []Attachment {
	var out []Attachment
	for _, a := range i.Attachments {
		if a.UploadState != UploadHighUploaded {
			out = append(out, a)
		}
	}
	return out
}
