package models

// AidRequest asks for supplies or assistance at a location. Category,
// quantity, urgency and notes are author fields; DeliveryStatus and
// Approved are administratively controlled.
type AidRequest struct {
	RecordMeta
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Urgency  string `json:"urgency"`
	Notes    string `json:"notes,omitempty"`

	DeliveryStatus string `json:"delivery_status"`
	Approved       bool   `json:"approved"`
}
