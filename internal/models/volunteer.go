package models

// Volunteer is a self-registered helper. Name, phone and skills are
// author fields; Assignment and Verified are administratively
// controlled.
type Volunteer struct {
	RecordMeta
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Skills string `json:"skills,omitempty"`

	Assignment string `json:"assignment"`
	Verified   bool   `json:"verified"`
}
