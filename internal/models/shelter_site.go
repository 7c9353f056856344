package models

// ShelterSite is a shelter location with capacity tracking. Shelter
// sites have global visibility: every identity pulls the full set.
// Occupancy and Status are administratively controlled.
type ShelterSite struct {
	RecordMeta
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Capacity  int     `json:"capacity"`

	Occupancy int    `json:"occupancy"`
	Status    string `json:"status"`
}
