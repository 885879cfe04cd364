// internal/models/activity.go
package models

import "time"

// DefaultAddress is stored when a client creates an activity without an address.
const DefaultAddress = "Unknown location"

// Activity is a single geotagged event captured by the mobile client:
// a photo reference taken at a coordinate at a given time.
type Activity struct {
	ID        string     `json:"id"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	ImagePath string     `json:"imagePath"`
	Timestamp time.Time  `json:"timestamp"`
	Address   string     `json:"address"`
	Synced    bool       `json:"synced"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// ActivityPatch carries a partial update. Nil fields are left untouched.
type ActivityPatch struct {
	Latitude  *float64
	Longitude *float64
	ImagePath *string
	Address   *string
	Timestamp *time.Time
	Synced    *bool
}

// Apply merges the patch into a. Zero coordinates, empty strings and a zero
// timestamp are treated like absent fields so existing clients that send
// blank values keep the stored data. Synced is applied whenever present.
func (p ActivityPatch) Apply(a *Activity, now time.Time) {
	if p.Latitude != nil && *p.Latitude != 0 {
		a.Latitude = *p.Latitude
	}
	if p.Longitude != nil && *p.Longitude != 0 {
		a.Longitude = *p.Longitude
	}
	if p.ImagePath != nil && *p.ImagePath != "" {
		a.ImagePath = *p.ImagePath
	}
	if p.Address != nil && *p.Address != "" {
		a.Address = *p.Address
	}
	if p.Timestamp != nil && !p.Timestamp.IsZero() {
		a.Timestamp = *p.Timestamp
	}
	if p.Synced != nil {
		a.Synced = *p.Synced
	}
	updated := now
	a.UpdatedAt = &updated
}
