package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"smart_tracker/internal/models"
)

// coordinate accepts a JSON number or a numeric string ("1.25").
type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		raw = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid coordinate %s", data)
	}
	*c = coordinate(f)
	return nil
}

func (c *coordinate) float() *float64 {
	if c == nil {
		return nil
	}
	f := float64(*c)
	return &f
}

// timestampLayouts are tried in order for string timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// eventTime accepts an ISO-8601 string (UTC assumed when the zone is missing)
// or a number of milliseconds since the Unix epoch, normalized to UTC. An empty
// string or the number 0 decodes to the zero time.
type eventTime struct{ time.Time }

func (t *eventTime) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) > 0 && raw[0] != '"' {
		ms, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return fmt.Errorf("invalid timestamp %s", data)
		}
		if ms == 0 {
			t.Time = time.Time{}
			return nil
		}
		t.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func (t *eventTime) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

// createActivityInput is the POST body. Latitude and longitude only need to
// be present; zero is a valid coordinate.
type createActivityInput struct {
	ID        string      `json:"id" binding:"required"`
	Latitude  *coordinate `json:"latitude" binding:"required"`
	Longitude *coordinate `json:"longitude" binding:"required"`
	ImagePath string      `json:"imagePath" binding:"required"`
	Timestamp *eventTime  `json:"timestamp" binding:"required"`
	Address   string      `json:"address"`
}

func (in createActivityInput) complete() bool {
	return in.Timestamp != nil && !in.Timestamp.IsZero()
}

func (in createActivityInput) toModel() models.Activity {
	address := in.Address
	if address == "" {
		address = models.DefaultAddress
	}
	return models.Activity{
		ID:        in.ID,
		Latitude:  float64(*in.Latitude),
		Longitude: float64(*in.Longitude),
		ImagePath: in.ImagePath,
		Timestamp: in.Timestamp.Time,
		Address:   address,
		Synced:    true,
	}
}

// updateActivityInput is the PUT body; every field is optional.
type updateActivityInput struct {
	Latitude  *coordinate `json:"latitude"`
	Longitude *coordinate `json:"longitude"`
	ImagePath *string     `json:"imagePath"`
	Address   *string     `json:"address"`
	Timestamp *eventTime  `json:"timestamp"`
	Synced    *bool       `json:"synced"`
}

func (in updateActivityInput) toPatch() models.ActivityPatch {
	return models.ActivityPatch{
		Latitude:  in.Latitude.float(),
		Longitude: in.Longitude.float(),
		ImagePath: in.ImagePath,
		Address:   in.Address,
		Timestamp: in.Timestamp.ptr(),
		Synced:    in.Synced,
	}
}
