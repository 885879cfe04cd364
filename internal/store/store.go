// Package store owns the activity collection. Every implementation honours the
// same contract so the HTTP layer never needs to know which backend is live.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"

	"smart_tracker/internal/models"
)

var (
	// ErrNotFound is returned when no activity carries the requested id.
	ErrNotFound = errors.New("activity not found")
	// ErrDuplicateID is returned when inserting an id that is already stored.
	ErrDuplicateID = errors.New("activity already exists")
)

// ListQuery selects a page of activities.
type ListQuery struct {
	Search string // matched against address and id, case-insensitive
	Limit  int
	Skip   int
}

// Page is one slice of a filtered, timestamp-ordered listing.
type Page struct {
	Items []models.Activity
	Total int // filtered count before pagination
}

// Store is the activity repository used by the controllers.
type Store interface {
	Insert(ctx context.Context, a models.Activity) (models.Activity, error)
	Get(ctx context.Context, id string) (models.Activity, error)
	List(ctx context.Context, q ListQuery) (Page, error)
	Update(ctx context.Context, id string, patch models.ActivityPatch) (models.Activity, error)
	Delete(ctx context.Context, id string) (models.Activity, error)
	Search(ctx context.Context, query string) ([]models.Activity, error)
	Recent(ctx context.Context, limit int) ([]models.Activity, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// sortNewestFirst orders by timestamp descending; ties keep their incoming order.
func sortNewestFirst(items []models.Activity) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
}

// paginate clamps skip/limit to the slice bounds.
func paginate(items []models.Activity, skip, limit int) []models.Activity {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) || limit <= 0 {
		return []models.Activity{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}
