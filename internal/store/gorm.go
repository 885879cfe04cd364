package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"smart_tracker/internal/geo"
	"smart_tracker/internal/models"
)

// activityRecord is the persisted row. The coordinate pair lives in a single
// WKB point column.
type activityRecord struct {
	ID         string `gorm:"primaryKey;size:191"`
	Location   []byte
	ImagePath  string
	OccurredAt time.Time `gorm:"index"`
	Address    string
	Synced     bool
	CreatedAt  time.Time  `gorm:"autoCreateTime:false;index"`
	UpdatedAt  *time.Time `gorm:"autoUpdateTime:false"`
}

func (activityRecord) TableName() string { return "activities" }

const newestFirst = "occurred_at DESC, created_at ASC"

// GormStore persists activities through gorm (sqlite or postgres).
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore migrates the activities table and returns the store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&activityRecord{}); err != nil {
		return nil, fmt.Errorf("auto-migration failed: %w", err)
	}
	return &GormStore{db: db, now: time.Now}, nil
}

func (s *GormStore) Insert(ctx context.Context, a models.Activity) (models.Activity, error) {
	a.CreatedAt = s.now()
	a.UpdatedAt = nil
	rec, err := toRecord(a)
	if err != nil {
		return models.Activity{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&activityRecord{}).Where("id = ?", a.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateID
		}
		return tx.Create(&rec).Error
	})
	switch {
	case errors.Is(err, ErrDuplicateID), errors.Is(err, gorm.ErrDuplicatedKey):
		return models.Activity{}, ErrDuplicateID
	case err != nil:
		return models.Activity{}, fmt.Errorf("insert activity: %w", err)
	}
	return a, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (models.Activity, error) {
	rec, err := first(s.db.WithContext(ctx), id)
	if err != nil {
		return models.Activity{}, err
	}
	return rec.toModel()
}

func (s *GormStore) List(ctx context.Context, q ListQuery) (Page, error) {
	// A gorm chain is not reusable after a finisher, so build it per query.
	filtered := func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&activityRecord{})
		if q.Search != "" {
			pattern := likePattern(q.Search)
			db = db.Where(`LOWER(address) LIKE ? ESCAPE '\' OR LOWER(id) LIKE ? ESCAPE '\'`, pattern, pattern)
		}
		return db
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return Page{}, fmt.Errorf("count activities: %w", err)
	}

	page := Page{Items: []models.Activity{}, Total: int(total)}
	if q.Limit <= 0 || q.Skip >= int(total) {
		return page, nil
	}

	var recs []activityRecord
	if err := filtered().Order(newestFirst).Offset(q.Skip).Limit(q.Limit).Find(&recs).Error; err != nil {
		return Page{}, fmt.Errorf("list activities: %w", err)
	}
	items, err := toModels(recs)
	if err != nil {
		return Page{}, err
	}
	page.Items = items
	return page, nil
}

func (s *GormStore) Update(ctx context.Context, id string, patch models.ActivityPatch) (models.Activity, error) {
	var updated models.Activity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := first(tx, id)
		if err != nil {
			return err
		}
		a, err := rec.toModel()
		if err != nil {
			return err
		}
		patch.Apply(&a, s.now())

		next, err := toRecord(a)
		if err != nil {
			return err
		}
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Activity{}, err
		}
		return models.Activity{}, fmt.Errorf("update activity: %w", err)
	}
	return updated, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) (models.Activity, error) {
	var removed activityRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := first(tx, id)
		if err != nil {
			return err
		}
		removed = rec
		return tx.Delete(&activityRecord{}, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Activity{}, err
		}
		return models.Activity{}, fmt.Errorf("delete activity: %w", err)
	}
	return removed.toModel()
}

func (s *GormStore) Search(ctx context.Context, query string) ([]models.Activity, error) {
	var recs []activityRecord
	err := s.db.WithContext(ctx).
		Where(`LOWER(address) LIKE ? ESCAPE '\'`, likePattern(query)).
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("search activities: %w", err)
	}
	return toModels(recs)
}

func (s *GormStore) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		return []models.Activity{}, nil
	}
	var recs []activityRecord
	if err := s.db.WithContext(ctx).Order(newestFirst).Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("recent activities: %w", err)
	}
	return toModels(recs)
}

func (s *GormStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&activityRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return int(n), nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func first(db *gorm.DB, id string) (activityRecord, error) {
	var rec activityRecord
	if err := db.Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rec, ErrNotFound
		}
		return rec, err
	}
	return rec, nil
}

// likePattern builds a lower-cased substring pattern with LIKE wildcards escaped.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}

func toRecord(a models.Activity) (activityRecord, error) {
	loc, err := geo.EncodePoint(a.Latitude, a.Longitude)
	if err != nil {
		return activityRecord{}, fmt.Errorf("encode location: %w", err)
	}
	return activityRecord{
		ID:         a.ID,
		Location:   loc,
		ImagePath:  a.ImagePath,
		OccurredAt: a.Timestamp.UTC(),
		Address:    a.Address,
		Synced:     a.Synced,
		CreatedAt:  a.CreatedAt.UTC(),
		UpdatedAt:  utcPtr(a.UpdatedAt),
	}, nil
}

// utcPtr normalizes t to UTC. sqlite keeps times as text, so every stored
// instant must share one offset for ORDER BY to compare them correctly.
func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func (r activityRecord) toModel() (models.Activity, error) {
	lat, lng, err := geo.DecodePoint(r.Location)
	if err != nil {
		return models.Activity{}, fmt.Errorf("decode location of %s: %w", r.ID, err)
	}
	return models.Activity{
		ID:        r.ID,
		Latitude:  lat,
		Longitude: lng,
		ImagePath: r.ImagePath,
		Timestamp: r.OccurredAt,
		Address:   r.Address,
		Synced:    r.Synced,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func toModels(recs []activityRecord) ([]models.Activity, error) {
	out := make([]models.Activity, 0, len(recs))
	for _, r := range recs {
		a, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
