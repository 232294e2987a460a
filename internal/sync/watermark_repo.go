package sync

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// SyncWatermark records the newest event timestamp a source has been synced
// through. Read at run start to bound the fetch window, advanced at run end.
type SyncWatermark struct {
	Source      string    `gorm:"column:source;type:varchar(30);primaryKey" json:"source"`
	LastEventAt time.Time `gorm:"column:last_event_at;not null" json:"last_event_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SyncWatermark) TableName() string {
	return "sync_watermarks"
}

//go:generate mockgen -source=watermark_repo.go -destination=mock/watermark_repo_mock.go -package=mock
type WatermarkRepository interface {
	Get(ctx context.Context, sourceName string) (time.Time, error)
	Advance(ctx context.Context, sourceName string, ts time.Time) error
	List(ctx context.Context) ([]SyncWatermark, error)
}

type watermarkRepository struct {
	db *gorm.DB
}

func NewWatermarkRepository(db *gorm.DB) WatermarkRepository {
	return &watermarkRepository{db: db}
}

// Get returns the zero time when the source has never been synced.
func (r *watermarkRepository) Get(ctx context.Context, sourceName string) (time.Time, error) {
	var wm SyncWatermark
	err := r.db.WithContext(ctx).
		First(&wm, "source = ?", sourceName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return wm.LastEventAt, nil
}

// Advance moves the watermark forward, never backward: concurrent runs may
// finish out of order and must not shrink the synced window.
func (r *watermarkRepository) Advance(ctx context.Context, sourceName string, ts time.Time) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO sync_watermarks (source, last_event_at, updated_at)
		VALUES (?, ?, now())
		ON CONFLICT (source) DO UPDATE
		SET last_event_at = GREATEST(sync_watermarks.last_event_at, EXCLUDED.last_event_at),
		    updated_at = now()
	`, sourceName, ts).Error
}

func (r *watermarkRepository) List(ctx context.Context) ([]SyncWatermark, error) {
	var rows []SyncWatermark
	err := r.db.WithContext(ctx).
		Order("source ASC").
		Find(&rows).Error
	return rows, err
}
