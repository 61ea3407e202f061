package assessment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("assessment run not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Run{})
}

func (r *Repository) Create(ctx context.Context, run *Run) error {
	run.CreatedAt = time.Now().UTC()
	run.UpdatedAt = run.CreatedAt
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *Repository) Update(ctx context.Context, run *Run) error {
	run.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *Repository) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	result := r.db.WithContext(ctx).First(&run, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &run, nil
}

// Recent lists the newest runs first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var runs []Run
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

func (r *Repository) CleanupExpired(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-ttl)
	return r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&Run{}).Error
}
