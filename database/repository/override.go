// File: venuebook/database/repository/override.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venuebook/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OverrideRepository provides access to per-date price/availability
// overrides. The unique index on the normalized date makes Upsert the
// only write path.
type OverrideRepository interface {
	GetByDate(ctx context.Context, date time.Time) (*models.DateOverride, error)
	GetByDates(ctx context.Context, dates []time.Time) ([]models.DateOverride, error)
	ListRange(ctx context.Context, from, to time.Time) ([]models.DateOverride, error)
	Upsert(ctx context.Context, override *models.DateOverride) error
	Delete(ctx context.Context, date time.Time) error
}

type gormOverrideRepo struct {
	db *gorm.DB
}

// NewGormOverrideRepo constructs a Postgres-backed OverrideRepository.
func NewGormOverrideRepo(db *gorm.DB) OverrideRepository {
	return &gormOverrideRepo{db: db}
}

func (r *gormOverrideRepo) GetByDate(ctx context.Context, date time.Time) (*models.DateOverride, error) {
	var override models.DateOverride
	err := r.db.WithContext(ctx).First(&override, "date = ?", models.NormalizeDate(date)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch override for %s: %w", models.FormatDate(date), err)
	}
	return &override, nil
}

func (r *gormOverrideRepo) GetByDates(ctx context.Context, dates []time.Time) ([]models.DateOverride, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	var overrides []models.DateOverride
	if err := r.db.WithContext(ctx).
		Where("date IN ?", dates).
		Find(&overrides).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch overrides: %w", err)
	}
	return overrides, nil
}

func (r *gormOverrideRepo) ListRange(ctx context.Context, from, to time.Time) ([]models.DateOverride, error) {
	var overrides []models.DateOverride
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", models.NormalizeDate(from), models.NormalizeDate(to)).
		Order("date ASC").
		Find(&overrides).Error; err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	return overrides, nil
}

func (r *gormOverrideRepo) Upsert(ctx context.Context, override *models.DateOverride) error {
	override.Date = models.NormalizeDate(override.Date)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "is_available", "updated_at"}),
	}).Create(override).Error
	if err != nil {
		return fmt.Errorf("failed to upsert override for %s: %w", models.FormatDate(override.Date), err)
	}
	return nil
}

func (r *gormOverrideRepo) Delete(ctx context.Context, date time.Time) error {
	if err := r.db.WithContext(ctx).
		Delete(&models.DateOverride{}, "date = ?", models.NormalizeDate(date)).Error; err != nil {
		return fmt.Errorf("failed to delete override for %s: %w", models.FormatDate(date), err)
	}
	return nil
}
