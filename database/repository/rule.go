// File: venuebook/database/repository/rule.go
package repository

import (
	"context"
	"errors"
	"fmt"

	"venuebook/models"

	"gorm.io/gorm"
)

// RuleRepository provides access to persisted pricing rules. Rules are
// read-mostly: the resolver reads them through the rule cache, admins
// mutate them.
type RuleRepository interface {
	// ListActive returns active rules in evaluation order:
	// priority descending, then creation time descending.
	ListActive(ctx context.Context) ([]models.PricingRule, error)
	List(ctx context.Context) ([]models.PricingRule, error)
	GetByID(ctx context.Context, id string) (*models.PricingRule, error)
	Create(ctx context.Context, rule *models.PricingRule) error
	Update(ctx context.Context, rule *models.PricingRule) error
	Delete(ctx context.Context, id string) error
}

type gormRuleRepo struct {
	db *gorm.DB
}

// NewGormRuleRepo constructs a Postgres-backed RuleRepository.
func NewGormRuleRepo(db *gorm.DB) RuleRepository {
	return &gormRuleRepo{db: db}
}

func (r *gormRuleRepo) ListActive(ctx context.Context) ([]models.PricingRule, error) {
	var rules []models.PricingRule
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority DESC, created_at DESC").
		Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list active rules: %w", err)
	}
	return rules, nil
}

func (r *gormRuleRepo) List(ctx context.Context) ([]models.PricingRule, error) {
	var rules []models.PricingRule
	if err := r.db.WithContext(ctx).
		Order("priority DESC, created_at DESC").
		Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return rules, nil
}

func (r *gormRuleRepo) GetByID(ctx context.Context, id string) (*models.PricingRule, error) {
	var rule models.PricingRule
	err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rule %s: %w", id, err)
	}
	return &rule, nil
}

func (r *gormRuleRepo) Create(ctx context.Context, rule *models.PricingRule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

func (r *gormRuleRepo) Update(ctx context.Context, rule *models.PricingRule) error {
	if err := r.db.WithContext(ctx).Save(rule).Error; err != nil {
		return fmt.Errorf("failed to update rule %s: %w", rule.ID, err)
	}
	return nil
}

func (r *gormRuleRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.PricingRule{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}
	return nil
}
