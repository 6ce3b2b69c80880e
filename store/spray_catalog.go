package store

import (
	"context"
	"errors"
	"fmt"

	"m77ag-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrProgramNotFound = errors.New("spray program not found")

// GetProgram loads a program with passes in sequence order and each
// product's container variants.
func (s *Store) GetProgram(ctx context.Context, id uuid.UUID) (*models.SprayProgram, error) {
	var program models.SprayProgram
	err := s.db.WithContext(ctx).
		Preload("Passes", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		Preload("Passes.Products").
		Preload("Passes.Products.Product").
		Preload("Passes.Products.Product.Variants").
		First(&program, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("failed to get spray program: %w", err)
	}
	return &program, nil
}

func (s *Store) ListDiscountTiers(ctx context.Context) ([]models.DiscountTier, error) {
	var tiers []models.DiscountTier
	if err := s.db.WithContext(ctx).Order("min_acres").Find(&tiers).Error; err != nil {
		return nil, fmt.Errorf("failed to list discount tiers: %w", err)
	}
	return tiers, nil
}

// ReplaceDiscountTiers swaps the whole tier table atomically.
func (s *Store) ReplaceDiscountTiers(ctx context.Context, tiers []models.DiscountTier) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.DiscountTier{}).Error; err != nil {
			return fmt.Errorf("failed to clear discount tiers: %w", err)
		}
		if len(tiers) == 0 {
			return nil
		}
		if err := tx.Create(&tiers).Error; err != nil {
			if IsUniqueViolation(err) {
				return fmt.Errorf("duplicate discount threshold: %w", err)
			}
			return fmt.Errorf("failed to save discount tiers: %w", err)
		}
		return nil
	})
}
