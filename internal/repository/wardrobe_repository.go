package repository

import (
	"fmt"

	"gorm.io/gorm"

	"smartcloset/internal/model"
)

type WardrobeRepository struct {
	db *gorm.DB
}

func NewWardrobeRepository(db *gorm.DB) *WardrobeRepository {
	return &WardrobeRepository{db: db}
}

// Create inserts the item inside its own transaction so a failed commit
// cannot leave a row behind while the pipeline reports failure.
func (r *WardrobeRepository) Create(item *model.WardrobeItem) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(item).Error
	})
	if err != nil {
		return fmt.Errorf("create wardrobe item failed: %w", err)
	}
	return nil
}

func (r *WardrobeRepository) ListByUserID(userID uint) ([]model.WardrobeItem, error) {
	var items []model.WardrobeItem
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list wardrobe items failed: %w", err)
	}
	return items, nil
}

func (r *WardrobeRepository) ListAll() ([]model.WardrobeItem, error) {
	var items []model.WardrobeItem
	if err := r.db.Order("category ASC, created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list all wardrobe items failed: %w", err)
	}
	return items, nil
}

func (r *WardrobeRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.WardrobeItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count wardrobe items failed: %w", err)
	}
	return count, nil
}
