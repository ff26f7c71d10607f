package repository

import (
	"fmt"

	"gorm.io/gorm"

	"smartcloset/internal/model"
)

type UploadEventRepository struct {
	db *gorm.DB
}

func NewUploadEventRepository(db *gorm.DB) *UploadEventRepository {
	return &UploadEventRepository{db: db}
}

func (r *UploadEventRepository) Create(event *model.UploadEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("create upload event failed: %w", err)
	}
	return nil
}

func (r *UploadEventRepository) ListByUserID(userID uint, limit int) ([]model.UploadEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var events []model.UploadEvent
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list upload events failed: %w", err)
	}
	return events, nil
}
