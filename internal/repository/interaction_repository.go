// Package repository defines the persistence interfaces and their
// implementations.
package repository

import (
	"gorm.io/gorm"

	"smart-tutor-go/internal/model"
)

// InteractionRepository persists answered turns for later analysis.
type InteractionRepository interface {
	Create(interaction *model.Interaction) error
	FindByUser(userID string, limit int) ([]model.Interaction, error)
	CountByUser(userID string) (int64, error)
}

type interactionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) Create(interaction *model.Interaction) error {
	return r.db.Create(interaction).Error
}

// FindByUser returns up to limit interactions for the user, newest first.
func (r *interactionRepository) FindByUser(userID string, limit int) ([]model.Interaction, error) {
	var interactions []model.Interaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&interactions).Error
	return interactions, err
}

func (r *interactionRepository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Interaction{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
