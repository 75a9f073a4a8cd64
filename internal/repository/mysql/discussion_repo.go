package mysql

import (
	"context"

	"moovyzoo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DiscussionRepository struct {
	DB *gorm.DB
}

func NewDiscussionRepository() *DiscussionRepository {
	return &DiscussionRepository{DB: DB}
}

func (r *DiscussionRepository) Create(ctx context.Context, d *model.Discussion) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.IsActive = true
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventInsert, "habitat_discussions", d.ID, d.HabitatID, map[string]any{
			"name":       d.Name,
			"created_by": d.CreatedBy,
		})
	})
}

func (r *DiscussionRepository) FindByID(ctx context.Context, id string) (*model.Discussion, error) {
	var d model.Discussion
	err := r.DB.WithContext(ctx).First(&d, "id = ? AND is_active = 1", id).Error
	return &d, err
}

// ListWithStats annotates each active discussion with message_count and
// last_message_at in a single joined query.
func (r *DiscussionRepository) ListWithStats(ctx context.Context, habitatID string) ([]model.DiscussionStats, error) {
	var list []model.DiscussionStats
	err := r.DB.WithContext(ctx).Model(&model.Discussion{}).
		Select("habitat_discussions.*, COUNT(m.id) AS message_count, MAX(m.created_at) AS last_message_at").
		Joins("LEFT JOIN habitat_messages m ON m.chat_id = habitat_discussions.id").
		Where("habitat_discussions.habitat_id = ? AND habitat_discussions.is_active = 1", habitatID).
		Group("habitat_discussions.id").
		Order("habitat_discussions.created_at DESC").
		Scan(&list).Error
	return list, err
}

// SoftDelete flips is_active; discussions are never hard-deleted.
func (r *DiscussionRepository) SoftDelete(ctx context.Context, id, habitatID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Discussion{}).
			Where("id = ?", id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventDelete, "habitat_discussions", id, habitatID, nil)
	})
}
