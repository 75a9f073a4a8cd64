package mysql

import (
	"context"
	"time"

	"moovyzoo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemberRepository struct {
	DB *gorm.DB
}

func NewMemberRepository() *MemberRepository {
	return &MemberRepository{DB: DB}
}

// Insert adds a membership row; the (habitat_id, user_id) unique index plus
// OnConflict DoNothing makes it idempotent.
func (r *MemberRepository) Insert(ctx context.Context, member *model.HabitatMember) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	now := time.Now()
	if member.JoinedAt.IsZero() {
		member.JoinedAt = now
	}
	if member.LastActive.IsZero() {
		member.LastActive = now
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "habitat_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(member).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventInsert, "habitat_members", member.ID, member.HabitatID, map[string]any{
			"user_id": member.UserID,
		})
	})
}

func (r *MemberRepository) Delete(ctx context.Context, habitatID, userID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("habitat_id = ? AND user_id = ?", habitatID, userID).
			Delete(&model.HabitatMember{}).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventDelete, "habitat_members", userID, habitatID, map[string]any{
			"user_id": userID,
		})
	})
}

func (r *MemberRepository) Exists(ctx context.Context, habitatID, userID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.HabitatMember{}).
		Where("habitat_id = ? AND user_id = ?", habitatID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListByHabitat returns the roster ordered by join time.
func (r *MemberRepository) ListByHabitat(ctx context.Context, habitatID string) ([]model.HabitatMember, error) {
	var list []model.HabitatMember
	err := r.DB.WithContext(ctx).
		Where("habitat_id = ?", habitatID).
		Order("joined_at ASC").
		Find(&list).Error
	return list, err
}

// TouchLastActive refreshes the presence timestamp; called on any
// authenticated habitat interaction.
func (r *MemberRepository) TouchLastActive(ctx context.Context, habitatID, userID string) error {
	return r.DB.WithContext(ctx).Model(&model.HabitatMember{}).
		Where("habitat_id = ? AND user_id = ?", habitatID, userID).
		UpdateColumn("last_active", time.Now()).Error
}
