package mysql

import (
	"context"
	"time"

	"moovyzoo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HabitatRepository struct {
	DB *gorm.DB
}

func NewHabitatRepository() *HabitatRepository {
	return &HabitatRepository{DB: DB}
}

// Create inserts the habitat and its owner membership row in one
// transaction; the creator is always the first member, so member_count
// starts at 1.
func (r *HabitatRepository) Create(ctx context.Context, h *model.Habitat) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.MemberCount = 1
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(h).Error; err != nil {
			return err
		}
		now := time.Now()
		owner := &model.HabitatMember{
			ID:         uuid.NewString(),
			HabitatID:  h.ID,
			UserID:     h.CreatedBy,
			JoinedAt:   now,
			LastActive: now,
		}
		if err := tx.Create(owner).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventInsert, "habitats", h.ID, h.ID, map[string]any{
			"name":       h.Name,
			"created_by": h.CreatedBy,
			"is_public":  h.IsPublic,
		})
	})
}

func (r *HabitatRepository) FindByID(ctx context.Context, id string) (*model.Habitat, error) {
	var habitat model.Habitat
	err := r.DB.WithContext(ctx).First(&habitat, "id = ?", id).Error
	return &habitat, err
}

// ListPublic pages through public habitats, newest first.
func (r *HabitatRepository) ListPublic(ctx context.Context, offset, limit int) ([]model.Habitat, error) {
	var list []model.Habitat
	err := r.DB.WithContext(ctx).
		Where("is_public = ?", true).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, err
}

// Update persists owner-editable fields and emits a change event.
func (r *HabitatRepository) Update(ctx context.Context, h *model.Habitat) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Habitat{}).Where("id = ?", h.ID).
			Updates(map[string]any{
				"name":        h.Name,
				"description": h.Description,
				"tags":        h.Tags,
				"is_public":   h.IsPublic,
				"banner_url":  h.BannerURL,
			}).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventUpdate, "habitats", h.ID, h.ID, map[string]any{
			"name": h.Name,
		})
	})
}

// RecountMembers re-derives member_count from the membership relation and
// persists it. Deliberately a full recount, not an increment: a crash between
// a membership write and this call leaves the count stale only until the next
// recount.
func (r *HabitatRepository) RecountMembers(ctx context.Context, habitatID string) (int64, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&model.HabitatMember{}).
		Where("habitat_id = ?", habitatID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if err := r.DB.WithContext(ctx).Model(&model.Habitat{}).
		Where("id = ?", habitatID).
		UpdateColumn("member_count", count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MemberCountReconcilerRepo backs the periodic drift sweep over cached
// member counts.
type MemberCountReconcilerRepo struct {
	DB *gorm.DB
}

func NewMemberCountReconcilerRepo() *MemberCountReconcilerRepo {
	return &MemberCountReconcilerRepo{DB: DB}
}

type CountPair struct {
	ID          string
	MemberCount int64
}

func (r *MemberCountReconcilerRepo) ListBatch(ctx context.Context, batchSize int, lastID string) ([]CountPair, string, error) {
	var list []CountPair
	if err := r.DB.WithContext(ctx).Model(&model.Habitat{}).
		Select("id", "member_count").
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, lastID, err
	}
	if len(list) == 0 {
		return nil, lastID, nil
	}
	return list, list[len(list)-1].ID, nil
}

func (r *MemberCountReconcilerRepo) RealCount(ctx context.Context, habitatID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.HabitatMember{}).
		Where("habitat_id = ?", habitatID).
		Count(&n).Error
	return n, err
}

func (r *MemberCountReconcilerRepo) FixCount(ctx context.Context, habitatID string, real int64) error {
	return r.DB.WithContext(ctx).Model(&model.Habitat{}).Where("id = ?", habitatID).
		UpdateColumn("member_count", real).Error
}
