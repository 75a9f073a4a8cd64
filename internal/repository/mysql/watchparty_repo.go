package mysql

import (
	"context"
	"time"

	"moovyzoo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchPartyRepository struct {
	DB *gorm.DB
}

func NewWatchPartyRepository() *WatchPartyRepository {
	return &WatchPartyRepository{DB: DB}
}

// Create stores the party with the scheduler as its first participant.
func (r *WatchPartyRepository) Create(ctx context.Context, wp *model.WatchParty) error {
	if wp.ID == "" {
		wp.ID = uuid.NewString()
	}
	wp.ParticipantCount = 1
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(wp).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.WatchPartyParticipant{
			ID:       uuid.NewString(),
			StreamID: wp.ID,
			UserID:   wp.CreatedBy,
			JoinedAt: time.Now(),
		}).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventInsert, "habitat_streams", wp.ID, wp.HabitatID, map[string]any{
			"title":          wp.Title,
			"scheduled_time": wp.ScheduledTime,
		})
	})
}

func (r *WatchPartyRepository) FindByID(ctx context.Context, id string) (*model.WatchParty, error) {
	var wp model.WatchParty
	err := r.DB.WithContext(ctx).First(&wp, "id = ?", id).Error
	return &wp, err
}

// ListUpcoming returns parties not yet finished, soonest first.
func (r *WatchPartyRepository) ListUpcoming(ctx context.Context, habitatID string, now time.Time) ([]model.WatchParty, error) {
	var list []model.WatchParty
	err := r.DB.WithContext(ctx).
		Where("habitat_id = ? AND scheduled_time >= ?", habitatID, now).
		Order("scheduled_time ASC").
		Find(&list).Error
	return list, err
}

func (r *WatchPartyRepository) ParticipantExists(ctx context.Context, streamID, userID string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.WatchPartyParticipant{}).
		Where("stream_id = ? AND user_id = ?", streamID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *WatchPartyRepository) AddParticipant(ctx context.Context, streamID, habitatID, userID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stream_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&model.WatchPartyParticipant{
			ID:       uuid.NewString(),
			StreamID: streamID,
			UserID:   userID,
			JoinedAt: time.Now(),
		}).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventInsert, "habitat_stream_participants", userID, habitatID, map[string]any{
			"stream_id": streamID,
		})
	})
}

func (r *WatchPartyRepository) RemoveParticipant(ctx context.Context, streamID, habitatID, userID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stream_id = ? AND user_id = ?", streamID, userID).
			Delete(&model.WatchPartyParticipant{}).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventDelete, "habitat_stream_participants", userID, habitatID, map[string]any{
			"stream_id": streamID,
		})
	})
}

// RecountParticipants mirrors the member_count strategy: re-derive, persist.
func (r *WatchPartyRepository) RecountParticipants(ctx context.Context, streamID string) (int64, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&model.WatchPartyParticipant{}).
		Where("stream_id = ?", streamID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	if err := r.DB.WithContext(ctx).Model(&model.WatchParty{}).
		Where("id = ?", streamID).
		UpdateColumn("participant_count", count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListJoinedStreamIDs returns the ids of the habitat's parties the user has
// joined, in one query; the dashboard derives is_participant flags from it.
func (r *WatchPartyRepository) ListJoinedStreamIDs(ctx context.Context, habitatID, userID string) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.WatchPartyParticipant{}).
		Joins("JOIN habitat_streams s ON s.id = habitat_stream_participants.stream_id").
		Where("s.habitat_id = ? AND habitat_stream_participants.user_id = ?", habitatID, userID).
		Pluck("habitat_stream_participants.stream_id", &ids).Error
	return ids, err
}

func (r *WatchPartyRepository) ListParticipantIDs(ctx context.Context, streamID string) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.WatchPartyParticipant{}).
		Where("stream_id = ?", streamID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// ListParticipantEmails joins users for reminder delivery.
func (r *WatchPartyRepository) ListParticipantEmails(ctx context.Context, streamID string) ([]string, error) {
	var emails []string
	err := r.DB.WithContext(ctx).Model(&model.WatchPartyParticipant{}).
		Joins("JOIN users u ON u.id = habitat_stream_participants.user_id").
		Where("habitat_stream_participants.stream_id = ?", streamID).
		Pluck("u.email", &emails).Error
	return emails, err
}
