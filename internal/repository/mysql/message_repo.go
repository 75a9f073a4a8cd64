package mysql

import (
	"context"

	"moovyzoo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{DB: DB}
}

func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return insertOutbox(tx, EventInsert, "habitat_messages", m.ID, m.HabitatID, map[string]any{
			"chat_id": m.ChatID,
			"user_id": m.UserID,
		})
	})
}

// ListByChatCursor pages a discussion newest-first with a (created_at, id)
// cursor. lastCreatedAt of zero means first page; ties on the timestamp are
// broken by id.
func (r *MessageRepository) ListByChatCursor(ctx context.Context, chatID string, lastID string, lastCreatedAt int64, limit int) ([]model.MessageWithAuthor, error) {
	q := r.DB.WithContext(ctx).Model(&model.Message{}).
		Select("habitat_messages.*, u.display_name, u.avatar_url").
		Joins("JOIN users u ON u.id = habitat_messages.user_id").
		Where("habitat_messages.chat_id = ?", chatID)
	if lastCreatedAt > 0 {
		q = q.Where("(habitat_messages.created_at < FROM_UNIXTIME(?) OR (habitat_messages.created_at = FROM_UNIXTIME(?) AND habitat_messages.id < ?))",
			lastCreatedAt, lastCreatedAt, lastID)
	}
	var list []model.MessageWithAuthor
	err := q.Order("habitat_messages.created_at DESC, habitat_messages.id DESC").
		Limit(limit).
		Scan(&list).Error
	return list, err
}
