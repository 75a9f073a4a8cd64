package service

import (
	"context"
	"errors"
	"log"

	"moovyzoo/internal/model"
	"moovyzoo/internal/pkg"

	"gorm.io/gorm"
)

type MessageStore interface {
	Create(ctx context.Context, m *model.Message) error
	ListByChatCursor(ctx context.Context, chatID string, lastID string, lastCreatedAt int64, limit int) ([]model.MessageWithAuthor, error)
}

type MessageService struct {
	repo        MessageStore
	discussions DiscussionStore
	habitats    *HabitatService
}

func NewMessageService(repo MessageStore, discussions DiscussionStore, habitats *HabitatService) *MessageService {
	return &MessageService{repo: repo, discussions: discussions, habitats: habitats}
}

// Send validates access and content, then stores the message and refreshes
// the sender's presence timestamp.
func (s *MessageService) Send(ctx context.Context, chatID, userID, content string) (*model.Message, error) {
	content, err := pkg.ValidateMessageContent(content)
	if err != nil {
		return nil, err
	}
	d, err := s.discussions.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkg.ErrNotFound
		}
		return nil, pkg.Unexpected(err)
	}
	if err := s.habitats.ValidateAccess(ctx, d.HabitatID, userID); err != nil {
		return nil, err
	}

	m := &model.Message{
		HabitatID: d.HabitatID,
		ChatID:    chatID,
		UserID:    userID,
		Content:   content,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, pkg.Unexpected(err)
	}
	if err := s.habitats.members.TouchLastActive(ctx, d.HabitatID, userID); err != nil {
		log.Printf("message: presence touch failed habitat=%s user=%s: %v", d.HabitatID, userID, err)
	}
	return m, nil
}

// ListByChat pages newest-first; first page when lastID/lastCreatedAt are
// zero. Returns the cursor for the next page.
func (s *MessageService) ListByChat(ctx context.Context, chatID, userID string, lastID string, lastCreatedAt int64, size int) ([]model.MessageWithAuthor, string, int64, error) {
	if size <= 0 || size > 100 {
		size = 50
	}
	d, err := s.discussions.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", 0, pkg.ErrNotFound
		}
		return nil, "", 0, pkg.Unexpected(err)
	}
	if err := s.habitats.ValidateAccess(ctx, d.HabitatID, userID); err != nil {
		return nil, "", 0, err
	}

	list, err := s.repo.ListByChatCursor(ctx, chatID, lastID, lastCreatedAt, size)
	if err != nil {
		return nil, "", 0, pkg.Unexpected(err)
	}
	var nextID string
	var nextTS int64
	if len(list) > 0 {
		last := list[len(list)-1]
		nextID = last.ID
		nextTS = last.CreatedAt.Unix()
	}
	return list, nextID, nextTS, nil
}
