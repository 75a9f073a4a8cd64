package model

import "time"

type Message struct {
	ID        string `gorm:"primaryKey;size:36"`
	HabitatID string `gorm:"size:36;not null;index"`
	ChatID    string `gorm:"size:36;not null;index:idx_chat_time"`
	UserID    string `gorm:"size:36;not null"`
	Content   string `gorm:"size:1000;not null"`
	CreatedAt time.Time `gorm:"index:idx_chat_time"`
}

func (Message) TableName() string {
	return "habitat_messages"
}

// MessageWithAuthor joins the author's profile projection at read time.
type MessageWithAuthor struct {
	Message
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}
