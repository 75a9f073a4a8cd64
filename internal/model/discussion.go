package model

import "time"

type Discussion struct {
	ID          string `gorm:"primaryKey;size:36"`
	HabitatID   string `gorm:"size:36;not null;index"`
	Name        string `gorm:"size:200;not null"`
	Description string `gorm:"type:text"`
	CreatedBy   string `gorm:"size:36;not null"`
	IsActive    bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Discussion) TableName() string {
	return "habitat_discussions"
}

// DiscussionStats annotates a discussion with message totals for the
// dashboard; filled by a single joined query.
type DiscussionStats struct {
	Discussion
	MessageCount  int64      `json:"message_count"`
	LastMessageAt *time.Time `json:"last_message_at"`
}
