package model

import "time"

type Poll struct {
	ID        string `gorm:"primaryKey;size:36"`
	HabitatID string `gorm:"size:36;not null;index"`
	Title     string `gorm:"size:200;not null"`
	Options   string `gorm:"type:json;not null"` // option label -> vote count
	CreatedBy string `gorm:"size:36;not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Poll) TableName() string {
	return "habitat_polls"
}

// PollVote pins one vote per (poll, user); the counted tally lives in
// Poll.Options.
type PollVote struct {
	ID        string `gorm:"primaryKey;size:36"`
	PollID    string `gorm:"size:36;not null;index;uniqueIndex:uk_poll_user"`
	UserID    string `gorm:"size:36;not null;uniqueIndex:uk_poll_user"`
	Option    string `gorm:"size:100;not null"`
	CreatedAt time.Time
}

func (PollVote) TableName() string {
	return "habitat_poll_votes"
}
