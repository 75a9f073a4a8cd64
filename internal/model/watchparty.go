package model

import "time"

const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// WatchParty is a scheduled synchronized viewing. Media fields are
// denormalized catalog metadata; if any is set, TMDBID and MediaType must
// both be set.
type WatchParty struct {
	ID               string    `gorm:"primaryKey;size:36"`
	HabitatID        string    `gorm:"size:36;not null;index"`
	Title            string    `gorm:"size:200;not null"`
	Description      string    `gorm:"type:text"`
	ScheduledTime    time.Time `gorm:"not null;index"`
	ParticipantCount int64     `gorm:"not null;default:0"`
	MaxParticipants  int64     `gorm:"not null;default:0"` // 0 = unlimited
	CreatedBy        string    `gorm:"size:36;not null"`
	TMDBID           *int64
	MediaType        *string `gorm:"size:8"`
	MediaTitle       *string `gorm:"size:255"`
	PosterPath       *string `gorm:"size:255"`
	ReleaseDate      *string `gorm:"size:10"`
	RuntimeMinutes   *int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (WatchParty) TableName() string {
	return "habitat_streams"
}

type WatchPartyParticipant struct {
	ID       string `gorm:"primaryKey;size:36"`
	StreamID string `gorm:"size:36;not null;index;uniqueIndex:uk_stream_user"`
	UserID   string `gorm:"size:36;not null;uniqueIndex:uk_stream_user"`
	JoinedAt time.Time
}

func (WatchPartyParticipant) TableName() string {
	return "habitat_stream_participants"
}
