package model

import "time"

type User struct {
	ID          string `gorm:"primaryKey;size:36"`
	Username    string `gorm:"uniqueIndex;size:32;not null"`
	Password    string `gorm:"size:255;not null"`
	Email       string `gorm:"uniqueIndex;size:64;not null"`
	DisplayName string `gorm:"size:64"`
	AvatarURL   string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Profile is the projection joined onto messages and rosters.
type Profile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}
