package model

import "time"

type Habitat struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
	Tags        string `gorm:"type:json"` // JSON array, lowercased and deduped before write
	MemberCount int64  `gorm:"not null;default:0"`
	IsPublic    bool   `gorm:"not null;default:true;index"`
	CreatedBy   string `gorm:"size:36;not null;index"`
	BannerURL   string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type HabitatMember struct {
	ID         string `gorm:"primaryKey;size:36"`
	HabitatID  string `gorm:"size:36;not null;index;uniqueIndex:uk_habitat_user"`
	UserID     string `gorm:"size:36;not null;index;uniqueIndex:uk_habitat_user"`
	JoinedAt   time.Time
	LastActive time.Time `gorm:"index"`
}

func (HabitatMember) TableName() string {
	return "habitat_members"
}

// Role is derived at read time by comparing Habitat.CreatedBy to the
// requesting user; it is never stored.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleMember    Role = "member"
	RoleNonMember Role = "non_member"
)
