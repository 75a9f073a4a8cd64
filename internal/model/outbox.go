package model

import "time"

// ChangeOutbox rows are written in the same transaction as the mutation they
// describe and drained to the event stream by the relayer.
type ChangeOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:16;not null"` // insert / update / delete
	Table     string `gorm:"column:source_table;size:32;not null"`
	RowID     string `gorm:"size:36;not null"`
	HabitatID string `gorm:"size:36;not null;index"`
	Payload   string `gorm:"type:json;not null"`
	Status    int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ChangeOutbox) TableName() string { return "change_outbox" }
