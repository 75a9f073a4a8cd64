package mysql

import (
	"context"
	"encoding/json"
	"time"

	"moovyzoo/internal/model"

	"gorm.io/gorm"
)

const (
	EventInsert = "insert"
	EventUpdate = "update"
	EventDelete = "delete"
)

type OutboxRepository struct {
	DB *gorm.DB
}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{DB: DB}
}

// insertOutbox records a row change inside the caller's transaction so the
// event cannot outlive a rolled-back mutation.
func insertOutbox(tx *gorm.DB, event, table, rowID, habitatID string, fields map[string]any) error {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["event_time"] = time.Now().UTC().Format(time.RFC3339Nano)
	payload, _ := json.Marshal(fields)
	ob := &model.ChangeOutbox{
		EventType: event,
		Table:     table,
		RowID:     rowID,
		HabitatID: habitatID,
		Payload:   string(payload),
		Status:    0,
	}
	return tx.Create(ob).Error
}

func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.ChangeOutbox, error) {
	var list []model.ChangeOutbox
	if err := r.DB.WithContext(ctx).
		Where("status=0").
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.ChangeOutbox{}).Where("id=?", id).
		Updates(map[string]any{"status": 2, "retry": gorm.Expr("retry + 1")}).Error
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.ChangeOutbox{}).Where("id=?", id).
		Update("status", 1).Error
}
