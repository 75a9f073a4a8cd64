package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"moovyzoo/internal/model"
	"moovyzoo/internal/pkg"
)

type OutboxSource interface {
	List(ctx context.Context, batchSize int) ([]model.ChangeOutbox, error)
	MarkSent(ctx context.Context, id uint64) error
	MarkFailed(ctx context.Context, id uint64) error
}

type Sender func(ctx context.Context, ob *model.ChangeOutbox) error

// OutboxRelayer drains pending change_outbox rows to the event stream on a
// ticker; at-least-once, commit order per habitat via the keyed producer.
type OutboxRelayer struct {
	repo      OutboxSource
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(repo OutboxSource, sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      repo,
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		log.Printf("outbox query err: %v", err)
		return
	}
	for i := range rows {
		ob := rows[i]
		if err := r.sender(ctx, &ob); err != nil {
			_ = r.repo.MarkFailed(ctx, ob.ID)
			continue
		}
		_ = r.repo.MarkSent(ctx, ob.ID)
	}
}

// KafkaSender serializes outbox rows as bridge events keyed by habitat id.
func KafkaSender(producer *pkg.EventProducer) Sender {
	return func(ctx context.Context, ob *model.ChangeOutbox) error {
		ev := Event{
			Kind:      ob.EventType,
			Table:     ob.Table,
			RowID:     ob.RowID,
			HabitatID: ob.HabitatID,
			Payload:   json.RawMessage(ob.Payload),
		}
		value, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		return producer.Send(ctx, ob.HabitatID, value)
	}
}

// LogSender is the dev fallback when no broker is configured.
func LogSender(ctx context.Context, ob *model.ChangeOutbox) error {
	log.Printf("OUTBOX SEND kind=%s table=%s row=%s habitat=%s", ob.EventType, ob.Table, ob.RowID, ob.HabitatID)
	return nil
}
