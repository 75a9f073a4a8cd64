package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event is a typed row-change notification carried on the change topic.
type Event struct {
	Kind      string          `json:"kind"` // insert / update / delete
	Table     string          `json:"table"`
	RowID     string          `json:"row_id"`
	HabitatID string          `json:"habitat_id"`
	Payload   json.RawMessage `json:"payload"`
}

type Sink func(Event)

// EventReader is the consumer surface the bridge drives; satisfied by
// *kafka.Reader.
type EventReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// ReaderFactory builds a fresh reader per (re)connect attempt.
type ReaderFactory func() EventReader

type BridgeConfig struct {
	BaseDelay   time.Duration // first reconnect delay; doubles per attempt
	MaxDelay    time.Duration // backoff cap
	MaxAttempts int           // consecutive failures before giving up; 0 = never
}

func (c *BridgeConfig) defaults() {
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
}

type subscription struct {
	table     string // "" matches any table
	habitatID string // "" matches any habitat
	sink      Sink
}

// Bridge consumes the change topic and forwards matching events to sinks.
// Connect/Disconnect are explicit; a broken reader is rebuilt with
// exponential backoff, and the attempt counter resets on every delivered
// message.
type Bridge struct {
	newReader ReaderFactory
	cfg       BridgeConfig
	onFailure func(error)

	mu     sync.Mutex
	subs   []subscription
	cancel context.CancelFunc
	done   chan struct{}
}

func NewBridge(cfg BridgeConfig, factory ReaderFactory, onFailure func(error)) *Bridge {
	cfg.defaults()
	if onFailure == nil {
		onFailure = func(err error) { log.Printf("bridge: giving up: %v", err) }
	}
	return &Bridge{newReader: factory, cfg: cfg, onFailure: onFailure}
}

// NewKafkaBridge wires the bridge to a consumer-group reader.
func NewKafkaBridge(brokers []string, topic, groupID string, cfg BridgeConfig, onFailure func(error)) *Bridge {
	factory := func() EventReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		})
	}
	return NewBridge(cfg, factory, onFailure)
}

// Subscribe registers a sink for events matching the filter; empty filter
// fields match everything. Safe to call before or after Connect.
func (b *Bridge) Subscribe(table, habitatID string, sink Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{table: table, habitatID: habitatID, sink: sink})
}

var ErrAlreadyConnected = errors.New("bridge already connected")

func (b *Bridge) Connect() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		return ErrAlreadyConnected
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan struct{})
	go b.run(ctx)
	return nil
}

func (b *Bridge) Disconnect() {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel = nil
	b.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// run is the reconnect state machine: consume until the reader breaks, then
// back off and rebuild, doubling the delay up to the cap. MaxAttempts
// consecutive failures end the bridge via onFailure.
func (b *Bridge) run(ctx context.Context) {
	defer close(b.done)

	attempts := 0
	delay := b.cfg.BaseDelay
	for {
		reader := b.newReader()
		err := b.consume(ctx, reader, func() {
			attempts = 0
			delay = b.cfg.BaseDelay
		})
		_ = reader.Close()
		if ctx.Err() != nil {
			return
		}

		attempts++
		if b.cfg.MaxAttempts > 0 && attempts >= b.cfg.MaxAttempts {
			b.onFailure(err)
			return
		}
		log.Printf("bridge: reader failed (attempt %d), reconnecting in %s: %v", attempts, delay, err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > b.cfg.MaxDelay {
			delay = b.cfg.MaxDelay
		}
	}
}

func (b *Bridge) consume(ctx context.Context, reader EventReader, onDelivered func()) error {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return err
		}
		var ev Event
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			log.Printf("bridge: bad event payload: %v", err)
			continue
		}
		b.dispatch(ev)
		onDelivered()
	}
}

func (b *Bridge) dispatch(ev Event) {
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, sub := range subs {
		if sub.table != "" && sub.table != ev.Table {
			continue
		}
		if sub.habitatID != "" && sub.habitatID != ev.HabitatID {
			continue
		}
		sub.sink(ev)
	}
}
