package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

// scriptedReader returns its queued messages in order, then fails with
// errBroken. Blocking readers wait for ctx cancellation instead.
type scriptedReader struct {
	mu     sync.Mutex
	msgs   [][]byte
	block  bool
	closed bool
}

var errBroken = errors.New("reader broken")

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if r.block {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return kafka.Message{}, errBroken
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return kafka.Message{Value: msg}, nil
}

func (r *scriptedReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func eventJSON(t *testing.T, ev Event) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestBridgeDispatchFiltering(t *testing.T) {
	b := NewBridge(BridgeConfig{}, nil, nil)

	var all, table, habitat, both []Event
	b.Subscribe("", "", func(ev Event) { all = append(all, ev) })
	b.Subscribe("habitat_messages", "", func(ev Event) { table = append(table, ev) })
	b.Subscribe("", "h-1", func(ev Event) { habitat = append(habitat, ev) })
	b.Subscribe("habitat_polls", "h-2", func(ev Event) { both = append(both, ev) })

	b.dispatch(Event{Kind: "insert", Table: "habitat_messages", HabitatID: "h-1"})
	b.dispatch(Event{Kind: "update", Table: "habitat_polls", HabitatID: "h-2"})

	if len(all) != 2 {
		t.Fatalf("wildcard sink got %d events, want 2", len(all))
	}
	if len(table) != 1 || table[0].HabitatID != "h-1" {
		t.Fatalf("table filter got %v", table)
	}
	if len(habitat) != 1 || habitat[0].Table != "habitat_messages" {
		t.Fatalf("habitat filter got %v", habitat)
	}
	if len(both) != 1 || both[0].Kind != "update" {
		t.Fatalf("combined filter got %v", both)
	}
}

func TestBridgeGivesUpAfterMaxAttempts(t *testing.T) {
	built := 0
	factory := func() EventReader {
		built++
		return &scriptedReader{}
	}
	failed := make(chan error, 1)
	b := NewBridge(BridgeConfig{BaseDelay: time.Millisecond, MaxAttempts: 3}, factory, func(err error) {
		failed <- err
	})

	if err := b.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	select {
	case err := <-failed:
		if !errors.Is(err, errBroken) {
			t.Fatalf("onFailure got %v, want errBroken", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("bridge never gave up")
	}
	b.Disconnect()
	if built != 3 {
		t.Fatalf("built %d readers, want 3", built)
	}
}

func TestBridgeDeliveryResetsAttempts(t *testing.T) {
	ev := Event{Kind: "insert", Table: "habitat_messages", RowID: "m-1", HabitatID: "h-1"}

	// First reader fails outright, second delivers one event before failing
	// (resetting the counter), so a third reader is still attempted before
	// the two-failure limit trips. Without the reset the bridge would stop
	// after two readers.
	built := 0
	readers := []*scriptedReader{
		{},
		{msgs: [][]byte{eventJSON(t, ev)}},
		{},
	}
	factory := func() EventReader {
		r := readers[built]
		built++
		return r
	}

	got := make(chan Event, 4)
	failed := make(chan error, 1)
	b := NewBridge(BridgeConfig{BaseDelay: time.Millisecond, MaxAttempts: 2}, factory, func(err error) {
		failed <- err
	})
	b.Subscribe("", "", func(ev Event) { got <- ev })

	if err := b.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	select {
	case <-failed:
	case <-time.After(2 * time.Second):
		t.Fatal("bridge never gave up")
	}
	b.Disconnect()

	if built != 3 {
		t.Fatalf("built %d readers, want 3 (reset after delivery)", built)
	}
	select {
	case delivered := <-got:
		if delivered.RowID != "m-1" {
			t.Fatalf("delivered %+v", delivered)
		}
	default:
		t.Fatal("event never delivered")
	}
}

func TestBridgeConnectTwice(t *testing.T) {
	factory := func() EventReader { return &scriptedReader{block: true} }
	b := NewBridge(BridgeConfig{BaseDelay: time.Millisecond}, factory, nil)

	if err := b.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer b.Disconnect()
	if err := b.Connect(); !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("second Connect: got %v, want ErrAlreadyConnected", err)
	}
}

func TestBridgeDisconnectStopsRun(t *testing.T) {
	reader := &scriptedReader{block: true}
	factory := func() EventReader { return reader }
	b := NewBridge(BridgeConfig{BaseDelay: time.Millisecond}, factory, nil)

	if err := b.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	stopped := make(chan struct{})
	go func() {
		b.Disconnect()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Disconnect hung")
	}
	// Idempotent.
	b.Disconnect()
}

func TestBridgeSkipsBadPayloads(t *testing.T) {
	ev := Event{Kind: "insert", Table: "habitat_messages", RowID: "m-2", HabitatID: "h-1"}
	reader := &scriptedReader{msgs: [][]byte{[]byte("{not json"), eventJSON(t, ev)}}
	factory := func() EventReader { return reader }

	got := make(chan Event, 2)
	failed := make(chan error, 1)
	b := NewBridge(BridgeConfig{BaseDelay: time.Millisecond, MaxAttempts: 1}, factory, func(err error) {
		failed <- err
	})
	b.Subscribe("", "", func(ev Event) { got <- ev })

	if err := b.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	select {
	case <-failed:
	case <-time.After(2 * time.Second):
		t.Fatal("bridge never finished")
	}
	b.Disconnect()

	select {
	case delivered := <-got:
		if delivered.RowID != "m-2" {
			t.Fatalf("delivered %+v", delivered)
		}
	default:
		t.Fatal("good event after bad payload never delivered")
	}
}
