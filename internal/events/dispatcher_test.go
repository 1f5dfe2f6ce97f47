package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordSink struct {
	mu     sync.Mutex
	events []Event
	fail   bool
}

func (s *recordSink) Emit(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink down")
	}
	s.events = append(s.events, e)
	return nil
}

type recordDLQ struct {
	mu     sync.Mutex
	stored []Event
}

func (q *recordDLQ) Store(_ context.Context, e Event, _ int, _ string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stored = append(q.stored, e)
	return nil
}

func TestDispatcherAssignsEventID(t *testing.T) {
	sink := &recordSink{}
	d := NewDispatcher(Config{}, nil, sink)
	d.Dispatch(context.Background(), New(ActionCreated, 7, "1", nil))

	deadline := time.Now().Add(2 * time.Second)
	for {
		sink.mu.Lock()
		n := len(sink.events)
		sink.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("event never delivered")
		}
		time.Sleep(10 * time.Millisecond)
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	got := sink.events[0]
	if got.ID == "" {
		t.Fatal("dispatcher must assign an event id")
	}
	if got.Action != ActionCreated || got.FormID != 7 || got.Actor != "1" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestDispatcherSurvivesCallerCancel(t *testing.T) {
	sink := &recordSink{}
	d := NewDispatcher(Config{}, nil, sink)
	ctx, cancel := context.WithCancel(context.Background())
	d.Dispatch(ctx, New(ActionUpdated, 3, "1", nil))
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for {
		sink.mu.Lock()
		n := len(sink.events)
		sink.mu.Unlock()
		if n == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("delivery must not be tied to the caller's context")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDispatcherFailuresGoToDLQ(t *testing.T) {
	sink := &recordSink{fail: true}
	dlq := &recordDLQ{}
	cfg := Config{}
	cfg.Retry.MaxAttempts = 2
	cfg.Retry.InitialDelay = time.Millisecond
	d := NewDispatcher(cfg, dlq, sink)
	e := New(ActionDeleted, 9, "1", nil)
	e.ID = "evt-3"
	d.Dispatch(context.Background(), e)

	deadline := time.Now().Add(2 * time.Second)
	for {
		dlq.mu.Lock()
		n := len(dlq.stored)
		dlq.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("failed event never reached the DLQ")
		}
		time.Sleep(10 * time.Millisecond)
	}
	dlq.mu.Lock()
	defer dlq.mu.Unlock()
	if dlq.stored[0].ID != "evt-3" || dlq.stored[0].FormID != 9 {
		t.Fatalf("unexpected DLQ event: %+v", dlq.stored[0])
	}
}
