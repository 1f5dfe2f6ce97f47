package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisSinkPublishes(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisSink(RedisConfig{Enabled: true, DSN: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if s.Channel != defaultRedisChannel {
		t.Fatalf("channel = %q", s.Channel)
	}
	sub := s.Client.Subscribe(context.Background(), s.Channel)
	defer sub.Close()
	if _, err := sub.Receive(context.Background()); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	e := New(ActionUpdated, 5, "1", nil)
	e.ID = "evt-2"
	if err := s.Emit(context.Background(), e); err != nil {
		t.Fatalf("emit: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got Event
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("payload: %v", err)
		}
		if got.Action != ActionUpdated || got.ID != "evt-2" || got.FormID != 5 {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRedisSinkDisabled(t *testing.T) {
	s, err := NewRedisSink(RedisConfig{Enabled: false})
	if err != nil || s != nil {
		t.Fatalf("disabled config should yield nil sink, got %v %v", s, err)
	}
}
