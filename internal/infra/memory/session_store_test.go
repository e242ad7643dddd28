package memory

import (
	"context"
	"testing"
	"time"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if err := store.Set(ctx, "s1", "round-1_q_list", []int64{1, 2}); err != nil {
		t.Fatalf("set: %v", err)
	}
	var list []int64
	ok, err := store.Get(ctx, "s1", "round-1_q_list", &list)
	if err != nil || !ok {
		t.Fatalf("expected entry present, ok=%v err=%v", ok, err)
	}
	if len(list) != 2 || list[0] != 1 {
		t.Fatalf("unexpected list %v", list)
	}

	if err := store.Delete(ctx, "s1", "round-1_q_list"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := store.Get(ctx, "s1", "round-1_q_list", &list); ok {
		t.Fatalf("expected entry removed")
	}
	if ok, _ := store.Get(ctx, "other", "round-1_q_list", &list); ok {
		t.Fatalf("sessions must not share entries")
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewSessionStoreWithClock(func() time.Time { return now })

	if err := store.SetExpiry(ctx, "s1", time.Hour); err != nil {
		t.Fatalf("set expiry: %v", err)
	}
	if err := store.Set(ctx, "s1", "session_score", 3.5); err != nil {
		t.Fatalf("set: %v", err)
	}

	now = now.Add(30 * time.Minute)
	var score float64
	if ok, _ := store.Get(ctx, "s1", "session_score", &score); !ok || score != 3.5 {
		t.Fatalf("expected live entry, ok=%v score=%v", ok, score)
	}

	now = now.Add(61 * time.Minute)
	if ok, _ := store.Get(ctx, "s1", "session_score", &score); ok {
		t.Fatalf("expected session expired")
	}
}
