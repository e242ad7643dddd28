package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-sitting-service/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Hour)
	keys := domain.SessionKeysFor("round-1")

	data := domain.AnonymousQuizData{Order: []int64{3, 1, 2}, IncorrectQuestions: []int64{1}}
	if err := store.Set(ctx, "abc", keys.Data, data); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("quiz:anon:abc") {
		t.Fatalf("expected redis hash to be set")
	}
	if ttl := mr.TTL("quiz:anon:abc"); ttl != time.Hour {
		t.Fatalf("expected ttl refreshed on write, got %v", ttl)
	}

	var got domain.AnonymousQuizData
	ok, err := store.Get(ctx, "abc", keys.Data, &got)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(got.Order) != 3 || got.Order[0] != 3 || len(got.IncorrectQuestions) != 1 {
		t.Fatalf("unexpected data %+v", got)
	}

	if err := store.SetExpiry(ctx, "abc", 2*time.Hour); err != nil {
		t.Fatalf("set expiry: %v", err)
	}
	if ttl := mr.TTL("quiz:anon:abc"); ttl != 2*time.Hour {
		t.Fatalf("expected ttl 2h, got %v", ttl)
	}

	if err := store.Set(ctx, "abc", keys.Score, 1.0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("quiz:anon:abc"); ttl != 2*time.Hour {
		t.Fatalf("expected session lifetime kept across writes, got %v", ttl)
	}

	if err := store.Delete(ctx, "abc", keys.Data); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, err = store.Get(ctx, "abc", keys.Data, &got)
	if err != nil || ok {
		t.Fatalf("expected entry removed, ok=%v err=%v", ok, err)
	}
}

func TestSessionStoreExpiryBeforeFirstWrite(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour)
	if err := store.SetExpiry(ctx, "fresh", 72*time.Hour); err != nil {
		t.Fatalf("set expiry: %v", err)
	}
	if err := store.Set(ctx, "fresh", domain.SessionScoreKey, 1.5); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("quiz:anon:fresh"); ttl != 72*time.Hour {
		t.Fatalf("expected 72h lifetime on a new session, got %v", ttl)
	}

	if err := store.SetExpiry(ctx, "fresh", 0); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if err := store.Set(ctx, "fresh", domain.SessionScoreKey, 2.0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("quiz:anon:fresh"); ttl != 0 {
		t.Fatalf("expected persistent session, got ttl %v", ttl)
	}

	if err := store.Set(ctx, "other", domain.SessionScoreKey, 1.0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("quiz:anon:other"); ttl != time.Hour {
		t.Fatalf("expected store default lifetime, got %v", ttl)
	}
}

func TestSessionStoreExpires(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	if err := store.Set(ctx, "abc", domain.SessionScoreKey, 2.5); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	var score float64
	ok, err := store.Get(ctx, "abc", domain.SessionScoreKey, &score)
	if err != nil || ok {
		t.Fatalf("expected expired session, ok=%v err=%v", ok, err)
	}
}
