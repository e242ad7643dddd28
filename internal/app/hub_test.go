package app_test

import (
	"context"
	"testing"
	"time"

	"quiz-sitting-service/internal/app"
)

func TestHubPushesLeaderboardOnScore(t *testing.T) {
	f := newFixture(t, fiveQuestionRound())
	ctx := context.Background()

	updates, cancel, err := f.hub.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	initial := <-updates
	if len(initial.Users) != 0 || len(initial.RoundNames) != 1 {
		t.Fatalf("unexpected initial leaderboard %+v", initial)
	}
	if app.SubscriberCount(f.hub) != 1 {
		t.Fatalf("expected one subscriber")
	}

	req := app.TakeRequest{Principal: alice, Slug: "round-1"}
	f.take(t, req, "", "")
	f.take(t, req, "b", "")

	select {
	case lb := <-updates:
		if len(lb.Users) != 1 || lb.Users[0].Total != 1 {
			t.Fatalf("unexpected pushed leaderboard %+v", lb.Users)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a leaderboard push after the score was recorded")
	}

	cancel()
	if app.SubscriberCount(f.hub) != 0 {
		t.Fatalf("expected subscriber removed")
	}
	if _, ok := <-updates; ok {
		t.Fatalf("expected channel closed after cancel")
	}
}

func TestHubRebuildsOutsideTheRecordingRequest(t *testing.T) {
	f := newFixtureWithoutHub(t, fiveQuestionRound())
	hub := app.NewHub(f.board)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, unsubscribe, err := hub.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()
	<-updates

	for i := 0; i < 5; i++ {
		hub.ScoreRecorded(ctx)
	}
	select {
	case lb := <-updates:
		t.Fatalf("leaderboard rebuilt without a running hub: %+v", lb)
	default:
	}

	go hub.Run(ctx)
	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected the running hub to push the flagged update")
	}
	select {
	case lb := <-updates:
		t.Fatalf("expected coalesced rebuilds, got a second push %+v", lb)
	case <-time.After(100 * time.Millisecond):
	}
}
