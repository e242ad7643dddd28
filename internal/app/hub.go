package app

import (
	"context"
	"log"
	"sync"
)

// Hub fans fresh leaderboards out to live subscribers whenever a score is
// recorded. Rebuilds happen in Run, never on the recording request; bursts of
// scores coalesce into one rebuild.
type Hub struct {
	board *Scoreboard
	dirty chan struct{}

	mu          sync.Mutex
	subscribers map[chan Leaderboard]struct{}
}

func NewHub(board *Scoreboard) *Hub {
	return &Hub{
		board:       board,
		dirty:       make(chan struct{}, 1),
		subscribers: make(map[chan Leaderboard]struct{}),
	}
}

// Subscribe returns a channel primed with the current leaderboard.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *Hub) Subscribe(ctx context.Context) (<-chan Leaderboard, func(), error) {
	initial, err := h.board.Leaderboard(ctx)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan Leaderboard, 8)
	ch <- initial

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel, nil
}

// ScoreRecorded implements ScoreListener. It only flags the leaderboard as
// stale and returns immediately.
func (h *Hub) ScoreRecorded(context.Context) {
	select {
	case h.dirty <- struct{}{}:
	default:
	}
}

// Run rebuilds and broadcasts the leaderboard after recorded scores until ctx
// is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.dirty:
			h.refresh(ctx)
		}
	}
}

func (h *Hub) refresh(ctx context.Context) {
	if h.subscriberCount() == 0 {
		return
	}
	lb, err := h.board.Leaderboard(ctx)
	if err != nil {
		log.Printf("leaderboard refresh failed: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- lb:
		default:
			// Slow reader: drop its stale update in favour of the newest one.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

func (h *Hub) subscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
