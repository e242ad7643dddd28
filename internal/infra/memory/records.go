package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"quiz-sitting-service/internal/app"
	"quiz-sitting-service/internal/domain"
)

// SittingStore is an in-memory implementation of app.SittingStore.
type SittingStore struct {
	mu       sync.RWMutex
	nextID   int64
	sittings map[int64]domain.Sitting
}

func NewSittingStore() *SittingStore {
	return &SittingStore{sittings: make(map[int64]domain.Sitting)}
}

func (s *SittingStore) GetOrCreate(_ context.Context, userID string, quizID int64, build func() domain.Sitting) (domain.Sitting, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sitting := range s.sittings {
		if sitting.UserID == userID && sitting.QuizID == quizID && !sitting.Complete {
			return cloneSitting(sitting), false, nil
		}
	}
	s.nextID++
	sitting := build()
	sitting.ID = s.nextID
	s.sittings[sitting.ID] = cloneSitting(sitting)
	return sitting, true, nil
}

func (s *SittingStore) Get(_ context.Context, id int64) (domain.Sitting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sitting, ok := s.sittings[id]
	if !ok {
		return domain.Sitting{}, domain.ErrSittingNotFound
	}
	return cloneSitting(sitting), nil
}

func (s *SittingStore) Save(_ context.Context, sitting *domain.Sitting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sittings[sitting.ID]; !ok {
		return domain.ErrSittingNotFound
	}
	s.sittings[sitting.ID] = cloneSitting(*sitting)
	return nil
}

func (s *SittingStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sittings, id)
	return nil
}

func (s *SittingStore) HasCompleted(_ context.Context, userID string, quizID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sitting := range s.sittings {
		if sitting.UserID == userID && sitting.QuizID == quizID && sitting.Complete {
			return true, nil
		}
	}
	return false, nil
}

func (s *SittingStore) List(_ context.Context, filter app.SittingFilter) ([]domain.Sitting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Sitting, 0)
	for _, sitting := range s.sittings {
		if filter.UserID != "" && sitting.UserID != filter.UserID {
			continue
		}
		if filter.Complete != nil && sitting.Complete != *filter.Complete {
			continue
		}
		if filter.ExamOnly && !sitting.ExamPaper {
			continue
		}
		if !containsFold(sitting.QuizTitle, filter.QuizTitle) || !containsFold(sitting.Username, filter.Username) {
			continue
		}
		out = append(out, cloneSitting(sitting))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func cloneSitting(s domain.Sitting) domain.Sitting { return s.Clone() }

// ScoreStore is an append-only in-memory score table.
type ScoreStore struct {
	mu     sync.RWMutex
	nextID int64
	scores []domain.Score
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{}
}

func (s *ScoreStore) Add(_ context.Context, score domain.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	score.ID = s.nextID
	s.scores = append(s.scores, score)
	return nil
}

func (s *ScoreStore) List(_ context.Context, filter app.ScoreFilter) ([]domain.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Score, 0, len(s.scores))
	for _, score := range s.scores {
		if filter.UserID != "" && score.UserID != filter.UserID {
			continue
		}
		if filter.Round != 0 && score.Round != filter.Round {
			continue
		}
		out = append(out, score)
	}
	return out, nil
}

// ProgressStore keeps per-user category tallies in memory.
type ProgressStore struct {
	mu       sync.Mutex
	progress map[string]domain.Progress
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{progress: make(map[string]domain.Progress)}
}

func (s *ProgressStore) GetOrCreate(_ context.Context, userID string) (domain.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[userID]
	if !ok {
		p = domain.Progress{UserID: userID, Scores: map[string]domain.CategoryScore{}}
		s.progress[userID] = p
	}
	scores := make(map[string]domain.CategoryScore, len(p.Scores))
	for k, v := range p.Scores {
		scores[k] = v
	}
	return domain.Progress{UserID: userID, Scores: scores}, nil
}

func (s *ProgressStore) Save(_ context.Context, progress domain.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[progress.UserID] = progress
	return nil
}

// UserStore registers users in first-seen order.
type UserStore struct {
	mu    sync.RWMutex
	order []string
	users map[string]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) Upsert(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		s.order = append(s.order, user.ID)
	}
	s.users[user.ID] = user
	return nil
}

func (s *UserStore) List(context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.users[id])
	}
	return out, nil
}
