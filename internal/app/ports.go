package app

import (
	"context"
	"time"

	"quiz-sitting-service/internal/domain"
)

// QuizRepository loads a quiz with its questions by slug (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, slug string) (domain.Quiz, error)
}

// QuizFilter narrows catalogue listings.
type QuizFilter struct {
	IncludeDrafts bool
	Category      string
}

// Catalog serves the read side of quiz content.
type Catalog interface {
	ListQuizzes(ctx context.Context, filter QuizFilter) ([]domain.Quiz, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CategoryByName(ctx context.Context, name string) (domain.Category, error)
	// Question fetches any question variant by id.
	Question(ctx context.Context, id int64) (domain.Question, error)
}

// SittingFilter narrows sitting listings. Empty fields match everything.
type SittingFilter struct {
	UserID    string
	Complete  *bool
	ExamOnly  bool
	QuizTitle string // case-insensitive substring
	Username  string // case-insensitive substring
}

// SittingStore persists authenticated progress records.
type SittingStore interface {
	// GetOrCreate returns the incomplete sitting of user for quiz, calling
	// build to create one when none exists.
	GetOrCreate(ctx context.Context, userID string, quizID int64, build func() domain.Sitting) (domain.Sitting, bool, error)
	Get(ctx context.Context, id int64) (domain.Sitting, error)
	Save(ctx context.Context, sitting *domain.Sitting) error
	Delete(ctx context.Context, id int64) error
	HasCompleted(ctx context.Context, userID string, quizID int64) (bool, error)
	List(ctx context.Context, filter SittingFilter) ([]domain.Sitting, error)
}

// ScoreFilter narrows score listings. Zero values match everything.
type ScoreFilter struct {
	UserID string
	Round  int
}

// ScoreStore is append-only.
type ScoreStore interface {
	Add(ctx context.Context, score domain.Score) error
	List(ctx context.Context, filter ScoreFilter) ([]domain.Score, error)
}

// ProgressStore keeps per-user category tallies.
type ProgressStore interface {
	GetOrCreate(ctx context.Context, userID string) (domain.Progress, error)
	Save(ctx context.Context, progress domain.Progress) error
}

// AnswerRecorder commits one scored answer: the advanced sitting, its Score
// row and the user's category tally, all or nothing.
type AnswerRecorder interface {
	RecordAnswer(ctx context.Context, sitting *domain.Sitting, score domain.Score, tally func(*domain.Progress)) error
}

// UserStore registers principals so aggregate views can list them.
type UserStore interface {
	Upsert(ctx context.Context, user domain.User) error
	List(ctx context.Context) ([]domain.User, error)
}

// SessionStore holds anonymous session entries as JSON values under
// namespaced keys.
type SessionStore interface {
	// Get decodes the entry into dst and reports whether it existed.
	Get(ctx context.Context, sessionID, key string, dst any) (bool, error)
	Set(ctx context.Context, sessionID, key string, value any) error
	Delete(ctx context.Context, sessionID string, keys ...string) error
	SetExpiry(ctx context.Context, sessionID string, ttl time.Duration) error
}
