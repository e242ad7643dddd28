package app_test

import (
	"context"
	"testing"
	"time"

	"quiz-sitting-service/internal/app"
	"quiz-sitting-service/internal/domain"
	"quiz-sitting-service/internal/infra/memory"
)

type fixture struct {
	catalog  *memory.Catalog
	sittings *memory.SittingStore
	scores   *memory.ScoreStore
	progress *memory.ProgressStore
	users    *memory.UserStore
	sessions *memory.SessionStore
	board    *app.Scoreboard
	hub      *app.Hub
	taker    *app.QuizTaker
	marking  *app.MarkingService
}

func newFixture(t *testing.T, quizzes ...domain.Quiz) *fixture {
	t.Helper()
	f := newFixtureWithoutHub(t, quizzes...)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go f.hub.Run(ctx)
	return f
}

// newFixtureWithoutHub leaves the hub worker stopped.
func newFixtureWithoutHub(t *testing.T, quizzes ...domain.Quiz) *fixture {
	t.Helper()
	f := &fixture{
		catalog:  memory.NewCatalog(memory.CatalogData{Categories: []domain.Category{{ID: 1, Name: "Geography"}}, Quizzes: quizzes}),
		sittings: memory.NewSittingStore(),
		scores:   memory.NewScoreStore(),
		progress: memory.NewProgressStore(),
		users:    memory.NewUserStore(),
		sessions: memory.NewSessionStore(),
	}
	f.board = app.NewScoreboard(f.catalog, f.scores, f.users, f.progress, f.sittings)
	f.hub = app.NewHub(f.board)
	f.taker = app.NewQuizTaker(app.TakerDeps{
		Quizzes:  memory.NewQuizRepository(f.catalog, time.Minute),
		Catalog:  f.catalog,
		Sittings: f.sittings,
		Scores:   f.scores,
		Progress: f.progress,
		Users:    f.users,
		Sessions: f.sessions,
		Listener: f.hub,
	}).WithClock(func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }, nil)
	f.marking = app.NewMarkingService(f.sittings, f.catalog)
	return f
}

func (f *fixture) take(t *testing.T, req app.TakeRequest, answer, title string) app.TakeResult {
	t.Helper()
	var sub *domain.Submission
	if answer != "" || title != "" {
		sub = &domain.Submission{Answer: answer, Title: title}
	}
	result, err := f.taker.Take(context.Background(), req, sub)
	if err != nil {
		t.Fatalf("take %s with %q/%q: %v", req.Slug, answer, title, err)
	}
	return result
}

var (
	alice  = domain.Principal{UserID: "u-alice", Username: "alice"}
	bob    = domain.Principal{UserID: "u-bob", Username: "bob"}
	marker = domain.Principal{UserID: "u-marker", Username: "marker", Permissions: []string{domain.PermViewSittings}}
	editor = domain.Principal{UserID: "u-editor", Username: "editor", Permissions: []string{domain.PermChangeQuiz}}
)

func roundOne() domain.Quiz {
	return domain.Quiz{
		ID:       1,
		Title:    "Round 1",
		Slug:     "round-1",
		Category: "Geography",
		Questions: []domain.Question{
			{
				ID:       11,
				Kind:     domain.KindMultipleChoice,
				Content:  "Q1 What is the capital of France?",
				Category: "Geography",
				Answers: domain.AnswerSet{Choices: []domain.Choice{
					{ID: "a", Text: "London"},
					{ID: "b", Text: "Paris", Correct: true},
				}},
			},
			{
				ID:       12,
				Kind:     domain.KindEssay,
				Content:  "Q2 Which ocean is the largest?",
				Category: "Geography",
				Answers:  domain.AnswerSet{Essay: []string{"pacific", "the pacific ocean"}},
			},
			{
				ID:       13,
				Kind:     domain.KindMusic,
				Content:  "Q3 Name this song",
				Category: "Music",
				Answers:  domain.AnswerSet{Music: []domain.MusicAnswer{{Artist: "Queen", Title: "Bohemian Rhapsody"}}},
			},
		},
	}
}

// fiveQuestionRound is a multiple-choice round whose correct answer is always "b".
func fiveQuestionRound() domain.Quiz {
	quiz := domain.Quiz{ID: 5, Title: "Round 1", Slug: "round-1"}
	for i := 1; i <= 5; i++ {
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:      int64(50 + i),
			Kind:    domain.KindMultipleChoice,
			Content: "Question",
			Number:  i,
			Answers: domain.AnswerSet{Choices: []domain.Choice{
				{ID: "a", Text: "wrong"},
				{ID: "b", Text: "right", Correct: true},
			}},
		})
	}
	return quiz
}
