package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"

	"quiz-sitting-service/internal/domain"
	"quiz-sitting-service/internal/grading"
)

// ScoreListener is told whenever a Score row is written.
type ScoreListener interface {
	ScoreRecorded(ctx context.Context)
}

// TakerDeps wires the stores a QuizTaker works against.
type TakerDeps struct {
	Quizzes  QuizRepository
	Catalog  Catalog
	Sittings SittingStore
	Scores   ScoreStore
	Progress ProgressStore
	Users    UserStore
	Sessions SessionStore
	Listener ScoreListener
	// Recorder commits answers atomically; without one the sitting is saved
	// before the Score row and the tally.
	Recorder AnswerRecorder
	// SessionTTL defaults to domain.AnonymousSessionTTL.
	SessionTTL time.Duration
}

// QuizTaker drives the take-quiz state machine for both identity models.
type QuizTaker struct {
	quizzes    QuizRepository
	catalog    Catalog
	sittings   SittingStore
	scores     ScoreStore
	progress   ProgressStore
	users      UserStore
	sessions   SessionStore
	listener   ScoreListener
	recorder   AnswerRecorder
	sessionTTL time.Duration
	validate   *validator.Validate
	now        func() time.Time
	shuffle    func(n int, swap func(i, j int))
}

func NewQuizTaker(deps TakerDeps) *QuizTaker {
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = domain.AnonymousSessionTTL
	}
	recorder := deps.Recorder
	if recorder == nil {
		recorder = sequentialRecorder{sittings: deps.Sittings, scores: deps.Scores, progress: deps.Progress}
	}
	return &QuizTaker{
		quizzes:    deps.Quizzes,
		catalog:    deps.Catalog,
		sittings:   deps.Sittings,
		scores:     deps.Scores,
		progress:   deps.Progress,
		users:      deps.Users,
		sessions:   deps.Sessions,
		listener:   deps.Listener,
		recorder:   recorder,
		sessionTTL: ttl,
		validate:   validator.New(),
		now:        time.Now,
		shuffle:    rand.Shuffle,
	}
}

// WithClock is test-only for deterministic timestamps and ordering.
func (t *QuizTaker) WithClock(now func() time.Time, shuffle func(n int, swap func(i, j int))) *QuizTaker {
	if now != nil {
		t.now = now
	}
	if shuffle != nil {
		t.shuffle = shuffle
	}
	return t
}

// TakeRequest identifies who is taking which quiz.
type TakeRequest struct {
	Principal domain.Principal
	// SessionID keys anonymous state; ignored for authenticated principals.
	SessionID string
	Slug      string
}

// Take runs one request of the take-quiz cycle. A nil submission presents the
// current question; a non-nil one scores it and advances.
func (t *QuizTaker) Take(ctx context.Context, req TakeRequest, sub *domain.Submission) (TakeResult, error) {
	quiz, err := resolveQuiz(ctx, t.quizzes, req.Principal, req.Slug)
	if err != nil {
		return TakeResult{}, err
	}
	if len(quiz.Questions) == 0 {
		return TakeResult{}, fmt.Errorf("quiz %q: %w", quiz.Slug, domain.ErrNoQuestions)
	}

	prog, ok, err := t.load(ctx, req, quiz)
	if err != nil {
		return TakeResult{}, err
	}
	if !ok {
		return TakeResult{View: ViewSingleComplete, Quiz: Summarize(quiz)}, nil
	}

	var previous *Previous
	if sub != nil && !prog.exhausted() {
		previous, err = t.score(ctx, prog, quiz, *sub)
		if err != nil {
			return TakeResult{}, err
		}
	}
	if prog.exhausted() {
		result, err := prog.finalize(ctx, quiz, previous)
		if err != nil {
			return TakeResult{}, err
		}
		return TakeResult{View: ViewResult, Quiz: Summarize(quiz), Result: result}, nil
	}

	page, err := t.present(ctx, prog, quiz)
	if err != nil {
		return TakeResult{}, err
	}
	page.Previous = previous
	return TakeResult{View: ViewQuestion, Quiz: Summarize(quiz), Question: page}, nil
}

func (t *QuizTaker) load(ctx context.Context, req TakeRequest, quiz domain.Quiz) (progression, bool, error) {
	if req.Principal.IsAuthenticated() {
		p, ok, err := t.loadSitting(ctx, req.Principal, quiz)
		if p == nil {
			return nil, ok, err
		}
		return p, ok, err
	}
	if req.SessionID == "" {
		return nil, false, fmt.Errorf("anonymous take without session: %w", domain.ErrSessionStateMissing)
	}
	p, ok, err := t.loadAnonymous(ctx, req.SessionID, quiz)
	if p == nil {
		return nil, ok, err
	}
	return p, ok, err
}

// present builds the page for the head of the queue.
func (t *QuizTaker) present(ctx context.Context, prog progression, quiz domain.Quiz) (*QuestionPage, error) {
	id, _ := prog.current()
	question, err := t.question(ctx, quiz, id)
	if err != nil {
		return nil, err
	}
	checker, err := grading.For(question)
	if err != nil {
		return nil, err
	}
	return &QuestionPage{
		Quiz:     Summarize(quiz),
		Question: viewOf(question),
		Form:     formFor(question, checker),
		Progress: prog.progress(),
	}, nil
}

// score validates and grades a submission for the head question, records
// it, and returns the immediate-reveal packet (nil when answers are held
// back until the end).
func (t *QuizTaker) score(ctx context.Context, prog progression, quiz domain.Quiz, sub domain.Submission) (*Previous, error) {
	id, _ := prog.current()
	question, err := t.question(ctx, quiz, id)
	if err != nil {
		return nil, err
	}
	if err := t.validate.Struct(sub); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSubmission, err)
	}
	if question.Kind == domain.KindMusic && sub.Title == "" {
		return nil, fmt.Errorf("%w: answer_title is required", domain.ErrInvalidSubmission)
	}

	outcome, err := grading.Grade(question, sub)
	if err != nil {
		return nil, err
	}
	if err := prog.record(ctx, quiz, question, sub, outcome); err != nil {
		return nil, err
	}

	if quiz.AnswersAtEnd {
		return nil, nil
	}
	rq := reveal(question)
	return &Previous{
		Answer:       guessText(question, sub),
		Outcome:      outcome.Correct,
		Credit:       outcome.Credit,
		Question:     rq.QuestionView,
		Answers:      rq.Answers,
		QuestionType: string(question.Kind),
	}, nil
}

// question resolves an id against the loaded quiz, falling back to the
// catalogue for questions the cached copy does not carry.
func (t *QuizTaker) question(ctx context.Context, quiz domain.Quiz, id int64) (domain.Question, error) {
	if q, ok := quiz.Question(id); ok {
		return q, nil
	}
	q, err := t.catalog.Question(ctx, id)
	if errors.Is(err, domain.ErrQuestionNotFound) {
		return domain.Question{}, fmt.Errorf("quiz %q question %d: %w", quiz.Slug, id, err)
	}
	return q, err
}
