package app

import (
	"context"

	"quiz-sitting-service/internal/domain"
	"quiz-sitting-service/internal/grading"
)

// progression is the per-identity state behind a quiz attempt: a persisted
// Sitting for signed-in users, session entries for anonymous ones.
type progression interface {
	// current returns the question at the head of the remaining queue.
	current() (int64, bool)
	progress() Progress
	// record persists the outcome of the head question and pops it.
	record(ctx context.Context, quiz domain.Quiz, question domain.Question, sub domain.Submission, outcome grading.Outcome) error
	exhausted() bool
	finalize(ctx context.Context, quiz domain.Quiz, previous *Previous) (*ResultPage, error)
}

// buildOrder is the queue a new attempt starts with: authoring order,
// optionally shuffled, then capped at MaxQuestions.
func (t *QuizTaker) buildOrder(quiz domain.Quiz) []int64 {
	ids := quiz.QuestionIDs()
	if quiz.RandomOrder {
		t.shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}
	if quiz.MaxQuestions > 0 && quiz.MaxQuestions < len(ids) {
		ids = ids[:quiz.MaxQuestions]
	}
	return ids
}

func guessText(q domain.Question, sub domain.Submission) string {
	if q.Kind == domain.KindMusic {
		return sub.Answer + " - " + sub.Title
	}
	checker, err := grading.For(q)
	if err != nil {
		return sub.Answer
	}
	return checker.RenderGuess(sub.Answer)
}
