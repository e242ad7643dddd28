package app

import (
	"context"
	"fmt"
	"log"

	"quiz-sitting-service/internal/domain"
	"quiz-sitting-service/internal/grading"
)

type sittingProgress struct {
	taker     *QuizTaker
	principal domain.Principal
	sitting   domain.Sitting
}

// loadSitting finds or lazily creates the user's sitting. ok is false when a
// single-attempt quiz was already completed.
func (t *QuizTaker) loadSitting(ctx context.Context, principal domain.Principal, quiz domain.Quiz) (*sittingProgress, bool, error) {
	if err := t.users.Upsert(ctx, principal.User()); err != nil {
		return nil, false, fmt.Errorf("register user: %w", err)
	}
	if quiz.SingleAttempt {
		done, err := t.sittings.HasCompleted(ctx, principal.UserID, quiz.ID)
		if err != nil {
			return nil, false, err
		}
		if done {
			return nil, false, nil
		}
	}
	sitting, created, err := t.sittings.GetOrCreate(ctx, principal.UserID, quiz.ID, func() domain.Sitting {
		return domain.NewSitting(principal.User(), quiz, t.buildOrder(quiz), t.now())
	})
	if err != nil {
		return nil, false, fmt.Errorf("load sitting: %w", err)
	}
	if created {
		answered, total := sitting.Progress()
		log.Printf("sitting %d created for user %s on %q (%d/%d)", sitting.ID, principal.UserID, quiz.Slug, answered, total)
	}
	return &sittingProgress{taker: t, principal: principal, sitting: sitting}, true, nil
}

func (p *sittingProgress) current() (int64, bool) { return p.sitting.FirstQuestion() }

func (p *sittingProgress) exhausted() bool { return p.sitting.Exhausted() }

func (p *sittingProgress) progress() Progress {
	answered, total := p.sitting.Progress()
	return Progress{Answered: answered, Total: total}
}

func (p *sittingProgress) record(ctx context.Context, quiz domain.Quiz, question domain.Question, sub domain.Submission, outcome grading.Outcome) error {
	t := p.taker
	// Parse before touching any state so a malformed title cannot leave a
	// half-written answer behind.
	round, number, err := domain.ScoreKey(quiz, question)
	if err != nil {
		return err
	}

	sitting := p.sitting.Clone()
	sitting.AddToScore(outcome.Credit)
	if outcome.Credit < 1 {
		sitting.AddIncorrect(question.ID)
	}
	sitting.AddUserAnswer(question.ID, guessText(question, sub))
	sitting.RemoveFirstQuestion()

	score := domain.Score{
		UserID:    p.principal.UserID,
		Round:     round,
		Question:  number,
		Score:     outcome.Credit,
		CreatedAt: t.now(),
	}
	tally := func(progress *domain.Progress) { progress.UpdateScore(question, outcome.Credit, 1) }
	if err := t.recorder.RecordAnswer(ctx, &sitting, score, tally); err != nil {
		return err
	}
	p.sitting = sitting

	if t.listener != nil {
		t.listener.ScoreRecorded(ctx)
	}
	return nil
}

func (p *sittingProgress) finalize(ctx context.Context, quiz domain.Quiz, previous *Previous) (*ResultPage, error) {
	t := p.taker
	s := &p.sitting

	incorrect := make([]QuestionView, 0, len(s.Incorrect))
	for _, q := range quiz.QuestionsInOrder(s.Incorrect) {
		incorrect = append(incorrect, viewOf(q))
	}

	s.MarkComplete(t.now())
	result := &ResultPage{
		Quiz:      Summarize(quiz),
		Score:     s.Score,
		MaxScore:  s.MaxScore(),
		Percent:   s.PercentCorrect(),
		Previous:  previous,
		Incorrect: incorrect,
	}
	if quiz.AnswersAtEnd {
		result.Questions = sittingQuestions(quiz, s)
		result.IncorrectQuestions = append([]int64{}, s.Incorrect...)
	}

	if quiz.ExamPaper {
		if err := t.sittings.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("save exam sitting: %w", err)
		}
	} else if err := t.sittings.Delete(ctx, s.ID); err != nil {
		return nil, fmt.Errorf("delete sitting: %w", err)
	}
	snapshot := *s
	result.Sitting = &snapshot

	log.Printf("sitting %d finished by user %s on %q: %.1f/%d", s.ID, s.UserID, quiz.Slug, s.Score, s.MaxScore())
	return result, nil
}

// sequentialRecorder writes an answer through the separate stores. The sitting
// goes first so a failed save leaves the question at the head of the queue
// with no Score row behind it.
type sequentialRecorder struct {
	sittings SittingStore
	scores   ScoreStore
	progress ProgressStore
}

func (r sequentialRecorder) RecordAnswer(ctx context.Context, sitting *domain.Sitting, score domain.Score, tally func(*domain.Progress)) error {
	if err := r.sittings.Save(ctx, sitting); err != nil {
		return fmt.Errorf("save sitting: %w", err)
	}
	if err := r.scores.Add(ctx, score); err != nil {
		return fmt.Errorf("add score: %w", err)
	}
	progress, err := r.progress.GetOrCreate(ctx, score.UserID)
	if err != nil {
		return fmt.Errorf("load progress: %w", err)
	}
	tally(&progress)
	if err := r.progress.Save(ctx, progress); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// sittingQuestions lists the sitting's questions in presentation order with
// answers and the user's guesses.
func sittingQuestions(quiz domain.Quiz, s *domain.Sitting) []RevealedQuestion {
	questions := quiz.QuestionsInOrder(s.QuestionOrder)
	out := make([]RevealedQuestion, 0, len(questions))
	for _, q := range questions {
		rq := reveal(q)
		rq.UserAnswer, _ = s.UserAnswer(q.ID)
		rq.Incorrect = s.IsIncorrect(q.ID)
		out = append(out, rq)
	}
	return out
}
