package app

import (
	"context"
	"fmt"
	"log"
	"slices"

	"quiz-sitting-service/internal/domain"
	"quiz-sitting-service/internal/grading"
)

type anonProgress struct {
	taker     *QuizTaker
	sessionID string
	keys      domain.SessionKeys
	state     domain.AnonymousQuizState
}

// loadAnonymous reads the per-quiz session entries or starts a new attempt.
// ok is false when a single-attempt quiz already ran to completion in this
// session; the retained score entry without a question list marks that.
func (t *QuizTaker) loadAnonymous(ctx context.Context, sessionID string, quiz domain.Quiz) (*anonProgress, bool, error) {
	keys := domain.SessionKeysFor(quiz.Slug)
	p := &anonProgress{taker: t, sessionID: sessionID, keys: keys}

	hasScore, err := t.sessions.Get(ctx, sessionID, keys.Score, &p.state.Score)
	if err != nil {
		return nil, false, fmt.Errorf("read session score: %w", err)
	}
	hasList, err := t.sessions.Get(ctx, sessionID, keys.Remaining, &p.state.Remaining)
	if err != nil {
		return nil, false, fmt.Errorf("read session question list: %w", err)
	}

	if hasList && len(p.state.Remaining) > 0 {
		hasData, err := t.sessions.Get(ctx, sessionID, keys.Data, &p.state.Data)
		if err != nil {
			return nil, false, fmt.Errorf("read session data: %w", err)
		}
		if !hasData || !hasScore {
			return nil, false, fmt.Errorf("quiz %q: %w", quiz.Slug, domain.ErrSessionStateMissing)
		}
		return p, true, nil
	}

	if quiz.SingleAttempt && hasScore {
		return nil, false, nil
	}
	if err := p.start(ctx, quiz); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (p *anonProgress) start(ctx context.Context, quiz domain.Quiz) error {
	t := p.taker
	if err := t.sessions.SetExpiry(ctx, p.sessionID, t.sessionTTL); err != nil {
		return fmt.Errorf("set session expiry: %w", err)
	}
	order := t.buildOrder(quiz)
	p.state = domain.AnonymousQuizState{
		Score:     0,
		Remaining: order,
		Data:      domain.AnonymousQuizData{Order: order, IncorrectQuestions: []int64{}},
	}
	if err := t.sessions.Set(ctx, p.sessionID, p.keys.Score, p.state.Score); err != nil {
		return err
	}
	if err := t.sessions.Set(ctx, p.sessionID, p.keys.Remaining, p.state.Remaining); err != nil {
		return err
	}
	if err := t.sessions.Set(ctx, p.sessionID, p.keys.Data, p.state.Data); err != nil {
		return err
	}
	log.Printf("anonymous session %s started %q with %d questions", p.sessionID, quiz.Slug, len(order))
	return nil
}

func (p *anonProgress) current() (int64, bool) {
	if len(p.state.Remaining) == 0 {
		return 0, false
	}
	return p.state.Remaining[0], true
}

func (p *anonProgress) exhausted() bool { return len(p.state.Remaining) == 0 }

func (p *anonProgress) progress() Progress {
	answered, total := p.state.Progress()
	return Progress{Answered: answered, Total: total}
}

func (p *anonProgress) record(ctx context.Context, _ domain.Quiz, question domain.Question, _ domain.Submission, outcome grading.Outcome) error {
	t := p.taker
	p.state.Score += outcome.Credit
	if err := t.sessions.Set(ctx, p.sessionID, p.keys.Score, p.state.Score); err != nil {
		return err
	}
	if _, err := t.addSessionTally(ctx, p.sessionID, outcome.Credit, 1); err != nil {
		return err
	}
	if outcome.Credit < 1 {
		p.state.Data.IncorrectQuestions = append(p.state.Data.IncorrectQuestions, question.ID)
		if err := t.sessions.Set(ctx, p.sessionID, p.keys.Data, p.state.Data); err != nil {
			return err
		}
	}
	p.state.Remaining = p.state.Remaining[1:]
	return t.sessions.Set(ctx, p.sessionID, p.keys.Remaining, p.state.Remaining)
}

func (p *anonProgress) finalize(ctx context.Context, quiz domain.Quiz, previous *Previous) (*ResultPage, error) {
	t := p.taker
	order := p.state.Data.Order
	tally, err := t.addSessionTally(ctx, p.sessionID, 0, 0)
	if err != nil {
		return nil, err
	}

	result := &ResultPage{
		Quiz:     Summarize(quiz),
		Score:    p.state.Score,
		MaxScore: len(order),
		Percent:  domain.Percent(p.state.Score, len(order)),
		Session:  &tally,
	}
	if quiz.AnswersAtEnd {
		incorrect := p.state.Data.IncorrectQuestions
		for _, q := range quiz.QuestionsInOrder(order) {
			rq := reveal(q)
			rq.Incorrect = slices.Contains(incorrect, q.ID)
			result.Questions = append(result.Questions, rq)
		}
		result.IncorrectQuestions = append([]int64{}, incorrect...)
	} else {
		result.Previous = previous
	}

	if err := t.sessions.Delete(ctx, p.sessionID, p.keys.Remaining, p.keys.Data); err != nil {
		return nil, fmt.Errorf("clear session quiz state: %w", err)
	}
	return result, nil
}

// addSessionTally adds to the cross-quiz running total of an anonymous
// session and returns it. Called with possible == 0 it only reads.
func (t *QuizTaker) addSessionTally(ctx context.Context, sessionID string, toAdd float64, possible int) (domain.SessionTally, error) {
	var tally domain.SessionTally
	if _, err := t.sessions.Get(ctx, sessionID, domain.SessionScoreKey, &tally.Score); err != nil {
		return tally, err
	}
	if _, err := t.sessions.Get(ctx, sessionID, domain.SessionScorePossibleKey, &tally.Possible); err != nil {
		return tally, err
	}
	if possible <= 0 {
		return tally, nil
	}
	tally.Score += toAdd
	tally.Possible += possible
	if err := t.sessions.Set(ctx, sessionID, domain.SessionScoreKey, tally.Score); err != nil {
		return tally, err
	}
	if err := t.sessions.Set(ctx, sessionID, domain.SessionScorePossibleKey, tally.Possible); err != nil {
		return tally, err
	}
	return tally, nil
}
