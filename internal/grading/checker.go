// Package grading judges guesses against the stored answers of a question.
package grading

import (
	"fmt"
	"strings"

	"quiz-sitting-service/internal/domain"
)

// Answer is a revealable answer of a question.
type Answer struct {
	ID      string `json:"id,omitempty"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Option is an entry of the choice-list form.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Checker is the capability set every question kind provides.
type Checker interface {
	Check(guess string) bool
	// Answers lists what is revealed after answering.
	Answers() []Answer
	// Choices lists the form options; empty for free-text kinds.
	Choices() []Option
	RenderGuess(guess string) string
}

// TitleChecker is implemented by kinds with a second, independently scored field.
type TitleChecker interface {
	CheckTitle(guess string) bool
}

// For dispatches on the question kind tag.
func For(q domain.Question) (Checker, error) {
	switch q.Kind {
	case domain.KindMultipleChoice:
		return choiceChecker{choices: q.Answers.Choices}, nil
	case domain.KindEssay:
		return essayChecker{references: q.Answers.Essay}, nil
	case domain.KindMusic:
		return musicChecker{answers: q.Answers.Music}, nil
	default:
		return nil, fmt.Errorf("question %d kind %q: %w", q.ID, q.Kind, domain.ErrUnknownQuestionKind)
	}
}

// Outcome is the verdict on one submission.
type Outcome struct {
	Correct      bool    `json:"correct"`
	TitleCorrect bool    `json:"titleCorrect,omitempty"`
	Credit       float64 `json:"credit"`
}

// Grade checks a submission and computes its credit: 1/0 for single-field
// kinds, 0.5 per correct field for music.
func Grade(q domain.Question, sub domain.Submission) (Outcome, error) {
	checker, err := For(q)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Correct: checker.Check(sub.Answer)}
	titled, ok := checker.(TitleChecker)
	if !ok {
		if out.Correct {
			out.Credit = 1
		}
		return out, nil
	}
	out.TitleCorrect = titled.CheckTitle(sub.Title)
	if out.Correct {
		out.Credit += 0.5
	}
	if out.TitleCorrect {
		out.Credit += 0.5
	}
	return out, nil
}

type choiceChecker struct {
	choices []domain.Choice
}

func (c choiceChecker) Check(guess string) bool {
	for _, choice := range c.choices {
		if !choice.Correct {
			continue
		}
		if guess == choice.ID || strings.EqualFold(guess, choice.Text) {
			return true
		}
	}
	return false
}

func (c choiceChecker) Answers() []Answer {
	out := make([]Answer, 0, len(c.choices))
	for _, choice := range c.choices {
		out = append(out, Answer{ID: choice.ID, Text: choice.Text, Correct: choice.Correct})
	}
	return out
}

func (c choiceChecker) Choices() []Option {
	out := make([]Option, 0, len(c.choices))
	for _, choice := range c.choices {
		out = append(out, Option{ID: choice.ID, Text: choice.Text})
	}
	return out
}

func (c choiceChecker) RenderGuess(guess string) string {
	for _, choice := range c.choices {
		if choice.ID == guess {
			return choice.Text
		}
	}
	return guess
}

type essayChecker struct {
	references []string
}

func (e essayChecker) Check(guess string) bool {
	for _, ref := range e.references {
		if FuzzyMatch(ref, guess) {
			return true
		}
	}
	return false
}

func (e essayChecker) Answers() []Answer {
	out := make([]Answer, 0, len(e.references))
	for _, ref := range e.references {
		out = append(out, Answer{Text: ref, Correct: true})
	}
	return out
}

func (essayChecker) Choices() []Option { return nil }

func (essayChecker) RenderGuess(guess string) string { return guess }

type musicChecker struct {
	answers []domain.MusicAnswer
}

// Check judges the artist field.
func (m musicChecker) Check(guess string) bool {
	for _, answer := range m.answers {
		if FuzzyMatch(answer.Artist, guess) {
			return true
		}
	}
	return false
}

func (m musicChecker) CheckTitle(guess string) bool {
	for _, answer := range m.answers {
		if FuzzyMatch(answer.Title, guess) {
			return true
		}
	}
	return false
}

func (m musicChecker) Answers() []Answer {
	out := make([]Answer, 0, len(m.answers))
	for _, answer := range m.answers {
		out = append(out, Answer{Text: answer.Artist + " - " + answer.Title, Correct: true})
	}
	return out
}

func (musicChecker) Choices() []Option { return nil }

func (musicChecker) RenderGuess(guess string) string { return guess }
