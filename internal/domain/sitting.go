package domain

import (
	"math"
	"slices"
	"strconv"
	"time"
)

// Sitting is an authenticated user's progress through one quiz.
// QuestionOrder never changes after creation; Remaining shrinks from the head.
type Sitting struct {
	ID            int64             `json:"id"`
	UserID        string            `json:"userId"`
	Username      string            `json:"username"`
	QuizID        int64             `json:"quizId"`
	QuizTitle     string            `json:"quizTitle"`
	QuestionOrder []int64           `json:"questionOrder"`
	Remaining     []int64           `json:"remaining"`
	Incorrect     []int64           `json:"incorrect"`
	Score         float64           `json:"score"`
	Complete      bool              `json:"complete"`
	ExamPaper     bool              `json:"examPaper"`
	UserAnswers   map[string]string `json:"userAnswers"`
	Start         time.Time         `json:"start"`
	End           *time.Time        `json:"end,omitempty"`
}

// NewSitting builds a fresh sitting for user over order, dropping duplicate ids.
func NewSitting(user User, quiz Quiz, order []int64, now time.Time) Sitting {
	order = dedupe(order)
	return Sitting{
		UserID:        user.ID,
		Username:      user.Username,
		QuizID:        quiz.ID,
		QuizTitle:     quiz.Title,
		QuestionOrder: order,
		Remaining:     slices.Clone(order),
		Incorrect:     []int64{},
		ExamPaper:     quiz.ExamPaper,
		UserAnswers:   map[string]string{},
		Start:         now,
	}
}

// Clone returns a copy that shares no slices or maps with s.
func (s Sitting) Clone() Sitting {
	out := s
	out.QuestionOrder = slices.Clone(s.QuestionOrder)
	out.Remaining = slices.Clone(s.Remaining)
	out.Incorrect = slices.Clone(s.Incorrect)
	out.UserAnswers = make(map[string]string, len(s.UserAnswers))
	for k, v := range s.UserAnswers {
		out.UserAnswers[k] = v
	}
	if s.End != nil {
		end := *s.End
		out.End = &end
	}
	return out
}

// FirstQuestion returns the head of the remaining queue.
func (s *Sitting) FirstQuestion() (int64, bool) {
	if len(s.Remaining) == 0 {
		return 0, false
	}
	return s.Remaining[0], true
}

// RemoveFirstQuestion pops the head of the remaining queue.
func (s *Sitting) RemoveFirstQuestion() {
	if len(s.Remaining) > 0 {
		s.Remaining = s.Remaining[1:]
	}
}

// Exhausted reports whether every question has been answered.
func (s *Sitting) Exhausted() bool { return len(s.Remaining) == 0 }

func (s *Sitting) AddToScore(points float64) { s.Score += points }

// MaxScore is the number of questions in the sitting.
func (s *Sitting) MaxScore() int { return len(s.QuestionOrder) }

// PercentCorrect is the rounded score percentage, 0 for an empty sitting.
func (s *Sitting) PercentCorrect() int {
	return Percent(s.Score, s.MaxScore())
}

// Progress returns (answered, total).
func (s *Sitting) Progress() (int, int) {
	total := len(s.QuestionOrder)
	return total - len(s.Remaining), total
}

// IsIncorrect reports whether id is in the incorrect set.
func (s *Sitting) IsIncorrect(id int64) bool { return slices.Contains(s.Incorrect, id) }

// AddIncorrect marks a question incorrect. Marking on a complete sitting
// takes the point away.
func (s *Sitting) AddIncorrect(id int64) {
	if s.IsIncorrect(id) {
		return
	}
	s.Incorrect = append(s.Incorrect, id)
	if s.Complete {
		s.AddToScore(-1)
	}
}

// RemoveIncorrect clears the incorrect mark; on a complete sitting the
// point is credited back.
func (s *Sitting) RemoveIncorrect(id int64) {
	idx := slices.Index(s.Incorrect, id)
	if idx < 0 {
		return
	}
	s.Incorrect = slices.Delete(s.Incorrect, idx, idx+1)
	if s.Complete {
		s.AddToScore(1)
	}
}

// ToggleIncorrect flips the incorrect mark of id.
func (s *Sitting) ToggleIncorrect(id int64) {
	if s.IsIncorrect(id) {
		s.RemoveIncorrect(id)
		return
	}
	s.AddIncorrect(id)
}

// AddUserAnswer records the guess given for a question.
func (s *Sitting) AddUserAnswer(id int64, guess string) {
	if s.UserAnswers == nil {
		s.UserAnswers = map[string]string{}
	}
	s.UserAnswers[strconv.FormatInt(id, 10)] = guess
}

// UserAnswer returns the recorded guess for a question.
func (s *Sitting) UserAnswer(id int64) (string, bool) {
	guess, ok := s.UserAnswers[strconv.FormatInt(id, 10)]
	return guess, ok
}

func (s *Sitting) MarkComplete(now time.Time) {
	s.Complete = true
	s.End = &now
}

// Percent returns round(100*score/possible), 0 when possible is 0.
func Percent(score float64, possible int) int {
	if possible <= 0 {
		return 0
	}
	return int(math.Round(score / float64(possible) * 100))
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
