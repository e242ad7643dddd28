package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// RoundNumber returns the explicit round of the quiz or, failing that, the
// trailing integer of its title ("Round 3" -> 3).
func (q Quiz) RoundNumber() (int, error) {
	if q.Round > 0 {
		return q.Round, nil
	}
	end := len(q.Title)
	for end > 0 && q.Title[end-1] == ' ' {
		end--
	}
	start := end
	for start > 0 && q.Title[start-1] >= '0' && q.Title[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0, fmt.Errorf("quiz %q: %w", q.Title, ErrMalformedDisplay)
	}
	n, err := strconv.Atoi(q.Title[start:end])
	if err != nil {
		return 0, fmt.Errorf("quiz %q: %w", q.Title, ErrMalformedDisplay)
	}
	return n, nil
}

// QuestionNumber returns the explicit number of the question or the integer
// of the first "Q<n>" token of its display string ("R1 Q3 ..." -> 3).
func (q Question) QuestionNumber() (int, error) {
	if q.Number > 0 {
		return q.Number, nil
	}
	for _, token := range strings.Fields(q.Content) {
		if len(token) < 2 || (token[0] != 'Q' && token[0] != 'q') {
			continue
		}
		digits := strings.TrimRightFunc(token[1:], func(r rune) bool { return !unicode.IsDigit(r) })
		if n, err := strconv.Atoi(digits); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("question %q: %w", q.Content, ErrMalformedDisplay)
}

// ScoreKey derives the (round, question) pair a Score row is filed under.
func ScoreKey(quiz Quiz, question Question) (round, number int, err error) {
	if round, err = quiz.RoundNumber(); err != nil {
		return 0, 0, err
	}
	if number, err = question.QuestionNumber(); err != nil {
		return 0, 0, err
	}
	return round, number, nil
}
