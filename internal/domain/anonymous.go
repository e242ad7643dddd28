package domain

import "time"

// AnonymousSessionTTL is how long an anonymous session survives without activity.
const AnonymousSessionTTL = 72 * time.Hour

// Cross-quiz running total entries of an anonymous session.
const (
	SessionScoreKey         = "session_score"
	SessionScorePossibleKey = "session_score_possible"
)

// SessionKeys are the per-quiz entry names of an anonymous session.
type SessionKeys struct {
	Score     string
	Remaining string
	Data      string
}

// SessionKeysFor namespaces the anonymous entries by quiz slug.
func SessionKeysFor(slug string) SessionKeys {
	return SessionKeys{
		Score:     slug + "_score",
		Remaining: slug + "_q_list",
		Data:      slug + "_data",
	}
}

// AnonymousQuizData is stored under SessionKeys.Data.
type AnonymousQuizData struct {
	Order              []int64 `json:"order"`
	IncorrectQuestions []int64 `json:"incorrect_questions"`
}

// AnonymousQuizState is the typed view of the three per-quiz session entries.
type AnonymousQuizState struct {
	Score     float64
	Remaining []int64
	Data      AnonymousQuizData
}

// Progress returns (answered, total).
func (s AnonymousQuizState) Progress() (int, int) {
	total := len(s.Data.Order)
	return total - len(s.Remaining), total
}

// SessionTally is the cross-quiz running total of an anonymous session.
type SessionTally struct {
	Score    float64 `json:"score"`
	Possible int     `json:"possible"`
}
