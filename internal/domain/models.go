package domain

import (
	"slices"
	"time"
)

// QuestionKind tags the answer-checking variant of a question.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindEssay          QuestionKind = "essay"
	KindMusic          QuestionKind = "music"
)

// Permissions checked by the views.
const (
	PermChangeQuiz   = "quiz.change_quiz"
	PermViewSittings = "quiz.view_sittings"
)

// Category groups quizzes and questions.
type Category struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name" validate:"required"`
}

// Choice is a multiple-choice option.
type Choice struct {
	ID      string `json:"id" yaml:"id" validate:"required"`
	Text    string `json:"text" yaml:"text" validate:"required"`
	Correct bool   `json:"correct" yaml:"correct"`
}

// MusicAnswer holds the expected artist and title of a music question.
type MusicAnswer struct {
	Artist string `json:"artist" yaml:"artist" validate:"required"`
	Title  string `json:"title" yaml:"title" validate:"required"`
}

// AnswerSet carries the variant-specific answers of a question. Only the
// field matching the question kind is populated.
type AnswerSet struct {
	Choices []Choice      `json:"choices,omitempty" yaml:"choices,omitempty" validate:"dive"`
	Essay   []string      `json:"essay,omitempty" yaml:"essay,omitempty"`
	Music   []MusicAnswer `json:"music,omitempty" yaml:"music,omitempty" validate:"dive"`
}

// Question is one item of a quiz. Content doubles as the display string
// that round/question numbers are parsed from.
type Question struct {
	ID          int64        `json:"id" yaml:"id" validate:"required"`
	QuizID      int64        `json:"quizId" yaml:"quizId"`
	Kind        QuestionKind `json:"kind" yaml:"kind" validate:"required,oneof=multiple_choice essay music"`
	Content     string       `json:"content" yaml:"content" validate:"required"`
	Category    string       `json:"category,omitempty" yaml:"category,omitempty"`
	Number      int          `json:"number,omitempty" yaml:"number,omitempty"`
	Explanation string       `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Answers     AnswerSet    `json:"answers" yaml:"answers"`
}

// String returns the display string of the question.
func (q Question) String() string { return q.Content }

// Quiz is a collection of questions plus the flags driving progression.
type Quiz struct {
	ID            int64      `json:"id" yaml:"id" validate:"required"`
	Title         string     `json:"title" yaml:"title" validate:"required"`
	Slug          string     `json:"slug" yaml:"slug" validate:"required"`
	Description   string     `json:"description,omitempty" yaml:"description,omitempty"`
	Category      string     `json:"category,omitempty" yaml:"category,omitempty"`
	Round         int        `json:"round,omitempty" yaml:"round,omitempty"`
	Draft         bool       `json:"draft" yaml:"draft"`
	SingleAttempt bool       `json:"singleAttempt" yaml:"singleAttempt"`
	RandomOrder   bool       `json:"randomOrder" yaml:"randomOrder"`
	MaxQuestions  int        `json:"maxQuestions,omitempty" yaml:"maxQuestions,omitempty" validate:"gte=0"`
	AnswersAtEnd  bool       `json:"answersAtEnd" yaml:"answersAtEnd"`
	ExamPaper     bool       `json:"examPaper" yaml:"examPaper"`
	Questions     []Question `json:"questions,omitempty" yaml:"questions,omitempty" validate:"dive"`
}

// String returns the display name of the quiz.
func (q Quiz) String() string { return q.Title }

// QuestionIDs returns question ids in authoring order.
func (q Quiz) QuestionIDs() []int64 {
	ids := make([]int64, 0, len(q.Questions))
	for _, question := range q.Questions {
		ids = append(ids, question.ID)
	}
	return ids
}

// Question looks up a question of this quiz by id.
func (q Quiz) Question(id int64) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// QuestionsInOrder returns the quiz questions reordered to match ids,
// skipping ids that no longer resolve.
func (q Quiz) QuestionsInOrder(ids []int64) []Question {
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		if question, ok := q.Question(id); ok {
			out = append(out, question)
		}
	}
	return out
}

// Submission is a posted answer. Title is only used by music questions.
type Submission struct {
	Answer string `validate:"required"`
	Title  string
}

// Score is the per-answer persisted fact for authenticated users.
type Score struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Round     int       `json:"round"`
	Question  int       `json:"question"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is a registered principal, listed by the leaderboard.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Principal is the identity behind a request. Anonymous when UserID is empty.
type Principal struct {
	UserID      string
	Username    string
	Permissions []string
}

// IsAuthenticated reports whether the principal is a signed-in user.
func (p Principal) IsAuthenticated() bool { return p.UserID != "" }

// HasPermission reports whether the principal holds perm.
func (p Principal) HasPermission(perm string) bool {
	return p.IsAuthenticated() && slices.Contains(p.Permissions, perm)
}

// User returns the user record for an authenticated principal.
func (p Principal) User() User { return User{ID: p.UserID, Username: p.Username} }
