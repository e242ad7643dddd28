package app

import (
	"quiz-sitting-service/internal/domain"
	"quiz-sitting-service/internal/grading"
)

// ViewKind names the template a take-quiz response is rendered with.
type ViewKind string

const (
	ViewQuestion       ViewKind = "question.html"
	ViewResult         ViewKind = "result.html"
	ViewSingleComplete ViewKind = "single_complete.html"
)

// QuizSummary is the public face of a quiz: flags, never answers.
type QuizSummary struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Slug          string `json:"url"`
	Description   string `json:"description,omitempty"`
	Category      string `json:"category,omitempty"`
	SingleAttempt bool   `json:"single_attempt"`
	AnswersAtEnd  bool   `json:"answers_at_end"`
	ExamPaper     bool   `json:"exam_paper"`
	Draft         bool   `json:"draft,omitempty"`
}

func Summarize(quiz domain.Quiz) QuizSummary {
	return QuizSummary{
		ID:            quiz.ID,
		Title:         quiz.Title,
		Slug:          quiz.Slug,
		Description:   quiz.Description,
		Category:      quiz.Category,
		SingleAttempt: quiz.SingleAttempt,
		AnswersAtEnd:  quiz.AnswersAtEnd,
		ExamPaper:     quiz.ExamPaper,
		Draft:         quiz.Draft,
	}
}

// QuestionView is a question without its answers.
type QuestionView struct {
	ID       int64               `json:"id"`
	Content  string              `json:"content"`
	Category string              `json:"category,omitempty"`
	Kind     domain.QuestionKind `json:"kind"`
}

func viewOf(q domain.Question) QuestionView {
	return QuestionView{ID: q.ID, Content: q.Content, Category: q.Category, Kind: q.Kind}
}

// RevealedQuestion is a question shown together with its answers.
type RevealedQuestion struct {
	QuestionView
	Explanation string           `json:"explanation,omitempty"`
	Answers     []grading.Answer `json:"answers"`
	UserAnswer  string           `json:"user_answer,omitempty"`
	Incorrect   bool             `json:"incorrect"`
}

// Progress is (answered, total) for the progress bar.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// Form describes the answer input for a question kind: a radio list for
// multiple-choice, one text field for essay, artist and title for music.
type Form struct {
	Kind    domain.QuestionKind `json:"kind"`
	Fields  []string            `json:"fields"`
	Choices []grading.Option    `json:"choices,omitempty"`
}

// Previous is the immediate-reveal packet for the question just answered.
type Previous struct {
	Answer       string           `json:"previous_answer"`
	Outcome      bool             `json:"previous_outcome"`
	Credit       float64          `json:"previous_credit"`
	Question     QuestionView     `json:"previous_question"`
	Answers      []grading.Answer `json:"answers"`
	QuestionType string           `json:"question_type"`
}

// QuestionPage is the context of the question template.
type QuestionPage struct {
	Quiz     QuizSummary  `json:"quiz"`
	Question QuestionView `json:"question"`
	Form     Form         `json:"form"`
	Progress Progress     `json:"progress"`
	Previous *Previous    `json:"previous,omitempty"`
}

// ResultPage is the context of the result template.
type ResultPage struct {
	Quiz               QuizSummary          `json:"quiz"`
	Score              float64              `json:"score"`
	MaxScore           int                  `json:"max_score"`
	Percent            int                  `json:"percent"`
	Sitting            *domain.Sitting      `json:"sitting,omitempty"`
	Previous           *Previous            `json:"previous,omitempty"`
	Incorrect          []QuestionView       `json:"incorrect,omitempty"`
	Questions          []RevealedQuestion   `json:"questions,omitempty"`
	IncorrectQuestions []int64              `json:"incorrect_questions,omitempty"`
	Session            *domain.SessionTally `json:"session,omitempty"`
}

// TakeResult is what one take-quiz request resolves to.
type TakeResult struct {
	View     ViewKind      `json:"view"`
	Quiz     QuizSummary   `json:"quiz"`
	Question *QuestionPage `json:"question,omitempty"`
	Result   *ResultPage   `json:"result,omitempty"`
}

func formFor(q domain.Question, checker grading.Checker) Form {
	switch q.Kind {
	case domain.KindMusic:
		return Form{Kind: q.Kind, Fields: []string{"answers", "answer_title"}}
	case domain.KindEssay:
		return Form{Kind: q.Kind, Fields: []string{"answers"}}
	default:
		return Form{Kind: q.Kind, Fields: []string{"answers"}, Choices: checker.Choices()}
	}
}

func reveal(q domain.Question) RevealedQuestion {
	rq := RevealedQuestion{QuestionView: viewOf(q), Explanation: q.Explanation}
	if checker, err := grading.For(q); err == nil {
		rq.Answers = checker.Answers()
	}
	return rq
}
