package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question id does not resolve.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrCategoryNotFound indicates an unknown category name.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrSittingNotFound is returned when a sitting does not exist (or was deleted on completion).
	ErrSittingNotFound = errors.New("sitting not found")
	// ErrNoQuestions is returned when a quiz has nothing to present.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrAccessDenied is returned for draft quizzes and marking views without permission.
	ErrAccessDenied = errors.New("access denied")
	// ErrUnauthenticated is returned by views that need a signed-in user.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidSubmission indicates a posted answer failed validation.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrUnknownQuestionKind indicates a question carries an unsupported kind tag.
	ErrUnknownQuestionKind = errors.New("unknown question kind")
	// ErrMalformedDisplay indicates a round or question number could not be parsed.
	ErrMalformedDisplay = errors.New("malformed round/question display string")
	// ErrSessionStateMissing indicates anonymous session entries vanished mid-quiz.
	ErrSessionStateMissing = errors.New("anonymous session state missing")
)
