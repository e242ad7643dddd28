package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-sitting-service/internal/app"
	"quiz-sitting-service/internal/domain"
)

const quizColumns = `id, title, slug, description, category, round, draft, single_attempt,
	random_order, max_questions, answers_at_end, exam_paper`

const questionColumns = `id, quiz_id, kind, content, category, number, explanation, answers`

// Catalog reads quiz content from Postgres. Answer keys live in a JSONB column.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

// LoadQuiz loads a quiz and its questions in stored order.
func (c *Catalog) LoadQuiz(ctx context.Context, slug string) (domain.Quiz, error) {
	row := c.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE slug=$1`, slug)
	quiz, err := scanQuiz(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := c.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions WHERE quiz_id=$1 ORDER BY position, id`, quiz.ID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return domain.Quiz{}, err
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	return quiz, rows.Err()
}

func (c *Catalog) ListQuizzes(ctx context.Context, filter app.QuizFilter) ([]domain.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE ($1 OR NOT draft) AND ($2 = '' OR category = $2) ORDER BY id`
	rows, err := c.pool.Query(ctx, query, filter.IncludeDrafts, filter.Category)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()
	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}

func (c *Catalog) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := c.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	categories := make([]domain.Category, 0)
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (c *Catalog) CategoryByName(ctx context.Context, name string) (domain.Category, error) {
	var category domain.Category
	err := c.pool.QueryRow(ctx, `SELECT id, name FROM categories WHERE lower(name)=lower($1)`, name).
		Scan(&category.ID, &category.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("category by name: %w", err)
	}
	return category, nil
}

func (c *Catalog) Question(ctx context.Context, id int64) (domain.Question, error) {
	row := c.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, err
}

func scanQuiz(row pgx.Row) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := row.Scan(&quiz.ID, &quiz.Title, &quiz.Slug, &quiz.Description, &quiz.Category, &quiz.Round,
		&quiz.Draft, &quiz.SingleAttempt, &quiz.RandomOrder, &quiz.MaxQuestions, &quiz.AnswersAtEnd, &quiz.ExamPaper)
	return quiz, err
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		q    domain.Question
		kind string
		raw  []byte
	)
	if err := row.Scan(&q.ID, &q.QuizID, &kind, &q.Content, &q.Category, &q.Number, &q.Explanation, &raw); err != nil {
		return domain.Question{}, err
	}
	q.Kind = domain.QuestionKind(kind)
	if err := json.Unmarshal(raw, &q.Answers); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal answers for question %d: %w", q.ID, err)
	}
	return q, nil
}
