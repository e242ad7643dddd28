package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"quiz-sitting-service/internal/domain"
)

type categoryModel struct {
	bun.BaseModel `bun:"table:categories"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name"`
}

type quizModel struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID            int64  `bun:"id,pk"`
	Title         string `bun:"title"`
	Slug          string `bun:"slug"`
	Description   string `bun:"description"`
	Category      string `bun:"category"`
	Round         int    `bun:"round"`
	Draft         bool   `bun:"draft"`
	SingleAttempt bool   `bun:"single_attempt"`
	RandomOrder   bool   `bun:"random_order"`
	MaxQuestions  int    `bun:"max_questions"`
	AnswersAtEnd  bool   `bun:"answers_at_end"`
	ExamPaper     bool   `bun:"exam_paper"`
}

type questionModel struct {
	bun.BaseModel `bun:"table:questions"`

	ID          int64            `bun:"id,pk"`
	QuizID      int64            `bun:"quiz_id"`
	Position    int              `bun:"position"`
	Kind        string           `bun:"kind"`
	Content     string           `bun:"content"`
	Category    string           `bun:"category"`
	Number      int              `bun:"number"`
	Explanation string           `bun:"explanation"`
	Answers     domain.AnswerSet `bun:"answers,type:jsonb"`
}

// SeedCatalog upserts categories and quizzes. A quiz's questions are replaced wholesale.
func SeedCatalog(ctx context.Context, db *bun.DB, categories []domain.Category, quizzes []domain.Quiz) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, c := range categories {
			m := categoryModel{Name: c.Name}
			if _, err := tx.NewInsert().Model(&m).On("CONFLICT (name) DO NOTHING").Exec(ctx); err != nil {
				return fmt.Errorf("seed category %q: %w", c.Name, err)
			}
		}
		for _, quiz := range quizzes {
			qm := quizModel{
				ID:            quiz.ID,
				Title:         quiz.Title,
				Slug:          quiz.Slug,
				Description:   quiz.Description,
				Category:      quiz.Category,
				Round:         quiz.Round,
				Draft:         quiz.Draft,
				SingleAttempt: quiz.SingleAttempt,
				RandomOrder:   quiz.RandomOrder,
				MaxQuestions:  quiz.MaxQuestions,
				AnswersAtEnd:  quiz.AnswersAtEnd,
				ExamPaper:     quiz.ExamPaper,
			}
			_, err := tx.NewInsert().Model(&qm).
				On("CONFLICT (id) DO UPDATE").
				Set("title = EXCLUDED.title").
				Set("slug = EXCLUDED.slug").
				Set("description = EXCLUDED.description").
				Set("category = EXCLUDED.category").
				Set("round = EXCLUDED.round").
				Set("draft = EXCLUDED.draft").
				Set("single_attempt = EXCLUDED.single_attempt").
				Set("random_order = EXCLUDED.random_order").
				Set("max_questions = EXCLUDED.max_questions").
				Set("answers_at_end = EXCLUDED.answers_at_end").
				Set("exam_paper = EXCLUDED.exam_paper").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("seed quiz %s: %w", quiz.Slug, err)
			}
			if _, err := tx.NewDelete().Model((*questionModel)(nil)).Where("quiz_id = ?", quiz.ID).Exec(ctx); err != nil {
				return err
			}
			if len(quiz.Questions) == 0 {
				continue
			}
			questions := make([]questionModel, 0, len(quiz.Questions))
			for i, q := range quiz.Questions {
				questions = append(questions, questionModel{
					ID:          q.ID,
					QuizID:      quiz.ID,
					Position:    i,
					Kind:        string(q.Kind),
					Content:     q.Content,
					Category:    q.Category,
					Number:      q.Number,
					Explanation: q.Explanation,
					Answers:     q.Answers,
				})
			}
			if _, err := tx.NewInsert().Model(&questions).Exec(ctx); err != nil {
				return fmt.Errorf("seed questions for %s: %w", quiz.Slug, err)
			}
		}
		return nil
	})
}
