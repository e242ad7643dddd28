package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"quiz-sitting-service/internal/app"
	"quiz-sitting-service/internal/domain"
)

type sittingModel struct {
	bun.BaseModel `bun:"table:sittings"`

	ID            int64             `bun:"id,pk,autoincrement"`
	UserID        string            `bun:"user_id"`
	Username      string            `bun:"username"`
	QuizID        int64             `bun:"quiz_id"`
	QuizTitle     string            `bun:"quiz_title"`
	QuestionOrder []int64           `bun:"question_order,type:jsonb"`
	Remaining     []int64           `bun:"remaining,type:jsonb"`
	Incorrect     []int64           `bun:"incorrect,type:jsonb"`
	Score         float64           `bun:"score"`
	Complete      bool              `bun:"complete"`
	ExamPaper     bool              `bun:"exam_paper"`
	UserAnswers   map[string]string `bun:"user_answers,type:jsonb"`
	StartAt       time.Time         `bun:"start_at"`
	EndAt         *time.Time        `bun:"end_at"`
}

type scoreModel struct {
	bun.BaseModel `bun:"table:scores"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    string    `bun:"user_id"`
	Round     int       `bun:"round"`
	Question  int       `bun:"question"`
	Score     float64   `bun:"score"`
	CreatedAt time.Time `bun:"created_at"`
}

type progressModel struct {
	bun.BaseModel `bun:"table:progress"`

	UserID string                          `bun:"user_id,pk"`
	Scores map[string]domain.CategoryScore `bun:"scores,type:jsonb"`
}

type userModel struct {
	bun.BaseModel `bun:"table:users"`

	ID       string `bun:"id,pk"`
	Username string `bun:"username"`
}

// Store persists sittings, scores, progress and users with bun.
// One Store satisfies every app record port.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// Sittings, Scores, Progress and Users expose the store through the
// individual app ports, whose method names overlap.
func (s *Store) Sittings() *SittingStore { return &SittingStore{db: s.db} }
func (s *Store) Scores() *ScoreStore { return &ScoreStore{db: s.db} }
func (s *Store) Progress() *ProgressStore { return &ProgressStore{db: s.db} }
func (s *Store) Users() *UserStore { return &UserStore{db: s.db} }

// RecordAnswer saves the sitting, appends the Score row and applies tally to
// the user's locked progress row in one transaction.
func (s *Store) RecordAnswer(ctx context.Context, sitting *domain.Sitting, score domain.Score, tally func(*domain.Progress)) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := saveSitting(ctx, tx, sitting); err != nil {
			return err
		}
		if err := insertScore(ctx, tx, score); err != nil {
			return err
		}
		m := progressModel{UserID: score.UserID, Scores: map[string]domain.CategoryScore{}}
		if _, err := tx.NewInsert().Model(&m).On("CONFLICT (user_id) DO NOTHING").Exec(ctx); err != nil {
			return fmt.Errorf("create progress: %w", err)
		}
		if err := tx.NewSelect().Model(&m).WherePK().For("UPDATE").Scan(ctx); err != nil {
			return fmt.Errorf("lock progress: %w", err)
		}
		progress := domain.Progress{UserID: m.UserID, Scores: m.Scores}
		if progress.Scores == nil {
			progress.Scores = map[string]domain.CategoryScore{}
		}
		tally(&progress)
		if err := saveProgress(ctx, tx, progress); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		return nil
	})
}

type SittingStore struct{ db *bun.DB }

func (s *SittingStore) GetOrCreate(ctx context.Context, userID string, quizID int64, build func() domain.Sitting) (domain.Sitting, bool, error) {
	var (
		out     domain.Sitting
		created bool
	)
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var m sittingModel
		err := tx.NewSelect().Model(&m).
			Where("user_id = ?", userID).
			Where("quiz_id = ?", quizID).
			Where("NOT complete").
			Limit(1).
			Scan(ctx)
		if err == nil {
			out = m.toDomain()
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		m = sittingFromDomain(build())
		m.ID = 0
		if _, err := tx.NewInsert().Model(&m).Returning("id").Exec(ctx); err != nil {
			return err
		}
		out = m.toDomain()
		created = true
		return nil
	})
	if err != nil {
		return domain.Sitting{}, false, fmt.Errorf("get or create sitting: %w", err)
	}
	return out, created, nil
}

func (s *SittingStore) Get(ctx context.Context, id int64) (domain.Sitting, error) {
	var m sittingModel
	err := s.db.NewSelect().Model(&m).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Sitting{}, domain.ErrSittingNotFound
	}
	if err != nil {
		return domain.Sitting{}, fmt.Errorf("get sitting: %w", err)
	}
	return m.toDomain(), nil
}

func (s *SittingStore) Save(ctx context.Context, sitting *domain.Sitting) error {
	return saveSitting(ctx, s.db, sitting)
}

func saveSitting(ctx context.Context, db bun.IDB, sitting *domain.Sitting) error {
	m := sittingFromDomain(*sitting)
	res, err := db.NewUpdate().Model(&m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("save sitting: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSittingNotFound
	}
	return nil
}

func (s *SittingStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.NewDelete().Model((*sittingModel)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

func (s *SittingStore) HasCompleted(ctx context.Context, userID string, quizID int64) (bool, error) {
	return s.db.NewSelect().Model((*sittingModel)(nil)).
		Where("user_id = ?", userID).
		Where("quiz_id = ?", quizID).
		Where("complete").
		Exists(ctx)
}

func (s *SittingStore) List(ctx context.Context, filter app.SittingFilter) ([]domain.Sitting, error) {
	var models []sittingModel
	q := s.db.NewSelect().Model(&models).Order("id ASC")
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Complete != nil {
		q = q.Where("complete = ?", *filter.Complete)
	}
	if filter.ExamOnly {
		q = q.Where("exam_paper")
	}
	if filter.QuizTitle != "" {
		q = q.Where("quiz_title ILIKE ?", containsPattern(filter.QuizTitle))
	}
	if filter.Username != "" {
		q = q.Where("username ILIKE ?", containsPattern(filter.Username))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list sittings: %w", err)
	}
	out := make([]domain.Sitting, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func sittingFromDomain(s domain.Sitting) sittingModel {
	return sittingModel{
		ID:            s.ID,
		UserID:        s.UserID,
		Username:      s.Username,
		QuizID:        s.QuizID,
		QuizTitle:     s.QuizTitle,
		QuestionOrder: nonNil(s.QuestionOrder),
		Remaining:     nonNil(s.Remaining),
		Incorrect:     nonNil(s.Incorrect),
		Score:         s.Score,
		Complete:      s.Complete,
		ExamPaper:     s.ExamPaper,
		UserAnswers:   s.UserAnswers,
		StartAt:       s.Start,
		EndAt:         s.End,
	}
}

func (m sittingModel) toDomain() domain.Sitting {
	answers := m.UserAnswers
	if answers == nil {
		answers = map[string]string{}
	}
	return domain.Sitting{
		ID:            m.ID,
		UserID:        m.UserID,
		Username:      m.Username,
		QuizID:        m.QuizID,
		QuizTitle:     m.QuizTitle,
		QuestionOrder: nonNil(m.QuestionOrder),
		Remaining:     nonNil(m.Remaining),
		Incorrect:     nonNil(m.Incorrect),
		Score:         m.Score,
		Complete:      m.Complete,
		ExamPaper:     m.ExamPaper,
		UserAnswers:   answers,
		Start:         m.StartAt,
		End:           m.EndAt,
	}
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

type ScoreStore struct{ db *bun.DB }

func (s *ScoreStore) Add(ctx context.Context, score domain.Score) error {
	return insertScore(ctx, s.db, score)
}

func insertScore(ctx context.Context, db bun.IDB, score domain.Score) error {
	m := scoreModel{
		UserID:    score.UserID,
		Round:     score.Round,
		Question:  score.Question,
		Score:     score.Score,
		CreatedAt: score.CreatedAt,
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if _, err := db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return fmt.Errorf("add score: %w", err)
	}
	return nil
}

func (s *ScoreStore) List(ctx context.Context, filter app.ScoreFilter) ([]domain.Score, error) {
	var models []scoreModel
	q := s.db.NewSelect().Model(&models).Order("id ASC")
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Round != 0 {
		q = q.Where("round = ?", filter.Round)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	out := make([]domain.Score, 0, len(models))
	for _, m := range models {
		out = append(out, domain.Score{
			ID:        m.ID,
			UserID:    m.UserID,
			Round:     m.Round,
			Question:  m.Question,
			Score:     m.Score,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}

type ProgressStore struct{ db *bun.DB }

func (s *ProgressStore) GetOrCreate(ctx context.Context, userID string) (domain.Progress, error) {
	m := progressModel{UserID: userID, Scores: map[string]domain.CategoryScore{}}
	if _, err := s.db.NewInsert().Model(&m).On("CONFLICT (user_id) DO NOTHING").Exec(ctx); err != nil {
		return domain.Progress{}, fmt.Errorf("create progress: %w", err)
	}
	if err := s.db.NewSelect().Model(&m).WherePK().Scan(ctx); err != nil {
		return domain.Progress{}, fmt.Errorf("get progress: %w", err)
	}
	if m.Scores == nil {
		m.Scores = map[string]domain.CategoryScore{}
	}
	return domain.Progress{UserID: m.UserID, Scores: m.Scores}, nil
}

func (s *ProgressStore) Save(ctx context.Context, progress domain.Progress) error {
	return saveProgress(ctx, s.db, progress)
}

func saveProgress(ctx context.Context, db bun.IDB, progress domain.Progress) error {
	m := progressModel{UserID: progress.UserID, Scores: progress.Scores}
	_, err := db.NewInsert().Model(&m).
		On("CONFLICT (user_id) DO UPDATE").
		Set("scores = EXCLUDED.scores").
		Exec(ctx)
	return err
}

type UserStore struct{ db *bun.DB }

func (s *UserStore) Upsert(ctx context.Context, user domain.User) error {
	m := userModel{ID: user.ID, Username: user.Username}
	_, err := s.db.NewInsert().Model(&m).
		On("CONFLICT (id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Exec(ctx)
	return err
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	var models []userModel
	if err := s.db.NewSelect().Model(&models).OrderExpr("seq ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.User, 0, len(models))
	for _, m := range models {
		out = append(out, domain.User{ID: m.ID, Username: m.Username})
	}
	return out, nil
}
