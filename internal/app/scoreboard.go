package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"quiz-sitting-service/internal/domain"
)

// UserStats is one row of the leaderboard/progress table.
type UserStats struct {
	Name   string             `json:"name"`
	UserID string             `json:"user_id"`
	Rounds map[string]float64 `json:"rounds"`
	Total  float64            `json:"total"`
}

// Leaderboard is the context of the leaderboard and progress templates.
type Leaderboard struct {
	RoundList  []QuizSummary      `json:"round_list"`
	RoundNames []string           `json:"round_names"`
	Users      []UserStats        `json:"user_stats_list"`
	MaxScores  map[string]float64 `json:"max_scores,omitempty"`
}

// BuildLeaderboard sums scores per user per round. quizzes are taken in the
// given order; rows are stably sorted by grand total, highest first.
func BuildLeaderboard(quizzes []domain.Quiz, users []domain.User, scores []domain.Score) (Leaderboard, error) {
	type roundKey struct {
		user  string
		round int
	}
	totals := make(map[roundKey]float64, len(scores))
	for _, s := range scores {
		totals[roundKey{s.UserID, s.Round}] += s.Score
	}

	lb := Leaderboard{
		RoundList:  make([]QuizSummary, 0, len(quizzes)),
		RoundNames: make([]string, 0, len(quizzes)),
		Users:      make([]UserStats, 0, len(users)),
		MaxScores:  make(map[string]float64, len(quizzes)),
	}
	rounds := make([]int, 0, len(quizzes))
	for _, quiz := range quizzes {
		n, err := quiz.RoundNumber()
		if err != nil {
			return Leaderboard{}, err
		}
		rounds = append(rounds, n)
		lb.RoundList = append(lb.RoundList, Summarize(quiz))
		lb.RoundNames = append(lb.RoundNames, Slugify(quiz.Title))
	}

	for _, user := range users {
		stats := UserStats{Name: user.Username, UserID: user.ID, Rounds: make(map[string]float64, len(rounds))}
		for i, round := range rounds {
			name := lb.RoundNames[i]
			total := totals[roundKey{user.ID, round}]
			stats.Rounds[name] = total
			stats.Total += total
			if best, ok := lb.MaxScores[name]; !ok || total > best {
				lb.MaxScores[name] = total
			}
		}
		lb.Users = append(lb.Users, stats)
	}

	sort.SliceStable(lb.Users, func(i, j int) bool { return lb.Users[i].Total > lb.Users[j].Total })
	return lb, nil
}

// Slugify lowercases, strips accents and joins words with hyphens ("Round 1" -> "round-1").
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range norm.NFKD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r) || r == '-':
			pendingDash = true
		}
	}
	return b.String()
}

// Scoreboard serves the aggregate views over Score rows.
type Scoreboard struct {
	catalog  Catalog
	scores   ScoreStore
	users    UserStore
	progress ProgressStore
	sittings SittingStore
}

func NewScoreboard(catalog Catalog, scores ScoreStore, users UserStore, progress ProgressStore, sittings SittingStore) *Scoreboard {
	return &Scoreboard{catalog: catalog, scores: scores, users: users, progress: progress, sittings: sittings}
}

// Leaderboard ranks every registered user over the published quizzes.
func (s *Scoreboard) Leaderboard(ctx context.Context) (Leaderboard, error) {
	quizzes, err := s.rounds(ctx)
	if err != nil {
		return Leaderboard{}, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("list users: %w", err)
	}
	scores, err := s.scores.List(ctx, ScoreFilter{})
	if err != nil {
		return Leaderboard{}, fmt.Errorf("list scores: %w", err)
	}
	return BuildLeaderboard(quizzes, users, scores)
}

// Progress is the same table restricted to the requesting user, without maxima.
func (s *Scoreboard) Progress(ctx context.Context, principal domain.Principal) (Leaderboard, error) {
	if !principal.IsAuthenticated() {
		return Leaderboard{}, domain.ErrUnauthenticated
	}
	quizzes, err := s.rounds(ctx)
	if err != nil {
		return Leaderboard{}, err
	}
	scores, err := s.scores.List(ctx, ScoreFilter{UserID: principal.UserID})
	if err != nil {
		return Leaderboard{}, fmt.Errorf("list scores: %w", err)
	}
	lb, err := BuildLeaderboard(quizzes, []domain.User{principal.User()}, scores)
	if err != nil {
		return Leaderboard{}, err
	}
	lb.MaxScores = nil
	return lb, nil
}

// QuizScores returns round -> total for the quiz list of a signed-in user;
// nil for anonymous principals.
func (s *Scoreboard) QuizScores(ctx context.Context, principal domain.Principal) (map[int]float64, error) {
	if !principal.IsAuthenticated() {
		return nil, nil
	}
	scores, err := s.scores.List(ctx, ScoreFilter{UserID: principal.UserID})
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	out := make(map[int]float64)
	for _, score := range scores {
		out[score.Round] += score.Score
	}
	return out, nil
}

// FinalProgress is the context of the final progress template.
type FinalProgress struct {
	CategoryScores []domain.CategoryReport `json:"cat_scores"`
	Exams          []domain.Sitting        `json:"exams"`
}

// FinalProgress lists category tallies and retained exam sittings of the user.
func (s *Scoreboard) FinalProgress(ctx context.Context, principal domain.Principal) (FinalProgress, error) {
	if !principal.IsAuthenticated() {
		return FinalProgress{}, domain.ErrUnauthenticated
	}
	progress, err := s.progress.GetOrCreate(ctx, principal.UserID)
	if err != nil {
		return FinalProgress{}, fmt.Errorf("load progress: %w", err)
	}
	complete := true
	exams, err := s.sittings.List(ctx, SittingFilter{UserID: principal.UserID, Complete: &complete, ExamOnly: true})
	if err != nil {
		return FinalProgress{}, fmt.Errorf("list exams: %w", err)
	}
	return FinalProgress{CategoryScores: progress.ListAllCategoryScores(), Exams: exams}, nil
}

// rounds returns the published quizzes ordered by title.
func (s *Scoreboard) rounds(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := s.catalog.ListQuizzes(ctx, QuizFilter{})
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	sort.SliceStable(quizzes, func(i, j int) bool { return quizzes[i].Title < quizzes[j].Title })
	return quizzes, nil
}
