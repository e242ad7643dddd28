package app

import (
	"context"
	"fmt"

	"quiz-sitting-service/internal/domain"
)

// MarkingService lets markers review completed sittings and flip the
// incorrect flag of individual questions.
type MarkingService struct {
	sittings SittingStore
	catalog  Catalog
}

func NewMarkingService(sittings SittingStore, catalog Catalog) *MarkingService {
	return &MarkingService{sittings: sittings, catalog: catalog}
}

// MarkingFilter carries the optional list filters.
type MarkingFilter struct {
	Quiz string
	User string
}

// MarkingDetail is the context of the marking detail template.
type MarkingDetail struct {
	Sitting   domain.Sitting     `json:"sitting"`
	Questions []RevealedQuestion `json:"questions"`
}

func requireMarker(principal domain.Principal) error {
	if !principal.IsAuthenticated() {
		return domain.ErrUnauthenticated
	}
	if !principal.HasPermission(domain.PermViewSittings) {
		return fmt.Errorf("marking: %w", domain.ErrAccessDenied)
	}
	return nil
}

// List returns completed sittings matching the filters.
func (s *MarkingService) List(ctx context.Context, principal domain.Principal, filter MarkingFilter) ([]domain.Sitting, error) {
	if err := requireMarker(principal); err != nil {
		return nil, err
	}
	complete := true
	return s.sittings.List(ctx, SittingFilter{Complete: &complete, QuizTitle: filter.Quiz, Username: filter.User})
}

// Detail returns a sitting with its questions and answers.
func (s *MarkingService) Detail(ctx context.Context, principal domain.Principal, id int64) (MarkingDetail, error) {
	if err := requireMarker(principal); err != nil {
		return MarkingDetail{}, err
	}
	sitting, err := s.sittings.Get(ctx, id)
	if err != nil {
		return MarkingDetail{}, err
	}
	return s.detail(ctx, sitting)
}

// Toggle flips the incorrect flag of question qid on the sitting and returns
// the refreshed detail.
func (s *MarkingService) Toggle(ctx context.Context, principal domain.Principal, id, qid int64) (MarkingDetail, error) {
	if err := requireMarker(principal); err != nil {
		return MarkingDetail{}, err
	}
	sitting, err := s.sittings.Get(ctx, id)
	if err != nil {
		return MarkingDetail{}, err
	}
	if _, err := s.catalog.Question(ctx, qid); err != nil {
		return MarkingDetail{}, err
	}
	sitting.ToggleIncorrect(qid)
	if err := s.sittings.Save(ctx, &sitting); err != nil {
		return MarkingDetail{}, fmt.Errorf("save sitting: %w", err)
	}
	return s.detail(ctx, sitting)
}

func (s *MarkingService) detail(ctx context.Context, sitting domain.Sitting) (MarkingDetail, error) {
	questions := make([]RevealedQuestion, 0, len(sitting.QuestionOrder))
	for _, id := range sitting.QuestionOrder {
		q, err := s.catalog.Question(ctx, id)
		if err != nil {
			return MarkingDetail{}, err
		}
		rq := reveal(q)
		rq.UserAnswer, _ = sitting.UserAnswer(id)
		rq.Incorrect = sitting.IsIncorrect(id)
		questions = append(questions, rq)
	}
	return MarkingDetail{Sitting: sitting, Questions: questions}, nil
}
