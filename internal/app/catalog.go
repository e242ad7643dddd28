package app

import (
	"context"
	"fmt"

	"quiz-sitting-service/internal/domain"
)

// CatalogService backs the browse views: quiz list, categories, quiz detail.
type CatalogService struct {
	catalog Catalog
	quizzes QuizRepository
}

func NewCatalogService(catalog Catalog, quizzes QuizRepository) *CatalogService {
	return &CatalogService{catalog: catalog, quizzes: quizzes}
}

// ListQuizzes returns the published quizzes.
func (s *CatalogService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.catalog.ListQuizzes(ctx, QuizFilter{})
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.catalog.ListCategories(ctx)
}

// QuizzesByCategory resolves the category first so unknown names are a NotFound.
func (s *CatalogService) QuizzesByCategory(ctx context.Context, name string) (domain.Category, []domain.Quiz, error) {
	category, err := s.catalog.CategoryByName(ctx, name)
	if err != nil {
		return domain.Category{}, nil, err
	}
	quizzes, err := s.catalog.ListQuizzes(ctx, QuizFilter{Category: category.Name})
	if err != nil {
		return domain.Category{}, nil, err
	}
	return category, quizzes, nil
}

// QuizDetail returns the quiz start page; drafts need the edit permission.
func (s *CatalogService) QuizDetail(ctx context.Context, principal domain.Principal, slug string) (domain.Quiz, error) {
	return resolveQuiz(ctx, s.quizzes, principal, slug)
}

func resolveQuiz(ctx context.Context, quizzes QuizRepository, principal domain.Principal, slug string) (domain.Quiz, error) {
	quiz, err := quizzes.GetQuiz(ctx, slug)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.Draft && !principal.HasPermission(domain.PermChangeQuiz) {
		return domain.Quiz{}, fmt.Errorf("draft quiz %q: %w", slug, domain.ErrAccessDenied)
	}
	return quiz, nil
}
