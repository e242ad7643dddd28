package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quiz-sitting-service/internal/app"
	"quiz-sitting-service/internal/domain"
)

const catalogYAML = `
categories:
  - name: Geography
quizzes:
  - id: 1
    title: Round 1
    slug: round-1
    category: Geography
    questions:
      - id: 10
        kind: multiple_choice
        content: Q1 Capital of France?
        category: Geography
        answers:
          choices:
            - {id: a, text: London}
            - {id: b, text: Paris, correct: true}
  - id: 2
    title: Round 2
    slug: round-2
    draft: true
    questions:
      - id: 20
        kind: essay
        content: Q1 Largest ocean?
        answers:
          essay: [pacific, the pacific ocean]
`

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(catalogYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	catalog := NewCatalog(data)
	ctx := context.Background()

	quizzes, _ := catalog.ListQuizzes(ctx, app.QuizFilter{})
	if len(quizzes) != 1 || quizzes[0].Slug != "round-1" {
		t.Fatalf("drafts must be hidden, got %+v", quizzes)
	}
	quizzes, _ = catalog.ListQuizzes(ctx, app.QuizFilter{IncludeDrafts: true})
	if len(quizzes) != 2 {
		t.Fatalf("expected drafts included, got %d", len(quizzes))
	}

	q, err := catalog.Question(ctx, 20)
	if err != nil {
		t.Fatalf("question: %v", err)
	}
	if q.QuizID != 2 || len(q.Answers.Essay) != 2 {
		t.Fatalf("unexpected question %+v", q)
	}

	if _, err := catalog.CategoryByName(ctx, "geography"); err != nil {
		t.Fatalf("category lookup should ignore case: %v", err)
	}
	if _, err := catalog.CategoryByName(ctx, "history"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected category not found, got %v", err)
	}
}
