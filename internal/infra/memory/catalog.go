package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"quiz-sitting-service/internal/app"
	"quiz-sitting-service/internal/domain"
)

// CatalogData is the YAML shape of a quiz catalogue.
type CatalogData struct {
	Categories []domain.Category `yaml:"categories" validate:"dive"`
	Quizzes    []domain.Quiz     `yaml:"quizzes" validate:"dive"`
}

// Catalog is an in-memory quiz catalogue (useful for tests/demos). It serves
// both as the QuizLoader behind the cache and as app.Catalog.
type Catalog struct {
	mu         sync.RWMutex
	categories []domain.Category
	quizzes    map[string]domain.Quiz
	questions  map[int64]domain.Question
}

func NewCatalog(data CatalogData) *Catalog {
	c := &Catalog{
		categories: append([]domain.Category{}, data.Categories...),
		quizzes:    make(map[string]domain.Quiz, len(data.Quizzes)),
		questions:  make(map[int64]domain.Question),
	}
	for _, quiz := range data.Quizzes {
		c.put(quiz)
	}
	return c
}

// LoadCatalogFile reads and validates a YAML catalogue.
func LoadCatalogFile(path string) (CatalogData, error) {
	var data CatalogData
	raw, err := os.ReadFile(path)
	if err != nil {
		return data, err
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("parse catalogue %s: %w", path, err)
	}
	if err := validator.New().Struct(data); err != nil {
		return data, fmt.Errorf("validate catalogue %s: %w", path, err)
	}
	return data, nil
}

// Put adds or replaces a quiz.
func (c *Catalog) Put(quiz domain.Quiz) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(quiz)
}

func (c *Catalog) put(quiz domain.Quiz) {
	questions := make([]domain.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		q.QuizID = quiz.ID
		questions[i] = q
		c.questions[q.ID] = q
	}
	quiz.Questions = questions
	c.quizzes[quiz.Slug] = quiz
}

func (c *Catalog) LoadQuiz(_ context.Context, slug string) (domain.Quiz, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if quiz, ok := c.quizzes[slug]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (c *Catalog) ListQuizzes(_ context.Context, filter app.QuizFilter) ([]domain.Quiz, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(c.quizzes))
	for _, quiz := range c.quizzes {
		if quiz.Draft && !filter.IncludeDrafts {
			continue
		}
		if filter.Category != "" && quiz.Category != filter.Category {
			continue
		}
		out = append(out, quiz)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *Catalog) ListCategories(context.Context) ([]domain.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Category{}, c.categories...), nil
}

func (c *Catalog) CategoryByName(_ context.Context, name string) (domain.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, category := range c.categories {
		if strings.EqualFold(category.Name, name) {
			return category, nil
		}
	}
	return domain.Category{}, domain.ErrCategoryNotFound
}

func (c *Catalog) Question(_ context.Context, id int64) (domain.Question, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if q, ok := c.questions[id]; ok {
		return q, nil
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}
