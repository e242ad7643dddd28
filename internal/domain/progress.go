package domain

import "sort"

// CategoryScore is a running (correct, possible) tally.
type CategoryScore struct {
	Correct  float64 `json:"correct"`
	Possible int     `json:"possible"`
}

// Progress keeps per-category tallies for an authenticated user across all quizzes.
type Progress struct {
	UserID string                   `json:"userId"`
	Scores map[string]CategoryScore `json:"scores"`
}

// UpdateScore adds a question outcome to its category tally.
// Questions without a category are filed under "Uncategorized".
func (p *Progress) UpdateScore(question Question, toAdd float64, possible int) {
	if p.Scores == nil {
		p.Scores = map[string]CategoryScore{}
	}
	category := question.Category
	if category == "" {
		category = "Uncategorized"
	}
	current := p.Scores[category]
	current.Correct += toAdd
	current.Possible += possible
	p.Scores[category] = current
}

// CategoryReport is one line of the final progress view.
type CategoryReport struct {
	Category string  `json:"category"`
	Correct  float64 `json:"correct"`
	Possible int     `json:"possible"`
	Percent  int     `json:"percent"`
}

// ListAllCategoryScores returns the tallies sorted by category name.
func (p Progress) ListAllCategoryScores() []CategoryReport {
	out := make([]CategoryReport, 0, len(p.Scores))
	for name, score := range p.Scores {
		out = append(out, CategoryReport{
			Category: name,
			Correct:  score.Correct,
			Possible: score.Possible,
			Percent:  Percent(score.Correct, score.Possible),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
