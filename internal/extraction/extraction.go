// Package extraction turns a free-text expense note into an expense draft
// with the help of a generative language model.
package extraction

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"presupuesto/internal/core"
)

// Result is the raw structured guess returned by the model. Every field may
// be missing.
type Result struct {
	Amount       *float64 `json:"amount"`
	CategoryName *string  `json:"categoryName"`
	Description  *string  `json:"description"`
}

// Extractor is the port implemented by the model clients.
type Extractor interface {
	Extract(ctx context.Context, text string, categoryNames []string) (Result, error)
}

// Draft is an extraction resolved against the known categories and ready to
// be stamped with the acting member and saved.
type Draft struct {
	CategoryID  string
	Amount      core.Pesos
	Description string
	// Fallback is set when the guessed category matched nothing and the
	// first category was used instead.
	Fallback bool
	Guess    string
}

var lower = cases.Lower(language.Spanish)

// Interpret resolves r against categories. The amount is mandatory; the
// category is matched by case-insensitive substring in list order, falling
// back to the first category. A blank description is replaced with the
// original text.
func Interpret(r Result, categories []core.Category, fallbackText string) (Draft, error) {
	if r.Amount == nil || *r.Amount == 0 {
		return Draft{}, core.ErrExtractionFailed
	}
	amount, err := core.PesosFromFloat(*r.Amount)
	if err != nil {
		return Draft{}, core.ErrExtractionFailed
	}
	if len(categories) == 0 {
		return Draft{}, core.ErrNoCategories
	}

	d := Draft{Amount: amount}
	if r.CategoryName != nil {
		d.Guess = strings.TrimSpace(*r.CategoryName)
	}
	if c, ok := MatchCategory(d.Guess, categories); ok {
		d.CategoryID = c.ID
	} else {
		d.CategoryID = categories[0].ID
		d.Fallback = true
	}

	if r.Description != nil {
		d.Description = strings.TrimSpace(*r.Description)
	}
	if d.Description == "" {
		d.Description = strings.TrimSpace(fallbackText)
	}
	return d, nil
}

// MatchCategory returns the first category whose name contains guess,
// ignoring case. An empty guess matches nothing.
func MatchCategory(guess string, categories []core.Category) (core.Category, bool) {
	g := lower.String(strings.TrimSpace(guess))
	if g == "" {
		return core.Category{}, false
	}
	for _, c := range categories {
		if strings.Contains(lower.String(c.Name), g) {
			return c, true
		}
	}
	return core.Category{}, false
}

// CategoryNames lists the names passed to the model, in list order.
func CategoryNames(categories []core.Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}
