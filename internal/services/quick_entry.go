package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"presupuesto/internal/core"
	"presupuesto/internal/extraction"
	"presupuesto/internal/store"
)

// ManualForm is the manual entry form as typed by the member.
type ManualForm struct {
	CategoryID  string `json:"categoryId"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// Outcome reports a submission that passed validation. Saved is false when
// the store rejected the write; the failure is only logged.
type Outcome struct {
	Saved    bool          `json:"saved"`
	Expense  *core.Expense `json:"expense,omitempty"`
	Fallback bool          `json:"fallback,omitempty"`
}

// QuickEntry implements the two ways of adding an expense.
type QuickEntry struct {
	extractor  extraction.Extractor
	categories store.CategoryStore
	expenses   *ExpenseService
	logger     *slog.Logger
}

// NewQuickEntry wires the entry paths. A nil extractor disables SubmitText.
func NewQuickEntry(extractor extraction.Extractor, categories store.CategoryStore, expenses *ExpenseService, logger *slog.Logger) *QuickEntry {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuickEntry{
		extractor:  extractor,
		categories: categories,
		expenses:   expenses,
		logger:     logger.With("component", "quick_entry"),
	}
}

// SubmitText asks the model to structure text and saves the result.
func (q *QuickEntry) SubmitText(ctx context.Context, text string, user core.FamilyUser) (Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{}, core.ErrIncompleteData
	}
	if q.extractor == nil {
		return Outcome{}, core.ErrExtractionUnavailable
	}

	cats, err := q.categories.ListCategories(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("list categories: %w", err)
	}

	res, err := q.extractor.Extract(ctx, text, extraction.CategoryNames(cats))
	if err != nil {
		if !errors.Is(err, core.ErrExtractionFailed) && !errors.Is(err, core.ErrExtractionUnavailable) {
			err = fmt.Errorf("%w: %w", core.ErrExtractionUnavailable, err)
		}
		return Outcome{}, err
	}

	draft, err := extraction.Interpret(res, cats, text)
	if err != nil {
		q.logger.WarnContext(ctx, "Extraction result not usable", "error", err)
		return Outcome{}, err
	}
	if draft.Fallback {
		q.logger.WarnContext(ctx, "Guessed category not found, using first category",
			"guess", draft.Guess,
			"category_id", draft.CategoryID)
	}

	out, err := q.save(ctx, ExpenseInput{
		CategoryID:  draft.CategoryID,
		Amount:      draft.Amount,
		Description: draft.Description,
	}, user)
	out.Fallback = draft.Fallback
	return out, err
}

// SubmitManual validates the form and saves it. Any invalid field yields
// core.ErrIncompleteData; a bad amount also wraps core.ErrInvalidAmount so
// the member is told that thousands separators are not accepted.
func (q *QuickEntry) SubmitManual(ctx context.Context, form ManualForm, user core.FamilyUser) (Outcome, error) {
	if strings.TrimSpace(form.CategoryID) == "" || strings.TrimSpace(form.Description) == "" {
		return Outcome{}, core.ErrIncompleteData
	}
	amount, err := core.ParseAmount(form.Amount)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %w", core.ErrIncompleteData, err)
	}
	return q.save(ctx, ExpenseInput{
		CategoryID:  form.CategoryID,
		Amount:      amount,
		Description: form.Description,
	}, user)
}

func (q *QuickEntry) save(ctx context.Context, in ExpenseInput, user core.FamilyUser) (Outcome, error) {
	e, err := q.expenses.Create(ctx, in, user)
	switch {
	case errors.Is(err, ErrWriteFailed):
		q.logger.ErrorContext(ctx, "Expense not saved", "error", err, "user_id", user.ID)
		return Outcome{Saved: false}, nil
	case err != nil:
		return Outcome{}, fmt.Errorf("%w: %w", core.ErrIncompleteData, err)
	}
	return Outcome{Saved: true, Expense: &e}, nil
}
