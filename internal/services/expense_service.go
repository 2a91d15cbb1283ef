package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"presupuesto/internal/analytics"
	"presupuesto/internal/core"
	"presupuesto/internal/store"
)

// ErrWriteFailed wraps store failures on create, update and delete.
var ErrWriteFailed = errors.New("store write failed")

// Publisher announces saved expenses. The AMQP client implements it.
type Publisher interface {
	PublishExpenseCreated(ctx context.Context, e core.Expense, categoryName string) error
}

// ExpenseInput is a validated-at-save expense without identity or date.
type ExpenseInput struct {
	CategoryID  string
	Amount      core.Pesos
	Description string
}

// ExpenseService orchestrates expense writes across the store and AMQP.
type ExpenseService struct {
	store     store.Repository
	publisher Publisher
	now       func() time.Time
	logger    *slog.Logger
}

// NewExpenseService creates the service. publisher may be nil.
func NewExpenseService(repo store.Repository, publisher Publisher, logger *slog.Logger) *ExpenseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpenseService{
		store:     repo,
		publisher: publisher,
		now:       time.Now,
		logger:    logger.With("component", "expense"),
	}
}

// Create stamps the expense with the current time and the acting member,
// saves it and publishes an event. Validation errors are returned as is;
// store errors wrap ErrWriteFailed. A failed publish never fails the write.
func (s *ExpenseService) Create(ctx context.Context, in ExpenseInput, user core.FamilyUser) (core.Expense, error) {
	e := core.Expense{
		CategoryID:  strings.TrimSpace(in.CategoryID),
		Amount:      in.Amount,
		Date:        s.now(),
		Description: strings.TrimSpace(in.Description),
		UserID:      user.ID,
		UserName:    user.Name,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	s.logger.InfoContext(ctx, "Expense created",
		"expense_id", created.ID,
		"category_id", created.CategoryID,
		"amount", int64(created.Amount),
		"user_id", created.UserID)

	if err := s.publish(ctx, created); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense created message",
			"expense_id", created.ID, "error", err)
	}
	return created, nil
}

// History returns every expense joined with its category.
func (s *ExpenseService) History(ctx context.Context) ([]analytics.HistoryRow, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	exps, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return analytics.History(cats, exps), nil
}

func (s *ExpenseService) publish(ctx context.Context, e core.Expense) error {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping expense event")
		return nil
	}
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("resolve category name: %w", err)
	}
	return s.publisher.PublishExpenseCreated(ctx, e, analytics.LookupCategory(cats, e.CategoryID).Name)
}

// Close closes the publisher when it holds a connection.
func (s *ExpenseService) Close() error {
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
