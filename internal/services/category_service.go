package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"presupuesto/internal/core"
	"presupuesto/internal/store"
)

// CategoryInput is a create (empty ID) or full update of a category.
type CategoryInput struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Budget core.Pesos `json:"budget"`
	Color  string     `json:"color"`
	Icon   string     `json:"icon"`
}

type CategoryService struct {
	store  store.CategoryStore
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand // nil uses the global source
}

func NewCategoryService(cs store.CategoryStore, logger *slog.Logger) *CategoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryService{store: cs, logger: logger.With("component", "category")}
}

// List returns the categories in store order.
func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

// Save creates or replaces a category. New categories get a random id and,
// without a color, a random one. Updates keep the stored color and icon
// when none is supplied.
func (s *CategoryService) Save(ctx context.Context, in CategoryInput) (core.Category, error) {
	c := core.Category{
		ID:     strings.TrimSpace(in.ID),
		Name:   strings.TrimSpace(in.Name),
		Budget: in.Budget,
		Color:  strings.TrimSpace(in.Color),
		Icon:   strings.TrimSpace(in.Icon),
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	op := "create"
	if c.ID == "" {
		s.mu.Lock()
		c.ID = core.NewCategoryID(s.rng)
		if c.Color == "" {
			c.Color = core.RandomColor(s.rng)
		}
		s.mu.Unlock()
	} else {
		op = "update"
		existing, err := s.find(ctx, c.ID)
		if err != nil {
			return core.Category{}, err
		}
		if c.Color == "" {
			c.Color = existing.Color
		}
		if c.Icon == "" {
			c.Icon = existing.Icon
		}
	}
	if c.Icon == "" {
		c.Icon = core.DefaultIcon
	}

	if err := s.store.PutCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	s.logger.InfoContext(ctx, "Category saved", "operation", op, "category_id", c.ID)
	return c, nil
}

// Delete removes a category once the member confirmed it. Without
// confirmation it returns a *core.ConfirmationRequiredError and changes
// nothing. Expenses pointing at the category are left untouched.
func (s *CategoryService) Delete(ctx context.Context, id string, confirmed bool) error {
	c, err := s.find(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !confirmed {
		return &core.ConfirmationRequiredError{Prompt: core.DeleteCategoryPrompt(c.Name)}
	}
	if err := s.store.DeleteCategory(ctx, c.ID); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	s.logger.InfoContext(ctx, "Category deleted", "category_id", c.ID)
	return nil
}

func (s *CategoryService) find(ctx context.Context, id string) (core.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return core.Category{}, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range cats {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Category{}, store.ErrNotFound
}
