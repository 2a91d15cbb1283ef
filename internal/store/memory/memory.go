package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"presupuesto/internal/core"
	"presupuesto/internal/store"
)

// Store keeps categories and expenses in process memory.
type Store struct {
	mu       sync.Mutex
	cats     map[string]core.Category
	items    []core.Expense
	archives map[string]core.MonthSummary
}

var (
	_ store.Repository    = (*Store)(nil)
	_ store.ArchiveWriter = (*Store)(nil)
)

func New(cats ...core.Category) *Store {
	s := &Store{
		cats:     make(map[string]core.Category, len(cats)),
		archives: make(map[string]core.MonthSummary),
	}
	for _, c := range cats {
		s.cats[c.ID] = c
	}
	return s
}

// ListCategories returns categories ordered by ID.
func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.cats))
	for _, c := range s.cats {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) PutCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats[c.ID] = c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cats[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.cats, id)
	return nil
}

// ListExpenses returns expenses most recent first.
func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Expense(nil), s.items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.ID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.items {
		if e.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) SaveMonthSummary(_ context.Context, sum core.MonthSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archives[fmt.Sprintf("%04d-%02d", sum.Year, sum.Month)] = sum
	return nil
}

// MonthSummary returns the archived close for year and month.
func (s *Store) MonthSummary(year, month int) (core.MonthSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.archives[fmt.Sprintf("%04d-%02d", year, month)]
	return sum, ok
}
