// Package store defines the record store ports and the Hub that turns a
// backend into a live source of full snapshots.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"presupuesto/internal/core"
)

// Snapshot is the complete state of both collections at one point in time.
// Consumers replace their state with it; there are no deltas.
type Snapshot struct {
	Revision   uint64
	Categories []core.Category
	Expenses   []core.Expense // most recent first
	LoadedAt   time.Time
}

// Hub wraps a Repository. Writes made through it are followed by a full
// reload that is broadcast to every subscriber.
type Hub struct {
	repo   Repository
	seed   []core.Category
	logger *slog.Logger

	reloadMu sync.Mutex

	mu     sync.RWMutex
	latest *Snapshot
	subs   map[int]chan Snapshot
	nextID int
	rev    uint64
}

var _ Repository = (*Hub)(nil)

// NewHub creates a hub. seed is written when the category collection is
// empty at first load; nil means core.DefaultCategories.
func NewHub(repo Repository, seed []core.Category, logger *slog.Logger) *Hub {
	if seed == nil {
		seed = core.DefaultCategories()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		repo:   repo,
		seed:   seed,
		logger: logger.With("component", "store_hub"),
		subs:   make(map[int]chan Snapshot),
	}
}

// Start performs the first load, seeding categories if needed, and
// publishes the initial snapshot.
func (h *Hub) Start(ctx context.Context) error {
	cats, err := h.repo.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	if len(cats) == 0 && len(h.seed) > 0 {
		h.logger.InfoContext(ctx, "Seeding default categories", "count", len(h.seed))
		for _, c := range h.seed {
			if err := h.repo.PutCategory(ctx, c); err != nil {
				return fmt.Errorf("seed category %s: %w", c.ID, err)
			}
		}
	}
	return h.Refresh(ctx)
}

// Refresh reloads both collections and broadcasts the result.
func (h *Hub) Refresh(ctx context.Context) error {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()

	cats, err := h.repo.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	exps, err := h.repo.ListExpenses(ctx)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.rev++
	snap := Snapshot{Revision: h.rev, Categories: cats, Expenses: exps, LoadedAt: time.Now()}
	h.latest = &snap
	for _, ch := range h.subs {
		offer(ch, snap)
	}
	h.logger.DebugContext(ctx, "Snapshot published",
		"revision", snap.Revision,
		"categories", len(cats),
		"expenses", len(exps),
		"subscribers", len(h.subs))
	return nil
}

// offer delivers s without blocking. A subscriber that has not consumed the
// previous snapshot gets it replaced by s.
func offer(ch chan Snapshot, s Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

// Latest returns the most recent snapshot, if any has been loaded.
func (h *Hub) Latest() (Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return Snapshot{}, false
	}
	return *h.latest, true
}

// Subscribe returns a channel receiving every new snapshot, starting with
// the latest one. The channel is closed when ctx ends.
func (h *Hub) Subscribe(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	if h.latest != nil {
		ch <- *h.latest
	}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(ch)
		h.mu.Unlock()
	}()
	return ch
}

// WatchExternal forwards changes observed by the backend, when it supports
// it, into Refresh. It blocks until ctx ends.
func (h *Hub) WatchExternal(ctx context.Context) error {
	w, ok := h.repo.(ChangeWatcher)
	if !ok {
		<-ctx.Done()
		return nil
	}
	return w.Watch(ctx, func() {
		if err := h.Refresh(ctx); err != nil {
			h.logger.ErrorContext(ctx, "Refresh after external change failed", "error", err)
		}
	})
}

// Backend returns the wrapped repository, for capabilities such as
// ArchiveWriter that bypass the snapshot.
func (h *Hub) Backend() Repository {
	return h.repo
}

func (h *Hub) ListCategories(ctx context.Context) ([]core.Category, error) {
	return h.repo.ListCategories(ctx)
}

func (h *Hub) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return h.repo.ListExpenses(ctx)
}

func (h *Hub) PutCategory(ctx context.Context, c core.Category) error {
	if err := h.repo.PutCategory(ctx, c); err != nil {
		return err
	}
	h.afterWrite(ctx, "put_category")
	return nil
}

func (h *Hub) DeleteCategory(ctx context.Context, id string) error {
	if err := h.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	h.afterWrite(ctx, "delete_category")
	return nil
}

func (h *Hub) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	created, err := h.repo.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	h.afterWrite(ctx, "create_expense")
	return created, nil
}

func (h *Hub) DeleteExpense(ctx context.Context, id string) error {
	if err := h.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	h.afterWrite(ctx, "delete_expense")
	return nil
}

// afterWrite never fails the write: the record is stored and the next
// successful refresh will carry it.
func (h *Hub) afterWrite(ctx context.Context, op string) {
	if err := h.Refresh(ctx); err != nil {
		h.logger.ErrorContext(ctx, "Refresh after write failed", "operation", op, "error", err)
	}
}
