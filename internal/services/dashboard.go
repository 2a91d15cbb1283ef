package services

import (
	"context"
	"time"

	"presupuesto/internal/analytics"
	"presupuesto/internal/store"
)

// SnapshotSource is implemented by store.Hub.
type SnapshotSource interface {
	Latest() (store.Snapshot, bool)
	Subscribe(ctx context.Context) <-chan store.Snapshot
}

// LiveDashboard is a dashboard computed from one snapshot.
type LiveDashboard struct {
	Revision uint64              `json:"revision"`
	View     analytics.Dashboard `json:"dashboard"`
}

// Dashboard derives the aggregates from the latest store snapshot. It keeps
// no state of its own; every call recomputes.
type Dashboard struct {
	src SnapshotSource
	loc *time.Location
	now func() time.Time
}

func NewDashboard(src SnapshotSource, loc *time.Location) *Dashboard {
	if loc == nil {
		loc = time.Local
	}
	return &Dashboard{src: src, loc: loc, now: time.Now}
}

// Now is the reference time in the household's time zone.
func (d *Dashboard) Now() time.Time {
	return d.now().In(d.loc)
}

// Ready reports whether a snapshot has been loaded.
func (d *Dashboard) Ready() bool {
	_, ok := d.src.Latest()
	return ok
}

// Snapshot returns the latest snapshot.
func (d *Dashboard) Snapshot() (store.Snapshot, bool) {
	return d.src.Latest()
}

// View computes the dashboard for now.
func (d *Dashboard) View(now time.Time) (LiveDashboard, bool) {
	snap, ok := d.src.Latest()
	if !ok {
		return LiveDashboard{}, false
	}
	return compute(snap, now.In(d.loc)), true
}

// Changes emits a fresh dashboard for every snapshot, starting with the
// latest, until ctx ends.
func (d *Dashboard) Changes(ctx context.Context) <-chan LiveDashboard {
	out := make(chan LiveDashboard, 1)
	snaps := d.src.Subscribe(ctx)
	go func() {
		defer close(out)
		for snap := range snaps {
			select {
			case out <- compute(snap, d.Now()):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func compute(snap store.Snapshot, now time.Time) LiveDashboard {
	return LiveDashboard{
		Revision: snap.Revision,
		View:     analytics.Compute(snap.Categories, snap.Expenses, now),
	}
}
