// Package syncview keeps a client-facing view of itinerary days that can be
// patched optimistically before the server acknowledges a mutation, then
// reconciled against the persisted truth or rolled back.
package syncview

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
)

// State of the mutation cycle for one day.
type State string

const (
	// StateConfirmed means the cached view matches the last server
	// response.
	StateConfirmed State = "confirmed"
	// StatePending means an optimistic patch is applied locally and the
	// server call is still in flight.
	StatePending State = "pending"
	// StateRolledBack means the last mutation failed and the view was
	// restored from its pre-patch snapshot.
	StateRolledBack State = "rolled_back"
)

var (
	ErrDayNotCached     = errors.New("syncview: day is not cached")
	ErrMutationInFlight = errors.New("syncview: a mutation is already in flight for this day")
	ErrNothingPending   = errors.New("syncview: no pending mutation for this day")
)

type entry struct {
	view     domain.DayView
	snapshot domain.DayView
	state    State
}

// Coordinator owns the optimistic day-view cache. One mutation per day may
// be in flight at a time; the UI serializes drag operations, and the
// coordinator enforces the same discipline. It does not reconcile mutations
// from other sessions; those win or lose at the server, and this cache only
// catches up on the next Seed.
type Coordinator struct {
	mu   sync.Mutex
	days map[uuid.UUID]*entry
}

func NewCoordinator() *Coordinator {
	return &Coordinator{days: make(map[uuid.UUID]*entry)}
}

// Seed installs server truth for a day, replacing whatever was cached. Any
// in-flight marker is cleared: fresh server state supersedes local history.
func (c *Coordinator) Seed(view domain.DayView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.days[view.Day.ID] = &entry{view: cloneView(view), state: StateConfirmed}
}

// View returns a copy of the current (possibly optimistic) view for a day.
func (c *Coordinator) View(dayID uuid.UUID) (domain.DayView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.days[dayID]
	if !ok {
		return domain.DayView{}, false
	}
	return cloneView(e.view), true
}

func (c *Coordinator) State(dayID uuid.UUID) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.days[dayID]
	if !ok {
		return "", false
	}
	return e.state, true
}

// Begin snapshots the last confirmed view and applies an optimistic patch on
// top of it. The snapshot is what Rollback restores. A second Begin before
// Confirm or Rollback fails with ErrMutationInFlight.
func (c *Coordinator) Begin(dayID uuid.UUID, patch func(*domain.DayView)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.days[dayID]
	if !ok {
		return ErrDayNotCached
	}
	if e.state == StatePending {
		return ErrMutationInFlight
	}

	e.snapshot = cloneView(e.view)
	patched := cloneView(e.view)
	patch(&patched)
	e.view = patched
	e.state = StatePending
	return nil
}

// Confirm replaces the optimistic view with the server's response and ends
// the mutation cycle. Server truth always wins over the local patch.
func (c *Coordinator) Confirm(dayID uuid.UUID, serverView domain.DayView) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.days[dayID]
	if !ok {
		return ErrDayNotCached
	}
	if e.state != StatePending {
		return ErrNothingPending
	}

	e.view = cloneView(serverView)
	e.snapshot = domain.DayView{}
	e.state = StateConfirmed
	return nil
}

// Rollback restores the pre-patch snapshot after a failed server call.
func (c *Coordinator) Rollback(dayID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.days[dayID]
	if !ok {
		return ErrDayNotCached
	}
	if e.state != StatePending {
		return ErrNothingPending
	}

	e.view = e.snapshot
	e.snapshot = domain.DayView{}
	e.state = StateRolledBack
	return nil
}

// cloneView deep-copies a day view so snapshots stay immutable while the
// live view is patched.
func cloneView(view domain.DayView) domain.DayView {
	out := view
	out.Day.Notes = clonePtr(view.Day.Notes)
	out.Attachments = make([]domain.PlaceAttachment, len(view.Attachments))
	for i, attachment := range view.Attachments {
		copied := attachment
		copied.ScheduledAt = clonePtr(attachment.ScheduledAt)
		copied.Notes = clonePtr(attachment.Notes)
		copied.Rating = clonePtr(attachment.Rating)
		copied.DurationMins = clonePtr(attachment.DurationMins)
		out.Attachments[i] = copied
	}
	return out
}

func clonePtr[T any](ptr *T) *T {
	if ptr == nil {
		return nil
	}
	v := *ptr
	return &v
}
