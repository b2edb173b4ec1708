// Package selection tracks which single appointment's detail view is open
// and anchors it to the slot geometry captured at click time. It is the state
// machine behind the detail/delete modal: Closed until a slot is opened,
// back to Closed on close, outside click, Escape, or a successful delete.
package selection

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/glowpoint/salon-scheduler/internal/model"
)

// ErrNothingOpen is returned when a delete is requested with no open slot.
var ErrNothingOpen = errors.New("no appointment selected")

// Anchor is the screen bounding box of a slot at the moment it was clicked.
// The detail surface animates out of this rectangle.
type Anchor struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Selection is the open detail view: the appointment, the customer looked up
// for display, the click-origin geometry and the slot's color scheme.
type Selection struct {
	Appointment model.Appointment
	Customer    model.Customer
	Anchor      Anchor
	ColorIndex  int
	OpenedAt    time.Time
}

// Deleter is the mutation slice of the API client the controller needs.
type Deleter interface {
	DeleteAppointment(ctx context.Context, cookie string, id int) error
}

// Invalidator drops cached appointment lists after a confirmed mutation.
type Invalidator interface {
	Invalidate(date string)
}

// Controller holds at most one open selection. Opening a new slot while
// another is open replaces it; there is no stack of selections.
type Controller struct {
	deleter     Deleter
	invalidator Invalidator

	mu      sync.Mutex
	current *Selection
}

// New constructs a controller over the given delete and invalidation
// collaborators.
func New(deleter Deleter, invalidator Invalidator) *Controller {
	return &Controller{deleter: deleter, invalidator: invalidator}
}

// Open records a new selection, implicitly closing any previous one, and
// returns the stored state.
func (c *Controller) Open(apt model.Appointment, customer model.Customer, anchor Anchor, colorIndex int) Selection {
	sel := Selection{
		Appointment: apt,
		Customer:    customer,
		Anchor:      anchor,
		ColorIndex:  colorIndex,
		OpenedAt:    time.Now(),
	}
	c.mu.Lock()
	c.current = &sel
	c.mu.Unlock()
	return sel
}

// Current returns the open selection, if any.
func (c *Controller) Current() (Selection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Selection{}, false
	}
	return *c.current, true
}

// Close clears the selection. Explicit close, outside click and Escape all
// land here; closing an already-closed controller is a no-op.
func (c *Controller) Close() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}

// DeleteOpen deletes the open appointment through the API. On success the
// selection transitions to Closed and the affected cache entries are
// invalidated; on failure the selection stays open and the error is returned
// for the surface to display.
func (c *Controller) DeleteOpen(ctx context.Context, cookie string) error {
	c.mu.Lock()
	sel := c.current
	c.mu.Unlock()
	if sel == nil {
		return ErrNothingOpen
	}

	if err := c.deleter.DeleteAppointment(ctx, cookie, sel.Appointment.ID); err != nil {
		return err
	}

	// Invalidation strictly follows the confirmed delete.
	c.invalidator.Invalidate(sel.Appointment.Date())
	c.mu.Lock()
	// Only clear if the selection was not replaced while the request ran.
	if c.current == sel {
		c.current = nil
	}
	c.mu.Unlock()
	return nil
}
