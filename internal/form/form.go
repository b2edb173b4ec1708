// Package form collects create-appointment input, validates it locally and
// submits it to the remote API. Validation failures never cause a network
// call; server-side rejections come back with the API's own message so the
// form can show it inline.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/glowpoint/salon-scheduler/internal/apiclient"
	"github.com/glowpoint/salon-scheduler/internal/grid"
	"github.com/glowpoint/salon-scheduler/internal/model"
)

// Local validation errors, caught before any request is issued.
var (
	ErrNoSession       = errors.New("no salon session")
	ErrMissingCustomer = errors.New("please select a customer")
	ErrMissingDate     = errors.New("please choose a date")
	ErrMissingStart    = errors.New("please choose a start time")
	ErrSubmitInFlight  = errors.New("submission already in progress")
)

// Creator is the mutation slice of the API client the form needs.
type Creator interface {
	CreateAppointment(ctx context.Context, cookie string, payload apiclient.AppointmentPayload) (model.Appointment, error)
	CreateCustomer(ctx context.Context, cookie string, payload apiclient.CustomerPayload) (model.Customer, error)
}

// Invalidator drops cached appointment lists after a confirmed mutation.
type Invalidator interface {
	Invalidate(date string)
}

// State is the form's current input. Zero values mean "not filled in yet";
// ColumnID falls back to lane 1 on submit, everything else is required except
// the comment.
type State struct {
	CustomerID int
	Date       string // YYYY-MM-DD
	Start      string // HH:MM
	End        string // HH:MM
	ColumnID   int
	Comment    string
}

// Controller drives one appointment form. Safe for the interleaved handler
// calls of a single session; a submit in flight blocks duplicate submits.
type Controller struct {
	api  Creator
	inv  Invalidator
	grid grid.Config

	mu      sync.Mutex
	state   State
	pending bool
}

// New returns a form controller over the given collaborators.
func New(api Creator, inv Invalidator, g grid.Config) *Controller {
	return &Controller{api: api, inv: inv, grid: g}
}

// State returns a copy of the current input.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetCustomer selects the customer the appointment is for.
func (c *Controller) SetCustomer(id int) {
	c.mu.Lock()
	c.state.CustomerID = id
	c.mu.Unlock()
}

// SetDate sets the appointment day (YYYY-MM-DD).
func (c *Controller) SetDate(date string) {
	c.mu.Lock()
	c.state.Date = date
	c.mu.Unlock()
}

// SetStart sets the start time and derives the end time as start plus one
// hour. The end stays independently editable afterwards via SetEnd.
func (c *Controller) SetStart(hhmm string) {
	c.mu.Lock()
	c.state.Start = hhmm
	c.state.End = plusOneHour(hhmm)
	c.mu.Unlock()
}

// SetEnd overrides the derived end time.
func (c *Controller) SetEnd(hhmm string) {
	c.mu.Lock()
	c.state.End = hhmm
	c.mu.Unlock()
}

// SetColumn selects the scheduling lane.
func (c *Controller) SetColumn(id int) {
	c.mu.Lock()
	c.state.ColumnID = id
	c.mu.Unlock()
}

// SetComment sets the free-text note.
func (c *Controller) SetComment(text string) {
	c.mu.Lock()
	c.state.Comment = text
	c.mu.Unlock()
}

// TimeOptions exposes the grid's slot starts for the form's time dropdowns.
func (c *Controller) TimeOptions() []string {
	return c.grid.TimeOptions()
}

// Reset clears the form back to its initial state.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.state = State{}
	c.mu.Unlock()
}

// Validate checks the local requirements without touching the network.
func (c *Controller) Validate(sess model.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked(sess)
}

func (c *Controller) validateLocked(sess model.Session) error {
	if !sess.Valid() {
		return ErrNoSession
	}
	if c.state.CustomerID == 0 {
		return ErrMissingCustomer
	}
	if c.state.Date == "" {
		return ErrMissingDate
	}
	if c.state.Start == "" {
		return ErrMissingStart
	}
	return nil
}

// Submit validates and creates the appointment. On success the cache entry
// for the appointment's date is invalidated and the form resets; on failure
// the input is preserved so the user can correct and resubmit.
func (c *Controller) Submit(ctx context.Context, sess model.Session) (model.Appointment, error) {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return model.Appointment{}, ErrSubmitInFlight
	}
	if err := c.validateLocked(sess); err != nil {
		c.mu.Unlock()
		return model.Appointment{}, err
	}
	st := c.state
	c.pending = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.pending = false
		c.mu.Unlock()
	}()

	end := st.End
	if end == "" {
		end = plusOneHour(st.Start)
	}
	column := st.ColumnID
	if column < 1 {
		column = 1
	}
	payload := apiclient.AppointmentPayload{
		Salon:           sess.SalonID,
		User:            sess.UserID,
		AppointmentTime: fmt.Sprintf("%sT%s:00Z", st.Date, st.Start),
		EndTime:         fmt.Sprintf("%sT%s:00Z", st.Date, end),
		Customer:        st.CustomerID,
		Comment:         st.Comment,
		ColumnID:        column,
	}

	apt, err := c.api.CreateAppointment(ctx, sess.Cookie, payload)
	if err != nil {
		return model.Appointment{}, err
	}

	c.inv.Invalidate(st.Date)
	c.Reset()
	return apt, nil
}

// AddCustomer runs the inline new-customer sub-flow: the created customer
// immediately becomes the selected one, no separate confirmation step.
func (c *Controller) AddCustomer(ctx context.Context, sess model.Session, fullName, phone string) (model.Customer, error) {
	if !sess.Valid() {
		return model.Customer{}, ErrNoSession
	}
	if fullName == "" || phone == "" {
		return model.Customer{}, errors.New("name and phone number are required")
	}
	cust, err := c.api.CreateCustomer(ctx, sess.Cookie, apiclient.CustomerPayload{
		FullName:    fullName,
		PhoneNumber: phone,
		Salon:       sess.SalonID,
	})
	if err != nil {
		return model.Customer{}, err
	}
	c.SetCustomer(cust.ID)
	return cust, nil
}

// plusOneHour shifts an HH:MM string forward by one hour, clamping at 23:xx.
// Malformed input is returned unchanged; submit-time validation on the server
// rejects it with a proper message.
func plusOneHour(hhmm string) string {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return hhmm
	}
	h++
	if h > 23 {
		h = 23
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}
