package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/glowpoint/salon-scheduler/internal/apiclient"
	"github.com/glowpoint/salon-scheduler/internal/cache"
	"github.com/glowpoint/salon-scheduler/internal/layout"
	"github.com/glowpoint/salon-scheduler/internal/middleware"
	"github.com/glowpoint/salon-scheduler/internal/model"
	q "github.com/glowpoint/salon-scheduler/internal/queue"
	"github.com/glowpoint/salon-scheduler/internal/selection"
	queue_publisher "github.com/glowpoint/salon-scheduler/internal/service"
)

// SelectionHandler drives the per-user detail modal: which appointment is
// open, anchored where, and the delete flow out of it.
type SelectionHandler struct {
	Selections *selection.Manager
	Client     *apiclient.Client
	Cache      *cache.Coordinator
}

// NewSelectionHandler constructs a SelectionHandler and panics if any dependency is nil.
func NewSelectionHandler(sel *selection.Manager, client *apiclient.Client, cc *cache.Coordinator) *SelectionHandler {
	if sel == nil || client == nil || cc == nil {
		panic("nil dependency passed to NewSelectionHandler")
	}
	return &SelectionHandler{Selections: sel, Client: client, Cache: cc}
}

// openInput identifies the clicked slot plus its on-screen geometry.
type openInput struct {
	AppointmentID int              `json:"appointment_id"`
	Date          string           `json:"date"`
	Anchor        selection.Anchor `json:"anchor"`
}

// Open records a selection for the clicked slot. The appointment is resolved
// from the cached day list; its customer is looked up for display. Opening
// over an already open selection replaces it.
func (h *SelectionHandler) Open(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
	}
	var in openInput
	if err := c.Bind(&in); err != nil || in.AppointmentID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	appointments, err := h.Cache.Day(c.Request().Context(), sess.Cookie, in.Date)
	if err != nil && len(appointments) == 0 {
		return c.JSON(statusFor(err), echo.Map{"alert": alertFor(err)})
	}
	apt, found := findAppointment(appointments, in.AppointmentID)
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
	}

	// Display-only lookup; an unknown customer must not block the modal.
	customer, cerr := h.Client.GetCustomer(c.Request().Context(), sess.Cookie, apt.CustomerID)
	if cerr != nil {
		customer = model.Customer{ID: apt.CustomerID}
	}

	sel := h.Selections.For(sess).Open(apt, customer, in.Anchor, layout.ColorIndex(apt.ID))
	return c.JSON(http.StatusOK, selectionBody(sel))
}

// Current returns the open selection, or 204 when nothing is open.
func (h *SelectionHandler) Current(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
	}
	sel, open := h.Selections.For(sess).Current()
	if !open {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, selectionBody(sel))
}

// Close dismisses the detail view. Outside clicks and Escape land here too;
// closing with nothing open is harmless.
func (h *SelectionHandler) Close(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
	}
	h.Selections.For(sess).Close()
	return c.NoContent(http.StatusNoContent)
}

// Delete removes the open appointment. On success the modal closes, the
// change fans out and a warm refetch starts; on failure the selection stays
// open with the error as an inline alert.
func (h *SelectionHandler) Delete(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
	}
	ctrl := h.Selections.For(sess)
	sel, open := ctrl.Current()
	if !open {
		return c.JSON(http.StatusConflict, echo.Map{"error": selection.ErrNothingOpen.Error()})
	}

	if err := ctrl.DeleteOpen(c.Request().Context(), sess.Cookie); err != nil {
		if err == selection.ErrNothingOpen {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(statusFor(err), echo.Map{"alert": alertFor(err)})
	}

	date := sel.Appointment.Date()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishAppointmentChanged(ctx, q.AppointmentChangedEvent{
			AppointmentID: sel.Appointment.ID,
			SalonID:       sess.SalonID,
			Date:          date,
			Action:        "deleted",
			OccurredAt:    time.Now().UTC().Format(time.RFC3339),
		})
		_, _ = h.Cache.Refresh(ctx, sess.Cookie, date)
	}()

	return c.JSON(http.StatusOK, echo.Map{"alert": "Appointment deleted."})
}

func findAppointment(appointments []model.Appointment, id int) (model.Appointment, bool) {
	for _, apt := range appointments {
		if apt.ID == id {
			return apt, true
		}
	}
	return model.Appointment{}, false
}

func selectionBody(sel selection.Selection) echo.Map {
	return echo.Map{
		"appointment": appointmentBody(sel.Appointment),
		"customer":    customerBody(sel.Customer),
		"anchor":      sel.Anchor,
		"color_index": sel.ColorIndex,
		"opened_at":   sel.OpenedAt.UTC().Format(time.RFC3339),
	}
}
