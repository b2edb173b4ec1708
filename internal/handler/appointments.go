package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/glowpoint/salon-scheduler/internal/apiclient"
	"github.com/glowpoint/salon-scheduler/internal/cache"
	"github.com/glowpoint/salon-scheduler/internal/form"
	"github.com/glowpoint/salon-scheduler/internal/middleware"
	"github.com/glowpoint/salon-scheduler/internal/model"
	q "github.com/glowpoint/salon-scheduler/internal/queue"
	queue_publisher "github.com/glowpoint/salon-scheduler/internal/service"
)

// AppointmentHandler drives the appointment form and the direct
// update/delete operations. Mutations go to the remote API; on success the
// cache is invalidated, a refetch is kicked off and an appointment.changed
// event is published for the other instances.
type AppointmentHandler struct {
	Forms  *form.Manager
	Client *apiclient.Client
	Cache  *cache.Coordinator
}

// NewAppointmentHandler constructs an AppointmentHandler and panics if any dependency is nil.
func NewAppointmentHandler(forms *form.Manager, client *apiclient.Client, cc *cache.Coordinator) *AppointmentHandler {
	if forms == nil || client == nil || cc == nil {
		panic("nil dependency passed to NewAppointmentHandler")
	}
	return &AppointmentHandler{Forms: forms, Client: client, Cache: cc}
}

// formInput is the partial-update body for the form state. Pointer fields
// distinguish "not sent" from "cleared".
type formInput struct {
	Customer *int    `json:"customer"`
	Date     *string `json:"date"`
	Start    *string `json:"start"`
	End      *string `json:"end"`
	Column   *int    `json:"column"`
	Comment  *string `json:"comment"`
}

// GetForm returns the form's current state plus the time options the
// dropdowns are built from.
func (h *AppointmentHandler) GetForm(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
	}
	f := h.Forms.For(sess)
	return c.JSON(http.StatusOK, formResponse(f))
}

// PatchForm applies edits to the form. Setting the start time derives the
// end time (start plus one hour); an explicit end in the same request wins.
func (h *AppointmentHandler) PatchForm(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
	}
	var in formInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	f := h.Forms.For(sess)
	if in.Customer != nil {
		f.SetCustomer(*in.Customer)
	}
	if in.Date != nil {
		f.SetDate(*in.Date)
	}
	if in.Start != nil {
		f.SetStart(*in.Start)
	}
	if in.End != nil {
		f.SetEnd(*in.End)
	}
	if in.Column != nil {
		f.SetColumn(*in.Column)
	}
	if in.Comment != nil {
		f.SetComment(*in.Comment)
	}
	return c.JSON(http.StatusOK, formResponse(f))
}

// ResetForm clears the form, e.g. when the dialog is dismissed.
func (h *AppointmentHandler) ResetForm(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
	}
	h.Forms.For(sess).Reset()
	return c.NoContent(http.StatusNoContent)
}

// Submit validates and creates the appointment from the form state. Local
// validation failures come back as 422 with an inline message and never reach
// the network; remote rejections surface the API's message verbatim.
func (h *AppointmentHandler) Submit(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
	}
	f := h.Forms.For(sess)
	date := f.State().Date

	apt, err := f.Submit(c.Request().Context(), sess)
	if err != nil {
		if localFormError(err) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"alert": err.Error()})
		}
		return c.JSON(statusFor(err), echo.Map{"alert": alertFor(err)})
	}

	h.afterMutation(sess, apt, date, "created")
	return c.JSON(http.StatusCreated, echo.Map{
		"alert":       "Appointment created successfully!",
		"appointment": appointmentBody(apt),
	})
}

// AddCustomer runs the inline new-customer sub-flow of the form.
func (h *AppointmentHandler) AddCustomer(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
	}
	var in struct {
		FullName    string `json:"full_name"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	cust, err := h.Forms.For(sess).AddCustomer(c.Request().Context(), sess, in.FullName, in.PhoneNumber)
	if err != nil {
		if localFormError(err) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"alert": err.Error()})
		}
		return c.JSON(statusFor(err), echo.Map{"alert": alertFor(err)})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"alert":    "Created customer successfully.",
		"customer": customerBody(cust),
	})
}

// Update patches an appointment directly (drag-reschedule, comment edits).
func (h *AppointmentHandler) Update(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var patch apiclient.AppointmentPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	apt, err := h.Client.UpdateAppointment(c.Request().Context(), sess.Cookie, id, patch)
	if err != nil {
		return c.JSON(statusFor(err), echo.Map{"alert": alertFor(err)})
	}

	h.afterMutation(sess, apt, apt.Date(), "updated")
	return c.JSON(http.StatusOK, echo.Map{"appointment": appointmentBody(apt)})
}

// Delete removes an appointment outside the detail-modal flow (list views).
func (h *AppointmentHandler) Delete(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	date := c.QueryParam("date")

	if err := h.Client.DeleteAppointment(c.Request().Context(), sess.Cookie, id); err != nil {
		return c.JSON(statusFor(err), echo.Map{"alert": alertFor(err)})
	}

	h.Cache.Invalidate(date)
	h.publishAndRefetch(sess, q.AppointmentChangedEvent{
		AppointmentID: id,
		SalonID:       sess.SalonID,
		Date:          date,
		Action:        "deleted",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
	return c.NoContent(http.StatusNoContent)
}

// afterMutation invalidates, refetches and fans the change out. The form
// controller has already invalidated on create; doing it again is harmless
// and keeps the update path symmetrical.
func (h *AppointmentHandler) afterMutation(sess model.Session, apt model.Appointment, date, action string) {
	if date == "" {
		date = apt.Date()
	}
	h.Cache.Invalidate(date)
	h.publishAndRefetch(sess, q.AppointmentChangedEvent{
		AppointmentID: apt.ID,
		SalonID:       sess.SalonID,
		Date:          date,
		Action:        action,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})
}

// publishAndRefetch runs the fan-out and the warm-up refetch in the
// background; neither may delay or fail the mutation response. The refetch
// starts only after the mutation succeeded, so it can never observe the
// cache ahead of the write.
func (h *AppointmentHandler) publishAndRefetch(sess model.Session, ev q.AppointmentChangedEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishAppointmentChanged(ctx, ev)
		_, _ = h.Cache.Refresh(ctx, sess.Cookie, ev.Date)
	}()
}

func localFormError(err error) bool {
	switch err {
	case form.ErrNoSession, form.ErrMissingCustomer, form.ErrMissingDate, form.ErrMissingStart, form.ErrSubmitInFlight:
		return true
	}
	return false
}

func formResponse(f *form.Controller) echo.Map {
	st := f.State()
	return echo.Map{
		"state": echo.Map{
			"customer": st.CustomerID,
			"date":     st.Date,
			"start":    st.Start,
			"end":      st.End,
			"column":   st.ColumnID,
			"comment":  st.Comment,
		},
		"time_options": f.TimeOptions(),
	}
}

func appointmentBody(apt model.Appointment) echo.Map {
	return echo.Map{
		"id":         apt.ID,
		"date":       apt.Date(),
		"start_time": apt.StartTime.UTC().Format("15:04"),
		"end_time":   apt.EndTime.UTC().Format("15:04"),
		"column_id":  apt.ColumnID,
		"customer":   apt.CustomerID,
		"comment":    apt.Comment,
	}
}
