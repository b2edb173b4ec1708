package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/glowpoint/salon-scheduler/internal/model"
)

// bookingRecord mirrors one appointment row as the remote API serializes it.
type bookingRecord struct {
	ID              int       `json:"id"`
	Created         time.Time `json:"created"`
	Modified        time.Time `json:"modified"`
	AppointmentTime time.Time `json:"appointment_time"`
	EndTime         time.Time `json:"end_time"`
	Comment         string    `json:"comment"`
	ColumnID        int       `json:"column_id"`
	TaskID          string    `json:"task_id"`
	Salon           int       `json:"salon"`
	User            int       `json:"user"`
	Customer        int       `json:"customer"`
}

// toModel converts a wire record to the in-process appointment. Older records
// predate the end_time column; those fall back to a one-hour duration, which
// is what the calendar showed before end times existed.
func (r bookingRecord) toModel() model.Appointment {
	end := r.EndTime
	if end.IsZero() {
		end = r.AppointmentTime.Add(time.Hour)
	}
	return model.Appointment{
		ID:         r.ID,
		SalonID:    r.Salon,
		UserID:     r.User,
		CustomerID: r.Customer,
		StartTime:  r.AppointmentTime.UTC(),
		EndTime:    end.UTC(),
		ColumnID:   r.ColumnID,
		Comment:    r.Comment,
	}
}

// AppointmentPayload is the body of a create request. All fields are required
// by the remote API except Comment.
type AppointmentPayload struct {
	Salon           int    `json:"salon"`
	User            int    `json:"user"`
	AppointmentTime string `json:"appointment_time"` // ISO-8601 UTC, e.g. 2025-08-01T09:00:00Z
	EndTime         string `json:"end_time"`
	Customer        int    `json:"customer"`
	Comment         string `json:"comment"`
	ColumnID        int    `json:"column_id"`
}

// AppointmentPatch updates a subset of fields. Nil fields are omitted from
// the body and left unchanged server-side (PATCH semantics).
type AppointmentPatch struct {
	AppointmentTime *string `json:"appointment_time,omitempty"`
	EndTime         *string `json:"end_time,omitempty"`
	Customer        *int    `json:"customer,omitempty"`
	Comment         *string `json:"comment,omitempty"`
	ColumnID        *int    `json:"column_id,omitempty"`
}

// ListAppointments fetches appointments, optionally filtered server-side to a
// single date (YYYY-MM-DD). The result is unordered; callers must not assume
// any sort order.
func (c *Client) ListAppointments(ctx context.Context, cookie, date string) ([]model.Appointment, error) {
	path := "/appointments/"
	if date != "" {
		path += "?date=" + date
	}
	var records []bookingRecord
	if err := c.do(ctx, http.MethodGet, path, cookie, nil, &records); err != nil {
		return nil, err
	}
	out := make([]model.Appointment, 0, len(records))
	for _, r := range records {
		out = append(out, r.toModel())
	}
	return out, nil
}

// CreateAppointment posts a new appointment and returns the server's record,
// including the assigned id.
func (c *Client) CreateAppointment(ctx context.Context, cookie string, payload AppointmentPayload) (model.Appointment, error) {
	var rec bookingRecord
	if err := c.do(ctx, http.MethodPost, "/appointments/", cookie, payload, &rec); err != nil {
		return model.Appointment{}, err
	}
	return rec.toModel(), nil
}

// UpdateAppointment patches an existing appointment. Only the fields set on
// the patch are sent.
func (c *Client) UpdateAppointment(ctx context.Context, cookie string, id int, patch AppointmentPatch) (model.Appointment, error) {
	var rec bookingRecord
	path := fmt.Sprintf("/appointments/%d/", id)
	if err := c.do(ctx, http.MethodPatch, path, cookie, patch, &rec); err != nil {
		return model.Appointment{}, err
	}
	return rec.toModel(), nil
}

// DeleteAppointment removes an appointment. The API answers 204 No Content on
// success; any other status surfaces as a *RequestError.
func (c *Client) DeleteAppointment(ctx context.Context, cookie string, id int) error {
	path := fmt.Sprintf("/appointments/%d/", id)
	return c.do(ctx, http.MethodDelete, path, cookie, nil, nil)
}
