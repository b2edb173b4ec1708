// Package handler exposes HTTP handlers for the calendar surface. Handlers
// translate between HTTP and the controllers; no business rule lives here.
// Every failure is mapped to an inline-alert JSON body; a broken fetch must
// degrade the page, never crash it.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/glowpoint/salon-scheduler/internal/cache"
	"github.com/glowpoint/salon-scheduler/internal/layout"
	"github.com/glowpoint/salon-scheduler/internal/middleware"
)

// CalendarHandler serves the day-view model: positioned slots plus the grid
// chrome (hour labels, row counts) the surface renders around them.
type CalendarHandler struct {
	Cache   *cache.Coordinator
	Engine  *layout.Engine
	Columns int // number of scheduling lanes shown
}

// NewCalendarHandler constructs a CalendarHandler and panics if a dependency is nil.
func NewCalendarHandler(c *cache.Coordinator, e *layout.Engine, columns int) *CalendarHandler {
	if c == nil || e == nil {
		panic("nil dependency passed to NewCalendarHandler")
	}
	if columns < 1 {
		columns = 1
	}
	return &CalendarHandler{Cache: c, Engine: e, Columns: columns}
}

// daySlot is one positioned appointment in the day-view response.
type daySlot struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	StartTime  string `json:"start_time"` // HH:MM within the day
	EndTime    string `json:"end_time"`
	StartRow   int    `json:"start_row"`
	RowSpan    int    `json:"row_span"`
	Column     int    `json:"column"`
	ColorIndex int    `json:"color_index"`
	CustomerID int    `json:"customer"`
	Comment    string `json:"comment,omitempty"`
}

// Day returns the positioned slots for one date. With no ?date= the current
// day (UTC) is rendered. A fetch failure with cached data still renders the
// stale list and carries the error as a dismissible alert; with nothing
// cached the surface gets an empty grid plus the alert.
func (h *CalendarHandler) Day(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
	}

	date := c.QueryParam("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}

	appointments, err := h.Cache.Day(c.Request().Context(), sess.Cookie, date)
	slots := h.Engine.BuildDay(appointments, date)

	items := make([]daySlot, 0, len(slots))
	for _, s := range slots {
		items = append(items, daySlot{
			ID:         s.Appointment.ID,
			Title:      s.Appointment.Title(),
			StartTime:  s.Appointment.StartTime.UTC().Format("15:04"),
			EndTime:    s.Appointment.EndTime.UTC().Format("15:04"),
			StartRow:   s.StartRow,
			RowSpan:    s.RowSpan,
			Column:     s.Column,
			ColorIndex: s.ColorIndex,
			CustomerID: s.Appointment.CustomerID,
			Comment:    s.Appointment.Comment,
		})
	}

	resp := echo.Map{
		"date":         date,
		"hours":        h.Engine.Grid.HourLabels(),
		"rows":         h.Engine.Grid.Rows(),
		"slot_minutes": h.Engine.Grid.SlotMinutes,
		"columns":      h.Columns,
		"items":        items,
	}
	if err != nil {
		resp["alert"] = alertFor(err)
		resp["stale"] = len(appointments) > 0
	}
	return c.JSON(http.StatusOK, resp)
}
