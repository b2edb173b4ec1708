// Package router wires the HTTP surface: which path hits which handler and
// which middleware guards it.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/glowpoint/salon-scheduler/internal/config"
	"github.com/glowpoint/salon-scheduler/internal/handler"
	"github.com/glowpoint/salon-scheduler/internal/middleware"
)

// Handlers bundles the handler set the calendar surface registers.
type Handlers struct {
	Calendar     *handler.CalendarHandler
	Appointments *handler.AppointmentHandler
	Selection    *handler.SelectionHandler
	Customers    *handler.CustomerHandler
}

// RegisterRoutes registers routes that do not require a session. Currently it
// exposes only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterCalendar registers the session-protected calendar API under /v1.
// Every route runs behind the request-id and session middleware; mutation
// routes additionally pass the Redis token bucket so one stuck client cannot
// hammer the upstream booking API through us.
func RegisterCalendar(e *echo.Echo, h Handlers, jwtSecret, cookieName string, rl config.RateLimitConfig, rdb *redis.Client) {
	v1 := e.Group("/v1")
	v1.Use(middleware.RequestID())
	v1.Use(middleware.SessionAuth(jwtSecret, cookieName))

	limited := middleware.NewTokenBucket(rl, rdb)

	// Day view. Reads are served from the cache coordinator, no rate limit.
	v1.GET("/calendar/day", h.Calendar.Day)

	// Appointment form state and submission.
	v1.GET("/appointments/form", h.Appointments.GetForm)
	v1.PATCH("/appointments/form", h.Appointments.PatchForm)
	v1.DELETE("/appointments/form", h.Appointments.ResetForm)
	v1.POST("/appointments", h.Appointments.Submit, limited)
	v1.POST("/appointments/form/customer", h.Appointments.AddCustomer, limited)

	// Direct appointment mutations.
	v1.PATCH("/appointments/:id", h.Appointments.Update, limited)
	v1.DELETE("/appointments/:id", h.Appointments.Delete, limited)

	// Detail-view selection and the delete flow behind it.
	v1.GET("/selection", h.Selection.Current)
	v1.POST("/selection/open", h.Selection.Open)
	v1.POST("/selection/close", h.Selection.Close)
	v1.POST("/selection/delete", h.Selection.Delete, limited)

	// Customer directory.
	v1.GET("/customers", h.Customers.List)
	v1.POST("/customers", h.Customers.Create, limited)
}
