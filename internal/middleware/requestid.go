package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader is the header request ids are read from and echoed to.
const RequestIDHeader = "X-Request-Id"

// RequestID tags every request with an id so a render, its API calls and any
// published invalidation event can be correlated in logs. An id supplied by
// an upstream proxy is kept; otherwise a fresh UUID is generated.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(RequestIDHeader, id)
			c.Set("request_id", id)
			return next(c)
		}
	}
}
