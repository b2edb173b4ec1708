package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness probe for load balancers and monitoring. It answers
// from this process alone; remote API reachability is deliberately not part
// of liveness.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
