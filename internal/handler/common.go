package handler // handler defines http handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/glowpoint/salon-scheduler/internal/apiclient"
)

// alertFor renders an error the way the surface shows it. Application errors
// from the remote API carry the server's message verbatim; transport errors
// are collapsed into one generic line, the raw dial error means nothing to a
// receptionist.
func alertFor(err error) string {
	var reqErr *apiclient.RequestError
	if errors.As(err, &reqErr) && reqErr.Body != "" {
		return reqErr.Body
	}
	return "The salon service is unreachable. Please try again."
}

// statusFor maps an error to the HTTP status this service answers with.
// Application errors keep the remote status; everything else is a bad
// gateway, the failure sits between this service and the API.
func statusFor(err error) int {
	var reqErr *apiclient.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 502
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
