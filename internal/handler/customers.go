package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/glowpoint/salon-scheduler/internal/apiclient"
	"github.com/glowpoint/salon-scheduler/internal/middleware"
	"github.com/glowpoint/salon-scheduler/internal/model"
)

// CustomerHandler proxies the customer directory the booking form picks from.
type CustomerHandler struct {
	Client *apiclient.Client
}

// NewCustomerHandler constructs a CustomerHandler and panics if the client is nil.
func NewCustomerHandler(client *apiclient.Client) *CustomerHandler {
	if client == nil {
		panic("nil client passed to NewCustomerHandler")
	}
	return &CustomerHandler{Client: client}
}

// List returns the salon's customers for the form's picker.
func (h *CustomerHandler) List(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
	}
	customers, err := h.Client.ListCustomers(c.Request().Context(), sess.Cookie)
	if err != nil {
		return c.JSON(statusFor(err), echo.Map{"alert": alertFor(err)})
	}
	return c.JSON(http.StatusOK, echo.Map{"customers": customerBodies(customers)})
}

// Create registers a customer directly, outside the appointment form.
func (h *CustomerHandler) Create(c echo.Context) error {
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
	if in.FullName == "" || in.PhoneNumber == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"alert": "name and phone number are required"})
	}

	cust, err := h.Client.CreateCustomer(c.Request().Context(), sess.Cookie, apiclient.CustomerPayload{
		FullName:    in.FullName,
		PhoneNumber: in.PhoneNumber,
		Salon:       sess.SalonID,
	})
	if err != nil {
		return c.JSON(statusFor(err), echo.Map{"alert": alertFor(err)})
	}
	return c.JSON(http.StatusCreated, echo.Map{"customer": customerBody(cust)})
}

func customerBody(cust model.Customer) echo.Map {
	return echo.Map{
		"id":           cust.ID,
		"full_name":    cust.FullName,
		"phone_number": cust.PhoneNumber,
	}
}

func customerBodies(customers []model.Customer) []echo.Map {
	out := make([]echo.Map, 0, len(customers))
	for _, cust := range customers {
		out = append(out, customerBody(cust))
	}
	return out
}
