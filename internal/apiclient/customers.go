package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/glowpoint/salon-scheduler/internal/model"
)

// customerRecord mirrors a customer row on the wire.
type customerRecord struct {
	ID          int    `json:"id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

func (r customerRecord) toModel() model.Customer {
	return model.Customer{ID: r.ID, FullName: r.FullName, PhoneNumber: r.PhoneNumber}
}

// CustomerPayload creates a customer attached to a salon. Used by the inline
// new-customer sub-flow of the appointment form.
type CustomerPayload struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Salon       int    `json:"salon"`
}

// ListCustomers returns every customer visible to the session.
func (c *Client) ListCustomers(ctx context.Context, cookie string) ([]model.Customer, error) {
	var records []customerRecord
	if err := c.do(ctx, http.MethodGet, "/customers/", cookie, nil, &records); err != nil {
		return nil, err
	}
	out := make([]model.Customer, 0, len(records))
	for _, r := range records {
		out = append(out, r.toModel())
	}
	return out, nil
}

// GetCustomer looks up a single customer for display next to a slot.
func (c *Client) GetCustomer(ctx context.Context, cookie string, id int) (model.Customer, error) {
	var rec customerRecord
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/customers/%d/", id), cookie, nil, &rec); err != nil {
		return model.Customer{}, err
	}
	return rec.toModel(), nil
}

// CreateCustomer registers a new customer and returns the stored record.
func (c *Client) CreateCustomer(ctx context.Context, cookie string, payload CustomerPayload) (model.Customer, error) {
	var rec customerRecord
	if err := c.do(ctx, http.MethodPost, "/customers/", cookie, payload, &rec); err != nil {
		return model.Customer{}, err
	}
	return rec.toModel(), nil
}
