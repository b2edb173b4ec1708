// Package queue defines message payloads exchanged over the message broker.
package queue

// AppointmentChangedEvent is published after an appointment mutation is
// confirmed by the remote API. Other frontend instances consume it to drop
// their cached list for the affected date, so every replica converges on
// server truth without polling.
type AppointmentChangedEvent struct {
	AppointmentID int    `json:"appointment_id"`
	SalonID       int    `json:"salon_id"`
	Date          string `json:"date"`   // YYYY-MM-DD of the affected day
	Action        string `json:"action"` // created | updated | deleted
	OccurredAt    string `json:"occurred_at"`
}
