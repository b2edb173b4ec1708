package model

import (
	"strconv"
	"time"
)

// Appointment is a booking as this service understands it after decoding the
// remote API's wire record. Times are wall-clock UTC instants within a single
// calendar day; EndTime is strictly after StartTime (the remote API enforces
// this, the client never re-validates it).
type Appointment struct {
	ID         int       // appointment id from the server
	SalonID    int       // salon foreign reference
	UserID     int       // user foreign reference
	CustomerID int       // customer foreign reference
	StartTime  time.Time // start instant, UTC
	EndTime    time.Time // end instant, UTC
	ColumnID   int       // scheduling lane, defaults to 1 when the record omits it
	Comment    string    // optional note
}

// Date returns the appointment's calendar day formatted as YYYY-MM-DD in UTC.
func (a Appointment) Date() string {
	return a.StartTime.UTC().Format("2006-01-02")
}

// Title is the text rendered inside the slot: the comment when present,
// otherwise a generic label carrying the id.
func (a Appointment) Title() string {
	if a.Comment != "" {
		return a.Comment
	}
	return "Appointment #" + strconv.Itoa(a.ID)
}
