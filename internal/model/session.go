package model

// Session is the ambient identity for a browsing session, extracted from the
// JWT session cookie by the middleware and passed explicitly to every
// controller that needs it. Keeping it an explicit value rather than a
// process-wide singleton makes the controllers trivially testable.
type Session struct {
	UserID  int    // authenticated staff user id (JWT "sub")
	SalonID int    // salon the user operates in (JWT "salon")
	Cookie  string // raw session cookie value, forwarded to the remote API
}

// Valid reports whether the session carries enough identity to create
// appointments on behalf of a salon.
func (s Session) Valid() bool {
	return s.UserID > 0 && s.SalonID > 0
}
