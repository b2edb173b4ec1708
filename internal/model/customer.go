package model

// Customer is a salon customer referenced by appointments. Customers are
// owned by the remote API; this service only looks them up for display and
// for the create-appointment flow.
type Customer struct {
	ID          int    // customers.id on the remote API
	FullName    string // display name
	PhoneNumber string // contact number
}
