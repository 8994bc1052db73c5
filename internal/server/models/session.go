package models

// Session is an authenticated guest session as presented by the identity
// provider. Only the email is used to find the guest.
type Session struct {
	Email string
}
