package common

// Cookie and header names shared by the HTTP layer and the admin console.
const (
	// SiteGateCookieName holds the site-wide access marker.
	SiteGateCookieName = "site-authenticated"
	// GuestSessionCookieName may carry the guest session token instead of the
	// Authorization header.
	GuestSessionCookieName = "guest-session"
	// RequestIDHeaderName is echoed back on every HTTP response.
	RequestIDHeaderName = "X-Request-ID"
)

// MaxUploadSize is the largest accepted photo payload in bytes (5 MiB).
const MaxUploadSize int64 = 5 * 1024 * 1024
