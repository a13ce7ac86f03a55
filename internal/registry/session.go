package registry

// Session carries the tenant and user every store call is scoped by.
// Stores treat it as read-only.
type Session struct {
	TenantID int64
	User     string
}

// NewSession creates a Session for the given tenant and user.
func NewSession(tenantID int64, user string) Session {
	return Session{TenantID: tenantID, User: user}
}
