package relay

// Role is the trust level of a live socket session.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleVisitor Role = "visitor"
)

// Session is the authorized descriptor produced by the connection
// authenticator. It is ephemeral; it lives only as long as the socket.
type Session struct {
	WebsiteID int64
	Role      Role
	AccountID int64  // the website's owning account; for admins, the authenticated account
	VisitorID string // set for visitors
	VisitorIP string
	AIEnabled bool // resolved from the website at connect time
}

// Privileged reports whether the session may act as an admin for websiteID.
func (s Session) Privileged(websiteID int64) bool {
	return s.Role == RoleAdmin && s.WebsiteID == websiteID
}
