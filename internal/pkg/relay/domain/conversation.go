package relay

import "time"

// Conversation is the persistent thread between one visitor and one website.
// Unique on (WebsiteID, VisitorID); created lazily on first contact.
type Conversation struct {
	ID            int64     `db:"id"`
	WebsiteID     int64     `db:"website_id"`
	VisitorID     string    `db:"visitor_id"`
	CreatedAt     time.Time `db:"created_at"`
	LastMessageAt time.Time `db:"last_message_at"`
}
