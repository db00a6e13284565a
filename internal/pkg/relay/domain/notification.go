package relay

import "time"

// Notification is a side-channel alert pushed to an account's feed by the
// relay (today only sale-opportunity alerts). The feed itself is rendered by
// the dashboard collaborator.
type Notification struct {
	ID        int64     `db:"id"`
	AccountID int64     `db:"account_id"`
	WebsiteID int64     `db:"website_id"`
	Kind      string    `db:"kind"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	Priority  string    `db:"priority"`
	CreatedAt time.Time `db:"created_at"`
}
