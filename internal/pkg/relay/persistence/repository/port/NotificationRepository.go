package repository

import (
	"context"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
)

// NotificationRepository is the sink for side-channel alerts. Writes are
// fire-and-forget from the relay's perspective; the dashboard reads the feed.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n relay.Notification) error
}
