package repository

import (
	"context"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
)

// TenantRepository resolves a website to its owning account and AI flag.
// Read-only from the relay's point of view.
type TenantRepository interface {
	// GetWebsite returns relay.ErrTenantNotFound when no such website exists.
	GetWebsite(ctx context.Context, websiteID int64) (relay.Website, error)
}
