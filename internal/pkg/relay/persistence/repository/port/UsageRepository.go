package repository

import (
	"context"
	"errors"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
)

// ErrNoSubscription signals that no matching subscription tier row exists.
// Callers distinguish "no active subscription" (fall back to Free) from
// transport errors through this sentinel.
var ErrNoSubscription = errors.New("usage: no subscription tier found")

// UsageRepository backs the usage ledger: tier limit resolution plus the
// atomic reserve primitive.
type UsageRepository interface {
	// ActiveLimits resolves the limits of accountID's active subscription.
	// Returns ErrNoSubscription when the account has none active.
	ActiveLimits(ctx context.Context, accountID int64) (relay.SubscriptionLimits, error)

	// FreeLimits resolves the limits of the "Free" tier.
	// Returns ErrNoSubscription when the tier is not configured.
	FreeLimits(ctx context.Context) (relay.SubscriptionLimits, error)

	// Reserve consumes one unit of kind for accountID iff the counter is
	// strictly below max, as a single atomic conditional update. The
	// returned reservation reports whether the unit was granted and the
	// counter value observed.
	Reserve(ctx context.Context, accountID int64, kind relay.LimitKind, max int64) (relay.Reservation, error)
}
