package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
)

type PgUsageRepository struct {
	pool *pgxpool.Pool
}

func NewPgUsageRepository(pool *pgxpool.Pool) *PgUsageRepository {
	return &PgUsageRepository{pool: pool}
}

var _ repository.UsageRepository = (*PgUsageRepository)(nil)

func (r *PgUsageRepository) ActiveLimits(ctx context.Context, accountID int64) (relay.SubscriptionLimits, error) {
	if r == nil || r.pool == nil {
		return relay.SubscriptionLimits{}, errors.New("PgUsageRepository: nil pool")
	}
	var limits relay.SubscriptionLimits
	err := r.pool.QueryRow(ctx, `
		SELECT p.max_conversations, p.max_ai_responses
		FROM subscriptions s
		JOIN subscription_plans p ON p.id = s.plan_id
		WHERE s.account_id = $1 AND s.status = 'active'
		ORDER BY s.created_at DESC
		LIMIT 1
	`, accountID).Scan(&limits.MaxConversations, &limits.MaxAIResponses)
	if errors.Is(err, pgx.ErrNoRows) {
		return relay.SubscriptionLimits{}, repository.ErrNoSubscription
	}
	if err != nil {
		return relay.SubscriptionLimits{}, err
	}
	return limits, nil
}

func (r *PgUsageRepository) FreeLimits(ctx context.Context) (relay.SubscriptionLimits, error) {
	if r == nil || r.pool == nil {
		return relay.SubscriptionLimits{}, errors.New("PgUsageRepository: nil pool")
	}
	var limits relay.SubscriptionLimits
	err := r.pool.QueryRow(ctx, `
		SELECT max_conversations, max_ai_responses
		FROM subscription_plans
		WHERE name = 'Free'
	`).Scan(&limits.MaxConversations, &limits.MaxAIResponses)
	if errors.Is(err, pgx.ErrNoRows) {
		return relay.SubscriptionLimits{}, repository.ErrNoSubscription
	}
	if err != nil {
		return relay.SubscriptionLimits{}, err
	}
	return limits, nil
}

// counterColumn maps a limit kind to its counter column. Kinds are a closed
// set, so interpolating the column name into SQL below is safe.
func counterColumn(kind relay.LimitKind) string {
	if kind == relay.LimitAIResponses {
		return "ai_response_count"
	}
	return "conversation_count"
}

// Reserve increments the counter only while strictly under max, in a single
// conditional UPDATE. Two concurrent reservations for the last unit cannot
// both succeed: the row lock serializes them and the second sees the new
// counter value.
func (r *PgUsageRepository) Reserve(ctx context.Context, accountID int64, kind relay.LimitKind, max int64) (relay.Reservation, error) {
	if r == nil || r.pool == nil {
		return relay.Reservation{}, errors.New("PgUsageRepository: nil pool")
	}
	col := counterColumn(kind)

	// Counters are created lazily on first reservation.
	if _, err := r.pool.Exec(ctx, `
		INSERT INTO usage_counters (account_id) VALUES ($1)
		ON CONFLICT (account_id) DO NOTHING
	`, accountID); err != nil {
		return relay.Reservation{}, err
	}

	var current int64
	err := r.pool.QueryRow(ctx, `
		UPDATE usage_counters
		SET `+col+` = `+col+` + 1
		WHERE account_id = $1 AND `+col+` < $2
		RETURNING `+col+`
	`, accountID, max).Scan(&current)
	if err == nil {
		return relay.Reservation{Allowed: true, Current: current, Max: max}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return relay.Reservation{}, err
	}

	// Denied: report the counter that blocked the reservation.
	if err := r.pool.QueryRow(ctx, `
		SELECT `+col+` FROM usage_counters WHERE account_id = $1
	`, accountID).Scan(&current); err != nil {
		return relay.Reservation{}, err
	}
	return relay.Reservation{Allowed: false, Current: current, Max: max}, nil
}
