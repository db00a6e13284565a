package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
)

// defaultConversationCeiling keeps the widget working for end users when the
// limit tables are misconfigured. Deliberately generous: the point is to not
// take down live chats, not to meter accurately.
const defaultConversationCeiling = 1_000_000

// ReserveUsageUseCase is the usage ledger: it resolves the account's
// subscription limits and consumes one unit of the requested kind through
// the repository's atomic reserve primitive.
//
// Tier resolution falls back to the Free tier when no subscription is
// active. A missing Free tier is a configuration fault and fails closed,
// except for visitor-facing conversation creation, which stays permissive
// under a generous ceiling so a misconfiguration never blanks the widget.
type ReserveUsageUseCase struct {
	Repo   repository.UsageRepository
	Logger *zap.Logger
}

func NewReserveUsageUseCase(repo repository.UsageRepository, logger *zap.Logger) *ReserveUsageUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReserveUsageUseCase{Repo: repo, Logger: logger}
}

func (uc *ReserveUsageUseCase) Execute(ctx context.Context, accountID int64, kind relay.LimitKind) (relay.Reservation, error) {
	max, err := uc.resolveMax(ctx, accountID, kind)
	if err != nil {
		return relay.Reservation{}, err
	}

	res, err := uc.Repo.Reserve(ctx, accountID, kind, max)
	if err != nil {
		return relay.Reservation{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return res, nil
}

func (uc *ReserveUsageUseCase) resolveMax(ctx context.Context, accountID int64, kind relay.LimitKind) (int64, error) {
	limits, err := uc.Repo.ActiveLimits(ctx, accountID)
	if err == nil {
		return limits.Max(kind), nil
	}
	if !errors.Is(err, repository.ErrNoSubscription) {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	limits, err = uc.Repo.FreeLimits(ctx)
	if err == nil {
		return limits.Max(kind), nil
	}
	if !errors.Is(err, repository.ErrNoSubscription) {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if kind == relay.LimitConversations {
		uc.Logger.Warn("no Free tier configured, allowing conversation under default ceiling",
			zap.Int64("account_id", accountID))
		return defaultConversationCeiling, nil
	}
	return 0, ErrLimitConfiguration
}
