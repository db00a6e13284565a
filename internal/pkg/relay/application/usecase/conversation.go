package usecase

import (
	"context"
	"errors"
	"fmt"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
)

// ensureConversation returns the conversation for (websiteID, visitorID),
// creating it when absent. Creation consumes one conversation unit from the
// ledger first; the check is advisory-then-commit, so two racing first
// contacts may both reserve. The conversation row itself stays unique via
// the storage constraint.
func ensureConversation(ctx context.Context, repo repository.ConversationRepository, ledger *ReserveUsageUseCase, accountID, websiteID int64, visitorID string) (relay.Conversation, bool, error) {
	conv, err := repo.FindConversation(ctx, websiteID, visitorID)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, repository.ErrConversationNotFound) {
		return relay.Conversation{}, false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	res, err := ledger.Execute(ctx, accountID, relay.LimitConversations)
	if err != nil {
		return relay.Conversation{}, false, err
	}
	if !res.Allowed {
		return relay.Conversation{}, false, relay.ErrLimitExceeded
	}

	conv, created, err := repo.GetOrCreateConversation(ctx, websiteID, visitorID)
	if err != nil {
		return relay.Conversation{}, false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return conv, created, nil
}
