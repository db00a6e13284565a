package usecase

import (
	"context"
	"errors"
	"fmt"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
)

type MarkConversationReadInput struct {
	Session   relay.Session
	WebsiteID int64
	VisitorID string
}

// MarkConversationReadUseCase clears the unread flag on visitor-authored
// messages in one conversation. Idempotent: re-invoking after everything is
// read updates zero rows and succeeds. Only an admin privileged for the
// website may clear its conversations.
type MarkConversationReadUseCase struct {
	Conversations repository.ConversationRepository
}

func NewMarkConversationReadUseCase(conversations repository.ConversationRepository) *MarkConversationReadUseCase {
	return &MarkConversationReadUseCase{Conversations: conversations}
}

// Execute returns the number of messages flipped to read.
func (uc *MarkConversationReadUseCase) Execute(ctx context.Context, in MarkConversationReadInput) (int64, error) {
	if in.Session.Role != relay.RoleAdmin {
		return 0, relay.ErrUnauthorized
	}
	if !in.Session.Privileged(in.WebsiteID) {
		return 0, relay.ErrCrossTenant
	}

	conv, err := uc.Conversations.FindConversation(ctx, in.WebsiteID, in.VisitorID)
	if errors.Is(err, repository.ErrConversationNotFound) {
		// Nothing to clear.
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	flipped, err := uc.Conversations.MarkRead(ctx, conv.ID, relay.SenderVisitor)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return flipped, nil
}
