package usecase

import (
	"context"
	"fmt"
	"strings"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
)

// RelayVisitorMessageInput is a visitor-authored message event as declared
// by the client, alongside the session it arrived on.
type RelayVisitorMessageInput struct {
	Session   relay.Session
	WebsiteID int64
	VisitorID string
	Body      string
}

// RelayVisitorMessageOutput carries everything the socket layer needs to
// fan the message out.
type RelayVisitorMessageOutput struct {
	Conversation        relay.Conversation
	Message             relay.Message
	CreatedConversation bool
}

// RelayVisitorMessageUseCase persists a visitor message into its (lazily
// created) conversation. The declared website and visitor must match the
// session's bindings; a mismatch is a cross-tenant event the caller drops
// without an error frame.
type RelayVisitorMessageUseCase struct {
	Conversations repository.ConversationRepository
	Ledger        *ReserveUsageUseCase
}

func NewRelayVisitorMessageUseCase(conversations repository.ConversationRepository, ledger *ReserveUsageUseCase) *RelayVisitorMessageUseCase {
	return &RelayVisitorMessageUseCase{Conversations: conversations, Ledger: ledger}
}

func (uc *RelayVisitorMessageUseCase) Execute(ctx context.Context, in RelayVisitorMessageInput) (*RelayVisitorMessageOutput, error) {
	if in.Session.Role != relay.RoleVisitor {
		return nil, relay.ErrUnauthorized
	}
	if in.WebsiteID != in.Session.WebsiteID || in.VisitorID != in.Session.VisitorID {
		return nil, relay.ErrCrossTenant
	}
	// Validate the body before touching the ledger so a blank message never
	// consumes a conversation unit.
	if strings.TrimSpace(in.Body) == "" {
		return nil, relay.ErrEmptyMessage
	}

	conv, created, err := ensureConversation(ctx, uc.Conversations, uc.Ledger, in.Session.AccountID, in.WebsiteID, in.VisitorID)
	if err != nil {
		return nil, err
	}

	msg, err := relay.NewMessage(conv.ID, in.Body, relay.SenderVisitor)
	if err != nil {
		return nil, err
	}

	saved, err := uc.Conversations.AppendMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &RelayVisitorMessageOutput{
		Conversation:        conv,
		Message:             saved,
		CreatedConversation: created,
	}, nil
}
