package usecase

import (
	"context"
	"fmt"
	"strings"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
)

// RelayAdminMessageInput is an admin-authored message event addressed to one
// visitor of a website.
type RelayAdminMessageInput struct {
	Session   relay.Session
	WebsiteID int64
	VisitorID string
	Body      string
}

type RelayAdminMessageOutput struct {
	Conversation relay.Conversation
	Message      relay.Message
}

// RelayAdminMessageUseCase persists an admin reply. The session must be
// privileged for the declared website: a non-admin sender is unauthorized
// (error frame), an admin declaring a foreign website is a cross-tenant
// event (silent drop).
type RelayAdminMessageUseCase struct {
	Conversations repository.ConversationRepository
	Ledger        *ReserveUsageUseCase
}

func NewRelayAdminMessageUseCase(conversations repository.ConversationRepository, ledger *ReserveUsageUseCase) *RelayAdminMessageUseCase {
	return &RelayAdminMessageUseCase{Conversations: conversations, Ledger: ledger}
}

func (uc *RelayAdminMessageUseCase) Execute(ctx context.Context, in RelayAdminMessageInput) (*RelayAdminMessageOutput, error) {
	if in.Session.Role != relay.RoleAdmin {
		return nil, relay.ErrUnauthorized
	}
	if !in.Session.Privileged(in.WebsiteID) {
		return nil, relay.ErrCrossTenant
	}
	if in.VisitorID == "" {
		return nil, relay.ErrInvalidParameter
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, relay.ErrEmptyMessage
	}

	conv, _, err := ensureConversation(ctx, uc.Conversations, uc.Ledger, in.Session.AccountID, in.WebsiteID, in.VisitorID)
	if err != nil {
		return nil, err
	}

	msg, err := relay.NewMessage(conv.ID, in.Body, relay.SenderAdmin)
	if err != nil {
		return nil, err
	}

	saved, err := uc.Conversations.AppendMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &RelayAdminMessageOutput{Conversation: conv, Message: saved}, nil
}
