package usecase

import (
	"context"
	"fmt"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
)

// ListMessagesInput carries stateless pagination parameters; no cursor
// session exists between calls.
type ListMessagesInput struct {
	ConversationID int64
	Limit          int
	Offset         int
}

type ListMessagesOutput struct {
	Messages []relay.Message
	Total    int64
}

// ListMessagesUseCase returns a conversation's messages newest-first for
// inbox views, with the total count for pagination.
type ListMessagesUseCase struct {
	Conversations repository.ConversationRepository
}

func NewListMessagesUseCase(conversations repository.ConversationRepository) *ListMessagesUseCase {
	return &ListMessagesUseCase{Conversations: conversations}
}

func (uc *ListMessagesUseCase) Execute(ctx context.Context, in ListMessagesInput) (*ListMessagesOutput, error) {
	if in.ConversationID <= 0 {
		return nil, relay.ErrInvalidParameter
	}
	msgs, total, err := uc.Conversations.ListMessages(ctx, in.ConversationID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &ListMessagesOutput{Messages: msgs, Total: total}, nil
}
