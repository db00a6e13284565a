package usecase

import (
	"context"
	"fmt"

	"github.com/mehdi852/chatbot-sub003/internal/pkg/ai"
	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
)

// historyWindow is how many recent messages are given to the responder.
const historyWindow = 10

type RespondWithAIInput struct {
	Session        relay.Session
	ConversationID int64
	VisitorMessage string
}

type RespondWithAIOutput struct {
	Message relay.Message
	// History is the recent conversation (newest first) that was fed to
	// the responder, reused by the sale detector.
	History []relay.Message
}

// RespondWithAIUseCase generates and persists an AI reply to a visitor
// message, gated by the ai_response ledger kind. Only consulted for
// AI-enabled websites; the visitor's own message is already durable before
// this runs, so failures here lose nothing.
type RespondWithAIUseCase struct {
	Conversations repository.ConversationRepository
	Ledger        *ReserveUsageUseCase
	Responder     ai.Responder
}

func NewRespondWithAIUseCase(conversations repository.ConversationRepository, ledger *ReserveUsageUseCase, responder ai.Responder) *RespondWithAIUseCase {
	return &RespondWithAIUseCase{Conversations: conversations, Ledger: ledger, Responder: responder}
}

func (uc *RespondWithAIUseCase) Execute(ctx context.Context, in RespondWithAIInput) (*RespondWithAIOutput, error) {
	if uc.Responder == nil {
		return nil, fmt.Errorf("ai responder not configured")
	}

	res, err := uc.Ledger.Execute(ctx, in.Session.AccountID, relay.LimitAIResponses)
	if err != nil {
		return nil, err
	}
	if !res.Allowed {
		return nil, relay.ErrLimitExceeded
	}

	history, _, err := uc.Conversations.ListMessages(ctx, in.ConversationID, historyWindow+1, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	// The newest entry is the visitor message being answered; it travels
	// separately, so keep it out of the history or the model sees it twice.
	if len(history) > 0 && history[0].Sender == relay.SenderVisitor && history[0].Body == in.VisitorMessage {
		history = history[1:]
	}

	reply, err := uc.Responder.Reply(ctx, in.VisitorMessage, history)
	if err != nil {
		return nil, err
	}

	msg, err := relay.NewMessage(in.ConversationID, reply, relay.SenderAI)
	if err != nil {
		return nil, err
	}

	saved, err := uc.Conversations.AppendMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &RespondWithAIOutput{Message: saved, History: history}, nil
}
