package usecase

import (
	"context"
	"fmt"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
)

// UnreadCountsUseCase returns per-conversation unread visitor-message counts
// for a website. Consumed by the admin dashboard for inbox badges.
type UnreadCountsUseCase struct {
	Conversations repository.ConversationRepository
}

func NewUnreadCountsUseCase(conversations repository.ConversationRepository) *UnreadCountsUseCase {
	return &UnreadCountsUseCase{Conversations: conversations}
}

func (uc *UnreadCountsUseCase) Execute(ctx context.Context, websiteID int64) ([]repository.UnreadCount, error) {
	if websiteID <= 0 {
		return nil, relay.ErrInvalidParameter
	}
	counts, err := uc.Conversations.UnreadCounts(ctx, websiteID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return counts, nil
}
