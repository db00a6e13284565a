package repository

import (
	"context"
	"errors"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
)

// ErrConversationNotFound signals a lookup miss in a typed way.
var ErrConversationNotFound = errors.New("conversation: not found")

// UnreadCount pairs a conversation with its number of unread visitor messages.
type UnreadCount struct {
	ConversationID int64
	VisitorID      string
	Unread         int64
}

// ConversationRepository defines persistence operations for conversations and
// their messages.
type ConversationRepository interface {
	// FindConversation returns the conversation for (websiteID, visitorID)
	// or ErrConversationNotFound.
	FindConversation(ctx context.Context, websiteID int64, visitorID string) (relay.Conversation, error)

	// GetOrCreateConversation returns the conversation for (websiteID,
	// visitorID), creating it if absent. Safe under concurrent first
	// contact: a uniqueness violation on insert resolves to the existing
	// row. created reports whether this call inserted the row.
	GetOrCreateConversation(ctx context.Context, websiteID int64, visitorID string) (conv relay.Conversation, created bool, err error)

	// AppendMessage inserts m and advances the parent conversation's
	// last_message_at in the same transaction. Returns m with its
	// database-assigned ID.
	AppendMessage(ctx context.Context, m relay.Message) (relay.Message, error)

	// ListMessages returns messages newest-first with offset pagination,
	// plus the total count for the conversation.
	ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]relay.Message, int64, error)

	// MarkRead flips read on all unread messages of the given sender kind
	// in the conversation. Idempotent; returns the number of rows updated.
	MarkRead(ctx context.Context, conversationID int64, sender relay.SenderKind) (int64, error)

	// UnreadCounts returns per-conversation unread visitor-message counts
	// for a website, for the admin inbox.
	UnreadCounts(ctx context.Context, websiteID int64) ([]UnreadCount, error)
}
