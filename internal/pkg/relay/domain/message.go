package relay

import (
	"strings"
	"time"
)

// SenderKind identifies who authored a message.
type SenderKind string

const (
	SenderVisitor SenderKind = "visitor"
	SenderAdmin   SenderKind = "admin"
	SenderAI      SenderKind = "ai"
)

// Valid reports whether k is one of the known sender kinds.
func (k SenderKind) Valid() bool {
	switch k {
	case SenderVisitor, SenderAdmin, SenderAI:
		return true
	}
	return false
}

// Message is an append-only log entry in a conversation. Ordering is by
// CreatedAt with ties broken by ID (insertion sequence).
type Message struct {
	ID             int64      `db:"id"`
	ConversationID int64      `db:"conversation_id"`
	Body           string     `db:"body"`
	Sender         SenderKind `db:"sender"`
	Read           bool       `db:"read"`
	CreatedAt      time.Time  `db:"created_at"`
}

// NewMessage validates and normalizes a message before persistence.
// Visitor-authored messages start unread; admin and AI messages do not
// appear in the unread inbox.
func NewMessage(conversationID int64, body string, sender SenderKind) (*Message, error) {
	if conversationID <= 0 {
		return nil, ErrInvalidParameter
	}
	if !sender.Valid() {
		return nil, ErrInvalidSender
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	return &Message{
		ConversationID: conversationID,
		Body:           body,
		Sender:         sender,
		Read:           sender != SenderVisitor,
		CreatedAt:      time.Now().UTC(),
	}, nil
}
