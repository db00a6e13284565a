package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
)

type PgConversationRepository struct {
	pool *pgxpool.Pool
}

func NewPgConversationRepository(pool *pgxpool.Pool) *PgConversationRepository {
	return &PgConversationRepository{pool: pool}
}

// Ensure interface compliance at compile time
var _ repository.ConversationRepository = (*PgConversationRepository)(nil)

func (r *PgConversationRepository) FindConversation(ctx context.Context, websiteID int64, visitorID string) (relay.Conversation, error) {
	if r == nil || r.pool == nil {
		return relay.Conversation{}, errors.New("PgConversationRepository: nil pool")
	}
	var conv relay.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id, website_id, visitor_id, created_at, last_message_at
		FROM conversations
		WHERE website_id = $1 AND visitor_id = $2
	`, websiteID, visitorID).Scan(&conv.ID, &conv.WebsiteID, &conv.VisitorID, &conv.CreatedAt, &conv.LastMessageAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return relay.Conversation{}, repository.ErrConversationNotFound
	}
	if err != nil {
		return relay.Conversation{}, err
	}
	return conv, nil
}

// GetOrCreateConversation relies on the unique index on (website_id,
// visitor_id): the insert is a no-op on conflict and the existing row is
// fetched instead, so concurrent first contact never produces duplicates.
func (r *PgConversationRepository) GetOrCreateConversation(ctx context.Context, websiteID int64, visitorID string) (relay.Conversation, bool, error) {
	if r == nil || r.pool == nil {
		return relay.Conversation{}, false, errors.New("PgConversationRepository: nil pool")
	}

	now := time.Now().UTC()
	var conv relay.Conversation
	err := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (website_id, visitor_id, created_at, last_message_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (website_id, visitor_id) DO NOTHING
		RETURNING id, website_id, visitor_id, created_at, last_message_at
	`, websiteID, visitorID, now).Scan(&conv.ID, &conv.WebsiteID, &conv.VisitorID, &conv.CreatedAt, &conv.LastMessageAt)
	if err == nil {
		return conv, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return relay.Conversation{}, false, err
	}

	// Conflict: another caller won the insert; observe its row.
	err = r.pool.QueryRow(ctx, `
		SELECT id, website_id, visitor_id, created_at, last_message_at
		FROM conversations
		WHERE website_id = $1 AND visitor_id = $2
	`, websiteID, visitorID).Scan(&conv.ID, &conv.WebsiteID, &conv.VisitorID, &conv.CreatedAt, &conv.LastMessageAt)
	if err != nil {
		return relay.Conversation{}, false, err
	}
	return conv, false, nil
}

// AppendMessage inserts the message and bumps the parent conversation's
// last_message_at inside one transaction so readers never observe one
// effect without the other.
func (r *PgConversationRepository) AppendMessage(ctx context.Context, m relay.Message) (relay.Message, error) {
	if r == nil || r.pool == nil {
		return relay.Message{}, errors.New("PgConversationRepository: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return relay.Message{}, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, body, sender, read, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, m.ConversationID, m.Body, string(m.Sender), m.Read, m.CreatedAt).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return relay.Message{}, err
	}

	ct, err := tx.Exec(ctx, `
		UPDATE conversations SET last_message_at = $2 WHERE id = $1
	`, m.ConversationID, m.CreatedAt)
	if err != nil {
		return relay.Message{}, err
	}
	if ct.RowsAffected() == 0 {
		return relay.Message{}, pgx.ErrNoRows
	}

	if err := tx.Commit(ctx); err != nil {
		return relay.Message{}, err
	}
	return m, nil
}

func (r *PgConversationRepository) ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]relay.Message, int64, error) {
	if r == nil || r.pool == nil {
		return nil, 0, errors.New("PgConversationRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages WHERE conversation_id = $1
	`, conversationID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id, body, sender, read, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var msgs []relay.Message
	for rows.Next() {
		var (
			msg    relay.Message
			sender string
		)
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Body, &sender, &msg.Read, &msg.CreatedAt); err != nil {
			return nil, 0, err
		}
		msg.Sender = relay.SenderKind(sender)
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return msgs, total, nil
}

func (r *PgConversationRepository) MarkRead(ctx context.Context, conversationID int64, sender relay.SenderKind) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgConversationRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE messages
		SET read = TRUE
		WHERE conversation_id = $1 AND sender = $2 AND read = FALSE
	`, conversationID, string(sender))
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *PgConversationRepository) UnreadCounts(ctx context.Context, websiteID int64) ([]repository.UnreadCount, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgConversationRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT m.conversation_id, c.visitor_id, COUNT(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE c.website_id = $1 AND m.sender = 'visitor' AND m.read = FALSE
		GROUP BY m.conversation_id, c.visitor_id
		ORDER BY m.conversation_id
	`, websiteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []repository.UnreadCount
	for rows.Next() {
		var uc repository.UnreadCount
		if err := rows.Scan(&uc.ConversationID, &uc.VisitorID, &uc.Unread); err != nil {
			return nil, err
		}
		counts = append(counts, uc)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return counts, nil
}
