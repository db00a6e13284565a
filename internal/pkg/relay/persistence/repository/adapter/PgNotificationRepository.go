package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
)

type PgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPgNotificationRepository(pool *pgxpool.Pool) *PgNotificationRepository {
	return &PgNotificationRepository{pool: pool}
}

var _ repository.NotificationRepository = (*PgNotificationRepository)(nil)

func (r *PgNotificationRepository) CreateNotification(ctx context.Context, n relay.Notification) error {
	if r == nil || r.pool == nil {
		return errors.New("PgNotificationRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (account_id, website_id, kind, title, body, priority, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, n.AccountID, n.WebsiteID, n.Kind, n.Title, n.Body, n.Priority, n.CreatedAt)
	return err
}
