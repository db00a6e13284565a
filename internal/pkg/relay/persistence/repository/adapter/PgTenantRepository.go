package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/mehdi852/chatbot-sub003/internal/infrastructure/cache/port"
	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
)

type PgTenantRepository struct {
	pool *pgxpool.Pool
}

func NewPgTenantRepository(pool *pgxpool.Pool) *PgTenantRepository {
	return &PgTenantRepository{pool: pool}
}

var _ repository.TenantRepository = (*PgTenantRepository)(nil)

func (r *PgTenantRepository) GetWebsite(ctx context.Context, websiteID int64) (relay.Website, error) {
	if r == nil || r.pool == nil {
		return relay.Website{}, errors.New("PgTenantRepository: nil pool")
	}
	var w relay.Website
	err := r.pool.QueryRow(ctx, `
		SELECT id, account_id, ai_enabled FROM websites WHERE id = $1
	`, websiteID).Scan(&w.ID, &w.AccountID, &w.AIEnabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return relay.Website{}, relay.ErrTenantNotFound
	}
	if err != nil {
		return relay.Website{}, err
	}
	return w, nil
}

// CachedTenantRepository decorates a TenantRepository with a short-TTL cache.
// Website rows are effectively immutable for the relay, so a stale read is
// harmless; cache transport errors fall through to the inner repository.
type CachedTenantRepository struct {
	inner repository.TenantRepository
	cache cacheport.Cache
	ttl   time.Duration
}

func NewCachedTenantRepository(inner repository.TenantRepository, cache cacheport.Cache) *CachedTenantRepository {
	return &CachedTenantRepository{inner: inner, cache: cache, ttl: 5 * time.Minute}
}

var _ repository.TenantRepository = (*CachedTenantRepository)(nil)

func (r *CachedTenantRepository) GetWebsite(ctx context.Context, websiteID int64) (relay.Website, error) {
	if r.cache == nil {
		return r.inner.GetWebsite(ctx, websiteID)
	}

	key := fmt.Sprintf("tenant:website:%d", websiteID)

	if raw, err := r.cache.Get(ctx, key); err == nil && raw != "" {
		var w relay.Website
		if jsonErr := json.Unmarshal([]byte(raw), &w); jsonErr == nil {
			return w, nil
		}
	}

	w, err := r.inner.GetWebsite(ctx, websiteID)
	if err != nil {
		return relay.Website{}, err
	}

	if raw, jsonErr := json.Marshal(w); jsonErr == nil {
		_ = r.cache.Set(ctx, key, string(raw), r.ttl)
	}
	return w, nil
}
