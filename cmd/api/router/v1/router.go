package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "github.com/mehdi852/chatbot-sub003/internal/infrastructure/cache/port"
	qport "github.com/mehdi852/chatbot-sub003/internal/infrastructure/queue/port"
	"github.com/mehdi852/chatbot-sub003/internal/infrastructure/realtime"
	"github.com/mehdi852/chatbot-sub003/internal/pkg/ai"
	httpHandler "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, cache cacheport.Cache, hub *realtime.Hub, queue qport.Client, responder ai.Responder, logger *zap.Logger) {
	v1 := r.Group("/api/v1")
	httpHandler.RegisterRoutes(v1, pool, cache, hub, queue, responder, logger)
}
