package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "github.com/mehdi852/chatbot-sub003/internal/infrastructure/cache/port"
	qport "github.com/mehdi852/chatbot-sub003/internal/infrastructure/queue/port"
	"github.com/mehdi852/chatbot-sub003/internal/infrastructure/realtime"
	"github.com/mehdi852/chatbot-sub003/internal/pkg/ai"
	"github.com/mehdi852/chatbot-sub003/internal/pkg/relay/presentation/controller"
)

// RegisterRoutes registers relay endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, cache cacheport.Cache, hub *realtime.Hub, queue qport.Client, responder ai.Responder, logger *zap.Logger) {
	socketCtl := controller.NewRelaySocketController(pool, cache, hub, queue, responder, logger)
	historyCtl := controller.NewConversationHistoryController(pool)
	unreadCtl := controller.NewUnreadCountController(pool)
	logoutCtl := controller.NewLogoutController(hub, logger)

	// GET /api/v1/relay/ws -> websocket endpoint for realtime widget traffic
	g.GET("/relay/ws", socketCtl.Handle())

	// POST /api/v1/relay/logout -> session reaper signal from the account service
	g.POST("/relay/logout", logoutCtl.Handle())

	// GET /api/v1/conversations/:conversationId/messages -> paginated history
	g.GET("/conversations/:conversationId/messages", historyCtl.Handle())

	// GET /api/v1/websites/:websiteId/unread -> unread counts for the inbox
	g.GET("/websites/:websiteId/unread", unreadCtl.Handle())
}
