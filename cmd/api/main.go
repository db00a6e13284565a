package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	v1 "github.com/mehdi852/chatbot-sub003/cmd/api/router/v1"
	cacheadapter "github.com/mehdi852/chatbot-sub003/internal/infrastructure/cache/adapter"
	cacheport "github.com/mehdi852/chatbot-sub003/internal/infrastructure/cache/port"
	"github.com/mehdi852/chatbot-sub003/internal/infrastructure/database"
	queueadapter "github.com/mehdi852/chatbot-sub003/internal/infrastructure/queue/adapter"
	"github.com/mehdi852/chatbot-sub003/internal/infrastructure/realtime"
	"github.com/mehdi852/chatbot-sub003/internal/pkg/ai"
	"github.com/mehdi852/chatbot-sub003/internal/pkg/relay/application/task"
	"github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/adapter"
	"github.com/mehdi852/chatbot-sub003/internal/pkg/sale"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := database.NewPoolFromEnv(ctx)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	var cache cacheport.Cache
	redisCache, err := cacheadapter.NewRedisAdapter()
	if err != nil {
		logger.Warn("redis unavailable, tenant lookups go straight to postgres", zap.Error(err))
	} else {
		cache = redisCache
		defer redisCache.Close()
	}

	queueClient, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		logger.Fatal("failed to init task queue client", zap.Error(err))
	}
	defer queueClient.Close()

	queueServer, err := queueadapter.NewAsynqServer()
	if err != nil {
		logger.Fatal("failed to init task queue server", zap.Error(err))
	}

	// AI is optional. Without credentials the relay still serves visitor and
	// admin traffic, and the sale detector degrades to its safe default.
	var responder ai.Responder
	model, err := ai.NewModelFromEnv()
	if err != nil {
		logger.Warn("AI disabled", zap.Error(err))
	} else {
		responder = ai.NewLLMResponder(model)
	}
	detector := sale.NewDetector(model, logger)

	notifications := adapter.NewPgNotificationRepository(pool)
	task.RegisterSaleDetectionTask(queueServer, detector, notifications, logger)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := queueServer.Run(runCtx); err != nil {
			logger.Error("task queue server stopped", zap.Error(err))
		}
	}()

	hub := realtime.NewHub()
	defer hub.Close()

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, pool, cache, hub, queueClient, responder, logger)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	// Start HTTP server (blocks until shutdown)
	if err := r.Run(addr); err != nil {
		logger.Fatal("http server stopped", zap.Error(err))
	}
}
