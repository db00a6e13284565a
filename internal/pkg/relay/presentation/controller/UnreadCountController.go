package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mehdi852/chatbot-sub003/internal/pkg/relay/application/usecase"
	repoAdapter "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/adapter"
)

// UnreadCountController serves per-conversation unread counts for a website,
// consumed by the dashboard inbox (one controller per endpoint).
type UnreadCountController struct {
	UC *usecase.UnreadCountsUseCase
}

func NewUnreadCountController(pool *pgxpool.Pool) *UnreadCountController {
	repo := repoAdapter.NewPgConversationRepository(pool)
	return &UnreadCountController{UC: usecase.NewUnreadCountsUseCase(repo)}
}

func (h *UnreadCountController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		websiteID, err := strconv.ParseInt(c.Param("websiteId"), 10, 64)
		if err != nil || websiteID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "websiteId must be a positive integer"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		counts, err := h.UC.Execute(ctx, websiteID)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(counts))
		for _, uc := range counts {
			out = append(out, gin.H{
				"conversation_id": uc.ConversationID,
				"visitor_id":      uc.VisitorID,
				"unread":          uc.Unread,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"website_id": websiteID,
			"counts":     out,
		})
	}
}
