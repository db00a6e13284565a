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

// ConversationHistoryController serves paginated message history for the
// admin dashboard (one controller per endpoint).
type ConversationHistoryController struct {
	UC *usecase.ListMessagesUseCase
}

func NewConversationHistoryController(pool *pgxpool.Pool) *ConversationHistoryController {
	repo := repoAdapter.NewPgConversationRepository(pool)
	return &ConversationHistoryController{UC: usecase.NewListMessagesUseCase(repo)}
}

func (h *ConversationHistoryController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID, err := strconv.ParseInt(c.Param("conversationId"), 10, 64)
		if err != nil || conversationID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId must be a positive integer"})
			return
		}

		limit := 50
		offset := 0
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.ListMessagesInput{
			ConversationID: conversationID,
			Limit:          limit,
			Offset:         offset,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		msgs := make([]gin.H, 0, len(out.Messages))
		for _, m := range out.Messages {
			msgs = append(msgs, gin.H{
				"id":              m.ID,
				"conversation_id": m.ConversationID,
				"body":            m.Body,
				"sender":          m.Sender,
				"read":            m.Read,
				"created_at":      m.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"messages": msgs,
			"total":    out.Total,
			"limit":    limit,
			"offset":   offset,
		})
	}
}
