package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mehdi852/chatbot-sub003/internal/pkg/relay/application/usecase"
)

// LogoutController receives the logout signal from the account service and
// invokes the session reaper (one controller per endpoint).
type LogoutController struct {
	UC *usecase.ReapSessionsUseCase
}

func NewLogoutController(registry usecase.SessionRegistry, logger *zap.Logger) *LogoutController {
	return &LogoutController{UC: usecase.NewReapSessionsUseCase(registry, logger)}
}

type logoutRequest struct {
	AccountID int64 `json:"account_id"`
}

func (h *LogoutController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req logoutRequest
		// A body-less or unattributed logout still triggers the
		// disconnected-session sweep.
		_ = c.ShouldBindJSON(&req)

		closed := h.UC.Execute(usecase.ReapSessionsInput{AccountID: req.AccountID})

		c.JSON(http.StatusOK, gin.H{
			"account_id": req.AccountID,
			"closed":     closed,
		})
	}
}
