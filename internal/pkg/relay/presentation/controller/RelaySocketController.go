package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "github.com/mehdi852/chatbot-sub003/internal/infrastructure/cache/port"
	qport "github.com/mehdi852/chatbot-sub003/internal/infrastructure/queue/port"
	"github.com/mehdi852/chatbot-sub003/internal/infrastructure/realtime"
	"github.com/mehdi852/chatbot-sub003/internal/pkg/ai"
	"github.com/mehdi852/chatbot-sub003/internal/pkg/relay/application/task"
	"github.com/mehdi852/chatbot-sub003/internal/pkg/relay/application/usecase"
	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repoAdapter "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/adapter"
)

// RelaySocketController handles the websocket endpoint for realtime widget
// traffic: handshake authentication, the frame loop and room fan-out.
type RelaySocketController struct {
	hub             *realtime.Hub
	queue           qport.Client
	logger          *zap.Logger
	authUC          *usecase.AuthenticateConnectionUseCase
	visitorUC       *usecase.RelayVisitorMessageUseCase
	adminUC         *usecase.RelayAdminMessageUseCase
	markReadUC      *usecase.MarkConversationReadUseCase
	aiUC            *usecase.RespondWithAIUseCase
	inflightTimeout time.Duration
}

func NewRelaySocketController(pool *pgxpool.Pool, cache cacheport.Cache, hub *realtime.Hub, queue qport.Client, responder ai.Responder, logger *zap.Logger) *RelaySocketController {
	if logger == nil {
		logger = zap.NewNop()
	}
	tenants := repoAdapter.NewCachedTenantRepository(repoAdapter.NewPgTenantRepository(pool), cache)
	conversations := repoAdapter.NewPgConversationRepository(pool)
	ledger := usecase.NewReserveUsageUseCase(repoAdapter.NewPgUsageRepository(pool), logger)

	ctl := &RelaySocketController{
		hub:             hub,
		queue:           queue,
		logger:          logger,
		authUC:          usecase.NewAuthenticateConnectionUseCase(tenants),
		visitorUC:       usecase.NewRelayVisitorMessageUseCase(conversations, ledger),
		adminUC:         usecase.NewRelayAdminMessageUseCase(conversations, ledger),
		markReadUC:      usecase.NewMarkConversationReadUseCase(conversations),
		inflightTimeout: 5 * time.Second,
	}
	if responder != nil {
		ctl.aiUC = usecase.NewRespondWithAIUseCase(conversations, ledger, responder)
	}
	return ctl
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The widget is embedded on arbitrary customer sites.
		return true
	},
}

type inboundFrame struct {
	Type      string `json:"type"`
	WebsiteID int64  `json:"website_id"`
	VisitorID string `json:"visitor_id"`
	Body      string `json:"body"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type      string `json:"type"`
	WebsiteID int64  `json:"website_id,omitempty"`
	VisitorID string `json:"visitor_id,omitempty"`
	Cleared   int64  `json:"cleared,omitempty"`
}

type outboundMessage struct {
	Type           string         `json:"type"`
	WebsiteID      int64          `json:"website_id"`
	VisitorID      string         `json:"visitor_id"`
	ConversationID int64          `json:"conversation_id"`
	Message        messagePayload `json:"message"`
}

type messagePayload struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Body           string    `json:"body"`
	Sender         string    `json:"sender"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}

const defaultReadTimeout = 60 * time.Second

// Handle authenticates the handshake, upgrades to websocket and processes
// frames until the client disconnects. A refused handshake never joins a
// room and never mutates state.
func (ctl *RelaySocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		in := usecase.AuthenticateConnectionInput{
			WebsiteID: c.Query("website_id"),
			Role:      c.Query("role"),
			AccountID: c.Query("account_id"),
			VisitorID: c.Query("visitor_id"),
			VisitorIP: c.Query("visitor_ip"),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
		session, err := ctl.authUC.Execute(ctx, in)
		cancel()
		if err != nil {
			ctl.rejectHandshake(c, in, err)
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			return
		}

		conn := realtime.NewConnection(session, ws)
		ctl.hub.Attach(conn)
		defer func() {
			ctl.hub.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if payload, err := json.Marshal(ackFrame{Type: "connected"}); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				conn.MarkDisconnected()
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "visitor_message":
				ctl.handleVisitorMessage(c, conn, frame)
			case "admin_message":
				ctl.handleAdminMessage(c, conn, frame)
			case "mark_read":
				ctl.handleMarkRead(c, conn, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

func (ctl *RelaySocketController) rejectHandshake(c *gin.Context, in usecase.AuthenticateConnectionInput, err error) {
	switch {
	case errors.Is(err, relay.ErrInvalidParameter):
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_parameter", "error": err.Error()})
	case errors.Is(err, relay.ErrMissingCredential):
		c.JSON(http.StatusBadRequest, gin.H{"code": "missing_credential", "error": err.Error()})
	case errors.Is(err, relay.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_role", "error": err.Error()})
	case errors.Is(err, relay.ErrTenantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "tenant_not_found", "error": err.Error()})
	case errors.Is(err, relay.ErrUnauthorized):
		ctl.logger.Warn("unauthorized admin connect attempt",
			zap.String("website_id", in.WebsiteID),
			zap.String("account_id", in.AccountID),
			zap.String("remote", c.ClientIP()))
		c.JSON(http.StatusForbidden, gin.H{"code": "unauthorized", "error": err.Error()})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"code": "upstream_unavailable", "error": "try again later"})
	}
}

func (ctl *RelaySocketController) handleVisitorMessage(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	out, err := ctl.visitorUC.Execute(ctx, usecase.RelayVisitorMessageInput{
		Session:   conn.Session,
		WebsiteID: frame.WebsiteID,
		VisitorID: frame.VisitorID,
		Body:      frame.Body,
	})
	if err != nil {
		ctl.handleRelayError(conn, frame, err)
		return
	}

	payload, err := json.Marshal(outboundMessage{
		Type:           "visitor_message",
		WebsiteID:      frame.WebsiteID,
		VisitorID:      frame.VisitorID,
		ConversationID: out.Conversation.ID,
		Message:        toPayload(out.Message),
	})
	if err != nil {
		ctl.replyError(conn, "internal_error", "failed to encode message")
		return
	}

	// Echo to the sender as its delivery acknowledgement, then fan out to
	// the owning account's connected admin sessions. Zero admins online is
	// fine: the message is already durable and shows up on next login.
	_ = conn.Send(payload)
	ctl.hub.Broadcast(realtime.AdminRoom(frame.WebsiteID, conn.Session.AccountID), payload)

	// AI reply and sale detection run off the read loop so a slow model
	// never stalls the socket. The visitor message is already persisted.
	go ctl.afterVisitorMessage(conn.Session, frame, out)
}

// afterVisitorMessage generates the AI reply (when the website qualifies)
// and hands the exchange to the sale detector. Fresh context: closing the
// socket must not cancel work already issued.
func (ctl *RelaySocketController) afterVisitorMessage(session relay.Session, frame inboundFrame, out *usecase.RelayVisitorMessageOutput) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	aiResponse := ""
	var history []relay.Message
	if ctl.aiUC != nil && session.AIEnabled && len(ctl.hub.AdminsForWebsite(frame.WebsiteID)) == 0 {
		aiOut, err := ctl.aiUC.Execute(ctx, usecase.RespondWithAIInput{
			Session:        session,
			ConversationID: out.Conversation.ID,
			VisitorMessage: out.Message.Body,
		})
		switch {
		case err == nil:
			aiResponse = aiOut.Message.Body
			history = aiOut.History
			if payload, mErr := json.Marshal(outboundMessage{
				Type:           "ai_message",
				WebsiteID:      frame.WebsiteID,
				VisitorID:      frame.VisitorID,
				ConversationID: out.Conversation.ID,
				Message:        toPayload(aiOut.Message),
			}); mErr == nil {
				ctl.hub.Broadcast(realtime.WebsiteRoom(frame.WebsiteID), payload)
			}
		case errors.Is(err, relay.ErrLimitExceeded):
			ctl.logger.Info("ai reply denied by usage limit",
				zap.Int64("account_id", session.AccountID),
				zap.Int64("website_id", frame.WebsiteID))
		default:
			ctl.logger.Warn("ai reply failed",
				zap.Int64("website_id", frame.WebsiteID),
				zap.Error(err))
		}
	}

	err := task.EnqueueSaleDetection(ctx, ctl.queue, task.SaleDetectionTaskPayload{
		AccountID:      session.AccountID,
		WebsiteID:      frame.WebsiteID,
		ConversationID: out.Conversation.ID,
		VisitorID:      frame.VisitorID,
		VisitorMessage: out.Message.Body,
		AIResponse:     aiResponse,
		RecentHistory:  formatHistory(history),
	})
	if err != nil {
		ctl.logger.Warn("failed to enqueue sale detection", zap.Error(err))
	}
}

func (ctl *RelaySocketController) handleAdminMessage(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	out, err := ctl.adminUC.Execute(ctx, usecase.RelayAdminMessageInput{
		Session:   conn.Session,
		WebsiteID: frame.WebsiteID,
		VisitorID: frame.VisitorID,
		Body:      frame.Body,
	})
	if err != nil {
		ctl.handleRelayError(conn, frame, err)
		return
	}

	payload, err := json.Marshal(outboundMessage{
		Type:           "admin_message",
		WebsiteID:      frame.WebsiteID,
		VisitorID:      frame.VisitorID,
		ConversationID: out.Conversation.ID,
		Message:        toPayload(out.Message),
	})
	if err != nil {
		ctl.replyError(conn, "internal_error", "failed to encode message")
		return
	}

	// The website room may hold many visitors; the frame carries the
	// target visitor_id and non-addressed clients ignore it. Admin
	// sessions (other tabs) receive it through the same room.
	ctl.hub.Broadcast(realtime.WebsiteRoom(frame.WebsiteID), payload)
}

func (ctl *RelaySocketController) handleMarkRead(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	cleared, err := ctl.markReadUC.Execute(ctx, usecase.MarkConversationReadInput{
		Session:   conn.Session,
		WebsiteID: frame.WebsiteID,
		VisitorID: frame.VisitorID,
	})
	if err != nil {
		ctl.handleRelayError(conn, frame, err)
		return
	}

	ack := ackFrame{Type: "read_cleared", WebsiteID: frame.WebsiteID, VisitorID: frame.VisitorID, Cleared: cleared}
	if payload, err := json.Marshal(ack); err == nil {
		_ = conn.Send(payload)
	}
}

// handleRelayError maps use case failures onto the wire. Cross-tenant
// events are dropped without an error frame: the connection stays alive and
// the sender learns nothing, but the attempt is logged.
func (ctl *RelaySocketController) handleRelayError(conn *realtime.Connection, frame inboundFrame, err error) {
	switch {
	case errors.Is(err, relay.ErrCrossTenant):
		ctl.logger.Warn("cross-tenant event dropped",
			zap.String("connection_id", conn.ID),
			zap.String("role", string(conn.Session.Role)),
			zap.Int64("session_website_id", conn.Session.WebsiteID),
			zap.Int64("declared_website_id", frame.WebsiteID))
	case errors.Is(err, relay.ErrLimitExceeded):
		ctl.replyError(conn, "limit_exceeded", "subscription limit reached for this operation")
	case errors.Is(err, relay.ErrUnauthorized):
		ctl.replyError(conn, "forbidden", "session is not authorized for this operation")
	case errors.Is(err, usecase.ErrLimitConfiguration):
		ctl.logger.Error("usage limits misconfigured", zap.Error(err))
		ctl.replyError(conn, "internal_error", "temporarily unavailable")
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "transient error, retry")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *RelaySocketController) replyError(conn *realtime.Connection, code string, message string) {
	frame := errorFrame{Type: "error", Code: code, Error: message}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}

func toPayload(msg relay.Message) messagePayload {
	return messagePayload{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Body:           msg.Body,
		Sender:         string(msg.Sender),
		Read:           msg.Read,
		CreatedAt:      msg.CreatedAt,
	}
}

func formatHistory(history []relay.Message) []string {
	if len(history) == 0 {
		return nil
	}
	// History arrives newest-first; the detector wants oldest-first.
	lines := make([]string, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		lines = append(lines, fmt.Sprintf("%s: %s", history[i].Sender, history[i].Body))
	}
	return lines
}
