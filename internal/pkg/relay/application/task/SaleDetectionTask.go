package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	qport "github.com/mehdi852/chatbot-sub003/internal/infrastructure/queue/port"
	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
	"github.com/mehdi852/chatbot-sub003/internal/pkg/sale"
)

// SaleDetectionTaskType is the queue task name for classifying one
// visitor/AI exchange for purchase intent.
const SaleDetectionTaskType = "sale:detect"

// SaleDetectionQueue keeps detection off the default queue so a backlog
// never competes with other background work.
const SaleDetectionQueue = "sale"

// SaleDetectionTaskPayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid coupling to their field tags.
type SaleDetectionTaskPayload struct {
	AccountID      int64    `json:"accountId"`
	WebsiteID      int64    `json:"websiteId"`
	ConversationID int64    `json:"conversationId"`
	VisitorID      string   `json:"visitorId"`
	VisitorMessage string   `json:"visitorMessage"`
	AIResponse     string   `json:"aiResponse"`
	RecentHistory  []string `json:"recentHistory"`
}

// EnqueueSaleDetection submits the exchange for classification.
// Fire-and-forget: callers log the returned error but never propagate it
// into the relay path.
func EnqueueSaleDetection(ctx context.Context, client qport.Client, p SaleDetectionTaskPayload) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("sale detection payload: %w", err)
	}
	_, err = client.Enqueue(ctx,
		qport.Task{Type: SaleDetectionTaskType, Payload: b},
		qport.EnqueueOption{Queue: SaleDetectionQueue, MaxRetry: 3},
	)
	return err
}

// RegisterSaleDetectionTask binds the detection handler to the worker
// server. The handler never returns an error for classification failures,
// which resolve to the detector's safe default. Malformed payloads are not
// worth retrying either but surface in worker logs.
func RegisterSaleDetectionTask(srv qport.Server, detector *sale.Detector, notifications repository.NotificationRepository, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv.Register(SaleDetectionTaskType, func(ctx context.Context, t qport.Task) error {
		var p SaleDetectionTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			logger.Error("malformed sale detection payload", zap.Error(err))
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
		defer cancel()

		analysis := detector.Analyze(ctx, p.VisitorMessage, p.AIResponse, p.RecentHistory)
		if !analysis.HasPotentialSale {
			return nil
		}

		logger.Info("sale opportunity detected",
			zap.Int64("account_id", p.AccountID),
			zap.Int64("website_id", p.WebsiteID),
			zap.String("alert_type", string(analysis.AlertType)),
			zap.Float64("confidence", analysis.Confidence))

		n := relay.Notification{
			AccountID: p.AccountID,
			WebsiteID: p.WebsiteID,
			Kind:      string(analysis.AlertType),
			Title:     notificationTitle(analysis),
			Body:      notificationBody(p, analysis),
			Priority:  string(analysis.Priority),
			CreatedAt: time.Now().UTC(),
		}
		if err := notifications.CreateNotification(ctx, n); err != nil {
			// Fire-and-forget contract: the alert is lost, the relay
			// is unaffected.
			logger.Warn("failed to store sale alert", zap.Error(err))
		}
		return nil
	})
}

func notificationTitle(a sale.Analysis) string {
	switch a.AlertType {
	case sale.AlertPurchaseIntent:
		return "Visitor is ready to buy"
	case sale.AlertPriceInquiry:
		return "Visitor is asking about pricing"
	default:
		return "Potential sale opportunity"
	}
}

func notificationBody(p SaleDetectionTaskPayload, a sale.Analysis) string {
	body := fmt.Sprintf("Visitor %s: %q (confidence %.0f%%)", p.VisitorID, p.VisitorMessage, a.Confidence*100)
	if a.ProductMentioned != "" {
		body += ", product: " + a.ProductMentioned
	}
	if a.EstimatedValue != "" {
		body += ", est. value: " + a.EstimatedValue
	}
	return body
}
