package sale

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// AlertType classifies the kind of purchase signal found in an exchange.
type AlertType string

const (
	AlertPotentialSale  AlertType = "potential_sale"
	AlertPurchaseIntent AlertType = "purchase_intent"
	AlertPriceInquiry   AlertType = "price_inquiry"
	AlertNone           AlertType = "none"
)

// Priority ranks how urgently an alert should surface to the account owner.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Analysis is the detector's verdict for one visitor/AI exchange.
type Analysis struct {
	HasPotentialSale bool      `json:"has_potential_sale"`
	Confidence       float64   `json:"confidence"`
	AlertType        AlertType `json:"alert_type"`
	Priority         Priority  `json:"priority"`
	ProductMentioned string    `json:"product_mentioned"`
	EstimatedValue   string    `json:"estimated_value"`
}

// SafeDefault is the verdict used whenever classification fails for any
// reason: no sale, zero confidence, nothing to alert on.
func SafeDefault() Analysis {
	return Analysis{
		HasPotentialSale: false,
		Confidence:       0,
		AlertType:        AlertNone,
		Priority:         PriorityLow,
	}
}

const classifyTimeout = 30 * time.Second

// Detector classifies visitor/AI exchanges for purchase intent. It runs off
// the relay's critical path and never returns an error: every internal
// failure resolves to SafeDefault.
type Detector struct {
	llm    llms.Model
	logger *zap.Logger
}

func NewDetector(llm llms.Model, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{llm: llm, logger: logger}
}

// Analyze classifies the exchange. recentHistory is the last few messages of
// the conversation, oldest first, for context.
func (d *Detector) Analyze(ctx context.Context, visitorMessage, aiResponse string, recentHistory []string) Analysis {
	if d == nil || d.llm == nil {
		return SafeDefault()
	}

	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	completion, err := llms.GenerateFromSinglePrompt(ctx, d.llm, d.buildPrompt(visitorMessage, aiResponse, recentHistory))
	if err != nil {
		d.logger.Warn("sale classification failed", zap.Error(err))
		return SafeDefault()
	}

	analysis, err := parseAnalysis(completion)
	if err != nil {
		d.logger.Warn("sale classification returned unparseable output",
			zap.Error(err),
			zap.String("raw", truncate(completion, 256)))
		return SafeDefault()
	}
	return analysis
}

func (d *Detector) buildPrompt(visitorMessage, aiResponse string, recentHistory []string) string {
	var b strings.Builder
	b.WriteString(`You analyze a customer-support exchange on an e-commerce website for purchase intent.

Respond with ONLY a JSON object, no prose, in this exact shape:
{
	"has_potential_sale": true|false,
	"confidence": 0.0-1.0,
	"alert_type": "potential_sale"|"purchase_intent"|"price_inquiry"|"none",
	"priority": "high"|"medium"|"low",
	"product_mentioned": "name of any product discussed, or empty string",
	"estimated_value": "rough value if stated or inferable, or empty string"
}

`)
	if len(recentHistory) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, line := range recentHistory {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Visitor: %s\n", visitorMessage)
	if aiResponse != "" {
		fmt.Fprintf(&b, "Assistant: %s\n", aiResponse)
	}
	b.WriteString("\nJSON:")
	return b.String()
}

// parseAnalysis decodes the classifier output, tolerating surrounding prose
// or markdown fences, and normalizes the result.
func parseAnalysis(raw string) (Analysis, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return Analysis{}, fmt.Errorf("no JSON object in classifier output")
	}

	var a Analysis
	if err := json.Unmarshal([]byte(raw[start:end+1]), &a); err != nil {
		return Analysis{}, err
	}

	// Clamp confidence regardless of what the classifier returned.
	if a.Confidence < 0 {
		a.Confidence = 0
	} else if a.Confidence > 1 {
		a.Confidence = 1
	}

	switch a.AlertType {
	case AlertPotentialSale, AlertPurchaseIntent, AlertPriceInquiry, AlertNone:
	default:
		a.AlertType = AlertNone
	}
	switch a.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		a.Priority = PriorityLow
	}
	if a.AlertType == AlertNone {
		a.HasPotentialSale = false
	}
	return a, nil
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
