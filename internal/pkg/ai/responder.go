package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
)

// Responder produces an assistant reply to a visitor message. The relay only
// consults it for AI-enabled websites with no admin online.
type Responder interface {
	Reply(ctx context.Context, visitorMessage string, history []relay.Message) (string, error)
}

const replyTimeout = 30 * time.Second

// LLMResponder implements Responder on an OpenAI-compatible endpoint.
type LLMResponder struct {
	llm llms.Model
}

// NewModelFromEnv constructs an OpenAI-compatible model from
// OPENAI_API_KEY, OPENAI_BASE_URL and AI_MODEL. Returns an error when the
// key is unset, in which case the relay runs without AI features.
func NewModelFromEnv() (llms.Model, error) {
	token := os.Getenv("OPENAI_API_KEY")
	if token == "" {
		return nil, errors.New("ai: OPENAI_API_KEY environment variable is not set")
	}
	opts := []openai.Option{openai.WithToken(token)}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	if model := os.Getenv("AI_MODEL"); model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ai: init llm: %w", err)
	}
	return llm, nil
}

// NewLLMResponder wraps an existing model, mainly for tests and shared
// clients.
func NewLLMResponder(llm llms.Model) *LLMResponder {
	return &LLMResponder{llm: llm}
}

var _ Responder = (*LLMResponder)(nil)

func (r *LLMResponder) Reply(ctx context.Context, visitorMessage string, history []relay.Message) (string, error) {
	if r == nil || r.llm == nil {
		return "", errors.New("ai: responder not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	completion, err := llms.GenerateFromSinglePrompt(ctx, r.llm, buildPrompt(visitorMessage, history))
	if err != nil {
		return "", fmt.Errorf("ai: generate reply: %w", err)
	}

	reply := strings.TrimSpace(completion)
	if reply == "" {
		return "", errors.New("ai: empty completion")
	}
	return reply, nil
}

func buildPrompt(visitorMessage string, history []relay.Message) string {
	var b strings.Builder
	b.WriteString(`You are a helpful customer-support assistant embedded on a website.
Answer the visitor concisely and politely. If you do not know something,
say so and suggest waiting for a human agent. Reply with plain text only.

`)
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		// History arrives newest-first; replay oldest-first.
		for i := len(history) - 1; i >= 0; i-- {
			fmt.Fprintf(&b, "%s: %s\n", history[i].Sender, history[i].Body)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "visitor: %s\nassistant:", visitorMessage)
	return b.String()
}
