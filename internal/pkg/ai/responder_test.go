package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
)

type fakeModel struct {
	output string
	prompt string
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, mc := range messages {
		for _, part := range mc.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompt = text.Text
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.output}}}, nil
}

func (m *fakeModel) Call(_ context.Context, prompt string, _ ...llms.CallOption) (string, error) {
	m.prompt = prompt
	return m.output, nil
}

func TestReplyTrimsCompletion(t *testing.T) {
	r := NewLLMResponder(&fakeModel{output: "  We ship worldwide.  \n"})
	reply, err := r.Reply(context.Background(), "do you ship to France?", nil)
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply != "We ship worldwide." {
		t.Fatalf("reply = %q", reply)
	}
}

func TestReplyEmptyCompletion(t *testing.T) {
	r := NewLLMResponder(&fakeModel{output: "   "})
	if _, err := r.Reply(context.Background(), "hello", nil); err == nil {
		t.Fatal("Reply() should reject an empty completion")
	}
}

func TestReplyUnconfigured(t *testing.T) {
	var r *LLMResponder
	if _, err := r.Reply(context.Background(), "hello", nil); err == nil {
		t.Fatal("nil responder should error, not panic")
	}
}

func TestBuildPromptReplaysHistoryOldestFirst(t *testing.T) {
	// ListMessages hands history newest-first.
	history := []relay.Message{
		{Sender: relay.SenderAI, Body: "Hi, how can I help?"},
		{Sender: relay.SenderVisitor, Body: "hello"},
	}

	prompt := buildPrompt("do you have it in blue?", history)

	first := strings.Index(prompt, "visitor: hello")
	second := strings.Index(prompt, "ai: Hi, how can I help?")
	if first < 0 || second < 0 {
		t.Fatalf("history missing from prompt:\n%s", prompt)
	}
	if first > second {
		t.Fatal("history should be replayed oldest-first")
	}
	if !strings.HasSuffix(prompt, "assistant:") {
		t.Fatalf("prompt should end at the assistant turn:\n%s", prompt)
	}
}
