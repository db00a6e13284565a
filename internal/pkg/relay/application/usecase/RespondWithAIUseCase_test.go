package usecase

import (
	"context"
	"errors"
	"testing"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
)

type fakeResponder struct {
	reply       string
	err         error
	seenHistory []relay.Message
}

func (f *fakeResponder) Reply(_ context.Context, _ string, history []relay.Message) (string, error) {
	f.seenHistory = history
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestRespondWithAIPersistsReply(t *testing.T) {
	conversations := newFakeConversationRepo()
	conv := conversations.seed(10, "v-1")
	visitorMsg, _ := relay.NewMessage(conv.ID, "how much is shipping?", relay.SenderVisitor)
	if _, err := conversations.AppendMessage(context.Background(), *visitorMsg); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	responder := &fakeResponder{reply: "Shipping is free over $50."}
	uc := NewRespondWithAIUseCase(conversations, unlimitedLedger(), responder)

	out, err := uc.Execute(context.Background(), RespondWithAIInput{
		Session:        visitorSession(),
		ConversationID: conv.ID,
		VisitorMessage: "how much is shipping?",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.Message.Sender != relay.SenderAI {
		t.Fatalf("Sender = %s, want ai", out.Message.Sender)
	}
	if out.Message.Body != responder.reply {
		t.Fatalf("Body = %q", out.Message.Body)
	}
	if len(responder.seenHistory) != 0 {
		t.Fatalf("responder saw %d history messages, want none beyond the current one", len(responder.seenHistory))
	}
	if len(conversations.messages[conv.ID]) != 2 {
		t.Fatal("AI reply not appended to the conversation")
	}
}

func TestRespondWithAIHistoryExcludesCurrentMessage(t *testing.T) {
	conversations := newFakeConversationRepo()
	conv := conversations.seed(10, "v-1")
	ctx := context.Background()
	for _, seed := range []struct {
		body   string
		sender relay.SenderKind
	}{
		{"do you have desks?", relay.SenderVisitor},
		{"We do, several models.", relay.SenderAI},
		{"how much is shipping?", relay.SenderVisitor},
	} {
		msg, _ := relay.NewMessage(conv.ID, seed.body, seed.sender)
		if _, err := conversations.AppendMessage(ctx, *msg); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	responder := &fakeResponder{reply: "Free over $50."}
	uc := NewRespondWithAIUseCase(conversations, unlimitedLedger(), responder)

	out, err := uc.Execute(ctx, RespondWithAIInput{
		Session:        visitorSession(),
		ConversationID: conv.ID,
		VisitorMessage: "how much is shipping?",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// The message being answered travels as its own argument; the model
	// must not see it again through the history.
	if len(responder.seenHistory) != 2 {
		t.Fatalf("responder saw %d history messages, want the 2 prior ones", len(responder.seenHistory))
	}
	for _, m := range responder.seenHistory {
		if m.Sender == relay.SenderVisitor && m.Body == "how much is shipping?" {
			t.Fatal("current visitor message leaked into the history")
		}
	}
	for _, m := range out.History {
		if m.Sender == relay.SenderVisitor && m.Body == "how much is shipping?" {
			t.Fatal("current visitor message leaked into the output history")
		}
	}
}

func TestRespondWithAILimitExceeded(t *testing.T) {
	conversations := newFakeConversationRepo()
	conv := conversations.seed(10, "v-1")
	usage := &fakeUsageRepo{
		active:   map[int64]relay.SubscriptionLimits{7: {MaxAIResponses: 1}},
		counters: map[string]int64{"7:ai_response": 1},
	}
	uc := NewRespondWithAIUseCase(conversations, NewReserveUsageUseCase(usage, nil), &fakeResponder{reply: "x"})

	_, err := uc.Execute(context.Background(), RespondWithAIInput{
		Session:        visitorSession(),
		ConversationID: conv.ID,
		VisitorMessage: "hello",
	})
	if !errors.Is(err, relay.ErrLimitExceeded) {
		t.Fatalf("Execute() error = %v, want ErrLimitExceeded", err)
	}
	if len(conversations.messages[conv.ID]) != 0 {
		t.Fatal("denied reservation must not persist a reply")
	}
}

func TestRespondWithAIResponderFailure(t *testing.T) {
	conversations := newFakeConversationRepo()
	conv := conversations.seed(10, "v-1")
	uc := NewRespondWithAIUseCase(conversations, unlimitedLedger(), &fakeResponder{err: errors.New("model timeout")})

	_, err := uc.Execute(context.Background(), RespondWithAIInput{
		Session:        visitorSession(),
		ConversationID: conv.ID,
		VisitorMessage: "hello",
	})
	if err == nil {
		t.Fatal("Execute() should surface responder failures")
	}
	if len(conversations.messages[conv.ID]) != 0 {
		t.Fatal("a failed generation must not persist a message")
	}
}
