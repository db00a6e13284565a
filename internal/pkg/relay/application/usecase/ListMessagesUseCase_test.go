package usecase

import (
	"context"
	"errors"
	"testing"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
)

func TestListMessagesOrderingAndPagination(t *testing.T) {
	conversations := newFakeConversationRepo()
	conv := conversations.seed(10, "v-1")
	ctx := context.Background()
	for _, body := range []string{"first", "second", "third"} {
		msg, _ := relay.NewMessage(conv.ID, body, relay.SenderVisitor)
		if _, err := conversations.AppendMessage(ctx, *msg); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	uc := NewListMessagesUseCase(conversations)

	out, err := uc.Execute(ctx, ListMessagesInput{ConversationID: conv.ID, Limit: 2})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out.Total != 3 {
		t.Fatalf("Total = %d, want 3", out.Total)
	}
	if len(out.Messages) != 2 {
		t.Fatalf("len = %d, want 2", len(out.Messages))
	}
	if out.Messages[0].Body != "third" || out.Messages[1].Body != "second" {
		t.Fatalf("page not newest-first: %q, %q", out.Messages[0].Body, out.Messages[1].Body)
	}

	out, err = uc.Execute(ctx, ListMessagesInput{ConversationID: conv.ID, Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(out.Messages) != 1 || out.Messages[0].Body != "first" {
		t.Fatalf("second page = %+v, want just the oldest", out.Messages)
	}
}

func TestListMessagesInvalidConversation(t *testing.T) {
	uc := NewListMessagesUseCase(newFakeConversationRepo())
	_, err := uc.Execute(context.Background(), ListMessagesInput{ConversationID: 0})
	if !errors.Is(err, relay.ErrInvalidParameter) {
		t.Fatalf("Execute() error = %v, want ErrInvalidParameter", err)
	}
}

func TestUnreadCounts(t *testing.T) {
	conversations := newFakeConversationRepo()
	conv := conversations.seed(10, "v-1")
	other := conversations.seed(11, "v-9")
	ctx := context.Background()

	msg, _ := relay.NewMessage(conv.ID, "unread one", relay.SenderVisitor)
	if _, err := conversations.AppendMessage(ctx, *msg); err != nil {
		t.Fatalf("seed message: %v", err)
	}
	foreign, _ := relay.NewMessage(other.ID, "other site", relay.SenderVisitor)
	if _, err := conversations.AppendMessage(ctx, *foreign); err != nil {
		t.Fatalf("seed message: %v", err)
	}

	uc := NewUnreadCountsUseCase(conversations)
	counts, err := uc.Execute(ctx, 10)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(counts) != 1 {
		t.Fatalf("counts = %+v, want only website 10", counts)
	}
	if counts[0].VisitorID != "v-1" || counts[0].Unread != 1 {
		t.Fatalf("count = %+v", counts[0])
	}
}
