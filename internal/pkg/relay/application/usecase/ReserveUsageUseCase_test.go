package usecase

import (
	"context"
	"errors"
	"testing"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
)

func TestReserveUsageBoundary(t *testing.T) {
	repo := &fakeUsageRepo{
		active: map[int64]relay.SubscriptionLimits{
			7: {MaxConversations: 2, MaxAIResponses: 1},
		},
	}
	uc := NewReserveUsageUseCase(repo, nil)
	ctx := context.Background()

	for i := int64(1); i <= 2; i++ {
		res, err := uc.Execute(ctx, 7, relay.LimitConversations)
		if err != nil {
			t.Fatalf("reserve %d: error = %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("reserve %d should be allowed under the limit", i)
		}
		if res.Current != i {
			t.Fatalf("reserve %d: Current = %d", i, res.Current)
		}
	}

	res, err := uc.Execute(ctx, 7, relay.LimitConversations)
	if err != nil {
		t.Fatalf("reserve at limit: error = %v", err)
	}
	if res.Allowed {
		t.Fatal("reserve at limit should be denied")
	}
	if res.Current != 2 || res.Max != 2 {
		t.Fatalf("denied reservation = %+v", res)
	}
}

func TestReserveUsageKindsMeteredSeparately(t *testing.T) {
	repo := &fakeUsageRepo{
		active: map[int64]relay.SubscriptionLimits{
			7: {MaxConversations: 1, MaxAIResponses: 1},
		},
	}
	uc := NewReserveUsageUseCase(repo, nil)
	ctx := context.Background()

	if res, _ := uc.Execute(ctx, 7, relay.LimitConversations); !res.Allowed {
		t.Fatal("first conversation should be allowed")
	}
	if res, _ := uc.Execute(ctx, 7, relay.LimitAIResponses); !res.Allowed {
		t.Fatal("ai counter must not be consumed by conversation reservations")
	}
}

func TestReserveUsageFreeFallback(t *testing.T) {
	repo := &fakeUsageRepo{
		free: &relay.SubscriptionLimits{MaxConversations: 1, MaxAIResponses: 0},
	}
	uc := NewReserveUsageUseCase(repo, nil)
	ctx := context.Background()

	res, err := uc.Execute(ctx, 7, relay.LimitConversations)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Allowed || res.Max != 1 {
		t.Fatalf("reservation = %+v, want one Free conversation", res)
	}

	res, err = uc.Execute(ctx, 7, relay.LimitAIResponses)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Allowed {
		t.Fatal("Free tier with zero AI responses must deny")
	}
}

func TestReserveUsageConversationFailOpen(t *testing.T) {
	// Neither an active subscription nor a Free tier exists. Conversation
	// creation stays permissive under the default ceiling; AI fails closed.
	repo := &fakeUsageRepo{}
	uc := NewReserveUsageUseCase(repo, nil)
	ctx := context.Background()

	res, err := uc.Execute(ctx, 7, relay.LimitConversations)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Allowed {
		t.Fatal("conversation reservation should fail open on missing tiers")
	}
	if res.Max != defaultConversationCeiling {
		t.Fatalf("Max = %d, want default ceiling", res.Max)
	}

	_, err = uc.Execute(ctx, 7, relay.LimitAIResponses)
	if !errors.Is(err, ErrLimitConfiguration) {
		t.Fatalf("AI reservation error = %v, want ErrLimitConfiguration", err)
	}
}

func TestReserveUsageWrapsStoreErrors(t *testing.T) {
	repo := &fakeUsageRepo{activeErr: errors.New("connection refused")}
	uc := NewReserveUsageUseCase(repo, nil)

	_, err := uc.Execute(context.Background(), 7, relay.LimitConversations)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("Execute() error = %v, want wrapped persistence error", err)
	}
}
