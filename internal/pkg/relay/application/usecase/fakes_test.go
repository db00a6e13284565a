package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
)

type fakeTenantRepo struct {
	websites map[int64]relay.Website
	err      error
}

var _ repository.TenantRepository = (*fakeTenantRepo)(nil)

func (f *fakeTenantRepo) GetWebsite(_ context.Context, websiteID int64) (relay.Website, error) {
	if f.err != nil {
		return relay.Website{}, f.err
	}
	w, ok := f.websites[websiteID]
	if !ok {
		return relay.Website{}, relay.ErrTenantNotFound
	}
	return w, nil
}

// fakeUsageRepo reproduces the conditional counter semantics of the real
// adapter in memory. Reserve is atomic under the mutex, like the real
// adapter's conditional UPDATE.
type fakeUsageRepo struct {
	mu         sync.Mutex
	active     map[int64]relay.SubscriptionLimits
	free       *relay.SubscriptionLimits
	counters   map[string]int64
	activeErr  error
	freeErr    error
	reserveErr error
}

var _ repository.UsageRepository = (*fakeUsageRepo)(nil)

func (f *fakeUsageRepo) ActiveLimits(_ context.Context, accountID int64) (relay.SubscriptionLimits, error) {
	if f.activeErr != nil {
		return relay.SubscriptionLimits{}, f.activeErr
	}
	l, ok := f.active[accountID]
	if !ok {
		return relay.SubscriptionLimits{}, repository.ErrNoSubscription
	}
	return l, nil
}

func (f *fakeUsageRepo) FreeLimits(_ context.Context) (relay.SubscriptionLimits, error) {
	if f.freeErr != nil {
		return relay.SubscriptionLimits{}, f.freeErr
	}
	if f.free == nil {
		return relay.SubscriptionLimits{}, repository.ErrNoSubscription
	}
	return *f.free, nil
}

func (f *fakeUsageRepo) Reserve(_ context.Context, accountID int64, kind relay.LimitKind, max int64) (relay.Reservation, error) {
	if f.reserveErr != nil {
		return relay.Reservation{}, f.reserveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counters == nil {
		f.counters = make(map[string]int64)
	}
	key := fmt.Sprintf("%d:%s", accountID, kind)
	current := f.counters[key]
	if current >= max {
		return relay.Reservation{Allowed: false, Current: current, Max: max}, nil
	}
	f.counters[key] = current + 1
	return relay.Reservation{Allowed: true, Current: current + 1, Max: max}, nil
}

// fakeConversationRepo guards its maps with a mutex so racing callers model
// the database's uniqueness guarantee on (website_id, visitor_id).
type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]relay.Conversation
	messages      map[int64][]relay.Message
	nextConvID    int64
	nextMsgID     int64
	findErr       error
	appendErr     error
}

var _ repository.ConversationRepository = (*fakeConversationRepo)(nil)

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: make(map[string]relay.Conversation),
		messages:      make(map[int64][]relay.Message),
	}
}

func convKey(websiteID int64, visitorID string) string {
	return fmt.Sprintf("%d:%s", websiteID, visitorID)
}

func (f *fakeConversationRepo) seed(websiteID int64, visitorID string) relay.Conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seedLocked(websiteID, visitorID)
}

func (f *fakeConversationRepo) seedLocked(websiteID int64, visitorID string) relay.Conversation {
	f.nextConvID++
	conv := relay.Conversation{
		ID:        f.nextConvID,
		WebsiteID: websiteID,
		VisitorID: visitorID,
		CreatedAt: time.Now().UTC(),
	}
	f.conversations[convKey(websiteID, visitorID)] = conv
	return conv
}

func (f *fakeConversationRepo) FindConversation(_ context.Context, websiteID int64, visitorID string) (relay.Conversation, error) {
	if f.findErr != nil {
		return relay.Conversation{}, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[convKey(websiteID, visitorID)]
	if !ok {
		return relay.Conversation{}, repository.ErrConversationNotFound
	}
	return conv, nil
}

func (f *fakeConversationRepo) GetOrCreateConversation(_ context.Context, websiteID int64, visitorID string) (relay.Conversation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if conv, ok := f.conversations[convKey(websiteID, visitorID)]; ok {
		return conv, false, nil
	}
	return f.seedLocked(websiteID, visitorID), true, nil
}

func (f *fakeConversationRepo) AppendMessage(_ context.Context, m relay.Message) (relay.Message, error) {
	if f.appendErr != nil {
		return relay.Message{}, f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextMsgID++
	m.ID = f.nextMsgID
	f.messages[m.ConversationID] = append(f.messages[m.ConversationID], m)
	return m, nil
}

func (f *fakeConversationRepo) ListMessages(_ context.Context, conversationID int64, limit, offset int) ([]relay.Message, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.messages[conversationID]
	total := int64(len(all))

	// Newest first, matching the adapter's ordering.
	reversed := make([]relay.Message, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		reversed = append(reversed, all[i])
	}
	if offset >= len(reversed) {
		return nil, total, nil
	}
	reversed = reversed[offset:]
	if limit > 0 && limit < len(reversed) {
		reversed = reversed[:limit]
	}
	return reversed, total, nil
}

func (f *fakeConversationRepo) MarkRead(_ context.Context, conversationID int64, sender relay.SenderKind) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var flipped int64
	msgs := f.messages[conversationID]
	for i := range msgs {
		if msgs[i].Sender == sender && !msgs[i].Read {
			msgs[i].Read = true
			flipped++
		}
	}
	return flipped, nil
}

func (f *fakeConversationRepo) UnreadCounts(_ context.Context, websiteID int64) ([]repository.UnreadCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var counts []repository.UnreadCount
	for _, conv := range f.conversations {
		if conv.WebsiteID != websiteID {
			continue
		}
		var unread int64
		for _, m := range f.messages[conv.ID] {
			if m.Sender == relay.SenderVisitor && !m.Read {
				unread++
			}
		}
		if unread > 0 {
			counts = append(counts, repository.UnreadCount{
				ConversationID: conv.ID,
				VisitorID:      conv.VisitorID,
				Unread:         unread,
			})
		}
	}
	return counts, nil
}
