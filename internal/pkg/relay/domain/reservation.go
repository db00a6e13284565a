package relay

// LimitKind names a metered subscription resource.
type LimitKind string

const (
	LimitConversations LimitKind = "conversation"
	LimitAIResponses   LimitKind = "ai_response"
)

// SubscriptionLimits are the ceilings resolved from an account's active
// subscription tier (or the Free tier fallback).
type SubscriptionLimits struct {
	MaxConversations int64
	MaxAIResponses   int64
}

// Max returns the ceiling for kind.
func (l SubscriptionLimits) Max(kind LimitKind) int64 {
	if kind == LimitAIResponses {
		return l.MaxAIResponses
	}
	return l.MaxConversations
}

// Reservation is the outcome of consuming (or attempting to consume) one
// unit of a subscription limit. Current reflects the counter after a
// successful reservation, or the counter that blocked the attempt.
type Reservation struct {
	Allowed bool
	Current int64
	Max     int64
}

// Remaining is the headroom left under the limit, never negative.
func (r Reservation) Remaining() int64 {
	if r.Current >= r.Max {
		return 0
	}
	return r.Max - r.Current
}
