package usecase

import (
	"go.uber.org/zap"
)

// Close codes sent to reaped admin sockets.
const (
	closeCodeLoggedOut = 4002
	closeCodeStale     = 4003
)

// SessionRegistry is the slice of the realtime hub the reaper needs.
type SessionRegistry interface {
	CloseAccountSessions(accountID int64, code int, reason string) int
	SweepDisconnected(code int, reason string) int
}

// ReapSessionsInput: AccountID > 0 targets that account's admin sessions;
// zero means the logout arrived without resolvable identity and only
// already-disconnected sessions are swept.
type ReapSessionsInput struct {
	AccountID int64
}

// ReapSessionsUseCase force-disconnects an admin's live sockets on logout so
// a stale browser session cannot keep receiving visitor traffic. The
// unknown-identity sweep is heuristic cleanup, not a security boundary: it
// never touches a live session it cannot attribute.
type ReapSessionsUseCase struct {
	Registry SessionRegistry
	Logger   *zap.Logger
}

func NewReapSessionsUseCase(registry SessionRegistry, logger *zap.Logger) *ReapSessionsUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReapSessionsUseCase{Registry: registry, Logger: logger}
}

// Execute returns the number of sessions closed.
func (uc *ReapSessionsUseCase) Execute(in ReapSessionsInput) int {
	if in.AccountID > 0 {
		closed := uc.Registry.CloseAccountSessions(in.AccountID, closeCodeLoggedOut, "logged out")
		uc.Logger.Info("reaped admin sessions",
			zap.Int64("account_id", in.AccountID),
			zap.Int("closed", closed))
		return closed
	}

	swept := uc.Registry.SweepDisconnected(closeCodeStale, "stale session")
	if swept > 0 {
		uc.Logger.Info("swept disconnected sessions", zap.Int("swept", swept))
	}
	return swept
}
