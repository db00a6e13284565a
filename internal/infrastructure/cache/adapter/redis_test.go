package adapter

import (
	"context"
	"testing"
	"time"
)

func TestOpContextAddsDeadlineWhenMissing(t *testing.T) {
	ctx, cancel := opContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("opContext should cap an unbounded context")
	}
	if remaining := time.Until(deadline); remaining > opTimeout {
		t.Fatalf("deadline %v out, want at most %v", remaining, opTimeout)
	}
}

func TestOpContextKeepsCallerDeadline(t *testing.T) {
	parent, parentCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer parentCancel()

	ctx, cancel := opContext(parent)
	defer cancel()

	if ctx != parent {
		t.Fatal("opContext must not replace a context that already has a deadline")
	}
}
