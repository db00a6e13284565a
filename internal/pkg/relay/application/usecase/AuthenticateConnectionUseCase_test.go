package usecase

import (
	"context"
	"errors"
	"testing"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
)

func testTenants() *fakeTenantRepo {
	return &fakeTenantRepo{websites: map[int64]relay.Website{
		10: {ID: 10, AccountID: 7, AIEnabled: true},
		11: {ID: 11, AccountID: 8, AIEnabled: false},
	}}
}

func TestAuthenticateConnectionRejections(t *testing.T) {
	uc := NewAuthenticateConnectionUseCase(testTenants())

	cases := []struct {
		name    string
		in      AuthenticateConnectionInput
		wantErr error
	}{
		{"missing website", AuthenticateConnectionInput{Role: "visitor", VisitorID: "v1"}, relay.ErrInvalidParameter},
		{"garbage website", AuthenticateConnectionInput{WebsiteID: "abc", Role: "visitor", VisitorID: "v1"}, relay.ErrInvalidParameter},
		{"zero website", AuthenticateConnectionInput{WebsiteID: "0", Role: "visitor", VisitorID: "v1"}, relay.ErrInvalidParameter},
		{"unknown role", AuthenticateConnectionInput{WebsiteID: "10", Role: "superuser", VisitorID: "v1"}, relay.ErrInvalidRole},
		{"visitor without id", AuthenticateConnectionInput{WebsiteID: "10", Role: "visitor"}, relay.ErrMissingCredential},
		{"admin without account", AuthenticateConnectionInput{WebsiteID: "10", Role: "admin"}, relay.ErrMissingCredential},
		{"admin garbage account", AuthenticateConnectionInput{WebsiteID: "10", Role: "admin", AccountID: "x"}, relay.ErrInvalidParameter},
		{"unknown website", AuthenticateConnectionInput{WebsiteID: "999", Role: "visitor", VisitorID: "v1"}, relay.ErrTenantNotFound},
		{"admin of foreign account", AuthenticateConnectionInput{WebsiteID: "10", Role: "admin", AccountID: "8"}, relay.ErrUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Execute() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestAuthenticateVisitor(t *testing.T) {
	uc := NewAuthenticateConnectionUseCase(testTenants())

	sess, err := uc.Execute(context.Background(), AuthenticateConnectionInput{
		WebsiteID: "10",
		Role:      "visitor",
		VisitorID: "v-42",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if sess.WebsiteID != 10 || sess.Role != relay.RoleVisitor || sess.VisitorID != "v-42" {
		t.Fatalf("session bindings wrong: %+v", sess)
	}
	if sess.AccountID != 7 {
		t.Fatalf("AccountID = %d, want the website owner 7", sess.AccountID)
	}
	if !sess.AIEnabled {
		t.Fatal("session should inherit the website's AI flag")
	}
	if sess.VisitorIP != "unknown" {
		t.Fatalf("VisitorIP = %q, want fallback", sess.VisitorIP)
	}
}

func TestAuthenticateAdmin(t *testing.T) {
	uc := NewAuthenticateConnectionUseCase(testTenants())

	sess, err := uc.Execute(context.Background(), AuthenticateConnectionInput{
		WebsiteID: "11",
		Role:      "admin",
		AccountID: "8",
		VisitorIP: "203.0.113.9",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if sess.Role != relay.RoleAdmin || sess.AccountID != 8 || sess.WebsiteID != 11 {
		t.Fatalf("session bindings wrong: %+v", sess)
	}
	if sess.VisitorIP != "203.0.113.9" {
		t.Fatalf("VisitorIP = %q", sess.VisitorIP)
	}
}

func TestAuthenticateWrapsStoreErrors(t *testing.T) {
	uc := NewAuthenticateConnectionUseCase(&fakeTenantRepo{err: errors.New("pool exhausted")})

	_, err := uc.Execute(context.Background(), AuthenticateConnectionInput{
		WebsiteID: "10", Role: "visitor", VisitorID: "v1",
	})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("Execute() error = %v, want wrapped persistence error", err)
	}
}
