package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
	repository "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/persistence/repository/port"
)

// AuthenticateConnectionInput carries the raw handshake parameters exactly as
// received; validation and parsing happen here, before any room join.
type AuthenticateConnectionInput struct {
	WebsiteID string
	Role      string
	AccountID string
	VisitorID string
	VisitorIP string
}

// AuthenticateConnectionUseCase validates a socket handshake against the
// tenant directory and produces an authorized session descriptor.
// Visitors are always admitted when the website exists; limits are enforced
// per operation, never at connect time, so the widget always loads.
type AuthenticateConnectionUseCase struct {
	Tenants repository.TenantRepository
}

func NewAuthenticateConnectionUseCase(tenants repository.TenantRepository) *AuthenticateConnectionUseCase {
	return &AuthenticateConnectionUseCase{Tenants: tenants}
}

func (uc *AuthenticateConnectionUseCase) Execute(ctx context.Context, in AuthenticateConnectionInput) (relay.Session, error) {
	websiteID, err := strconv.ParseInt(in.WebsiteID, 10, 64)
	if err != nil || websiteID <= 0 {
		return relay.Session{}, relay.ErrInvalidParameter
	}

	var accountID int64
	switch in.Role {
	case string(relay.RoleAdmin):
		if in.AccountID == "" {
			return relay.Session{}, relay.ErrMissingCredential
		}
		accountID, err = strconv.ParseInt(in.AccountID, 10, 64)
		if err != nil || accountID <= 0 {
			return relay.Session{}, relay.ErrInvalidParameter
		}
	case string(relay.RoleVisitor):
		if in.VisitorID == "" {
			return relay.Session{}, relay.ErrMissingCredential
		}
	default:
		return relay.Session{}, relay.ErrInvalidRole
	}

	website, err := uc.Tenants.GetWebsite(ctx, websiteID)
	if errors.Is(err, relay.ErrTenantNotFound) {
		return relay.Session{}, relay.ErrTenantNotFound
	}
	if err != nil {
		return relay.Session{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if in.Role == string(relay.RoleAdmin) && website.AccountID != accountID {
		return relay.Session{}, relay.ErrUnauthorized
	}

	ip := in.VisitorIP
	if ip == "" {
		ip = "unknown"
	}

	return relay.Session{
		WebsiteID: website.ID,
		Role:      relay.Role(in.Role),
		AccountID: website.AccountID,
		VisitorID: in.VisitorID,
		VisitorIP: ip,
		AIEnabled: website.AIEnabled,
	}, nil
}
