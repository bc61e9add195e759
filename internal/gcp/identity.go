package gcp

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/staffdesk/staffdesk/internal/services"
	"google.golang.org/api/iterator"
)

// Identity wraps the auth provider's admin client for token verification
// and custom-claim management.
type Identity struct {
	auth *auth.Client
}

// NewIdentity creates an Identity from application-default credentials.
func NewIdentity(ctx context.Context) (*Identity, error) {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth client: %w", err)
	}
	return &Identity{auth: client}, nil
}

// VerifyToken validates a caller's ID token and returns its claims.
func (s *Identity) VerifyToken(ctx context.Context, idToken string) (map[string]interface{}, error) {
	token, err := s.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("invalid ID token: %w", services.ErrPermissionDenied)
	}
	return token.Claims, nil
}

// UIDByEmail resolves an account UID from its email address.
func (s *Identity) UIDByEmail(ctx context.Context, email string) (string, error) {
	user, err := s.auth.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return "", fmt.Errorf("no account for %s: %w", email, services.ErrNotFound)
		}
		return "", fmt.Errorf("failed to look up account for %s: %w", email, err)
	}
	return user.UID, nil
}

// SetClaims replaces the custom claims on an account.
func (s *Identity) SetClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	if err := s.auth.SetCustomUserClaims(ctx, uid, claims); err != nil {
		return fmt.Errorf("failed to set claims on %s: %w", uid, err)
	}
	return nil
}

// SuperAdminExists scans the full account set for an existing superAdmin
// claim holder. The iterator pages until exhaustion, so the answer is exact
// regardless of how many accounts exist.
func (s *Identity) SuperAdminExists(ctx context.Context) (bool, error) {
	it := s.auth.Users(ctx, "")
	for {
		user, err := it.Next()
		if err == iterator.Done {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to iterate accounts: %w", err)
		}
		if v, ok := user.CustomClaims["superAdmin"].(bool); ok && v {
			return true, nil
		}
	}
}
