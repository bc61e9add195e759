package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/staffdesk/staffdesk/internal/models"
)

// Role claim values. A state admin manages employees for one state; a super
// admin can mint other admins.
const (
	RoleStateAdmin = "stateAdmin"
	RoleSuperAdmin = "superAdmin"
)

// IdentityAdmin is the slice of the auth provider's admin surface the claim
// operations need.
type IdentityAdmin interface {
	// VerifyToken validates a caller's ID token and returns its claims.
	VerifyToken(ctx context.Context, idToken string) (map[string]interface{}, error)
	// UIDByEmail resolves an account; wraps ErrNotFound when none exists.
	UIDByEmail(ctx context.Context, email string) (string, error)
	// SetClaims replaces the custom claims on an account.
	SetClaims(ctx context.Context, uid string, claims map[string]interface{}) error
	// SuperAdminExists reports whether any account already holds the
	// superAdmin claim. Implementations must scan the full account set.
	SuperAdminExists(ctx context.Context) (bool, error)
}

// AdminFunction holds the dependencies for the admin-claim operations.
type AdminFunction struct {
	identity IdentityAdmin
}

// NewAdmin creates an AdminFunction from an explicit identity handle.
func NewAdmin(identity IdentityAdmin) *AdminFunction {
	return &AdminFunction{identity: identity}
}

// IsSuperAdmin reports whether a claim set carries the superAdmin claim.
func IsSuperAdmin(claims map[string]interface{}) bool {
	v, ok := claims["superAdmin"].(bool)
	return ok && v
}

// CreateStateAdmin grants the stateAdmin role for one state to the account
// behind req.Email. Only a super admin may call it.
func (f *AdminFunction) CreateStateAdmin(ctx context.Context, caller map[string]interface{}, req models.CreateStateAdminRequest) (*models.AdminClaimResponse, error) {
	if !IsSuperAdmin(caller) {
		return nil, fmt.Errorf("caller is not a super admin: %w", ErrPermissionDenied)
	}
	if req.Email == "" || req.State == "" {
		return nil, fmt.Errorf("email and state are required: %w", ErrInvalidArgument)
	}

	uid, err := f.identity.UIDByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	claims := map[string]interface{}{
		"role":  RoleStateAdmin,
		"state": req.State,
	}
	if err := f.identity.SetClaims(ctx, uid, claims); err != nil {
		return nil, fmt.Errorf("failed to set state admin claims: %w", err)
	}

	slog.Info("Granted state admin role.", "uid", uid, "state", req.State)
	return &models.AdminClaimResponse{Status: "success", UID: uid}, nil
}

// SetSuperAdmin grants the superAdmin claim to the account behind req.Email.
// The first super admin may be created by any caller; after that only an
// existing super admin may create more.
func (f *AdminFunction) SetSuperAdmin(ctx context.Context, caller map[string]interface{}, req models.SetSuperAdminRequest) (*models.AdminClaimResponse, error) {
	if req.Email == "" {
		return nil, fmt.Errorf("email is required: %w", ErrInvalidArgument)
	}

	if !IsSuperAdmin(caller) {
		exists, err := f.identity.SuperAdminExists(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to check for existing super admin: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("a super admin already exists: %w", ErrAlreadyExists)
		}
	}

	uid, err := f.identity.UIDByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	claims := map[string]interface{}{
		"superAdmin": true,
		"role":       RoleSuperAdmin,
	}
	if err := f.identity.SetClaims(ctx, uid, claims); err != nil {
		return nil, fmt.Errorf("failed to set super admin claims: %w", err)
	}

	slog.Info("Granted super admin role.", "uid", uid)
	return &models.AdminClaimResponse{Status: "success", UID: uid}, nil
}
