package iam

import (
	"context"

	"github.com/tharsikan/shop-web-app-backend/internal/auth"
	"github.com/tharsikan/shop-web-app-backend/internal/db/models"
	"github.com/tharsikan/shop-web-app-backend/internal/okta"
	"github.com/tharsikan/shop-web-app-backend/internal/session"
)

// Service provides identity and role operations.
type Service interface {
	// IsActingAsUser reports whether the request's session belongs to the user with local id userID.
	// It returns false without error when there is no session, and repository.ErrNotFound when
	// userID does not exist.
	IsActingAsUser(ctx context.Context, userID string) (bool, error)

	// RequireActingAsUser is IsActingAsUser that returns ErrNotPermitted instead of false.
	RequireActingAsUser(ctx context.Context, userID string) error

	// LoggedInUser returns the user behind the request's session.
	LoggedInUser(ctx context.Context) (*models.User, error)

	// EditRole adds or removes role at Okta and mirrors the result locally.
	// Returns the user's roles after the edit.
	EditRole(ctx context.Context, userID string, role auth.Role, action auth.RoleEditAction) ([]auth.Role, error)

	// PromoteToElite is EditRole(userID, Muzfi_Elite, ADD).
	PromoteToElite(ctx context.Context, userID string) ([]auth.Role, error)

	// RemoveElite is EditRole(userID, Muzfi_Elite, REMOVE).
	RemoveElite(ctx context.Context, userID string) ([]auth.Role, error)

	// SyncRoles re-reads the user's Okta groups and makes the stored roles and live
	// sessions match them.
	SyncRoles(ctx context.Context, userID string) ([]auth.Role, error)

	// ProvisionUser finds or creates the user for a freshly logged-in principal and stores
	// the principal's authorities as the user's roles.
	ProvisionUser(ctx context.Context, p auth.Principal) (*models.User, error)

	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserBySubject(ctx context.Context, subject string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// IdentityProvider is the part of the Okta client role synchronization needs.
type IdentityProvider interface {
	ListUserGroups(ctx context.Context, userID string) ([]okta.Group, error)
	AddUserToGroup(ctx context.Context, userID, groupName string) (okta.Outcome, error)
	RemoveUserFromGroup(ctx context.Context, userID, groupName string) (okta.Outcome, error)
}

// SessionRegistry gives access to the live sessions of a subject.
type SessionRegistry interface {
	ForSubject(subject string) []*session.Session
	ApplyRoleEdit(subject string, role auth.Role, action auth.RoleEditAction) int
	ReplaceAuthorities(subject string, roles []auth.Role) int
}
