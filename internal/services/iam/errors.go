package iam

import (
	"errors"

	"github.com/tharsikan/shop-web-app-backend/internal/auth"
)

// AccessDeniedMessage is the user-facing text for ErrNotPermitted.
const AccessDeniedMessage = "Access denied: You are not eligible to perform this action."

var (
	// ErrNotPermitted rejects a request before any side effect.
	ErrNotPermitted = errors.New("access denied: not eligible to perform this action")

	// ErrUnauthenticated is returned when an operation needs a session and there is none.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrOperationNotApplied means Okta answered but did not apply the membership change.
	ErrOperationNotApplied = errors.New("identity provider did not apply the change")

	// ErrRoleSyncUnavailable is returned when no Okta management client is configured.
	ErrRoleSyncUnavailable = errors.New("role synchronization is not configured")

	// ErrUnknownRole is returned for role names outside the known set.
	ErrUnknownRole = auth.ErrUnknownRole
)
