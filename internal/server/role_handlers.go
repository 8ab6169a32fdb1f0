package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tharsikan/shop-web-app-backend/internal/auth"
	"github.com/tharsikan/shop-web-app-backend/internal/services/iam"
)

type rolesResponse struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
}

func writeRoles(w http.ResponseWriter, userID string, roles []auth.Role) {
	out := auth.RoleStrings(roles)
	if out == nil {
		out = []string{}
	}
	writeJSON(w, http.StatusOK, rolesResponse{UserID: userID, Roles: out})
}

// HandleSelfRoleEdit runs a role operation on {userId} after checking the caller acts as that user.
func HandleSelfRoleEdit(svc iam.Service, op func(ctx context.Context, userID string) ([]auth.Role, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		if err := svc.RequireActingAsUser(r.Context(), userID); err != nil {
			writeError(w, r, err)
			return
		}
		roles, err := op(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeRoles(w, userID, roles)
	}
}

// HandleAdminRoleEdit applies action with role {role} to user {userId}.
func HandleAdminRoleEdit(svc iam.Service, action auth.RoleEditAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		role, err := auth.ParseRole(chi.URLParam(r, "role"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		roles, err := svc.EditRole(r.Context(), userID, role, action)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeRoles(w, userID, roles)
	}
}

// HandleListUsers lists every local user.
func HandleListUsers(svc iam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListUsers(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponses(users))
	}
}
