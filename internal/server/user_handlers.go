package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tharsikan/shop-web-app-backend/internal/db/models"
	"github.com/tharsikan/shop-web-app-backend/internal/services/social"
)

type messageResponse struct {
	Message string `json:"message"`
}

type userIDsResponse struct {
	UserIDs []string `json:"user_ids"`
}

type userResponse struct {
	ID    string   `json:"id"`
	Email string   `json:"email,omitempty"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
}

func toUserResponse(u *models.User) userResponse {
	roles := []string(u.Roles)
	if roles == nil {
		roles = []string{}
	}
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Roles: roles}
}

func toUserResponses(users []models.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

// HandleSocialAction runs a follow-graph mutation for {userId} against {targetId}.
func HandleSocialAction(action func(ctx context.Context, userID, targetID string) error, verb string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		targetID := chi.URLParam(r, "targetId")
		if err := action(r.Context(), userID, targetID); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "User " + verb + " successfully"})
	}
}

// HandleFollowing lists the ids of the users {userId} follows.
func HandleFollowing(svc *social.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := svc.Following(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, userIDsResponse{UserIDs: nonNil(ids)})
	}
}

// HandleFollowers lists the ids of the users following {userId}.
func HandleFollowers(svc *social.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := svc.Followers(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, userIDsResponse{UserIDs: nonNil(ids)})
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
