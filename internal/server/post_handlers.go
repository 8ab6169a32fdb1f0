package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tharsikan/shop-web-app-backend/internal/services/social"
)

// HandleLikeAction runs a like mutation of {postId} on behalf of {userId}.
func HandleLikeAction(action func(ctx context.Context, postID, userID string) error, verb string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := action(r.Context(), chi.URLParam(r, "postId"), chi.URLParam(r, "userId")); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Post " + verb + " successfully"})
	}
}

// HandleLikedUsers lists the users who liked {postId}.
func HandleLikedUsers(svc *social.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.LikedUsers(r.Context(), chi.URLParam(r, "postId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponses(users))
	}
}
