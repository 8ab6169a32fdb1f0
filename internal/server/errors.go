package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/tharsikan/shop-web-app-backend/internal/okta"
	"github.com/tharsikan/shop-web-app-backend/internal/repository"
	"github.com/tharsikan/shop-web-app-backend/internal/services/iam"
	"github.com/tharsikan/shop-web-app-backend/internal/services/social"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a service error to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	var terr *okta.TransportError
	switch {
	case errors.Is(err, iam.ErrNotPermitted):
		return http.StatusForbidden, iam.AccessDeniedMessage
	case errors.Is(err, iam.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, okta.ErrNotFound):
		return http.StatusNotFound, "not found at identity provider"
	case errors.Is(err, iam.ErrUnknownRole):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, social.ErrSelfAction):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, social.ErrBlocked):
		return http.StatusConflict, err.Error()
	case errors.Is(err, iam.ErrOperationNotApplied):
		return http.StatusConflict, err.Error()
	case errors.Is(err, iam.ErrRoleSyncUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	case errors.As(err, &terr):
		return http.StatusBadGateway, "identity provider unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
