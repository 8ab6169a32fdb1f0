package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tharsikan/shop-web-app-backend/internal/okta"
	"github.com/tharsikan/shop-web-app-backend/internal/repository"
	"github.com/tharsikan/shop-web-app-backend/internal/services/iam"
	"github.com/tharsikan/shop-web-app-backend/internal/services/social"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not permitted", iam.ErrNotPermitted, http.StatusForbidden},
		{"unauthenticated", iam.ErrUnauthenticated, http.StatusUnauthorized},
		{"missing row", fmt.Errorf("load user: %w", repository.ErrNotFound), http.StatusNotFound},
		{"missing okta object", okta.ErrNotFound, http.StatusNotFound},
		{"not applied", iam.ErrOperationNotApplied, http.StatusConflict},
		{"unknown role", iam.ErrUnknownRole, http.StatusBadRequest},
		{"self action", social.ErrSelfAction, http.StatusBadRequest},
		{"blocked", social.ErrBlocked, http.StatusConflict},
		{"sync unavailable", iam.ErrRoleSyncUnavailable, http.StatusServiceUnavailable},
		{"transport", &okta.TransportError{Op: "list_user_groups", StatusCode: 500, Err: errors.New("boom")}, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := statusFor(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusForDeniedMessage(t *testing.T) {
	_, msg := statusFor(iam.ErrNotPermitted)
	assert.Equal(t, "Access denied: You are not eligible to perform this action.", msg)
}
