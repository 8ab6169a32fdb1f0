package iam

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tharsikan/shop-web-app-backend/internal/auth"
	"github.com/tharsikan/shop-web-app-backend/internal/db/models"
	"github.com/tharsikan/shop-web-app-backend/internal/okta"
	"github.com/tharsikan/shop-web-app-backend/internal/repository"
	"github.com/tharsikan/shop-web-app-backend/internal/session"
	"github.com/tharsikan/shop-web-app-backend/internal/telemetry"
)

type iamService struct {
	users    repository.UserRepository
	idp      IdentityProvider
	sessions SessionRegistry
	logger   zerolog.Logger

	// subjects serializes role writes per Okta subject, from the remote mutation through
	// the session update.
	subjects *subjectLocks
}

// Dependencies contains all dependencies for IAM service construction.
// IdP may be nil, in which case role edits return ErrRoleSyncUnavailable.
type Dependencies struct {
	Users    repository.UserRepository
	IdP      IdentityProvider
	Sessions SessionRegistry
	Logger   zerolog.Logger
}

// NewService creates the IAM service.
func NewService(deps Dependencies) Service {
	return &iamService{
		users:    deps.Users,
		idp:      deps.IdP,
		sessions: deps.Sessions,
		logger:   deps.Logger,
		subjects: newSubjectLocks(),
	}
}

func (s *iamService) IsActingAsUser(ctx context.Context, userID string) (bool, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return false, nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("resolve acting user: %w", err)
	}
	return sess.Principal().SubjectID() == user.Subject, nil
}

func (s *iamService) RequireActingAsUser(ctx context.Context, userID string) error {
	ok, err := s.IsActingAsUser(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		telemetry.RecordAuthzDenial("not_acting_user")
		return ErrNotPermitted
	}
	return nil
}

func (s *iamService) LoggedInUser(ctx context.Context) (*models.User, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return s.users.GetByID(ctx, sess.UserID)
}

func (s *iamService) PromoteToElite(ctx context.Context, userID string) ([]auth.Role, error) {
	return s.EditRole(ctx, userID, auth.RoleElite, auth.RoleEditAdd)
}

func (s *iamService) RemoveElite(ctx context.Context, userID string) ([]auth.Role, error) {
	return s.EditRole(ctx, userID, auth.RoleElite, auth.RoleEditRemove)
}

func (s *iamService) EditRole(ctx context.Context, userID string, role auth.Role, action auth.RoleEditAction) ([]auth.Role, error) {
	roles, err := s.editRole(ctx, userID, role, action)
	switch {
	case err == nil:
		telemetry.RecordRoleEdit(string(action), "applied")
	case errors.Is(err, ErrOperationNotApplied):
		telemetry.RecordRoleEdit(string(action), "not_applied")
	default:
		telemetry.RecordRoleEdit(string(action), "error")
	}
	return roles, err
}

func (s *iamService) editRole(ctx context.Context, userID string, role auth.Role, action auth.RoleEditAction) ([]auth.Role, error) {
	if _, err := auth.ParseRole(string(role)); err != nil {
		return nil, err
	}
	if s.idp == nil {
		return nil, ErrRoleSyncUnavailable
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	log := s.logger.With().Str("user_id", user.ID).Str("subject", user.Subject).
		Str("role", string(role)).Str("action", string(action)).Logger()

	unlock := s.subjects.lock(user.Subject)
	defer unlock()

	var outcome okta.Outcome
	switch action {
	case auth.RoleEditAdd:
		outcome, err = s.idp.AddUserToGroup(ctx, user.Subject, string(role))
	case auth.RoleEditRemove:
		outcome, err = s.idp.RemoveUserFromGroup(ctx, user.Subject, string(role))
	default:
		return nil, fmt.Errorf("invalid role edit action %q", action)
	}
	if err != nil {
		log.Error().Err(err).Msg("role edit failed at identity provider")
		return nil, fmt.Errorf("edit role at identity provider: %w", err)
	}
	if outcome != okta.OutcomeApplied {
		log.Warn().Msg("role edit not applied by identity provider")
		return nil, ErrOperationNotApplied
	}

	roles, err := s.fetchRoles(ctx, user.Subject)
	if err != nil {
		log.Error().Err(err).Msg("re-fetching groups after role edit failed")
		return nil, err
	}

	if err := s.users.UpdateRoles(ctx, user.ID, models.RoleList(auth.RoleStrings(roles))); err != nil {
		return nil, fmt.Errorf("persist roles: %w", err)
	}

	updated := s.sessions.ApplyRoleEdit(user.Subject, role, action)
	converged := s.converge(user.Subject, roles)
	if converged > 0 {
		log.Warn().Int("sessions", converged).Strs("roles", auth.RoleStrings(roles)).
			Msg("live sessions diverged from identity provider groups; replaced authorities")
	}
	log.Info().Int("sessions", updated).Strs("roles", auth.RoleStrings(roles)).Msg("role edit applied")
	return roles, nil
}

func (s *iamService) SyncRoles(ctx context.Context, userID string) ([]auth.Role, error) {
	if s.idp == nil {
		return nil, ErrRoleSyncUnavailable
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	unlock := s.subjects.lock(user.Subject)
	defer unlock()

	roles, err := s.fetchRoles(ctx, user.Subject)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateRoles(ctx, user.ID, models.RoleList(auth.RoleStrings(roles))); err != nil {
		return nil, fmt.Errorf("persist roles: %w", err)
	}
	n := s.sessions.ReplaceAuthorities(user.Subject, roles)
	s.logger.Info().Str("user_id", user.ID).Int("sessions", n).Strs("roles", auth.RoleStrings(roles)).
		Msg("roles synchronized")
	return roles, nil
}

func (s *iamService) ProvisionUser(ctx context.Context, p auth.Principal) (*models.User, error) {
	attrs := p.Attributes()
	roles := models.RoleList(auth.RoleStrings(p.Authorities()))

	unlock := s.subjects.lock(p.SubjectID())
	defer unlock()

	user, err := s.users.GetBySubject(ctx, p.SubjectID())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		user = &models.User{
			Subject: p.SubjectID(),
			Email:   auth.ExtractOptionalString(attrs, "email"),
			Name:    auth.ExtractOptionalString(attrs, "name"),
			Roles:   roles,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("provision user: %w", err)
		}
		s.logger.Info().Str("user_id", user.ID).Str("subject", user.Subject).Msg("provisioned user on first login")
	case err != nil:
		return nil, fmt.Errorf("lookup user by subject: %w", err)
	default:
		if email := auth.ExtractOptionalString(attrs, "email"); email != "" {
			user.Email = email
		}
		if name := auth.ExtractOptionalString(attrs, "name"); name != "" {
			user.Name = name
		}
		user.Roles = roles
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("persist login profile: %w", err)
		}
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")
	}
	return user, nil
}

func (s *iamService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *iamService) GetUserBySubject(ctx context.Context, subject string) (*models.User, error) {
	return s.users.GetBySubject(ctx, subject)
}

func (s *iamService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *iamService) fetchRoles(ctx context.Context, subject string) ([]auth.Role, error) {
	groups, err := s.idp.ListUserGroups(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("list identity provider groups: %w", err)
	}
	roles := auth.ResolveApplicationRoles(groups)
	s.logger.Debug().Str("subject", subject).Strs("groups", okta.GroupNames(groups)).
		Strs("roles", auth.RoleStrings(roles)).Msg("resolved roles from identity provider groups")
	return roles, nil
}

// converge replaces the authorities of live sessions that disagree with roles.
// Callers hold the subject lock, so roles is the latest resolved set.
func (s *iamService) converge(subject string, roles []auth.Role) int {
	n := 0
	for _, sess := range s.sessions.ForSubject(subject) {
		if !auth.SameRoles(sess.Principal().Authorities(), roles) {
			sess.ReplaceAuthorities(roles)
			n++
		}
	}
	return n
}
