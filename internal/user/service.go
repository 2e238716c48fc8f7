// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/selfmode/selfmode-api/internal/core"
)

// SessionRevoker invalidates every live session of a user. It is called
// after password changes and account deletion so stale tokens stop
// working immediately.
type SessionRevoker interface {
	RevokeAllSessions(ctx context.Context, userID string) error
}

// DashboardProvider assembles the per-user dashboard from assessment
// history.
type DashboardProvider interface {
	DashboardForUser(ctx context.Context, userID string) (*DashboardData, error)
}

type Service struct {
	repo      Repository
	sessions  SessionRevoker
	dashboard DashboardProvider
	logger    *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// SetSessionRevoker wires session revocation after construction. The
// revoker lives in a package that depends on this one.
func (s *Service) SetSessionRevoker(sessions SessionRevoker) {
	s.sessions = sessions
}

func (s *Service) SetDashboardProvider(dashboard DashboardProvider) {
	s.dashboard = dashboard
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(email))
}

func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, firstName, lastName string,
	birthDate time.Time,
	phone *string,
) (*User, error) {
	if err := ValidateBirthDate(birthDate); err != nil {
		return nil, err
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		BirthDate:    birthDate,
		Phone:        phone,
		Role:         RoleUser,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) GetProfile(
	ctx context.Context,
	userID string,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get profile: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update profile: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}

	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	if req.Phone != nil {
		user.Phone = req.Phone
	}

	if req.BirthDate != nil {
		birthDate, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			return nil, fmt.Errorf(
				"update profile: invalid birth date: %w",
				core.ErrInvalidInput,
			)
		}

		if err := ValidateBirthDate(birthDate); err != nil {
			return nil, err
		}

		user.BirthDate = birthDate
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID string,
	req ChangePasswordRequest,
) error {
	if userID == "" {
		return fmt.Errorf("change password: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	valid, err := core.VerifyPassword(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !valid {
		return fmt.Errorf(
			"change password: current password mismatch: %w",
			core.ErrUnauthorized,
		)
	}

	newHash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, newHash); err != nil {
		return err
	}

	s.revokeSessions(ctx, userID)

	return nil
}

func (s *Service) DeleteAccount(
	ctx context.Context,
	userID string,
	req DeleteAccountRequest,
) error {
	if userID == "" {
		return fmt.Errorf("delete account: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	valid, err := core.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if !valid {
		return fmt.Errorf(
			"delete account: password mismatch: %w",
			core.ErrUnauthorized,
		)
	}

	if err := s.repo.Deactivate(ctx, userID); err != nil {
		return err
	}

	s.revokeSessions(ctx, userID)

	return nil
}

func (s *Service) Dashboard(
	ctx context.Context,
	userID string,
) (*DashboardData, error) {
	if userID == "" {
		return nil, fmt.Errorf("dashboard: %w", core.ErrUnauthorized)
	}

	if s.dashboard == nil {
		return nil, fmt.Errorf("dashboard: provider not configured")
	}

	return s.dashboard.DashboardForUser(ctx, userID)
}

// UpdatePasswordHash stores a new password hash directly. Used for
// transparent rehash upgrades on login.
func (s *Service) UpdatePasswordHash(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, strings.ToLower(email))
}

func (s *Service) revokeSessions(ctx context.Context, userID string) {
	if s.sessions == nil {
		return
	}

	if err := s.sessions.RevokeAllSessions(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to revoke sessions",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
