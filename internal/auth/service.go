// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/selfmode/selfmode-api/internal/core"
	"github.com/selfmode/selfmode-api/internal/middleware"
	"github.com/selfmode/selfmode-api/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
)

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
	Create(
		ctx context.Context,
		email, passwordHash, firstName, lastName string,
		birthDate time.Time,
		phone *string,
	) (*user.User, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// ActivityRecorder tracks login events for the admin surface. Recording
// is best-effort and never blocks authentication.
type ActivityRecorder interface {
	RecordLogin(ctx context.Context, userID string) error
}

type Service struct {
	repo     Repository
	jwt      *JWTManager
	users    UserProvider
	activity ActivityRecorder
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	users UserProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:   repo,
		jwt:    jwt,
		users:  users,
		logger: logger,
	}
}

func (s *Service) SetActivityRecorder(activity ActivityRecorder) {
	s.activity = activity
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return nil, fmt.Errorf(
			"register: invalid birth date: %w",
			core.ErrInvalidInput,
		)
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(
		ctx,
		req.Email,
		passwordHash,
		req.FirstName,
		req.LastName,
		birthDate,
		req.Phone,
	)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.createAuthResponse(ctx, u, userAgent, ipAddress)
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&u.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePasswordHash(ctx, u.ID, newHash)
	}

	resp, err := s.createAuthResponse(ctx, u, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}

	s.recordLogin(ctx, u.ID)

	return resp, nil
}

// Logout removes the session backing the presented token. Unknown
// tokens are not an error: logout always succeeds from the client's
// point of view.
func (s *Service) Logout(ctx context.Context, userID, token string) error {
	if token == "" {
		return nil
	}

	tokenHash := core.HashToken(token)

	if err := s.repo.DeleteByUserAndHash(ctx, userID, tokenHash); err != nil {
		s.logger.WarnContext(ctx, "failed to delete session on logout",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// RevokeAllSessions implements user.SessionRevoker.
func (s *Service) RevokeAllSessions(ctx context.Context, userID string) error {
	return s.repo.DeleteAllForUser(ctx, userID)
}

// VerifyAccessToken implements middleware.TokenVerifier. A token is
// accepted only when the signature validates, a matching session row
// exists, and the account is still active.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	tokenHash := core.HashToken(token)

	session, err := s.repo.FindByUserAndHash(ctx, claims.UserID, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify session: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("verify session: %w", err)
	}

	if session.IsExpired() {
		//nolint:errcheck // opportunistic cleanup
		_ = s.repo.DeleteByUserAndHash(ctx, claims.UserID, tokenHash)
		return nil, fmt.Errorf("verify session: %w", core.ErrTokenExpired)
	}

	u, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify session: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("verify session: %w", err)
	}

	// Age group follows the profile, not the token, so bracket changes
	// take effect without re-login.
	claims.AgeGroup = string(u.AgeGroup())
	claims.Role = u.Role

	return claims, nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*user.ProfileResponse, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := user.ToProfileResponse(u)
	return &resp, nil
}

// ListSessions returns the caller's live sessions, newest first per
// the repository ordering.
func (s *Service) ListSessions(
	ctx context.Context,
	userID string,
) (*SessionListResponse, error) {
	sessions, err := s.repo.ListActiveForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	resp := &SessionListResponse{
		Sessions: make([]SessionResponse, 0, len(sessions)),
		Total:    len(sessions),
	}
	for i := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(&sessions[i]))
	}

	return resp, nil
}

// PurgeExpiredSessions removes session rows past their expiry. Run
// periodically from a background worker.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}

func (s *Service) createAuthResponse(
	ctx context.Context,
	u *user.User,
	userAgent, ipAddress string,
) (*AuthResponse, error) {
	accessToken, expiresAt, err := s.jwt.CreateAccessToken(
		middleware.AccessTokenClaims{
			UserID:   u.ID,
			Role:     u.Role,
			AgeGroup: string(u.AgeGroup()),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	session := &Session{
		ID:        uuid.New().String(),
		UserID:    u.ID,
		TokenHash: core.HashToken(accessToken),
		ExpiresAt: expiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &AuthResponse{
		User: user.ToProfileResponse(u),
		Token: TokenResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   int(time.Until(expiresAt) / time.Second),
			ExpiresAt:   expiresAt,
		},
	}, nil
}

func (s *Service) recordLogin(ctx context.Context, userID string) {
	if s.activity == nil {
		return
	}

	if err := s.activity.RecordLogin(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to record login activity",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

var _ middleware.TokenVerifier = (*Service)(nil)
var _ user.SessionRevoker = (*Service)(nil)
