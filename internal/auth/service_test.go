// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfmode/selfmode-api/internal/config"
	"github.com/selfmode/selfmode-api/internal/core"
	"github.com/selfmode/selfmode-api/internal/user"
)

// memSessionRepo keeps sessions in a map keyed by user and token hash,
// close enough to the table semantics for service-level tests.
type memSessionRepo struct {
	sessions map[string]*Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*Session)}
}

func (m *memSessionRepo) key(userID, tokenHash string) string {
	return userID + "/" + tokenHash
}

func (m *memSessionRepo) Create(_ context.Context, session *Session) error {
	session.CreatedAt = time.Now()
	m.sessions[m.key(session.UserID, session.TokenHash)] = session
	return nil
}

func (m *memSessionRepo) FindByUserAndHash(
	_ context.Context,
	userID, tokenHash string,
) (*Session, error) {
	session, ok := m.sessions[m.key(userID, tokenHash)]
	if !ok {
		return nil, core.ErrNotFound
	}
	return session, nil
}

func (m *memSessionRepo) DeleteByUserAndHash(
	_ context.Context,
	userID, tokenHash string,
) error {
	delete(m.sessions, m.key(userID, tokenHash))
	return nil
}

func (m *memSessionRepo) DeleteAllForUser(
	_ context.Context,
	userID string,
) error {
	for k, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, k)
		}
	}
	return nil
}

func (m *memSessionRepo) ListActiveForUser(
	_ context.Context,
	userID string,
) ([]Session, error) {
	var out []Session
	for _, s := range m.sessions {
		if s.UserID == userID && !s.IsExpired() {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for k, s := range m.sessions {
		if s.IsExpired() {
			delete(m.sessions, k)
			n++
		}
	}
	return n, nil
}

type fakeUsers struct {
	byEmail   map[string]*user.User
	byID      map[string]*user.User
	createErr error
	rehashed  map[string]string
}

func newFakeUsers(users ...*user.User) *fakeUsers {
	f := &fakeUsers{
		byEmail:  make(map[string]*user.User),
		byID:     make(map[string]*user.User),
		rehashed: make(map[string]string),
	}
	for _, u := range users {
		f.byEmail[u.Email] = u
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByEmail(
	_ context.Context,
	email string,
) (*user.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(
	_ context.Context,
	email, passwordHash, firstName, lastName string,
	birthDate time.Time,
	phone *string,
) (*user.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, exists := f.byEmail[email]; exists {
		return nil, core.ErrDuplicateKey
	}
	u := &user.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		BirthDate:    birthDate,
		Phone:        phone,
		Role:         user.RoleUser,
		IsActive:     true,
	}
	f.byEmail[email] = u
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) UpdatePasswordHash(
	_ context.Context,
	userID, passwordHash string,
) error {
	f.rehashed[userID] = passwordHash
	return nil
}

type fakeActivity struct {
	logins []string
}

func (f *fakeActivity) RecordLogin(_ context.Context, userID string) error {
	f.logins = append(f.logins, userID)
	return nil
}

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "jwt_private.pem")
	publicPath := filepath.Join(dir, "jwt_public.pem")

	require.NoError(t, GenerateKeyPair(privatePath, publicPath))

	manager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:   privatePath,
		PublicKeyPath:    publicPath,
		UserTokenExpire:  168 * time.Hour,
		AdminTokenExpire: 24 * time.Hour,
		Issuer:           "selfmode-api",
		Audience:         "selfmode-app",
	})
	require.NoError(t, err)
	return manager
}

func newTestAuth(
	t *testing.T,
	repo Repository,
	users UserProvider,
) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, newTestJWTManager(t), users, logger)
}

func testUser(t *testing.T, password string) *user.User {
	t.Helper()
	hash, err := core.HashPassword(password)
	require.NoError(t, err)
	return &user.User{
		ID:           "user-1",
		Email:        "ada@example.com",
		PasswordHash: hash,
		FirstName:    "Ada",
		LastName:     "Bell",
		BirthDate:    time.Now().AddDate(-30, 0, 0),
		Role:         user.RoleUser,
		IsActive:     true,
	}
}

func TestRegister_Flows(t *testing.T) {
	ctx := context.Background()

	t.Run("success issues token and session", func(t *testing.T) {
		repo := newMemSessionRepo()
		svc := newTestAuth(t, repo, newFakeUsers())

		resp, err := svc.Register(ctx, RegisterRequest{
			Email:     "new@example.com",
			Password:  "correct horse battery",
			FirstName: "New",
			LastName:  "User",
			BirthDate: "1996-03-14",
		}, "test-agent", "10.0.0.1")
		require.NoError(t, err)

		assert.Equal(t, "new@example.com", resp.User.Email)
		assert.Equal(t, "Bearer", resp.Token.TokenType)
		assert.NotEmpty(t, resp.Token.AccessToken)
		assert.Len(t, repo.sessions, 1)
	})

	t.Run("invalid birth date", func(t *testing.T) {
		svc := newTestAuth(t, newMemSessionRepo(), newFakeUsers())

		_, err := svc.Register(ctx, RegisterRequest{
			Email:     "new@example.com",
			Password:  "pw",
			BirthDate: "14-03-1996",
		}, "", "")
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("duplicate email", func(t *testing.T) {
		existing := testUser(t, "secret")
		svc := newTestAuth(t, newMemSessionRepo(), newFakeUsers(existing))

		_, err := svc.Register(ctx, RegisterRequest{
			Email:     existing.Email,
			Password:  "pw",
			BirthDate: "1996-03-14",
		}, "", "")
		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

func TestLogin_Flows(t *testing.T) {
	ctx := context.Background()
	const password = "correct horse battery"

	t.Run("unknown email", func(t *testing.T) {
		svc := newTestAuth(t, newMemSessionRepo(), newFakeUsers())

		_, err := svc.Login(ctx, LoginRequest{
			Email:    "ghost@example.com",
			Password: password,
		}, "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		u := testUser(t, password)
		svc := newTestAuth(t, newMemSessionRepo(), newFakeUsers(u))

		_, err := svc.Login(ctx, LoginRequest{
			Email:    u.Email,
			Password: "not the password",
		}, "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success records login", func(t *testing.T) {
		u := testUser(t, password)
		repo := newMemSessionRepo()
		svc := newTestAuth(t, repo, newFakeUsers(u))

		activity := &fakeActivity{}
		svc.SetActivityRecorder(activity)

		resp, err := svc.Login(ctx, LoginRequest{
			Email:    u.Email,
			Password: password,
		}, "test-agent", "10.0.0.1")
		require.NoError(t, err)

		assert.NotEmpty(t, resp.Token.AccessToken)
		assert.Equal(t, []string{u.ID}, activity.logins)
		assert.Len(t, repo.sessions, 1)
	})
}

func TestVerifyAccessToken_Flows(t *testing.T) {
	ctx := context.Background()
	const password = "correct horse battery"

	login := func(
		t *testing.T,
		svc *Service,
		u *user.User,
	) string {
		t.Helper()
		resp, err := svc.Login(ctx, LoginRequest{
			Email:    u.Email,
			Password: password,
		}, "", "")
		require.NoError(t, err)
		return resp.Token.AccessToken
	}

	t.Run("valid token with live session", func(t *testing.T) {
		u := testUser(t, password)
		svc := newTestAuth(t, newMemSessionRepo(), newFakeUsers(u))
		token := login(t, svc, u)

		claims, err := svc.VerifyAccessToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.UserID)
		assert.Equal(t, user.RoleUser, claims.Role)
		assert.Equal(t, string(user.AgeGroupPro), claims.AgeGroup)
	})

	t.Run("garbage token", func(t *testing.T) {
		u := testUser(t, password)
		svc := newTestAuth(t, newMemSessionRepo(), newFakeUsers(u))

		_, err := svc.VerifyAccessToken(ctx, "not.a.jwt")
		assert.ErrorIs(t, err, core.ErrTokenInvalid)
	})

	t.Run("revoked session", func(t *testing.T) {
		u := testUser(t, password)
		svc := newTestAuth(t, newMemSessionRepo(), newFakeUsers(u))
		token := login(t, svc, u)

		require.NoError(t, svc.RevokeAllSessions(ctx, u.ID))

		_, err := svc.VerifyAccessToken(ctx, token)
		assert.ErrorIs(t, err, core.ErrTokenRevoked)
	})

	t.Run("expired session row", func(t *testing.T) {
		u := testUser(t, password)
		repo := newMemSessionRepo()
		svc := newTestAuth(t, repo, newFakeUsers(u))
		token := login(t, svc, u)

		for _, s := range repo.sessions {
			s.ExpiresAt = time.Now().Add(-time.Minute)
		}

		_, err := svc.VerifyAccessToken(ctx, token)
		assert.ErrorIs(t, err, core.ErrTokenExpired)
		assert.Empty(t, repo.sessions, "expired row should be cleaned up")
	})

	t.Run("deactivated user", func(t *testing.T) {
		u := testUser(t, password)
		users := newFakeUsers(u)
		svc := newTestAuth(t, newMemSessionRepo(), users)
		token := login(t, svc, u)

		delete(users.byID, u.ID)

		_, err := svc.VerifyAccessToken(ctx, token)
		assert.ErrorIs(t, err, core.ErrTokenRevoked)
	})

	t.Run("claims follow the profile", func(t *testing.T) {
		u := testUser(t, password)
		svc := newTestAuth(t, newMemSessionRepo(), newFakeUsers(u))
		token := login(t, svc, u)

		u.Role = user.RoleAdmin

		claims, err := svc.VerifyAccessToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.RoleAdmin, claims.Role)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	const password = "correct horse battery"

	u := testUser(t, password)
	repo := newMemSessionRepo()
	svc := newTestAuth(t, repo, newFakeUsers(u))

	resp, err := svc.Login(ctx, LoginRequest{
		Email:    u.Email,
		Password: password,
	}, "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, u.ID, resp.Token.AccessToken))
	assert.Empty(t, repo.sessions)

	// Unknown tokens are not an error.
	assert.NoError(t, svc.Logout(ctx, u.ID, "unknown-token"))
	assert.NoError(t, svc.Logout(ctx, u.ID, ""))
}

func TestTokenLifetimeByRole(t *testing.T) {
	manager := newTestJWTManager(t)

	assert.Equal(t, 168*time.Hour, manager.TokenLifetime(user.RoleUser))
	assert.Equal(t, 24*time.Hour, manager.TokenLifetime(user.RoleAdmin))
}

func TestListSessions(t *testing.T) {
	ctx := context.Background()
	const password = "correct horse battery"

	u := testUser(t, password)
	repo := newMemSessionRepo()
	svc := newTestAuth(t, repo, newFakeUsers(u))

	resp, err := svc.ListSessions(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, resp.Total)

	_, err = svc.Login(ctx, LoginRequest{
		Email:    u.Email,
		Password: password,
	}, "laptop", "10.0.0.1")
	require.NoError(t, err)

	// An expired session from another device stays hidden.
	repo.sessions["stale"] = &Session{
		ID:        "stale",
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	resp, err = svc.ListSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "laptop", resp.Sessions[0].UserAgent)
	assert.Equal(t, "10.0.0.1", resp.Sessions[0].IPAddress)
}

func TestPurgeExpiredSessions(t *testing.T) {
	ctx := context.Background()

	repo := newMemSessionRepo()
	repo.sessions["a"] = &Session{
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	repo.sessions["b"] = &Session{
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	svc := newTestAuth(t, repo, newFakeUsers())

	n, err := svc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Len(t, repo.sessions, 1)
}
