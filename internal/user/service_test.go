// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfmode/selfmode-api/internal/core"
)

var errBoom = errors.New("boom")

type fakeRepo struct {
	created *User

	byID    *User
	byIDErr error

	byEmail    *User
	byEmailErr error

	updateErr error

	newPasswordHash string
	passwordErr     error

	deactivated []string
	exists      bool
}

func (f *fakeRepo) Create(_ context.Context, u *User) error {
	f.created = u
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, _ string) (*User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byID, nil
}

func (f *fakeRepo) GetByEmail(
	_ context.Context,
	email string,
) (*User, error) {
	if f.byEmailErr != nil {
		return nil, f.byEmailErr
	}
	if f.byEmail == nil || f.byEmail.Email != email {
		return nil, core.ErrNotFound
	}
	return f.byEmail, nil
}

func (f *fakeRepo) Update(_ context.Context, _ *User) error {
	return f.updateErr
}

func (f *fakeRepo) UpdatePassword(
	_ context.Context,
	_, passwordHash string,
) error {
	if f.passwordErr != nil {
		return f.passwordErr
	}
	f.newPasswordHash = passwordHash
	return nil
}

func (f *fakeRepo) Deactivate(_ context.Context, id string) error {
	f.deactivated = append(f.deactivated, id)
	return nil
}

func (f *fakeRepo) ExistsByEmail(
	_ context.Context,
	_ string,
) (bool, error) {
	return f.exists, nil
}

type fakeRevoker struct {
	revoked []string
	err     error
}

func (f *fakeRevoker) RevokeAllSessions(
	_ context.Context,
	userID string,
) error {
	f.revoked = append(f.revoked, userID)
	return f.err
}

func newTestService(t *testing.T, repo *fakeRepo) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger)
}

func activeUser(t *testing.T, password string) *User {
	t.Helper()
	hash, err := core.HashPassword(password)
	require.NoError(t, err)
	return &User{
		ID:           "user-1",
		Email:        "ada@example.com",
		PasswordHash: hash,
		FirstName:    "Ada",
		LastName:     "Bell",
		BirthDate:    time.Now().AddDate(-30, 0, 0),
		Role:         RoleUser,
		IsActive:     true,
	}
}

func TestCreate_Flows(t *testing.T) {
	ctx := context.Background()

	t.Run("underage rejected", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := newTestService(t, repo)

		_, err := svc.Create(
			ctx,
			"kid@example.com", "hash", "Kid", "User",
			time.Now().AddDate(-10, 0, 0),
			nil,
		)
		assert.ErrorIs(t, err, ErrAgeOutOfRange)
		assert.Nil(t, repo.created)
	})

	t.Run("email lowercased and role assigned", func(t *testing.T) {
		repo := &fakeRepo{}
		svc := newTestService(t, repo)

		u, err := svc.Create(
			ctx,
			"Ada@Example.COM", "hash", "Ada", "Bell",
			time.Now().AddDate(-30, 0, 0),
			nil,
		)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", u.Email)
		assert.Equal(t, RoleUser, u.Role)
		assert.NotEmpty(t, u.ID)
	})
}

func TestChangePassword_Flows(t *testing.T) {
	ctx := context.Background()
	const password = "old password 123"

	t.Run("wrong current password", func(t *testing.T) {
		repo := &fakeRepo{byID: activeUser(t, password)}
		svc := newTestService(t, repo)

		err := svc.ChangePassword(ctx, "user-1", ChangePasswordRequest{
			CurrentPassword: "wrong",
			NewPassword:     "new password 456",
		})
		assert.ErrorIs(t, err, core.ErrUnauthorized)
		assert.Empty(t, repo.newPasswordHash)
	})

	t.Run("success revokes sessions", func(t *testing.T) {
		repo := &fakeRepo{byID: activeUser(t, password)}
		svc := newTestService(t, repo)

		revoker := &fakeRevoker{}
		svc.SetSessionRevoker(revoker)

		err := svc.ChangePassword(ctx, "user-1", ChangePasswordRequest{
			CurrentPassword: password,
			NewPassword:     "new password 456",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, repo.newPasswordHash)
		assert.Equal(t, []string{"user-1"}, revoker.revoked)

		valid, err := core.VerifyPassword(
			"new password 456",
			repo.newPasswordHash,
		)
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("revoker failure does not fail the change", func(t *testing.T) {
		repo := &fakeRepo{byID: activeUser(t, password)}
		svc := newTestService(t, repo)
		svc.SetSessionRevoker(&fakeRevoker{err: errBoom})

		err := svc.ChangePassword(ctx, "user-1", ChangePasswordRequest{
			CurrentPassword: password,
			NewPassword:     "new password 456",
		})
		assert.NoError(t, err)
	})

	t.Run("missing user id", func(t *testing.T) {
		svc := newTestService(t, &fakeRepo{})

		err := svc.ChangePassword(ctx, "", ChangePasswordRequest{})
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	})
}

func TestDeleteAccount_Flows(t *testing.T) {
	ctx := context.Background()
	const password = "old password 123"

	t.Run("wrong password", func(t *testing.T) {
		repo := &fakeRepo{byID: activeUser(t, password)}
		svc := newTestService(t, repo)

		err := svc.DeleteAccount(ctx, "user-1", DeleteAccountRequest{
			Password: "wrong",
		})
		assert.ErrorIs(t, err, core.ErrUnauthorized)
		assert.Empty(t, repo.deactivated)
	})

	t.Run("success deactivates and revokes", func(t *testing.T) {
		repo := &fakeRepo{byID: activeUser(t, password)}
		svc := newTestService(t, repo)

		revoker := &fakeRevoker{}
		svc.SetSessionRevoker(revoker)

		err := svc.DeleteAccount(ctx, "user-1", DeleteAccountRequest{
			Password: password,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"user-1"}, repo.deactivated)
		assert.Equal(t, []string{"user-1"}, revoker.revoked)
	})
}

func TestUpdateProfile_Flows(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update", func(t *testing.T) {
		repo := &fakeRepo{byID: activeUser(t, "pw")}
		svc := newTestService(t, repo)

		first := "Grace"
		u, err := svc.UpdateProfile(ctx, "user-1", UpdateProfileRequest{
			FirstName: &first,
		})
		require.NoError(t, err)
		assert.Equal(t, "Grace", u.FirstName)
		assert.Equal(t, "Bell", u.LastName)
	})

	t.Run("birth date out of range", func(t *testing.T) {
		repo := &fakeRepo{byID: activeUser(t, "pw")}
		svc := newTestService(t, repo)

		tooYoung := time.Now().AddDate(-8, 0, 0).Format("2006-01-02")
		_, err := svc.UpdateProfile(ctx, "user-1", UpdateProfileRequest{
			BirthDate: &tooYoung,
		})
		assert.ErrorIs(t, err, ErrAgeOutOfRange)
	})

	t.Run("malformed birth date", func(t *testing.T) {
		repo := &fakeRepo{byID: activeUser(t, "pw")}
		svc := newTestService(t, repo)

		bad := "03/14/1996"
		_, err := svc.UpdateProfile(ctx, "user-1", UpdateProfileRequest{
			BirthDate: &bad,
		})
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(t, &fakeRepo{})

	_, err := svc.Dashboard(ctx, "")
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	// No provider wired yet.
	_, err = svc.Dashboard(ctx, "user-1")
	assert.Error(t, err)
}
