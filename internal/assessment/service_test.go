// AngelaMos | 2026
// service_test.go

package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfmode/selfmode-api/internal/catalog"
	"github.com/selfmode/selfmode-api/internal/core"
	"github.com/selfmode/selfmode-api/internal/user"
)

var errBoom = errors.New("boom")

type fakeRepo struct {
	createErr error

	current    *Assessment
	currentErr error

	list    []AssessmentWithPackage
	listErr error

	updateApplied bool
	updateErr     error
	updateFrom    Status
	updateTo      Status

	saveErr error

	paidID    string
	paidErr   error
	failedID  string
	failedErr error

	payApplied bool
	payErr     error
	payFrom    PaymentStatus
	payTo      PaymentStatus
}

func (f *fakeRepo) Create(_ context.Context, a *Assessment) error {
	if f.createErr != nil {
		return f.createErr
	}
	a.Status = StatusPending
	a.PaymentStatus = PaymentPending
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	return nil
}

func (f *fakeRepo) GetByIDForUser(
	_ context.Context,
	_, _ string,
) (*Assessment, error) {
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return f.current, nil
}

func (f *fakeRepo) ListForUser(
	_ context.Context,
	_ string,
) ([]AssessmentWithPackage, error) {
	return f.list, f.listErr
}

func (f *fakeRepo) UpdateStatus(
	_ context.Context,
	_, _ string,
	from, to Status,
) (bool, error) {
	f.updateFrom = from
	f.updateTo = to
	if f.updateErr != nil {
		return false, f.updateErr
	}
	if f.updateApplied && f.current != nil {
		f.current.Status = to
	}
	return f.updateApplied, nil
}

func (f *fakeRepo) SaveResults(
	_ context.Context,
	_, _ string,
	results json.RawMessage,
) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.current != nil {
		f.current.Results = results
	}
	return nil
}

func (f *fakeRepo) MarkLatestPendingPaid(
	_ context.Context,
	_ string,
) (string, error) {
	return f.paidID, f.paidErr
}

func (f *fakeRepo) MarkLatestPendingFailed(
	_ context.Context,
	_ string,
) (string, error) {
	return f.failedID, f.failedErr
}

func (f *fakeRepo) UpdatePaymentStatus(
	_ context.Context,
	_ string,
	from, to PaymentStatus,
) (bool, error) {
	f.payFrom = from
	f.payTo = to
	return f.payApplied, f.payErr
}

type fakePackages struct {
	pkg *catalog.Package
	err error
}

func (f *fakePackages) GetPackage(
	_ context.Context,
	_ string,
) (*catalog.Package, error) {
	return f.pkg, f.err
}

type fakeUsers struct {
	user *user.User
	err  error
}

func (f *fakeUsers) GetUser(_ context.Context, _ string) (*user.User, error) {
	return f.user, f.err
}

type fakeActivity struct {
	completedFor []string
	err          error
}

func (f *fakeActivity) RecordTestCompleted(
	_ context.Context,
	userID string,
) error {
	f.completedFor = append(f.completedFor, userID)
	return f.err
}

func newTestService(
	t *testing.T,
	repo *fakeRepo,
	packages *fakePackages,
	users *fakeUsers,
) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, packages, users, logger)
}

func highSchoolUser() *user.User {
	return &user.User{
		ID:        "user-1",
		BirthDate: time.Now().AddDate(-22, 0, 0),
		IsActive:  true,
	}
}

func TestCreate_Flows(t *testing.T) {
	ctx := context.Background()

	t.Run("user lookup fails", func(t *testing.T) {
		svc := newTestService(t,
			&fakeRepo{},
			&fakePackages{},
			&fakeUsers{err: core.ErrNotFound},
		)

		_, err := svc.Create(ctx, "user-1", "pkg-1")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("package not found", func(t *testing.T) {
		svc := newTestService(t,
			&fakeRepo{},
			&fakePackages{err: core.ErrNotFound},
			&fakeUsers{user: highSchoolUser()},
		)

		_, err := svc.Create(ctx, "user-1", "pkg-1")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("bracket mismatch", func(t *testing.T) {
		svc := newTestService(t,
			&fakeRepo{},
			&fakePackages{pkg: &catalog.Package{
				ID:       "pkg-1",
				AgeGroup: user.AgeGroupMiddle,
			}},
			&fakeUsers{user: highSchoolUser()},
		)

		_, err := svc.Create(ctx, "user-1", "pkg-1")
		assert.ErrorIs(t, err, ErrBracketMismatch)
	})

	t.Run("second live attempt rejected", func(t *testing.T) {
		svc := newTestService(t,
			&fakeRepo{createErr: core.ErrConflict},
			&fakePackages{pkg: &catalog.Package{
				ID:       "pkg-1",
				AgeGroup: user.AgeGroupHigh,
			}},
			&fakeUsers{user: highSchoolUser()},
		)

		_, err := svc.Create(ctx, "user-1", "pkg-1")
		assert.ErrorIs(t, err, ErrAlreadyActive)
	})

	t.Run("success", func(t *testing.T) {
		svc := newTestService(t,
			&fakeRepo{},
			&fakePackages{pkg: &catalog.Package{
				ID:       "pkg-1",
				AgeGroup: user.AgeGroupHigh,
			}},
			&fakeUsers{user: highSchoolUser()},
		)

		a, err := svc.Create(ctx, "user-1", "pkg-1")
		require.NoError(t, err)
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, "user-1", a.UserID)
		assert.Equal(t, StatusPending, a.Status)
		assert.Equal(t, PaymentPending, a.PaymentStatus)
	})
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusPending, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusInProgress, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}

	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusInProgress.Terminal())
}

func TestUpdateStatus_Flows(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown status", func(t *testing.T) {
		svc := newTestService(t, &fakeRepo{}, &fakePackages{}, &fakeUsers{})

		_, err := svc.UpdateStatus(ctx, "a-1", "user-1", Status("DONE"))
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("assessment not found", func(t *testing.T) {
		svc := newTestService(t,
			&fakeRepo{currentErr: core.ErrNotFound},
			&fakePackages{},
			&fakeUsers{},
		)

		_, err := svc.UpdateStatus(ctx, "a-1", "user-1", StatusInProgress)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("rejected transition", func(t *testing.T) {
		svc := newTestService(t,
			&fakeRepo{current: &Assessment{Status: StatusCompleted}},
			&fakePackages{},
			&fakeUsers{},
		)

		_, err := svc.UpdateStatus(ctx, "a-1", "user-1", StatusCancelled)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("lost race surfaces conflict", func(t *testing.T) {
		svc := newTestService(t,
			&fakeRepo{
				current:       &Assessment{Status: StatusPending},
				updateApplied: false,
			},
			&fakePackages{},
			&fakeUsers{},
		)

		_, err := svc.UpdateStatus(ctx, "a-1", "user-1", StatusInProgress)
		assert.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("start applies compare-and-set", func(t *testing.T) {
		repo := &fakeRepo{
			current:       &Assessment{Status: StatusPending},
			updateApplied: true,
		}
		svc := newTestService(t, repo, &fakePackages{}, &fakeUsers{})

		updated, err := svc.UpdateStatus(ctx, "a-1", "user-1", StatusInProgress)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, repo.updateFrom)
		assert.Equal(t, StatusInProgress, repo.updateTo)
		assert.Equal(t, StatusInProgress, updated.Status)
	})

	t.Run("completion records activity", func(t *testing.T) {
		repo := &fakeRepo{
			current:       &Assessment{Status: StatusInProgress},
			updateApplied: true,
		}
		svc := newTestService(t, repo, &fakePackages{}, &fakeUsers{})

		activity := &fakeActivity{}
		svc.SetActivityRecorder(activity)

		_, err := svc.UpdateStatus(ctx, "a-1", "user-1", StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, []string{"user-1"}, activity.completedFor)
	})

	t.Run("activity failure does not block", func(t *testing.T) {
		repo := &fakeRepo{
			current:       &Assessment{Status: StatusInProgress},
			updateApplied: true,
		}
		svc := newTestService(t, repo, &fakePackages{}, &fakeUsers{})
		svc.SetActivityRecorder(&fakeActivity{err: errBoom})

		_, err := svc.UpdateStatus(ctx, "a-1", "user-1", StatusCompleted)
		assert.NoError(t, err)
	})
}

func TestSaveResults_Flows(t *testing.T) {
	ctx := context.Background()
	payload := json.RawMessage(`{"score": 87}`)

	t.Run("pending attempt is not writable", func(t *testing.T) {
		svc := newTestService(t,
			&fakeRepo{current: &Assessment{Status: StatusPending}},
			&fakePackages{},
			&fakeUsers{},
		)

		_, err := svc.SaveResults(ctx, "a-1", "user-1", payload)
		assert.ErrorIs(t, err, ErrResultsNotWritable)
	})

	t.Run("cancelled attempt is not writable", func(t *testing.T) {
		svc := newTestService(t,
			&fakeRepo{current: &Assessment{Status: StatusCancelled}},
			&fakePackages{},
			&fakeUsers{},
		)

		_, err := svc.SaveResults(ctx, "a-1", "user-1", payload)
		assert.ErrorIs(t, err, ErrResultsNotWritable)
	})

	t.Run("in progress accepts results", func(t *testing.T) {
		repo := &fakeRepo{current: &Assessment{Status: StatusInProgress}}
		svc := newTestService(t, repo, &fakePackages{}, &fakeUsers{})

		updated, err := svc.SaveResults(ctx, "a-1", "user-1", payload)
		require.NoError(t, err)
		assert.JSONEq(t, string(payload), string(updated.Results))
	})

	t.Run("completed accepts results", func(t *testing.T) {
		repo := &fakeRepo{current: &Assessment{Status: StatusCompleted}}
		svc := newTestService(t, repo, &fakePackages{}, &fakeUsers{})

		_, err := svc.SaveResults(ctx, "a-1", "user-1", payload)
		assert.NoError(t, err)
	})
}

func TestRefundAssessment(t *testing.T) {
	ctx := context.Background()

	t.Run("not paid", func(t *testing.T) {
		repo := &fakeRepo{payApplied: false}
		svc := newTestService(t, repo, &fakePackages{}, &fakeUsers{})

		err := svc.RefundAssessment(ctx, "a-1")
		assert.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("paid flips to refunded", func(t *testing.T) {
		repo := &fakeRepo{payApplied: true}
		svc := newTestService(t, repo, &fakePackages{}, &fakeUsers{})

		err := svc.RefundAssessment(ctx, "a-1")
		require.NoError(t, err)
		assert.Equal(t, PaymentPaid, repo.payFrom)
		assert.Equal(t, PaymentRefunded, repo.payTo)
	})
}

func TestDashboardForUser(t *testing.T) {
	ctx := context.Background()
	started := time.Now().Add(-time.Hour)

	repo := &fakeRepo{list: []AssessmentWithPackage{
		{
			Assessment: Assessment{
				ID:            "a-1",
				PackageID:     "pkg-1",
				Status:        StatusCompleted,
				PaymentStatus: PaymentPaid,
				StartedAt:     &started,
			},
			PackageCategory: "HIGH_SCHOOL",
			PackageLevel:    "PLUS",
			PackagePrice:    "499.00",
			PackageCurrency: "TRY",
		},
		{
			Assessment: Assessment{
				ID:            "a-2",
				PackageID:     "pkg-2",
				Status:        StatusInProgress,
				PaymentStatus: PaymentPaid,
			},
		},
		{
			Assessment: Assessment{
				ID:            "a-3",
				PackageID:     "pkg-3",
				Status:        StatusCancelled,
				PaymentStatus: PaymentFailed,
			},
		},
	}}
	svc := newTestService(t, repo, &fakePackages{}, &fakeUsers{})

	data, err := svc.DashboardForUser(ctx, "user-1")
	require.NoError(t, err)

	assert.Len(t, data.Assessments, 3)
	assert.Equal(t, 3, data.Statistics.Total)
	assert.Equal(t, 1, data.Statistics.Completed)
	assert.Equal(t, 1, data.Statistics.InProgress)
	assert.Equal(t, 2, data.Statistics.Paid)
	assert.Equal(t, "HIGH_SCHOOL PLUS", data.Assessments[0].PackageName)
	assert.Equal(t, "499.00 TRY", data.Assessments[0].Price)

	repo.listErr = errBoom
	_, err = svc.DashboardForUser(ctx, "user-1")
	assert.ErrorIs(t, err, errBoom)
}

func TestSettleAndFailPayment(t *testing.T) {
	ctx := context.Background()

	repo := &fakeRepo{paidID: "a-1", failedID: "a-2"}
	svc := newTestService(t, repo, &fakePackages{}, &fakeUsers{})

	id, err := svc.SettlePayment(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "a-1", id)

	id, err = svc.FailPayment(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "a-2", id)

	repo.paidErr = core.ErrNotFound
	_, err = svc.SettlePayment(ctx, "user-1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
