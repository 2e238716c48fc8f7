// AngelaMos | 2026
// service.go

package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/selfmode/selfmode-api/internal/catalog"
	"github.com/selfmode/selfmode-api/internal/core"
	"github.com/selfmode/selfmode-api/internal/user"
)

var (
	ErrBracketMismatch    = errors.New("package not available for age group")
	ErrAlreadyActive      = errors.New("an assessment is already in progress")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrResultsNotWritable = errors.New("results can only be saved on a started assessment")
)

type PackageProvider interface {
	GetPackage(ctx context.Context, id string) (*catalog.Package, error)
}

type UserProvider interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

// ActivityRecorder tracks completed tests for the admin surface.
type ActivityRecorder interface {
	RecordTestCompleted(ctx context.Context, userID string) error
}

type Service struct {
	repo     Repository
	packages PackageProvider
	users    UserProvider
	activity ActivityRecorder
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	packages PackageProvider,
	users UserProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		packages: packages,
		users:    users,
		logger:   logger,
	}
}

func (s *Service) SetActivityRecorder(activity ActivityRecorder) {
	s.activity = activity
}

// Create opens a new attempt for the user. The package must exist and
// belong to the caller's age bracket; the database rejects a second
// live attempt. Both the direct endpoint and the payment flow enter
// here, so the guards hold on every path.
func (s *Service) Create(
	ctx context.Context,
	userID, packageID string,
) (*Assessment, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}

	pkg, err := s.packages.GetPackage(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}

	if pkg.AgeGroup != u.AgeGroup() {
		return nil, fmt.Errorf(
			"create assessment: package %s targets %s, user is %s: %w",
			pkg.ID,
			pkg.AgeGroup,
			u.AgeGroup(),
			ErrBracketMismatch,
		)
	}

	assessment := &Assessment{
		ID:        uuid.New().String(),
		UserID:    userID,
		PackageID: packageID,
	}

	if err := s.repo.Create(ctx, assessment); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, ErrAlreadyActive
		}
		return nil, err
	}

	return assessment, nil
}

func (s *Service) ListForUser(
	ctx context.Context,
	userID string,
) ([]AssessmentWithPackage, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) GetForUser(
	ctx context.Context,
	id, userID string,
) (*Assessment, error) {
	return s.repo.GetByIDForUser(ctx, id, userID)
}

// UpdateStatus applies one lifecycle transition. The write is a
// compare-and-set against the status the caller observed; a concurrent
// winner surfaces as a conflict, not a silent overwrite.
func (s *Service) UpdateStatus(
	ctx context.Context,
	id, userID string,
	next Status,
) (*Assessment, error) {
	if !next.Valid() {
		return nil, fmt.Errorf(
			"update status: unknown status %q: %w",
			next,
			core.ErrInvalidInput,
		)
	}

	current, err := s.repo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !current.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf(
			"update status: %s -> %s: %w",
			current.Status,
			next,
			ErrInvalidTransition,
		)
	}

	applied, err := s.repo.UpdateStatus(ctx, id, userID, current.Status, next)
	if err != nil {
		return nil, err
	}

	if !applied {
		return nil, fmt.Errorf("update status: %w", core.ErrConflict)
	}

	if next == StatusCompleted {
		s.recordTestCompleted(ctx, userID)
	}

	return s.repo.GetByIDForUser(ctx, id, userID)
}

// SaveResults stores the test payload. Results are only writable once
// an attempt has started.
func (s *Service) SaveResults(
	ctx context.Context,
	id, userID string,
	results json.RawMessage,
) (*Assessment, error) {
	current, err := s.repo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if current.Status != StatusInProgress &&
		current.Status != StatusCompleted {
		return nil, fmt.Errorf(
			"save results: status is %s: %w",
			current.Status,
			ErrResultsNotWritable,
		)
	}

	if err := s.repo.SaveResults(ctx, id, userID, results); err != nil {
		return nil, err
	}

	return s.repo.GetByIDForUser(ctx, id, userID)
}

// SettlePayment marks the buyer's newest pending attempt paid and
// starts it. Called from the payment callback after gateway
// verification.
func (s *Service) SettlePayment(
	ctx context.Context,
	userID string,
) (string, error) {
	return s.repo.MarkLatestPendingPaid(ctx, userID)
}

// FailPayment cancels the buyer's newest pending attempt after a
// declined payment.
func (s *Service) FailPayment(
	ctx context.Context,
	userID string,
) (string, error) {
	return s.repo.MarkLatestPendingFailed(ctx, userID)
}

// RefundAssessment flips a settled attempt to REFUNDED. Only paid
// attempts are refundable.
func (s *Service) RefundAssessment(
	ctx context.Context,
	assessmentID string,
) error {
	applied, err := s.repo.UpdatePaymentStatus(
		ctx,
		assessmentID,
		PaymentPaid,
		PaymentRefunded,
	)
	if err != nil {
		return err
	}

	if !applied {
		return fmt.Errorf("refund assessment: not paid: %w", core.ErrConflict)
	}

	return nil
}

// DashboardForUser implements user.DashboardProvider.
func (s *Service) DashboardForUser(
	ctx context.Context,
	userID string,
) (*user.DashboardData, error) {
	assessments, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	data := &user.DashboardData{
		Assessments: make([]user.DashboardAssessment, 0, len(assessments)),
	}

	for i := range assessments {
		a := &assessments[i]

		data.Assessments = append(data.Assessments, user.DashboardAssessment{
			ID:            a.ID,
			PackageID:     a.PackageID,
			PackageName:   a.PackageCategory + " " + a.PackageLevel,
			Status:        string(a.Status),
			PaymentStatus: string(a.PaymentStatus),
			Price:         a.PackagePrice + " " + a.PackageCurrency,
			Duration:      a.PackageDuration,
			Results:       a.Results,
			StartedAt:     a.StartedAt,
			CompletedAt:   a.CompletedAt,
			CreatedAt:     a.CreatedAt,
		})

		data.Statistics.Total++
		switch a.Status {
		case StatusCompleted:
			data.Statistics.Completed++
		case StatusInProgress:
			data.Statistics.InProgress++
		}
		if a.PaymentStatus == PaymentPaid {
			data.Statistics.Paid++
		}
	}

	return data, nil
}

func (s *Service) recordTestCompleted(ctx context.Context, userID string) {
	if s.activity == nil {
		return
	}

	if err := s.activity.RecordTestCompleted(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to record completed test",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

var _ user.DashboardProvider = (*Service)(nil)
