// AngelaMos | 2026
// repository.go

package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/selfmode/selfmode-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, assessment *Assessment) error
	GetByIDForUser(
		ctx context.Context,
		id, userID string,
	) (*Assessment, error)
	ListForUser(
		ctx context.Context,
		userID string,
	) ([]AssessmentWithPackage, error)
	UpdateStatus(
		ctx context.Context,
		id, userID string,
		from, to Status,
	) (bool, error)
	SaveResults(
		ctx context.Context,
		id, userID string,
		results json.RawMessage,
	) error
	MarkLatestPendingPaid(ctx context.Context, userID string) (string, error)
	MarkLatestPendingFailed(ctx context.Context, userID string) (string, error)
	UpdatePaymentStatus(
		ctx context.Context,
		id string,
		from, to PaymentStatus,
	) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const assessmentColumns = `
	id, user_id, package_id, status, payment_status, results,
	started_at, completed_at, created_at, updated_at`

func (r *repository) Create(ctx context.Context, assessment *Assessment) error {
	query := `
		INSERT INTO assessments (id, user_id, package_id)
		VALUES ($1, $2, $3)
		RETURNING status, payment_status, created_at, updated_at`

	err := r.db.GetContext(ctx, assessment, query,
		assessment.ID,
		assessment.UserID,
		assessment.PackageID,
	)
	if err != nil {
		// The partial unique index rejects a second live attempt; the
		// insert races cleanly instead of read-then-write.
		if isActiveAttemptConflict(err) {
			return fmt.Errorf("create assessment: %w", core.ErrConflict)
		}
		return fmt.Errorf("create assessment: %w", err)
	}

	return nil
}

func (r *repository) GetByIDForUser(
	ctx context.Context,
	id, userID string,
) (*Assessment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM assessments
		WHERE id = $1 AND user_id = $2`, assessmentColumns)

	var assessment Assessment
	err := r.db.GetContext(ctx, &assessment, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get assessment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}

	return &assessment, nil
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
) ([]AssessmentWithPackage, error) {
	query := `
		SELECT
			a.id, a.user_id, a.package_id, a.status, a.payment_status,
			a.results, a.started_at, a.completed_at, a.created_at,
			a.updated_at,
			p.category AS package_category,
			p.level AS package_level,
			p.price_amount AS package_price,
			p.price_currency AS package_currency,
			p.duration AS package_duration
		FROM assessments a
		JOIN packages p ON p.id = a.package_id
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC`

	var assessments []AssessmentWithPackage
	err := r.db.SelectContext(ctx, &assessments, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}

	return assessments, nil
}

// UpdateStatus performs the transition as a compare-and-set on the
// current status. Timestamps are stamped in the same statement: the
// first move to IN_PROGRESS sets started_at, the move to COMPLETED
// sets completed_at. Returns false when the row's status no longer
// matches, meaning a concurrent writer won.
func (r *repository) UpdateStatus(
	ctx context.Context,
	id, userID string,
	from, to Status,
) (bool, error) {
	query := `
		UPDATE assessments
		SET status = $3,
			started_at = CASE
				WHEN $3 = 'IN_PROGRESS' AND started_at IS NULL THEN NOW()
				ELSE started_at
			END,
			completed_at = CASE
				WHEN $3 = 'COMPLETED' AND completed_at IS NULL THEN NOW()
				ELSE completed_at
			END,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = $4`

	result, err := r.db.ExecContext(ctx, query, id, userID, to, from)
	if err != nil {
		return false, fmt.Errorf("update assessment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update assessment status: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) SaveResults(
	ctx context.Context,
	id, userID string,
	results json.RawMessage,
) error {
	query := `
		UPDATE assessments
		SET results = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID, results)
	if err != nil {
		return fmt.Errorf("save assessment results: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save assessment results: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("save assessment results: %w", core.ErrNotFound)
	}

	return nil
}

// MarkLatestPendingPaid settles a successful payment against the
// buyer's newest pending attempt: PAID, IN_PROGRESS, started. One
// statement so a concurrent cancel cannot interleave.
func (r *repository) MarkLatestPendingPaid(
	ctx context.Context,
	userID string,
) (string, error) {
	query := `
		UPDATE assessments
		SET payment_status = 'PAID',
			status = 'IN_PROGRESS',
			started_at = COALESCE(started_at, NOW()),
			updated_at = NOW()
		WHERE id = (
			SELECT id FROM assessments
			WHERE user_id = $1 AND status = 'PENDING'
			ORDER BY created_at DESC
			LIMIT 1
		)
		RETURNING id`

	var id string
	err := r.db.GetContext(ctx, &id, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("settle payment: %w", core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("settle payment: %w", err)
	}

	return id, nil
}

func (r *repository) MarkLatestPendingFailed(
	ctx context.Context,
	userID string,
) (string, error) {
	query := `
		UPDATE assessments
		SET payment_status = 'FAILED',
			status = 'CANCELLED',
			updated_at = NOW()
		WHERE id = (
			SELECT id FROM assessments
			WHERE user_id = $1 AND status = 'PENDING'
			ORDER BY created_at DESC
			LIMIT 1
		)
		RETURNING id`

	var id string
	err := r.db.GetContext(ctx, &id, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("fail payment: %w", core.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("fail payment: %w", err)
	}

	return id, nil
}

func (r *repository) UpdatePaymentStatus(
	ctx context.Context,
	id string,
	from, to PaymentStatus,
) (bool, error) {
	query := `
		UPDATE assessments
		SET payment_status = $2, updated_at = NOW()
		WHERE id = $1 AND payment_status = $3`

	result, err := r.db.ExecContext(ctx, query, id, to, from)
	if err != nil {
		return false, fmt.Errorf("update payment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update payment status: %w", err)
	}

	return rows > 0, nil
}

func isActiveAttemptConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" &&
			pgErr.ConstraintName == "uq_assessments_user_active"
	}
	return false
}
