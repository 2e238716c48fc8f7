// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/selfmode/selfmode-api/internal/core"
)

type Repository interface {
	RecordLogin(ctx context.Context, userID string) error
	RecordTestCompleted(ctx context.Context, userID string) error
	ListUsersWithActivity(ctx context.Context) ([]UserWithActivity, error)
	GetUserWithActivity(
		ctx context.Context,
		userID string,
	) (*UserWithActivity, error)
	GetActivity(ctx context.Context, userID string) (*Activity, error)
	GetLatestReport(ctx context.Context, userID string) (*Report, error)
	UpdateActivityFlags(
		ctx context.Context,
		userID string,
		testCompleted, reportDownloaded *bool,
	) error
	DashboardStats(ctx context.Context) (*DashboardStatsResponse, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) RecordLogin(ctx context.Context, userID string) error {
	query := `
		INSERT INTO user_activity (user_id, last_login, login_count)
		VALUES ($1, NOW(), 1)
		ON CONFLICT (user_id) DO UPDATE
		SET last_login = NOW(),
			login_count = user_activity.login_count + 1,
			updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("record login: %w", err)
	}

	return nil
}

func (r *repository) RecordTestCompleted(
	ctx context.Context,
	userID string,
) error {
	query := `
		INSERT INTO user_activity (user_id, test_completed, test_completed_at)
		VALUES ($1, TRUE, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET test_completed = TRUE,
			test_completed_at = COALESCE(
				user_activity.test_completed_at,
				NOW()
			),
			updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("record test completed: %w", err)
	}

	return nil
}

const userActivityColumns = `
	u.id, u.email, u.first_name, u.last_name, u.birth_date, u.phone,
	u.is_active, u.created_at,
	ua.last_login, ua.login_count, ua.test_completed, ua.test_completed_at,
	ua.report_generated, ua.report_generated_at,
	ua.report_downloaded, ua.report_downloaded_at`

func (r *repository) ListUsersWithActivity(
	ctx context.Context,
) ([]UserWithActivity, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		LEFT JOIN user_activity ua ON ua.user_id = u.id
		WHERE u.role <> 'admin'
		ORDER BY u.created_at DESC`, userActivityColumns)

	var rows []UserWithActivity
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list users with activity: %w", err)
	}

	return rows, nil
}

func (r *repository) GetUserWithActivity(
	ctx context.Context,
	userID string,
) (*UserWithActivity, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users u
		LEFT JOIN user_activity ua ON ua.user_id = u.id
		WHERE u.id = $1 AND u.role <> 'admin'`, userActivityColumns)

	var row UserWithActivity
	err := r.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user with activity: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user with activity: %w", err)
	}

	return &row, nil
}

func (r *repository) GetActivity(
	ctx context.Context,
	userID string,
) (*Activity, error) {
	query := `
		SELECT
			user_id, last_login, login_count, test_completed,
			test_completed_at, report_generated, report_generated_at,
			report_downloaded, report_downloaded_at, created_at, updated_at
		FROM user_activity
		WHERE user_id = $1`

	var activity Activity
	err := r.db.GetContext(ctx, &activity, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get activity: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}

	return &activity, nil
}

func (r *repository) GetLatestReport(
	ctx context.Context,
	userID string,
) (*Report, error) {
	query := `
		SELECT
			id, user_id, assessment_id, assessment_result,
			personality_type, career_suggestions, report_data,
			created_at, updated_at
		FROM user_reports
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var report Report
	err := r.db.GetContext(ctx, &report, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get latest report: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get latest report: %w", err)
	}

	return &report, nil
}

func (r *repository) UpdateActivityFlags(
	ctx context.Context,
	userID string,
	testCompleted, reportDownloaded *bool,
) error {
	query := `
		INSERT INTO user_activity (user_id, test_completed, report_downloaded)
		VALUES ($1, COALESCE($2, FALSE), COALESCE($3, FALSE))
		ON CONFLICT (user_id) DO UPDATE
		SET test_completed = COALESCE($2, user_activity.test_completed),
			test_completed_at = CASE
				WHEN $2 = TRUE THEN COALESCE(
					user_activity.test_completed_at,
					NOW()
				)
				ELSE user_activity.test_completed_at
			END,
			report_downloaded = COALESCE(
				$3,
				user_activity.report_downloaded
			),
			report_downloaded_at = CASE
				WHEN $3 = TRUE THEN COALESCE(
					user_activity.report_downloaded_at,
					NOW()
				)
				ELSE user_activity.report_downloaded_at
			END,
			updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query, userID, testCompleted, reportDownloaded)
	if err != nil {
		return fmt.Errorf("update activity flags: %w", err)
	}

	return nil
}

func (r *repository) DashboardStats(
	ctx context.Context,
) (*DashboardStatsResponse, error) {
	stats := &DashboardStatsResponse{}

	countQuery := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role <> 'admin') AS total_users,
			(SELECT COUNT(DISTINCT user_id) FROM user_activity
				WHERE last_login >= NOW() - INTERVAL '30 days') AS active_users,
			(SELECT COUNT(*) FROM user_activity
				WHERE test_completed) AS test_completed,
			(SELECT COUNT(*) FROM user_activity
				WHERE report_downloaded) AS report_downloaded`

	row := struct {
		TotalUsers       int `db:"total_users"`
		ActiveUsers      int `db:"active_users"`
		TestCompleted    int `db:"test_completed"`
		ReportDownloaded int `db:"report_downloaded"`
	}{}

	if err := r.db.GetContext(ctx, &row, countQuery); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}

	stats.TotalUsers = row.TotalUsers
	stats.ActiveUsers = row.ActiveUsers
	stats.TestCompleted = row.TestCompleted
	stats.ReportDownloaded = row.ReportDownloaded

	registrationsQuery := `
		SELECT DATE(created_at) AS date, COUNT(*) AS count
		FROM users
		WHERE role <> 'admin' AND created_at >= NOW() - INTERVAL '7 days'
		GROUP BY DATE(created_at)
		ORDER BY date DESC`

	var points []RegistrationPoint
	err := r.db.SelectContext(ctx, &points, registrationsQuery)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}

	stats.RecentRegistrations = points
	if stats.RecentRegistrations == nil {
		stats.RecentRegistrations = []RegistrationPoint{}
	}

	return stats, nil
}
