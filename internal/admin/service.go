// AngelaMos | 2026
// service.go

package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/selfmode/selfmode-api/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordLogin upserts the engagement row on each successful login.
func (s *Service) RecordLogin(ctx context.Context, userID string) error {
	return s.repo.RecordLogin(ctx, userID)
}

// RecordTestCompleted marks the user's first completed test.
func (s *Service) RecordTestCompleted(
	ctx context.Context,
	userID string,
) error {
	return s.repo.RecordTestCompleted(ctx, userID)
}

func (s *Service) ListUsers(ctx context.Context) (*UserListResponse, error) {
	rows, err := s.repo.ListUsersWithActivity(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]UserSummary, 0, len(rows))
	for i := range rows {
		users = append(users, toUserSummary(&rows[i]))
	}

	return &UserListResponse{Users: users, Total: len(users)}, nil
}

func (s *Service) GetUserDetail(
	ctx context.Context,
	userID string,
) (*UserDetailResponse, error) {
	row, err := s.repo.GetUserWithActivity(ctx, userID)
	if err != nil {
		return nil, err
	}

	detail := &UserDetailResponse{User: toUserSummary(row)}

	activity, err := s.repo.GetActivity(ctx, userID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}
	detail.Activity = activity

	report, err := s.repo.GetLatestReport(ctx, userID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}
	if report != nil {
		detail.Report = &ReportSummary{
			ID:                report.ID,
			AssessmentID:      report.AssessmentID,
			AssessmentResult:  report.AssessmentResult,
			PersonalityType:   report.PersonalityType,
			CareerSuggestions: report.CareerSuggestions,
			CreatedAt:         report.CreatedAt,
		}
	}

	return detail, nil
}

func (s *Service) UpdateUserActivity(
	ctx context.Context,
	userID string,
	req UpdateActivityRequest,
) error {
	if req.TestCompleted == nil && req.ReportDownloaded == nil {
		return fmt.Errorf("update activity: no fields: %w", core.ErrInvalidInput)
	}

	// 404 for unknown users rather than silently creating a row.
	if _, err := s.repo.GetUserWithActivity(ctx, userID); err != nil {
		return err
	}

	return s.repo.UpdateActivityFlags(
		ctx,
		userID,
		req.TestCompleted,
		req.ReportDownloaded,
	)
}

func (s *Service) DashboardStats(
	ctx context.Context,
) (*DashboardStatsResponse, error) {
	return s.repo.DashboardStats(ctx)
}
