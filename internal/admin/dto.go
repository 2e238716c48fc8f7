// AngelaMos | 2026
// dto.go

package admin

import (
	"encoding/json"
	"time"

	"github.com/selfmode/selfmode-api/internal/user"
)

type UserSummary struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	AgeGroup  user.AgeGroup `json:"ageGroup"`
	Phone     *string       `json:"phone,omitempty"`
	IsActive  bool          `json:"isActive"`
	CreatedAt time.Time     `json:"createdAt"`

	LastLogin        *time.Time `json:"lastLogin,omitempty"`
	LoginCount       int        `json:"loginCount"`
	TestCompleted    bool       `json:"testCompleted"`
	TestCompletedAt  *time.Time `json:"testCompletedAt,omitempty"`
	ReportDownloaded bool       `json:"reportDownloaded"`
}

type UserListResponse struct {
	Users []UserSummary `json:"users"`
	Total int           `json:"total"`
}

type ReportSummary struct {
	ID                string          `json:"id"`
	AssessmentID      *string         `json:"assessmentId,omitempty"`
	AssessmentResult  json.RawMessage `json:"assessmentResult,omitempty"`
	PersonalityType   *string         `json:"personalityType,omitempty"`
	CareerSuggestions json.RawMessage `json:"careerSuggestions,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

type UserDetailResponse struct {
	User     UserSummary    `json:"user"`
	Activity *Activity      `json:"activity,omitempty"`
	Report   *ReportSummary `json:"report,omitempty"`
}

type DashboardStatsResponse struct {
	TotalUsers          int                 `json:"totalUsers"`
	ActiveUsers         int                 `json:"activeUsers"`
	TestCompleted       int                 `json:"testCompleted"`
	ReportDownloaded    int                 `json:"reportDownloaded"`
	RecentRegistrations []RegistrationPoint `json:"recentRegistrations"`
}

type UpdateActivityRequest struct {
	TestCompleted    *bool `json:"testCompleted"`
	ReportDownloaded *bool `json:"reportDownloaded"`
}

func toUserSummary(row *UserWithActivity) UserSummary {
	summary := UserSummary{
		ID:        row.ID,
		Email:     row.Email,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Phone:     row.Phone,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
		LastLogin: row.LastLogin,
	}

	if group, ok := user.AgeGroupFromAge(user.CalculateAge(row.BirthDate)); ok {
		summary.AgeGroup = group
	}

	if row.LoginCount != nil {
		summary.LoginCount = *row.LoginCount
	}
	if row.TestCompleted != nil {
		summary.TestCompleted = *row.TestCompleted
	}
	summary.TestCompletedAt = row.TestCompletedAt
	if row.ReportDownloaded != nil {
		summary.ReportDownloaded = *row.ReportDownloaded
	}

	return summary
}
