// AngelaMos | 2026
// dto.go

package user

import (
	"encoding/json"
	"time"
)

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName,omitempty"  validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone,omitempty"     validate:"omitempty,e164"`
	BirthDate *string `json:"birthDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8,max=128"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

type ProfileResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	BirthDate   string    `json:"birthDate"`
	Phone       *string   `json:"phone,omitempty"`
	Age         int       `json:"age"`
	AgeGroup    AgeGroup  `json:"ageGroup"`
	MemberSince time.Time `json:"memberSince"`
}

func ToProfileResponse(u *User) ProfileResponse {
	return ProfileResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		BirthDate:   u.BirthDate.Format("2006-01-02"),
		Phone:       u.Phone,
		Age:         u.Age(),
		AgeGroup:    u.AgeGroup(),
		MemberSince: u.CreatedAt,
	}
}

type DashboardAssessment struct {
	ID            string          `json:"id"`
	PackageID     string          `json:"packageId"`
	PackageName   string          `json:"packageName"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
	Price         string          `json:"price"`
	Duration      string          `json:"duration"`
	Results       json.RawMessage `json:"results,omitempty"`
	StartedAt     *time.Time      `json:"startedAt,omitempty"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type DashboardStats struct {
	Total      int `json:"totalAssessments"`
	Completed  int `json:"completedAssessments"`
	InProgress int `json:"inProgressAssessments"`
	Paid       int `json:"paidAssessments"`
}

type DashboardData struct {
	Assessments []DashboardAssessment `json:"assessments"`
	Statistics  DashboardStats        `json:"statistics"`
}
