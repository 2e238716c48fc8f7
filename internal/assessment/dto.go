// AngelaMos | 2026
// dto.go

package assessment

import (
	"encoding/json"
	"time"
)

type CreateAssessmentRequest struct {
	PackageID string `json:"packageId" validate:"required,min=1,max=64"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
}

type SaveResultsRequest struct {
	Results json.RawMessage `json:"results" validate:"required"`
}

type AssessmentResponse struct {
	ID            string          `json:"id"`
	PackageID     string          `json:"packageId"`
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	Results       json.RawMessage `json:"results,omitempty"`
	StartedAt     *time.Time      `json:"startedAt,omitempty"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type AssessmentDetailResponse struct {
	AssessmentResponse

	PackageCategory string `json:"packageCategory"`
	PackageLevel    string `json:"packageLevel"`
	PackagePrice    string `json:"packagePrice"`
	PackageCurrency string `json:"packageCurrency"`
	PackageDuration string `json:"packageDuration"`
}

type AssessmentListResponse struct {
	Assessments []AssessmentDetailResponse `json:"assessments"`
}

func ToAssessmentResponse(a *Assessment) AssessmentResponse {
	return AssessmentResponse{
		ID:            a.ID,
		PackageID:     a.PackageID,
		Status:        a.Status,
		PaymentStatus: a.PaymentStatus,
		Results:       a.Results,
		StartedAt:     a.StartedAt,
		CompletedAt:   a.CompletedAt,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func ToAssessmentDetailResponse(a *AssessmentWithPackage) AssessmentDetailResponse {
	return AssessmentDetailResponse{
		AssessmentResponse: ToAssessmentResponse(&a.Assessment),
		PackageCategory:    a.PackageCategory,
		PackageLevel:       a.PackageLevel,
		PackagePrice:       a.PackagePrice,
		PackageCurrency:    a.PackageCurrency,
		PackageDuration:    a.PackageDuration,
	}
}

func ToAssessmentDetailResponseList(
	assessments []AssessmentWithPackage,
) []AssessmentDetailResponse {
	out := make([]AssessmentDetailResponse, 0, len(assessments))
	for i := range assessments {
		out = append(out, ToAssessmentDetailResponse(&assessments[i]))
	}
	return out
}
