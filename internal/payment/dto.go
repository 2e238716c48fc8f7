// AngelaMos | 2026
// dto.go

package payment

import (
	"github.com/selfmode/selfmode-api/internal/assessment"
)

type CreatePaymentRequest struct {
	PackageID string `json:"packageId" validate:"required,min=1,max=64"`
}

type CreatePaymentResponse struct {
	AssessmentID    string `json:"assessmentId"`
	PaymentFormHTML string `json:"paymentFormHtml"`
	Token           string `json:"token"`
	ConversationID  string `json:"conversationId"`
}

type CallbackRequest struct {
	Token string `json:"token" validate:"required"`
}

type CallbackResponse struct {
	PaymentID     string `json:"paymentId"`
	AssessmentID  string `json:"assessmentId,omitempty"`
	PaymentStatus string `json:"paymentStatus"`
}

type RefundPaymentRequest struct {
	Amount string `json:"amount" validate:"required,numeric"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

type RefundPaymentResponse struct {
	RefundID string `json:"refundId"`
	Amount   string `json:"amount"`
}

type PaymentStatusResponse struct {
	Assessment    assessment.AssessmentResponse `json:"assessment"`
	Status        assessment.Status             `json:"status"`
	PaymentStatus assessment.PaymentStatus      `json:"paymentStatus"`
}
