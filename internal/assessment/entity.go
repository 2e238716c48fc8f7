// AngelaMos | 2026
// entity.go

package assessment

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses admit no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// transitions is the full lifecycle: PENDING starts or cancels,
// IN_PROGRESS completes or cancels, terminal states stay put.
var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type Assessment struct {
	ID            string          `db:"id"`
	UserID        string          `db:"user_id"`
	PackageID     string          `db:"package_id"`
	Status        Status          `db:"status"`
	PaymentStatus PaymentStatus   `db:"payment_status"`
	Results       json.RawMessage `db:"results"`
	StartedAt     *time.Time      `db:"started_at"`
	CompletedAt   *time.Time      `db:"completed_at"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (a *Assessment) Active() bool {
	return a.Status == StatusPending || a.Status == StatusInProgress
}

// AssessmentWithPackage joins the catalog fields the dashboard and
// listing endpoints render alongside each attempt.
type AssessmentWithPackage struct {
	Assessment
	PackageCategory string `db:"package_category"`
	PackageLevel    string `db:"package_level"`
	PackagePrice    string `db:"package_price"`
	PackageCurrency string `db:"package_currency"`
	PackageDuration string `db:"package_duration"`
}
