// AngelaMos | 2026
// entity.go

package admin

import (
	"encoding/json"
	"time"
)

// Activity is the per-user engagement row maintained by login and
// test-completion events.
type Activity struct {
	UserID             string     `db:"user_id"              json:"userId"`
	LastLogin          *time.Time `db:"last_login"           json:"lastLogin,omitempty"`
	LoginCount         int        `db:"login_count"          json:"loginCount"`
	TestCompleted      bool       `db:"test_completed"       json:"testCompleted"`
	TestCompletedAt    *time.Time `db:"test_completed_at"    json:"testCompletedAt,omitempty"`
	ReportGenerated    bool       `db:"report_generated"     json:"reportGenerated"`
	ReportGeneratedAt  *time.Time `db:"report_generated_at"  json:"reportGeneratedAt,omitempty"`
	ReportDownloaded   bool       `db:"report_downloaded"    json:"reportDownloaded"`
	ReportDownloadedAt *time.Time `db:"report_downloaded_at" json:"reportDownloadedAt,omitempty"`
	CreatedAt          time.Time  `db:"created_at"           json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at"           json:"updatedAt"`
}

type Report struct {
	ID                string          `db:"id"`
	UserID            string          `db:"user_id"`
	AssessmentID      *string         `db:"assessment_id"`
	AssessmentResult  json.RawMessage `db:"assessment_result"`
	PersonalityType   *string         `db:"personality_type"`
	CareerSuggestions json.RawMessage `db:"career_suggestions"`
	ReportData        json.RawMessage `db:"report_data"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// UserWithActivity is the admin listing row: profile columns joined
// with the activity table. Activity columns are nullable because the
// join is outer.
type UserWithActivity struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	BirthDate time.Time `db:"birth_date"`
	Phone     *string   `db:"phone"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`

	LastLogin          *time.Time `db:"last_login"`
	LoginCount         *int       `db:"login_count"`
	TestCompleted      *bool      `db:"test_completed"`
	TestCompletedAt    *time.Time `db:"test_completed_at"`
	ReportGenerated    *bool      `db:"report_generated"`
	ReportGeneratedAt  *time.Time `db:"report_generated_at"`
	ReportDownloaded   *bool      `db:"report_downloaded"`
	ReportDownloadedAt *time.Time `db:"report_downloaded_at"`
}

type RegistrationPoint struct {
	Date  time.Time `db:"date"`
	Count int       `db:"count"`
}
