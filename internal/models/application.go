package models

import "time"

// ApplicationStatus captures the review lifecycle of an internship application.
type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusUnderReview ApplicationStatus = "under_review"
	ApplicationStatusApproved    ApplicationStatus = "approved"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
)

// KnownApplicationStatus reports whether the value is one of the enum members.
// Transitions are deliberately not constrained beyond enum membership; any
// status may be set from any status, matching the admin review tooling.
func KnownApplicationStatus(s ApplicationStatus) bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusUnderReview,
		ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	default:
		return false
	}
}

// Application is a student's submission for a specific internship posting.
type Application struct {
	ID           string            `db:"id" json:"id"`
	StudentID    string            `db:"student_id" json:"studentId"`
	InternshipID string            `db:"internship_id" json:"internshipId"`
	CoverLetter  string            `db:"cover_letter" json:"coverLetter"`
	CVURL        string            `db:"cv_url" json:"cvUrl"`
	Status       ApplicationStatus `db:"status" json:"status"`
	Feedback     *string           `db:"feedback" json:"feedback,omitempty"`
	ReviewedBy   *string           `db:"reviewed_by" json:"reviewedBy,omitempty"`
	AppliedAt    time.Time         `db:"applied_at" json:"appliedAt"`
	ReviewedAt   *time.Time        `db:"reviewed_at" json:"reviewedAt,omitempty"`
}

// ApplicationFilter constrains listing queries.
type ApplicationFilter struct {
	StudentID    string
	InternshipID string
	Status       []ApplicationStatus
	Page         int
	PageSize     int
}

// BulkActionResult reports the outcome for one ID of a bulk status update.
type BulkActionResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
