package models

import "time"

// Evaluation is an admin-entered assessment released to a student, with an
// optional acknowledgment requirement. viewed_at and feedback_acknowledged_at
// are write-once fields.
type Evaluation struct {
	ID                      string     `db:"id" json:"id"`
	StudentID               string     `db:"student_id" json:"studentId"`
	InternshipID            *string    `db:"internship_id" json:"internshipId,omitempty"`
	Feedback                *string    `db:"feedback" json:"feedback,omitempty"`
	IsAvailable             bool       `db:"is_available" json:"isAvailable"`
	RequiresAcknowledgment  bool       `db:"requires_acknowledgment" json:"requiresAcknowledgment"`
	Deadline                *time.Time `db:"deadline" json:"deadline,omitempty"`
	ViewedAt                *time.Time `db:"viewed_at" json:"viewedAt,omitempty"`
	FeedbackAcknowledgedAt  *time.Time `db:"feedback_acknowledged_at" json:"feedbackAcknowledgedAt,omitempty"`
	CreatedBy               string     `db:"created_by" json:"createdBy"`
	CreatedAt               time.Time  `db:"created_at" json:"createdAt"`
}

// EvaluationFilter constrains listing queries.
type EvaluationFilter struct {
	StudentID     string
	AvailableOnly bool
	Page          int
	PageSize      int
}
