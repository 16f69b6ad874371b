package dto

import "time"

// CreateEvaluationRequest payload for registering a student evaluation.
type CreateEvaluationRequest struct {
	StudentID              string     `json:"studentId" validate:"required"`
	InternshipID           *string    `json:"internshipId"`
	Feedback               string     `json:"feedback"`
	RequiresAcknowledgment bool       `json:"requiresAcknowledgment"`
	Deadline               *time.Time `json:"deadline"`
}
