package dto

import "github.com/S3lorm/internship-robot-sub000/internal/models"

// ApplyRequest payload for submitting an internship application.
type ApplyRequest struct {
	InternshipID string `json:"internshipId" validate:"required"`
	CoverLetter  string `json:"coverLetter"`
	CVURL        string `json:"cvUrl"`
}

// UpdateApplicationStatusRequest captures an admin review decision.
type UpdateApplicationStatusRequest struct {
	Status   models.ApplicationStatus `json:"status" validate:"required"`
	Feedback string                   `json:"feedback"`
}

// BulkActionRequest applies one review decision to a list of applications.
type BulkActionRequest struct {
	IDs      []string                 `json:"ids" validate:"required,min=1"`
	Status   models.ApplicationStatus `json:"status" validate:"required"`
	Feedback string                   `json:"feedback"`
}

// ApplicationQuery mirrors supported listing filters.
type ApplicationQuery struct {
	InternshipID string
	Status       []models.ApplicationStatus
	Page         int
	PageSize     int
}
