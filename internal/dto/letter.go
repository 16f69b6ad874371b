package dto

import "github.com/S3lorm/internship-robot-sub000/internal/models"

// CreateLetterRequest payload for requesting a recommendation letter.
type CreateLetterRequest struct {
	CompanyName        string `json:"companyName" validate:"required"`
	Purpose            string `json:"purpose" validate:"required"`
	InternshipDuration string `json:"internshipDuration" validate:"required"`
}

// UpdateLetterStatusRequest captures an admin review decision. SendEmail nil
// means "send"; only an explicit false suppresses the approval email.
type UpdateLetterStatusRequest struct {
	Status     models.LetterRequestStatus `json:"status" validate:"required"`
	AdminNotes string                     `json:"adminNotes"`
	SendEmail  *bool                      `json:"sendEmail"`
}

// LetterRequestQuery mirrors supported listing filters.
type LetterRequestQuery struct {
	Status   []models.LetterRequestStatus
	Page     int
	PageSize int
}
