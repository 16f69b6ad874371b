package dto

import "time"

// CreateInternshipRequest payload for posting an internship.
type CreateInternshipRequest struct {
	Title       string     `json:"title" validate:"required"`
	CompanyName string     `json:"companyName" validate:"required"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Slots       int        `json:"slots" validate:"gte=0"`
	Deadline    *time.Time `json:"deadline"`
	IsOpen      bool       `json:"isOpen"`
}

// UpdateInternshipRequest payload for editing an internship posting.
type UpdateInternshipRequest struct {
	Title       string     `json:"title" validate:"required"`
	CompanyName string     `json:"companyName" validate:"required"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Slots       int        `json:"slots" validate:"gte=0"`
	Deadline    *time.Time `json:"deadline"`
	IsOpen      bool       `json:"isOpen"`
}

// VerifyDocumentRequest payload for third-party document verification.
type VerifyDocumentRequest struct {
	ReferenceNumber  string `json:"referenceNumber" validate:"required"`
	VerificationCode string `json:"verificationCode" validate:"required"`
}
