package models

import "time"

// LetterRequestStatus captures the review lifecycle of a letter request.
type LetterRequestStatus string

const (
	LetterRequestStatusPending  LetterRequestStatus = "pending"
	LetterRequestStatusApproved LetterRequestStatus = "approved"
	LetterRequestStatusRejected LetterRequestStatus = "rejected"
)

// KnownLetterRequestStatus reports whether the value is one of the enum members.
func KnownLetterRequestStatus(s LetterRequestStatus) bool {
	switch s {
	case LetterRequestStatusPending, LetterRequestStatusApproved, LetterRequestStatusRejected:
		return true
	default:
		return false
	}
}

// LetterRequest is a student's ask for an official recommendation letter
// addressed to a company. Document fields are populated once, on the first
// transition into approved.
type LetterRequest struct {
	ID                 string              `db:"id" json:"id"`
	StudentID          string              `db:"student_id" json:"studentId"`
	CompanyName        string              `db:"company_name" json:"companyName"`
	Purpose            string              `db:"purpose" json:"purpose"`
	InternshipDuration string              `db:"internship_duration" json:"internshipDuration"`
	Status             LetterRequestStatus `db:"status" json:"status"`
	AdminNotes         *string             `db:"admin_notes" json:"adminNotes,omitempty"`
	ReferenceNumber    *string             `db:"reference_number" json:"referenceNumber,omitempty"`
	VerificationCode   *string             `db:"verification_code" json:"verificationCode,omitempty"`
	PDFURL             *string             `db:"pdf_url" json:"pdfUrl,omitempty"`
	PDFGeneratedAt     *time.Time          `db:"pdf_generated_at" json:"pdfGeneratedAt,omitempty"`
	DownloadCount      int                 `db:"download_count" json:"downloadCount"`
	EmailSent          bool                `db:"email_sent" json:"emailSent"`
	ReviewedBy         *string             `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt         *time.Time          `db:"reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt          time.Time           `db:"created_at" json:"createdAt"`
}

// LetterRequestFilter constrains listing queries.
type LetterRequestFilter struct {
	StudentID string
	Status    []LetterRequestStatus
	Page      int
	PageSize  int
}

// LetterTransmission logs one successful download of a generated letter.
type LetterTransmission struct {
	ID           string    `db:"id" json:"id"`
	RequestID    string    `db:"request_id" json:"requestId"`
	DownloadedBy string    `db:"downloaded_by" json:"downloadedBy"`
	IPAddress    string    `db:"ip_address" json:"ipAddress"`
	UserAgent    string    `db:"user_agent" json:"userAgent"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
