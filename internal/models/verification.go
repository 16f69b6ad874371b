package models

import "time"

// VerificationRecord allows third parties to confirm a generated document's
// authenticity. The content hash is the SHA-256 digest of the rendered bytes.
type VerificationRecord struct {
	ID                string    `db:"id" json:"id"`
	ReferenceNumber   string    `db:"reference_number" json:"referenceNumber"`
	VerificationCode  string    `db:"verification_code" json:"verificationCode"`
	DocumentType      string    `db:"document_type" json:"documentType"`
	DocumentID        string    `db:"document_id" json:"documentId"`
	ContentHash       string    `db:"content_hash" json:"contentHash"`
	VerificationCount int       `db:"verification_count" json:"verificationCount"`
	GeneratedAt       time.Time `db:"generated_at" json:"generatedAt"`
}

// VerificationResult is returned on every verify call. Lookup misses always
// produce the same generic shape so callers cannot distinguish a wrong code
// from an unknown reference number.
type VerificationResult struct {
	IsValid           bool       `json:"isValid"`
	Message           string     `json:"message"`
	DocumentType      string     `json:"documentType,omitempty"`
	DocumentID        string     `json:"documentId,omitempty"`
	GeneratedAt       *time.Time `json:"generatedAt,omitempty"`
	VerificationCount int        `json:"verificationCount,omitempty"`
}
