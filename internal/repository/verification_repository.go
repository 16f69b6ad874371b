package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/S3lorm/internship-robot-sub000/internal/models"
)

const verificationColumns = `id, reference_number, verification_code, document_type, document_id, content_hash, verification_count, generated_at`

// VerificationRepository persists document verification records.
type VerificationRepository struct {
	db *sqlx.DB
}

// NewVerificationRepository constructs the repository.
func NewVerificationRepository(db *sqlx.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Create inserts a verification record.
func (r *VerificationRepository) Create(ctx context.Context, record *models.VerificationRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.GeneratedAt.IsZero() {
		record.GeneratedAt = time.Now().UTC()
	}
	const query = `INSERT INTO verification_records (id, reference_number, verification_code, document_type, document_id, content_hash, verification_count, generated_at)
	VALUES (:id, :reference_number, :verification_code, :document_type, :document_id, :content_hash, :verification_count, :generated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create verification record: %w", err)
	}
	return nil
}

// FindByReferenceAndCode returns the record matching both keys. Callers treat
// every failure identically; the repository does not distinguish a wrong code
// from an unknown reference number.
func (r *VerificationRepository) FindByReferenceAndCode(ctx context.Context, referenceNumber, verificationCode string) (*models.VerificationRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM verification_records WHERE reference_number = $1 AND verification_code = $2 LIMIT 1`, verificationColumns)
	var record models.VerificationRecord
	if err := r.db.GetContext(ctx, &record, query, referenceNumber, verificationCode); err != nil {
		return nil, err
	}
	return &record, nil
}

// IncrementVerificationCount bumps the counter and returns the new value.
func (r *VerificationRepository) IncrementVerificationCount(ctx context.Context, id string) (int, error) {
	var count int
	const query = `UPDATE verification_records SET verification_count = verification_count + 1 WHERE id = $1 RETURNING verification_count`
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("increment verification count: %w", err)
	}
	return count, nil
}
