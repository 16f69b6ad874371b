package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/S3lorm/internship-robot-sub000/internal/models"
)

const letterColumns = `id, student_id, company_name, purpose, internship_duration, status, admin_notes,
       reference_number, verification_code, pdf_url, pdf_generated_at, download_count, email_sent,
       reviewed_by, reviewed_at, created_at`

// LetterRepository persists recommendation letter requests.
type LetterRepository struct {
	db *sqlx.DB
}

// NewLetterRepository constructs the repository.
func NewLetterRepository(db *sqlx.DB) *LetterRepository {
	return &LetterRepository{db: db}
}

// Create inserts a new letter request row.
func (r *LetterRepository) Create(ctx context.Context, request *models.LetterRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.LetterRequestStatusPending
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO letter_requests
	(id, student_id, company_name, purpose, internship_duration, status, admin_notes, reference_number,
	 verification_code, pdf_url, pdf_generated_at, download_count, email_sent, reviewed_by, reviewed_at, created_at)
	VALUES (:id, :student_id, :company_name, :purpose, :internship_duration, :status, :admin_notes, :reference_number,
	 :verification_code, :pdf_url, :pdf_generated_at, :download_count, :email_sent, :reviewed_by, :reviewed_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create letter request: %w", err)
	}
	return nil
}

// GetByID fetches a letter request by identifier.
func (r *LetterRepository) GetByID(ctx context.Context, id string) (*models.LetterRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM letter_requests WHERE id = $1`, letterColumns)
	var request models.LetterRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns letter requests matching the filter (latest first) with a total count.
func (r *LetterRepository) List(ctx context.Context, filter models.LetterRequestFilter) ([]models.LetterRequest, int, error) {
	baseQuery := `FROM letter_requests WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", letterColumns, baseQuery, pageSize, offset)

	var requests []models.LetterRequest
	if err := r.db.SelectContext(ctx, &requests, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list letter requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count letter requests: %w", err)
	}

	return requests, total, nil
}

// UpdateLetterStatusParams groups the columns mutated by a review decision.
type UpdateLetterStatusParams struct {
	ID         string
	Status     models.LetterRequestStatus
	AdminNotes *string
	ReviewedBy string
	ReviewedAt time.Time
}

// UpdateStatus persists a review outcome.
func (r *LetterRepository) UpdateStatus(ctx context.Context, params UpdateLetterStatusParams) error {
	const query = `UPDATE letter_requests SET status = :status, admin_notes = :admin_notes, reviewed_by = :reviewed_by, reviewed_at = :reviewed_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":          params.ID,
		"status":      params.Status,
		"admin_notes": params.AdminNotes,
		"reviewed_by": params.ReviewedBy,
		"reviewed_at": params.ReviewedAt,
	})
	if err != nil {
		return fmt.Errorf("update letter request status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check letter update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AttachDocumentParams groups the write-once document reference columns.
type AttachDocumentParams struct {
	ID               string
	ReferenceNumber  string
	VerificationCode string
	PDFURL           string
	PDFGeneratedAt   time.Time
}

// AttachDocument records the generated document reference. The pdf_url guard
// makes the write idempotent: a request that already carries a document is
// left untouched and sql.ErrNoRows is returned.
func (r *LetterRepository) AttachDocument(ctx context.Context, params AttachDocumentParams) error {
	const query = `UPDATE letter_requests
	SET reference_number = :reference_number, verification_code = :verification_code,
	    pdf_url = :pdf_url, pdf_generated_at = :pdf_generated_at
	WHERE id = :id AND pdf_url IS NULL`
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":                params.ID,
		"reference_number":  params.ReferenceNumber,
		"verification_code": params.VerificationCode,
		"pdf_url":           params.PDFURL,
		"pdf_generated_at":  params.PDFGeneratedAt,
	})
	if err != nil {
		return fmt.Errorf("attach letter document: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check attach document rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkEmailSent flips email_sent after a successful delivery.
func (r *LetterRepository) MarkEmailSent(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE letter_requests SET email_sent = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark letter email sent: %w", err)
	}
	return nil
}

// IncrementDownloadCount bumps the counter and returns the new value. Every
// successful fetch increments; downloads are deliberately not idempotent.
func (r *LetterRepository) IncrementDownloadCount(ctx context.Context, id string) (int, error) {
	var count int
	const query = `UPDATE letter_requests SET download_count = download_count + 1 WHERE id = $1 RETURNING download_count`
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("increment download count: %w", err)
	}
	return count, nil
}

// CreateTransmission logs a successful letter download.
func (r *LetterRepository) CreateTransmission(ctx context.Context, transmission *models.LetterTransmission) error {
	if transmission.ID == "" {
		transmission.ID = uuid.NewString()
	}
	if transmission.CreatedAt.IsZero() {
		transmission.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO letter_transmissions (id, request_id, downloaded_by, ip_address, user_agent, created_at)
	VALUES (:id, :request_id, :downloaded_by, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, transmission); err != nil {
		return fmt.Errorf("create letter transmission: %w", err)
	}
	return nil
}
