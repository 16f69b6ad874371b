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

const applicationColumns = `id, student_id, internship_id, cover_letter, cv_url, status, feedback, reviewed_by, applied_at, reviewed_at`

// ApplicationRepository persists internship applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application row.
func (r *ApplicationRepository) Create(ctx context.Context, application *models.Application) error {
	if application.ID == "" {
		application.ID = uuid.NewString()
	}
	if application.Status == "" {
		application.Status = models.ApplicationStatusPending
	}
	if application.AppliedAt.IsZero() {
		application.AppliedAt = time.Now().UTC()
	}
	const query = `INSERT INTO applications (id, student_id, internship_id, cover_letter, cv_url, status, feedback, reviewed_by, applied_at, reviewed_at)
	VALUES (:id, :student_id, :internship_id, :cover_letter, :cv_url, :status, :feedback, :reviewed_by, :applied_at, :reviewed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, application); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// GetByID fetches an application by identifier.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1`, applicationColumns)
	var application models.Application
	if err := r.db.GetContext(ctx, &application, query, id); err != nil {
		return nil, err
	}
	return &application, nil
}

// GetByStudentAndInternship returns the existing application for a
// (student, internship) pair, enforcing the one-application invariant.
func (r *ApplicationRepository) GetByStudentAndInternship(ctx context.Context, studentID, internshipID string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE student_id = $1 AND internship_id = $2 LIMIT 1`, applicationColumns)
	var application models.Application
	if err := r.db.GetContext(ctx, &application, query, studentID, internshipID); err != nil {
		return nil, err
	}
	return &application, nil
}

// List returns applications matching the filter (latest first) with a total count.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	baseQuery := `FROM applications WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.InternshipID != "" {
		conditions = append(conditions, fmt.Sprintf("internship_id = $%d", len(args)+1))
		args = append(args, filter.InternshipID)
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY applied_at DESC LIMIT %d OFFSET %d", applicationColumns, baseQuery, pageSize, offset)

	var applications []models.Application
	if err := r.db.SelectContext(ctx, &applications, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	return applications, total, nil
}

// UpdateApplicationParams groups the columns mutated by a review decision.
type UpdateApplicationParams struct {
	ID         string
	Status     models.ApplicationStatus
	Feedback   *string
	ReviewedBy string
	ReviewedAt time.Time
}

// UpdateStatus persists a review outcome. There is no guard on the current
// status: any status may be overwritten, including terminal ones.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, params UpdateApplicationParams) error {
	const query = `UPDATE applications SET status = :status, feedback = :feedback, reviewed_by = :reviewed_by, reviewed_at = :reviewed_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":          params.ID,
		"status":      params.Status,
		"feedback":    params.Feedback,
		"reviewed_by": params.ReviewedBy,
		"reviewed_at": params.ReviewedAt,
	})
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check application update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListPending returns applications awaiting review, oldest first. Used by the
// reminder sweep.
func (r *ApplicationRepository) ListPending(ctx context.Context, limit int) ([]models.Application, error) {
	if limit <= 0 || limit > 1000 {
		limit = 500
	}
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE status IN ($1, $2) ORDER BY applied_at ASC LIMIT %d`, applicationColumns, limit)
	var applications []models.Application
	if err := r.db.SelectContext(ctx, &applications, query, models.ApplicationStatusPending, models.ApplicationStatusUnderReview); err != nil {
		return nil, fmt.Errorf("list pending applications: %w", err)
	}
	return applications, nil
}
