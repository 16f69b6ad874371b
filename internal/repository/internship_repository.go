package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/S3lorm/internship-robot-sub000/internal/models"
)

const internshipColumns = `id, title, company_name, location, description, slots, deadline, is_open, created_by, created_at, updated_at`

// InternshipRepository provides database access for internship postings.
type InternshipRepository struct {
	db *sqlx.DB
}

// NewInternshipRepository creates the repository.
func NewInternshipRepository(db *sqlx.DB) *InternshipRepository {
	return &InternshipRepository{db: db}
}

// Create inserts a new posting.
func (r *InternshipRepository) Create(ctx context.Context, internship *models.Internship) error {
	if internship.ID == "" {
		internship.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if internship.CreatedAt.IsZero() {
		internship.CreatedAt = now
	}
	internship.UpdatedAt = now

	const query = `INSERT INTO internships (id, title, company_name, location, description, slots, deadline, is_open, created_by, created_at, updated_at)
	VALUES (:id, :title, :company_name, :location, :description, :slots, :deadline, :is_open, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, internship); err != nil {
		return fmt.Errorf("create internship: %w", err)
	}
	return nil
}

// GetByID fetches a posting by identifier.
func (r *InternshipRepository) GetByID(ctx context.Context, id string) (*models.Internship, error) {
	query := fmt.Sprintf(`SELECT %s FROM internships WHERE id = $1`, internshipColumns)
	var internship models.Internship
	if err := r.db.GetContext(ctx, &internship, query, id); err != nil {
		return nil, err
	}
	return &internship, nil
}

// List returns postings matching the filter with a total count.
func (r *InternshipRepository) List(ctx context.Context, filter models.InternshipFilter) ([]models.Internship, int, error) {
	baseQuery := `FROM internships WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.OpenOnly {
		conditions = append(conditions, "is_open = TRUE")
	}
	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(location) = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.Location))
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(company_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", internshipColumns, baseQuery, pageSize, offset)

	var internships []models.Internship
	if err := r.db.SelectContext(ctx, &internships, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list internships: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count internships: %w", err)
	}

	return internships, total, nil
}

// Update overwrites the mutable fields of a posting.
func (r *InternshipRepository) Update(ctx context.Context, internship *models.Internship) error {
	internship.UpdatedAt = time.Now().UTC()
	const query = `UPDATE internships SET title = :title, company_name = :company_name, location = :location,
	description = :description, slots = :slots, deadline = :deadline, is_open = :is_open, updated_at = :updated_at
	WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, internship); err != nil {
		return fmt.Errorf("update internship: %w", err)
	}
	return nil
}

// Delete removes a posting.
func (r *InternshipRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM internships WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete internship: %w", err)
	}
	return nil
}
