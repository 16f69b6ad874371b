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

const evaluationColumns = `id, student_id, internship_id, feedback, is_available, requires_acknowledgment,
       deadline, viewed_at, feedback_acknowledged_at, created_by, created_at`

// EvaluationRepository persists student evaluations.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository constructs the repository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// Create inserts a new evaluation row. is_available defaults to false until an
// admin releases it.
func (r *EvaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	if evaluation.ID == "" {
		evaluation.ID = uuid.NewString()
	}
	if evaluation.CreatedAt.IsZero() {
		evaluation.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO evaluations
	(id, student_id, internship_id, feedback, is_available, requires_acknowledgment, deadline, viewed_at, feedback_acknowledged_at, created_by, created_at)
	VALUES (:id, :student_id, :internship_id, :feedback, :is_available, :requires_acknowledgment, :deadline, :viewed_at, :feedback_acknowledged_at, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, evaluation); err != nil {
		return fmt.Errorf("create evaluation: %w", err)
	}
	return nil
}

// GetByID fetches an evaluation by identifier.
func (r *EvaluationRepository) GetByID(ctx context.Context, id string) (*models.Evaluation, error) {
	query := fmt.Sprintf(`SELECT %s FROM evaluations WHERE id = $1`, evaluationColumns)
	var evaluation models.Evaluation
	if err := r.db.GetContext(ctx, &evaluation, query, id); err != nil {
		return nil, err
	}
	return &evaluation, nil
}

// List returns evaluations matching the filter (latest first) with a total count.
func (r *EvaluationRepository) List(ctx context.Context, filter models.EvaluationFilter) ([]models.Evaluation, int, error) {
	baseQuery := `FROM evaluations WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.AvailableOnly {
		conditions = append(conditions, "is_available = TRUE")
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", evaluationColumns, baseQuery, pageSize, offset)

	var evaluations []models.Evaluation
	if err := r.db.SelectContext(ctx, &evaluations, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list evaluations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count evaluations: %w", err)
	}

	return evaluations, total, nil
}

// Release flips is_available so the student can see the evaluation.
func (r *EvaluationRepository) Release(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE evaluations SET is_available = TRUE WHERE id = $1 AND is_available = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("release evaluation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check release rows: %w", err)
	}
	return rows > 0, nil
}

// MarkViewed stamps viewed_at once. The guard in SQL makes repeated calls
// no-ops, including under concurrent requests; the bool reports whether this
// call performed the write.
func (r *EvaluationRepository) MarkViewed(ctx context.Context, id string, ts time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE evaluations SET viewed_at = $2 WHERE id = $1 AND viewed_at IS NULL`, id, ts)
	if err != nil {
		return false, fmt.Errorf("mark evaluation viewed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check viewed rows: %w", err)
	}
	return rows > 0, nil
}

// Acknowledge stamps feedback_acknowledged_at once, same contract as MarkViewed.
func (r *EvaluationRepository) Acknowledge(ctx context.Context, id string, ts time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE evaluations SET feedback_acknowledged_at = $2 WHERE id = $1 AND feedback_acknowledged_at IS NULL`, id, ts)
	if err != nil {
		return false, fmt.Errorf("acknowledge evaluation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check acknowledge rows: %w", err)
	}
	return rows > 0, nil
}

// ListPendingAcknowledgment returns released evaluations still awaiting
// acknowledgment with a deadline set. Used by the reminder sweep.
func (r *EvaluationRepository) ListPendingAcknowledgment(ctx context.Context, limit int) ([]models.Evaluation, error) {
	if limit <= 0 || limit > 1000 {
		limit = 500
	}
	query := fmt.Sprintf(`SELECT %s FROM evaluations
	WHERE is_available = TRUE AND requires_acknowledgment = TRUE AND feedback_acknowledged_at IS NULL AND deadline IS NOT NULL
	ORDER BY deadline ASC LIMIT %d`, evaluationColumns, limit)
	var evaluations []models.Evaluation
	if err := r.db.SelectContext(ctx, &evaluations, query); err != nil {
		return nil, fmt.Errorf("list pending acknowledgments: %w", err)
	}
	return evaluations, nil
}
