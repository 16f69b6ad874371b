package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/S3lorm/internship-robot-sub000/internal/models"
)

func newEvaluationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEvaluationRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newEvaluationRepoMock(t)
	defer cleanup()

	repo := NewEvaluationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO evaluations")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	internshipID := "intern-1"
	feedback := "solid work"
	evaluation := &models.Evaluation{
		StudentID:    "student-1",
		InternshipID: &internshipID,
		Feedback:     &feedback,
		CreatedBy:    "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), evaluation))
	require.NotEmpty(t, evaluation.ID)
	require.False(t, evaluation.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryMarkViewedOnce(t *testing.T) {
	db, mock, cleanup := newEvaluationRepoMock(t)
	defer cleanup()

	repo := NewEvaluationRepository(db)
	ts := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE evaluations SET viewed_at")).
		WithArgs("ev-1", ts).
		WillReturnResult(sqlmock.NewResult(0, 1))
	stamped, err := repo.MarkViewed(context.Background(), "ev-1", ts)
	require.NoError(t, err)
	require.True(t, stamped)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE evaluations SET viewed_at")).
		WithArgs("ev-1", ts).
		WillReturnResult(sqlmock.NewResult(0, 0))
	stamped, err = repo.MarkViewed(context.Background(), "ev-1", ts)
	require.NoError(t, err)
	require.False(t, stamped)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryReleaseReportsFirstFlip(t *testing.T) {
	db, mock, cleanup := newEvaluationRepoMock(t)
	defer cleanup()

	repo := NewEvaluationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE evaluations SET is_available = TRUE")).
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	released, err := repo.Release(context.Background(), "ev-1")
	require.NoError(t, err)
	require.True(t, released)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE evaluations SET is_available = TRUE")).
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	released, err = repo.Release(context.Background(), "ev-1")
	require.NoError(t, err)
	require.False(t, released)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryListPendingAcknowledgment(t *testing.T) {
	db, mock, cleanup := newEvaluationRepoMock(t)
	defer cleanup()

	repo := NewEvaluationRepository(db)
	deadline := time.Now().Add(72 * time.Hour)
	rows := sqlmock.NewRows([]string{"id", "student_id", "internship_id", "feedback", "is_available", "requires_acknowledgment",
		"deadline", "viewed_at", "feedback_acknowledged_at", "created_by", "created_at"}).
		AddRow("ev-1", "student-1", "intern-1", "solid work", true, true, deadline, nil, nil, "admin-1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("feedback_acknowledged_at IS NULL AND deadline IS NOT NULL")).
		WillReturnRows(rows)

	pending, err := repo.ListPendingAcknowledgment(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "ev-1", pending[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
