package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/S3lorm/internship-robot-sub000/internal/dto"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
)

type mockVerificationStore struct {
	record     *models.VerificationRecord
	increments int
}

func (m *mockVerificationStore) FindByReferenceAndCode(ctx context.Context, referenceNumber, verificationCode string) (*models.VerificationRecord, error) {
	if m.record == nil || m.record.ReferenceNumber != referenceNumber || m.record.VerificationCode != verificationCode {
		return nil, sql.ErrNoRows
	}
	return m.record, nil
}

func (m *mockVerificationStore) IncrementVerificationCount(ctx context.Context, id string) (int, error) {
	m.increments++
	return m.record.VerificationCount + m.increments, nil
}

func TestVerificationServiceValidDocument(t *testing.T) {
	store := &mockVerificationStore{record: &models.VerificationRecord{
		ID:               "vr1",
		ReferenceNumber:  "LTR-2026-ABCD1234",
		VerificationCode: "1A2B3C4D",
		DocumentType:     "recommendation_letter",
		DocumentID:       "lr1",
		GeneratedAt:      time.Now().UTC(),
	}}
	svc := NewVerificationService(store, nil, validator.New(), zap.NewNop())

	result, err := svc.Verify(context.Background(), dto.VerifyDocumentRequest{
		ReferenceNumber:  "LTR-2026-ABCD1234",
		VerificationCode: "1A2B3C4D",
	})
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, "lr1", result.DocumentID)
	assert.Equal(t, 1, result.VerificationCount)
	assert.Equal(t, 1, store.increments)
}

func TestVerificationServiceMissIsGeneric(t *testing.T) {
	store := &mockVerificationStore{record: &models.VerificationRecord{
		ID:               "vr1",
		ReferenceNumber:  "LTR-2026-ABCD1234",
		VerificationCode: "1A2B3C4D",
	}}
	svc := NewVerificationService(store, nil, validator.New(), zap.NewNop())

	wrongCode, err := svc.Verify(context.Background(), dto.VerifyDocumentRequest{
		ReferenceNumber:  "LTR-2026-ABCD1234",
		VerificationCode: "WRONG000",
	})
	require.NoError(t, err)

	unknownRef, err := svc.Verify(context.Background(), dto.VerifyDocumentRequest{
		ReferenceNumber:  "LTR-2026-NOPE0000",
		VerificationCode: "1A2B3C4D",
	})
	require.NoError(t, err)

	// a wrong code and an unknown reference are indistinguishable
	assert.Equal(t, wrongCode, unknownRef)
	assert.False(t, wrongCode.IsValid)
	assert.Equal(t, invalidDocumentMessage, wrongCode.Message)
	assert.Empty(t, wrongCode.DocumentID)
	assert.Equal(t, 0, store.increments)
}

func TestVerificationServiceRejectsEmptyPayload(t *testing.T) {
	svc := NewVerificationService(&mockVerificationStore{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Verify(context.Background(), dto.VerifyDocumentRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
