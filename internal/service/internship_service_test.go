package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/S3lorm/internship-robot-sub000/internal/dto"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	"github.com/S3lorm/internship-robot-sub000/pkg/config"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
)

type mockInternshipStore struct {
	internships map[string]*models.Internship
	listCalls   int
}

func (m *mockInternshipStore) Create(ctx context.Context, internship *models.Internship) error {
	if internship.ID == "" {
		internship.ID = "i-new"
	}
	if m.internships == nil {
		m.internships = make(map[string]*models.Internship)
	}
	m.internships[internship.ID] = internship
	return nil
}

func (m *mockInternshipStore) GetByID(ctx context.Context, id string) (*models.Internship, error) {
	internship, ok := m.internships[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *internship
	return &copied, nil
}

func (m *mockInternshipStore) List(ctx context.Context, filter models.InternshipFilter) ([]models.Internship, int, error) {
	m.listCalls++
	var out []models.Internship
	for _, internship := range m.internships {
		out = append(out, *internship)
	}
	return out, len(out), nil
}

func (m *mockInternshipStore) Update(ctx context.Context, internship *models.Internship) error {
	m.internships[internship.ID] = internship
	return nil
}

func (m *mockInternshipStore) Delete(ctx context.Context, id string) error {
	delete(m.internships, id)
	return nil
}

type mapCache struct {
	entries     map[string][]byte
	invalidated int
}

func (c *mapCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.entries == nil {
		c.entries = make(map[string][]byte)
	}
	c.entries[key] = raw
	return nil
}

func (c *mapCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.invalidated++
	c.entries = make(map[string][]byte)
	return nil
}

func newInternshipFixture(store *mockInternshipStore, cache *mapCache) *InternshipService {
	return NewInternshipService(store, cache, nil, validator.New(), zap.NewNop(),
		config.ListingsConfig{CacheEnabled: true, CacheTTL: time.Minute})
}

func TestInternshipServiceListPopulatesCache(t *testing.T) {
	store := &mockInternshipStore{internships: map[string]*models.Internship{
		"i1": {ID: "i1", Title: "Backend Intern", CompanyName: "Acme", IsOpen: true},
	}}
	cache := &mapCache{}
	svc := newInternshipFixture(store, cache)

	items, pagination, err := svc.List(context.Background(), models.InternshipFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 1, store.listCalls)
	assert.Len(t, cache.entries, 1)

	// second read is served from cache
	items, _, err = svc.List(context.Background(), models.InternshipFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, store.listCalls)
}

func TestInternshipServiceWritesInvalidateListingCache(t *testing.T) {
	store := &mockInternshipStore{internships: map[string]*models.Internship{}}
	cache := &mapCache{entries: map[string][]byte{"internships:list:1:20:::false": []byte(`{}`)}}
	svc := newInternshipFixture(store, cache)

	created, err := svc.Create(context.Background(), "admin-1", dto.CreateInternshipRequest{
		Title:       "Backend Intern",
		CompanyName: "Acme",
		Slots:       2,
		IsOpen:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	_, err = svc.Update(context.Background(), created.ID, dto.UpdateInternshipRequest{
		Title:       "Backend Intern II",
		CompanyName: "Acme",
		Slots:       3,
		IsOpen:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.invalidated)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Equal(t, 3, cache.invalidated)
}

func TestInternshipServiceGetNotFound(t *testing.T) {
	svc := newInternshipFixture(&mockInternshipStore{}, &mapCache{})

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
