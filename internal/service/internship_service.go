package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/S3lorm/internship-robot-sub000/internal/dto"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	"github.com/S3lorm/internship-robot-sub000/pkg/config"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
)

const internshipCachePrefix = "internships:list"

type internshipStore interface {
	Create(ctx context.Context, internship *models.Internship) error
	GetByID(ctx context.Context, id string) (*models.Internship, error)
	List(ctx context.Context, filter models.InternshipFilter) ([]models.Internship, int, error)
	Update(ctx context.Context, internship *models.Internship) error
	Delete(ctx context.Context, id string) error
}

type listingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// cachedListing is the Redis payload for one listing page.
type cachedListing struct {
	Items []models.Internship `json:"items"`
	Total int                 `json:"total"`
}

// InternshipService manages internship postings. Listing pages are served
// from Redis when enabled; every write invalidates the whole listing keyspace.
type InternshipService struct {
	store     internshipStore
	cache     listingCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.ListingsConfig
}

// NewInternshipService constructs the service.
func NewInternshipService(store internshipStore, cache listingCache, metrics *MetricsService,
	validate *validator.Validate, logger *zap.Logger, cfg config.ListingsConfig) *InternshipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InternshipService{store: store, cache: cache, metrics: metrics, validator: validate, logger: logger, cfg: cfg}
}

// Create posts a new internship.
func (s *InternshipService) Create(ctx context.Context, adminID string, req dto.CreateInternshipRequest) (*models.Internship, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid internship payload")
	}
	internship := &models.Internship{
		Title:       req.Title,
		CompanyName: req.CompanyName,
		Location:    req.Location,
		Description: req.Description,
		Slots:       req.Slots,
		Deadline:    req.Deadline,
		IsOpen:      req.IsOpen,
		CreatedBy:   adminID,
	}
	if err := s.store.Create(ctx, internship); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create internship")
	}
	s.invalidateListings(ctx)
	return internship, nil
}

// Get returns a single posting.
func (s *InternshipService) Get(ctx context.Context, id string) (*models.Internship, error) {
	internship, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "internship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load internship")
	}
	return internship, nil
}

// List returns postings matching the filter, consulting the cache first.
func (s *InternshipService) List(ctx context.Context, filter models.InternshipFilter) ([]models.Internship, models.Pagination, error) {
	key := listingCacheKey(filter)

	if s.cacheEnabled() {
		started := time.Now()
		var cached cachedListing
		err := s.cache.Get(ctx, key, &cached)
		s.metrics.RecordCacheOperation(err == nil, time.Since(started))
		if err == nil {
			return cached.Items, paginationFor(filter.Page, filter.PageSize, cached.Total), nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("listing cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	internships, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list internships")
	}
	if internships == nil {
		internships = []models.Internship{}
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, key, cachedListing{Items: internships, Total: total}, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("listing cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return internships, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Update overwrites a posting's mutable fields.
func (s *InternshipService) Update(ctx context.Context, id string, req dto.UpdateInternshipRequest) (*models.Internship, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid internship payload")
	}
	internship, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "internship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load internship")
	}

	internship.Title = req.Title
	internship.CompanyName = req.CompanyName
	internship.Location = req.Location
	internship.Description = req.Description
	internship.Slots = req.Slots
	internship.Deadline = req.Deadline
	internship.IsOpen = req.IsOpen

	if err := s.store.Update(ctx, internship); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update internship")
	}
	s.invalidateListings(ctx)
	return internship, nil
}

// Delete removes a posting.
func (s *InternshipService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "internship not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load internship")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete internship")
	}
	s.invalidateListings(ctx)
	return nil
}

func (s *InternshipService) cacheEnabled() bool {
	return s.cache != nil && s.cfg.CacheEnabled
}

func (s *InternshipService) invalidateListings(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, internshipCachePrefix+":*"); err != nil {
		s.logger.Warn("listing cache invalidation failed", zap.Error(err))
	}
}

func listingCacheKey(filter models.InternshipFilter) string {
	return fmt.Sprintf("%s:%d:%d:%s:%s:%t", internshipCachePrefix, filter.Page, filter.PageSize, filter.Search, filter.Location, filter.OpenOnly)
}
