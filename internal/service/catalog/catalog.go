package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/logger"
	"github.com/tanoush/storefront/internal/models"
	"github.com/tanoush/storefront/internal/repository"
)

const (
	DefaultFilterCacheTTL = 5 * time.Minute

	maxNameLength        = 200
	maxDescriptionLength = 2000
)

type CatalogService struct {
	products repository.ProductRepo

	// Optional. Filter options are read from the store every time if not set
	cache    repository.FilterCache
	cacheTTL time.Duration

	logger logger.Logger
}

func NewService(products repository.ProductRepo, cache repository.FilterCache, cacheTTL time.Duration, l logger.Logger) *CatalogService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultFilterCacheTTL
	}
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &CatalogService{
		products: products,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   l,
	}
}

func (s *CatalogService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	filter.Category = strings.ToLower(strings.TrimSpace(filter.Category))
	switch filter.SortBy {
	case models.SortPriceAsc, models.SortPriceDesc, models.SortNameAsc, models.SortNameDesc, models.SortNewest:
	default:
		filter.SortBy = models.SortNewest
	}

	return s.products.ListProducts(ctx, filter)
}

func (s *CatalogService) Get(ctx context.Context, id uuid.UUID) (models.Product, error) {
	return s.products.GetProduct(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, p models.Product) (models.Product, error) {
	normalize(&p)
	if err := validate(p); err != nil {
		return models.Product{}, err
	}

	created, err := s.products.CreateProduct(ctx, p)
	if err != nil {
		return created, fmt.Errorf("can't create product. Err: %w", err)
	}

	s.invalidate(ctx)
	return created, nil
}

// Update applies patch to the stored product and validates the result as a whole
func (s *CatalogService) Update(ctx context.Context, id uuid.UUID, patch models.ProductPatch) (models.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return p, err
	}

	patch.Apply(&p)
	normalize(&p)
	if err := validate(p); err != nil {
		return models.Product{}, err
	}

	updated, err := s.products.UpdateProduct(ctx, p)
	if err != nil {
		return updated, err
	}

	s.invalidate(ctx)
	return updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// FilterOptions returns distinct brands, colors, sizes and the price range of the catalog
// Cache failures are logged and never fail the request
func (s *CatalogService) FilterOptions(ctx context.Context) (models.FilterOptions, error) {
	if s.cache != nil {
		opts, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.logger.Warn("filter options cache read failed", "error", err)
		case ok:
			return opts, nil
		}
	}

	opts, err := s.products.FilterOptions(ctx)
	if err != nil {
		return opts, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, opts, s.cacheTTL); err != nil {
			s.logger.Warn("filter options cache write failed", "error", err)
		}
	}
	return opts, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("filter options cache invalidation failed", "error", err)
	}
}

func normalize(p *models.Product) {
	p.Name = strings.TrimSpace(p.Name)
	p.Brand = strings.TrimSpace(p.Brand)
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
}

func validate(p models.Product) error {
	var details []string
	check := func(ok bool, msg string) {
		if !ok {
			details = append(details, msg)
		}
	}

	check(p.Name != "", "Product name is required")
	check(utf8.RuneCountInString(p.Name) <= maxNameLength, "Product name cannot exceed 200 characters")
	check(p.Description != "", "Product description is required")
	check(utf8.RuneCountInString(p.Description) <= maxDescriptionLength, "Description cannot exceed 2000 characters")
	check(!p.Price.IsNegative(), "Price cannot be negative")
	check(models.IsCategory(p.Category), fmt.Sprintf("Category %q is not allowed", p.Category))
	check(p.Brand != "", "Product brand is required")
	check(p.Stock >= 0, "Stock cannot be negative")
	check(len(p.Images) <= models.MaxProductImages, "Cannot have more than 10 images")

	if len(details) == 0 {
		return nil
	}
	return &apperrors.DetailedError{Err: apperrors.ErrProductInvalid, Details: details}
}
