package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/models"
)

// ProductRepo keeps catalog in memory
type ProductRepo struct {
	mu       sync.RWMutex
	products map[uuid.UUID]models.Product

	// Invoked after a product removed, wishlist uses it to cascade
	onDelete func(id uuid.UUID)
}

func NewProductRepo() *ProductRepo {
	return &ProductRepo{products: make(map[uuid.UUID]models.Product)}
}

func (r *ProductRepo) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if err := ctx.Err(); err != nil {
		return models.Product{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = p.CreatedAt
	p = copyProduct(p)
	r.products[p.ID] = p

	return copyProduct(p), nil
}

func (r *ProductRepo) GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return models.Product{}, apperrors.ErrProductNotFound
	}
	return copyProduct(p), nil
}

func (r *ProductRepo) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[p.ID]
	if !ok {
		return models.Product{}, apperrors.ErrProductNotFound
	}

	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = time.Now()
	p = copyProduct(p)
	r.products[p.ID] = p

	return copyProduct(p), nil
}

func (r *ProductRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	_, ok := r.products[id]
	delete(r.products, id)
	onDelete := r.onDelete
	r.mu.Unlock()

	if !ok {
		return apperrors.ErrProductNotFound
	}
	if onDelete != nil {
		onDelete(id)
	}
	return nil
}

func (r *ProductRepo) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if matches(p, filter) {
			products = append(products, copyProduct(p))
		}
	}

	slices.SortFunc(products, func(a, b models.Product) int {
		var c int
		switch filter.SortBy {
		case models.SortPriceAsc:
			c = a.Price.Cmp(b.Price)
		case models.SortPriceDesc:
			c = b.Price.Cmp(a.Price)
		case models.SortNameAsc:
			c = cmp.Compare(a.Name, b.Name)
		case models.SortNameDesc:
			c = cmp.Compare(b.Name, a.Name)
		default:
			c = b.CreatedAt.Compare(a.CreatedAt)
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	return products, nil
}

func (r *ProductRepo) FilterOptions(ctx context.Context) (models.FilterOptions, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := models.FilterOptions{Brands: []string{}, Colors: []string{}, Sizes: []string{}}
	first := true
	for _, p := range r.products {
		opts.Brands = append(opts.Brands, p.Brand)
		opts.Colors = append(opts.Colors, p.Colors...)
		opts.Sizes = append(opts.Sizes, p.Sizes...)

		if first {
			opts.MinPrice, opts.MaxPrice = p.Price, p.Price
			first = false
			continue
		}
		opts.MinPrice = decimal.Min(opts.MinPrice, p.Price)
		opts.MaxPrice = decimal.Max(opts.MaxPrice, p.Price)
	}

	for _, values := range []*[]string{&opts.Brands, &opts.Colors, &opts.Sizes} {
		slices.Sort(*values)
		*values = slices.Compact(*values)
	}
	return opts, nil
}

func matches(p models.Product, f models.ProductFilter) bool {
	overlaps := func(have []string, want []string) bool {
		return slices.ContainsFunc(want, func(v string) bool { return slices.Contains(have, v) })
	}

	switch {
	case f.Category != "" && p.Category != strings.ToLower(f.Category):
		return false
	case f.Brand != "" && p.Brand != f.Brand:
		return false
	case len(f.Colors) > 0 && !overlaps(p.Colors, f.Colors):
		return false
	case len(f.Sizes) > 0 && !overlaps(p.Sizes, f.Sizes):
		return false
	case f.MinPrice != nil && p.Price.LessThan(*f.MinPrice):
		return false
	case f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice):
		return false
	}
	return true
}

func copyProduct(p models.Product) models.Product {
	p.Images = append([]string{}, p.Images...)
	p.Colors = append([]string{}, p.Colors...)
	p.Sizes = append([]string{}, p.Sizes...)
	return p
}
