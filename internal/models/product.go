package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allowed product categories
var Categories = []string{
	"tees",
	"hoodies",
	"graphical-hoodies",
	"basic-hoodies",
	"mocknecks",
	"trousers",
	"shorts",
	"jackets",
	"coats",
}

const MaxProductImages = 10

type Product struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Brand       string
	Stock       int
	Images      []string
	Colors      []string
	Sizes       []string
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

func IsCategory(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, c := range Categories {
		if c == value {
			return true
		}
	}
	return false
}

// Sort orders accepted by product listing
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortNameAsc   = "name-asc"
	SortNameDesc  = "name-desc"
)

// ProductFilter narrows product listing. Zero values mean "no filter"
type ProductFilter struct {
	Category string
	Brand    string
	Colors   []string
	Sizes    []string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SortBy   string
}

// FilterOptions lists the distinct values the catalog can be filtered by
type FilterOptions struct {
	Brands   []string
	Colors   []string
	Sizes    []string
	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal
}

// ProductPatch holds a partial product update. Nil fields are left unchanged
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Brand       *string
	Stock       *int
	Images      *[]string
	Colors      *[]string
	Sizes       *[]string
}

func (p ProductPatch) Apply(product *Product) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setSlice := func(dst *[]string, src *[]string) {
		if src != nil {
			*dst = *src
		}
	}

	set(&product.Name, p.Name)
	set(&product.Description, p.Description)
	set(&product.Category, p.Category)
	set(&product.Brand, p.Brand)
	setSlice(&product.Images, p.Images)
	setSlice(&product.Colors, p.Colors)
	setSlice(&product.Sizes, p.Sizes)
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
}
