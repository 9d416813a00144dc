package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tanoush/storefront/internal/apperrors"
	"github.com/tanoush/storefront/internal/handlers/render"
	"github.com/tanoush/storefront/internal/logger"
	"github.com/tanoush/storefront/internal/models"
)

type attributes struct {
	Color []string `json:"color"`
	Size  []string `json:"size"`
}

type product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
	Attributes  attributes      `json:"attributes"`
	InStock     bool            `json:"inStock"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func newProduct(p models.Product) product {
	return product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Brand:       p.Brand,
		Stock:       p.Stock,
		Images:      orEmpty(p.Images),
		Attributes:  attributes{Color: orEmpty(p.Colors), Size: orEmpty(p.Sizes)},
		InStock:     p.InStock(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Render nil slices as empty JSON arrays
func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

type productResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message,omitempty"`
	Product product `json:"product"`
}

// Parse query into filter
// Color and size may be repeated to match any of the values
func parseProductFilter(q url.Values) (models.ProductFilter, error) {
	filter := models.ProductFilter{
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Colors:   q["color"],
		Sizes:    q["size"],
		SortBy:   q.Get("sortBy"),
	}

	var err error
	if filter.MinPrice, err = parsePrice(q, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = parsePrice(q, "maxPrice"); err != nil {
		return filter, err
	}

	return filter, nil
}

func parsePrice(q url.Values, name string) (*decimal.Decimal, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}

	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, &apperrors.DetailedError{
			Err:     apperrors.ErrValidation,
			Details: []string{fmt.Sprintf("Invalid %s value", name)},
		}
	}
	return &v, nil
}

func handleListProducts(s catalogService, logger logger.Logger) http.Handler {
	type response struct {
		Success  bool      `json:"success"`
		Count    int       `json:"count"`
		Products []product `json:"products"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseProductFilter(r.URL.Query())
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		products, err := s.List(r.Context(), filter)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		resp := response{Success: true, Count: len(products), Products: make([]product, 0, len(products))}
		for _, p := range products {
			resp.Products = append(resp.Products, newProduct(p))
		}
		render.JSON(w, resp)
	})
}

func handleFilterOptions(s catalogService, logger logger.Logger) http.Handler {
	type priceRange struct {
		MinPrice decimal.Decimal `json:"minPrice"`
		MaxPrice decimal.Decimal `json:"maxPrice"`
	}
	type filters struct {
		Brands     []string   `json:"brands"`
		Colors     []string   `json:"colors"`
		Sizes      []string   `json:"sizes"`
		PriceRange priceRange `json:"priceRange"`
	}
	type response struct {
		Success bool    `json:"success"`
		Filters filters `json:"filters"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.FilterOptions(r.Context())
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		render.JSON(w, response{
			Success: true,
			Filters: filters{
				Brands:     orEmpty(opts.Brands),
				Colors:     orEmpty(opts.Colors),
				Sizes:      orEmpty(opts.Sizes),
				PriceRange: priceRange{MinPrice: opts.MinPrice, MaxPrice: opts.MaxPrice},
			},
		})
	})
}

func handleGetProduct(s catalogService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.Error(w, apperrors.ErrProductNotFound, logger)
			return
		}

		p, err := s.Get(r.Context(), id)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		render.JSON(w, productResponse{Success: true, Product: newProduct(p)})
	})
}

func handleCreateProduct(s catalogService, logger logger.Logger) http.Handler {
	type request struct {
		Name        string           `json:"name" validate:"required,max=200"`
		Description string           `json:"description" validate:"required,max=2000"`
		Price       *decimal.Decimal `json:"price" validate:"required"`
		Category    string           `json:"category" validate:"required,category"`
		Brand       string           `json:"brand" validate:"required"`
		Stock       int              `json:"stock" validate:"gte=0"`
		Images      []string         `json:"images" validate:"max=10"`
		Attributes  attributes       `json:"attributes"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		p, err := s.Create(r.Context(), models.Product{
			Name:        req.Name,
			Description: req.Description,
			Price:       *req.Price,
			Category:    req.Category,
			Brand:       req.Brand,
			Stock:       req.Stock,
			Images:      req.Images,
			Colors:      req.Attributes.Color,
			Sizes:       req.Attributes.Size,
		})
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		logger.Info("product created", "product_id", p.ID, "images", len(p.Images))
		render.Created(w, productResponse{Success: true, Message: "Product created successfully", Product: newProduct(p)})
	})
}

func handleUpdateProduct(s catalogService, logger logger.Logger) http.Handler {
	type patchAttributes struct {
		Color *[]string `json:"color"`
		Size  *[]string `json:"size"`
	}
	type request struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Price       *decimal.Decimal `json:"price"`
		Category    *string          `json:"category"`
		Brand       *string          `json:"brand"`
		Stock       *int             `json:"stock"`
		Images      *[]string        `json:"images"`
		Attributes  *patchAttributes `json:"attributes"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.Error(w, apperrors.ErrProductNotFound, logger)
			return
		}

		// Partial update is validated as a whole product by the service
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		patch := models.ProductPatch{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Category:    req.Category,
			Brand:       req.Brand,
			Stock:       req.Stock,
			Images:      req.Images,
		}
		if req.Attributes != nil {
			patch.Colors = req.Attributes.Color
			patch.Sizes = req.Attributes.Size
		}

		p, err := s.Update(r.Context(), id, patch)
		if err != nil {
			render.Error(w, err, logger)
			return
		}

		render.JSON(w, productResponse{Success: true, Message: "Product updated successfully", Product: newProduct(p)})
	})
}

func handleDeleteProduct(s catalogService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.Error(w, apperrors.ErrProductNotFound, logger)
			return
		}

		if err := s.Delete(r.Context(), id); err != nil {
			render.Error(w, err, logger)
			return
		}

		render.JSON(w, messageResponse{Success: true, Message: "Product deleted successfully"})
	})
}
