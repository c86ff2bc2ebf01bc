package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/avdeyev/storefront/internal/domain/product"
)

type productRequest struct {
	Name               string          `json:"name"`
	PackTitle          string          `json:"pack_title"`
	Description        string          `json:"description"`
	ImageURL           string          `json:"image_url"`
	OriginalPrice      decimal.Decimal `json:"original_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Stock              int             `json:"stock"`
}

type productResponse struct {
	ID                 int64           `json:"id"`
	Slug               string          `json:"slug"`
	Name               string          `json:"name"`
	PackTitle          string          `json:"pack_title"`
	Description        string          `json:"description"`
	ImageURL           string          `json:"image_url"`
	OriginalPrice      decimal.Decimal `json:"original_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	DiscountPrice      decimal.Decimal `json:"discount_price"`
	Stock              int             `json:"stock"`
}

func toProductResponse(p *product.Product) productResponse {
	return productResponse{
		ID:                 p.ID,
		Slug:               p.Slug,
		Name:               p.Name,
		PackTitle:          p.PackTitle,
		Description:        p.Description,
		ImageURL:           p.ImageURL,
		OriginalPrice:      p.OriginalPrice,
		DiscountPercentage: p.DiscountPercentage,
		DiscountPrice:      p.DiscountPrice,
		Stock:              p.Stock,
	}
}

// ListProducts handles GET /api/products.
func (h *Handler) ListProducts(c echo.Context) error {
	products, err := h.products.List(c.Request().Context())
	if err != nil {
		return domainError(c, err)
	}

	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = toProductResponse(&products[i])
	}
	return c.JSON(http.StatusOK, out)
}

// GetProduct handles GET /api/products/:slug.
func (h *Handler) GetProduct(c echo.Context) error {
	p, err := h.products.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// CreateProduct handles POST /api/products. Staff only.
func (h *Handler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}

	p := &product.Product{
		Name:               req.Name,
		PackTitle:          req.PackTitle,
		Description:        req.Description,
		ImageURL:           req.ImageURL,
		OriginalPrice:      req.OriginalPrice,
		DiscountPercentage: req.DiscountPercentage,
		Stock:              req.Stock,
	}
	if err := h.products.Create(c.Request().Context(), p); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

// UpdateProduct handles PUT /api/products/:slug. Staff only.
func (h *Handler) UpdateProduct(c echo.Context) error {
	p, err := h.products.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return domainError(c, err)
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}

	p.Name = req.Name
	p.PackTitle = req.PackTitle
	p.Description = req.Description
	p.ImageURL = req.ImageURL
	p.OriginalPrice = req.OriginalPrice
	p.DiscountPercentage = req.DiscountPercentage
	p.Stock = req.Stock

	if err := h.products.Update(c.Request().Context(), p); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// DeleteProduct handles DELETE /api/products/:slug. Staff only.
func (h *Handler) DeleteProduct(c echo.Context) error {
	if err := h.products.Delete(c.Request().Context(), c.Param("slug")); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
