package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/avdeyev/storefront/internal/domain/cart"
)

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type cartItemResponse struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Slug        string          `json:"slug"`
	ImageURL    string          `json:"image_url"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	SubTotal    decimal.Decimal `json:"sub_total"`
}

type cartResponse struct {
	ID        uuid.UUID          `json:"id"`
	Items     []cartItemResponse `json:"items"`
	Total     decimal.Decimal    `json:"total"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func toCartResponse(v *cart.View) cartResponse {
	items := make([]cartItemResponse, len(v.Items))
	for i, it := range v.Items {
		items[i] = cartItemResponse{
			ProductID:   it.Product.ID,
			ProductName: it.Product.Name,
			Slug:        it.Product.Slug,
			ImageURL:    it.Product.ImageURL,
			UnitPrice:   it.Product.DiscountPrice,
			Quantity:    it.Quantity,
			SubTotal:    it.SubTotal,
		}
	}
	return cartResponse{
		ID:        v.ID,
		Items:     items,
		Total:     v.Total,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func cartIDParam(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

// CreateCart handles POST /api/carts.
func (h *Handler) CreateCart(c echo.Context) error {
	created, err := h.carts.Create(c.Request().Context())
	if err != nil {
		return domainError(c, err)
	}

	view, err := h.carts.Get(c.Request().Context(), created.ID)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toCartResponse(view))
}

// GetCart handles GET /api/carts/:id.
func (h *Handler) GetCart(c echo.Context) error {
	id, err := cartIDParam(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid cart id")
	}

	view, err := h.carts.Get(c.Request().Context(), id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(view))
}

// DeleteCart handles DELETE /api/carts/:id.
func (h *Handler) DeleteCart(c echo.Context) error {
	id, err := cartIDParam(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid cart id")
	}

	if err := h.carts.Delete(c.Request().Context(), id); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddCartItem handles POST /api/carts/:id/items. Adding a product already in
// the cart sums the quantities on the existing line.
func (h *Handler) AddCartItem(c echo.Context) error {
	id, err := cartIDParam(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid cart id")
	}

	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}

	if _, err := h.carts.AddItem(c.Request().Context(), id, req.ProductID, req.Quantity); err != nil {
		return domainError(c, err)
	}

	view, err := h.carts.Get(c.Request().Context(), id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(view))
}

// UpdateCartItem handles PUT /api/carts/:id/items/:productID, replacing the
// line's quantity.
func (h *Handler) UpdateCartItem(c echo.Context) error {
	id, err := cartIDParam(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid cart id")
	}
	productID, err := productIDParam(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid product id")
	}

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}

	if err := h.carts.SetItemQuantity(c.Request().Context(), id, productID, req.Quantity); err != nil {
		return domainError(c, err)
	}

	view, err := h.carts.Get(c.Request().Context(), id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toCartResponse(view))
}

// RemoveCartItem handles DELETE /api/carts/:id/items/:productID.
func (h *Handler) RemoveCartItem(c echo.Context) error {
	id, err := cartIDParam(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid cart id")
	}
	productID, err := productIDParam(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid product id")
	}

	if err := h.carts.RemoveItem(c.Request().Context(), id, productID); err != nil {
		return domainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
