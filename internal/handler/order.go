package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/avdeyev/storefront/internal/domain/order"
)

type orderItemResponse struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type orderResponse struct {
	ID            int64               `json:"id"`
	PaymentStatus string              `json:"payment_status"`
	PlacedAt      time.Time           `json:"placed_at"`
	Items         []orderItemResponse `json:"items"`
	Total         decimal.Decimal     `json:"total"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return orderResponse{
		ID:            o.ID,
		PaymentStatus: string(o.PaymentStatus),
		PlacedAt:      o.PlacedAt,
		Items:         items,
		Total:         o.Total(),
	}
}

func productIDParam(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("productID"), 10, 64)
}

// ConvertCart handles POST /api/carts/:id/convert, turning the cart into a
// pending order owned by the caller. The cart is gone afterwards; converting
// it again yields 404.
func (h *Handler) ConvertCart(c echo.Context) error {
	id, err := cartIDParam(c)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid cart id")
	}

	o, err := h.orders.Convert(c.Request().Context(), id, callerID(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toOrderResponse(o))
}

// ListOrders handles GET /api/orders. Staff see every order, everyone else
// sees only their own.
func (h *Handler) ListOrders(c echo.Context) error {
	orders, err := h.orders.List(c.Request().Context(), callerID(c), callerIsStaff(c))
	if err != nil {
		return domainError(c, err)
	}

	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	return c.JSON(http.StatusOK, out)
}

// GetOrder handles GET /api/orders/:id.
func (h *Handler) GetOrder(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid order id")
	}

	o, err := h.orders.Get(c.Request().Context(), id, callerID(c), callerIsStaff(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}
