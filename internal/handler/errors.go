package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/avdeyev/storefront/internal/domain/cart"
	"github.com/avdeyev/storefront/internal/domain/order"
	"github.com/avdeyev/storefront/internal/domain/product"
	"github.com/avdeyev/storefront/internal/domain/user"
)

// errorBody is the JSON error envelope returned by every failing endpoint.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, errorBody{Code: status, Message: message})
}

// domainError maps domain errors to HTTP responses. Unknown errors are logged
// and returned as an opaque 500.
func domainError(c echo.Context, err error) error {
	var (
		pnfErr *cart.ProductNotFoundError
		iqErr  *cart.InvalidQuantityError
	)
	switch {
	case errors.Is(err, product.ErrNotFound):
		return respondError(c, http.StatusNotFound, "product not found")
	case errors.Is(err, cart.ErrCartNotFound), errors.Is(err, order.ErrCartNotFound):
		return respondError(c, http.StatusNotFound, "cart not found")
	case errors.Is(err, cart.ErrItemNotFound):
		return respondError(c, http.StatusNotFound, "cart item not found")
	case errors.Is(err, order.ErrNotFound):
		return respondError(c, http.StatusNotFound, "order not found")
	case errors.Is(err, user.ErrNotFound), errors.Is(err, user.ErrInvalidCredentials):
		return respondError(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, user.ErrEmailTaken):
		return respondError(c, http.StatusConflict, "email already registered")
	case errors.Is(err, user.ErrWeakPassword),
		errors.Is(err, user.ErrInvalidEmail),
		errors.Is(err, product.ErrEmptyName),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidDiscount):
		return respondError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &pnfErr), errors.As(err, &iqErr):
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	zctx.From(c.Request().Context()).Error("Unhandled error", zap.Error(err))
	return respondError(c, http.StatusInternalServerError, "internal error")
}
