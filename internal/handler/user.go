package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avdeyev/storefront/internal/domain/user"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type userResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber string    `json:"phone_number"`
	IsStaff     bool      `json:"is_staff"`
	DateJoined  time.Time `json:"date_joined"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		IsStaff:     u.IsStaff,
		DateJoined:  u.DateJoined,
	}
}

// RegisterUser handles POST /api/register.
func (h *Handler) RegisterUser(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}

	u, err := h.users.Register(c.Request().Context(), user.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return domainError(c, err)
	}

	return c.JSON(http.StatusCreated, toUserResponse(u))
}

// Login handles POST /api/login. On success it returns the token pair and
// additionally sets the access token as an httponly cookie for browser
// clients.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}

	u, err := h.users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return domainError(c, err)
	}

	pair, err := h.tokens.Issue(u.ID, u.IsStaff)
	if err != nil {
		return domainError(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     jwtCookie,
		Value:    pair.Access,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, tokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// RefreshToken handles POST /api/token/refresh, exchanging a valid refresh
// token for a fresh pair.
func (h *Handler) RefreshToken(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid request body")
	}

	claims, err := h.tokens.VerifyRefresh(req.Refresh)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, "invalid or expired token")
	}

	pair, err := h.tokens.Issue(claims.UserID, claims.IsStaff)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// Logout handles POST /api/logout by expiring the access cookie. Tokens are
// stateless, so the bearer token itself stays valid until expiry.
func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     jwtCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /api/me, returning the authenticated account.
func (h *Handler) Me(c echo.Context) error {
	u, err := h.users.Get(c.Request().Context(), callerID(c))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}
