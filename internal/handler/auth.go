package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/middleware"
	"github.com/iliyamo/user-account-service/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Email string `json:"email"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type verifyTokenReq struct {
	Token string `json:"token"`
}
type createPasswordReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// statusFor maps the service error taxonomy to HTTP statuses. Unexpected
// faults fall through to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrTokenInvalid):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUserCreation),
		errors.Is(err, service.ErrKeyStore),
		errors.Is(err, service.ErrTokenCreation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("auth: %v", err)
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// validEmail applies the same shape checks the registration form does:
// non-empty, at most 50 chars, with a local part and a domain.
func validEmail(email string) bool {
	if email == "" || len(email) > 50 {
		return false
	}
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

// Register creates the account and returns tokens immediately; the
// password is set later through the emailed create-password link.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	result, err := h.Auth.Register(ctx, req.Email)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// Login verifies credentials and returns a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	result, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Logout deletes the caller's key record, invalidating all their tokens.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, userID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// VerifyCreatePasswordToken checks a create-password token without
// consuming it, so the frontend can validate the link before showing the
// password form.
func (h *AuthHandler) VerifyCreatePasswordToken(c echo.Context) error {
	var req verifyTokenReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Auth.VerifyCreatePasswordToken(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"email": user.Email})
}

// CreatePassword redeems a create-password token and sets the password.
func (h *AuthHandler) CreatePassword(c echo.Context) error {
	var req createPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Auth.CreatePassword(ctx, strings.TrimSpace(req.Token), req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": user})
}
