package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-account-service/internal/middleware"
	"github.com/iliyamo/user-account-service/internal/service"
)

// UserHandler serves the authenticated profile endpoints.
type UserHandler struct {
	Auth *service.AuthService
}

func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{Auth: auth}
}

// GetProfile returns the caller's user record. Password hash and
// create-password secret are excluded by the model's json tags.
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Auth.GetProfileUser(ctx, userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// UpdateProfile applies a partial update to fullName, mobile, title and
// memo. Absent fields are left untouched.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}

	var patch service.ProfilePatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	user, err := h.Auth.UpdateUser(ctx, userID, patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}
