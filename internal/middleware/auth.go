// Package middleware provides reusable HTTP middleware for the service.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/user-account-service/internal/model"
	"github.com/iliyamo/user-account-service/internal/utils"
)

// KeyLookup is the slice of the key record store the auth gate needs.
type KeyLookup interface {
	FindByUserID(ctx context.Context, userID bson.ObjectID) (*model.KeyRecord, error)
}

// Context keys set by KeyRecordAuth for downstream handlers.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
)

// KeyRecordAuth gates requests on a bearer access token that must verify
// against the caller's stored key record:
//
//  1. read the token claims unverified to learn the claimed user id,
//  2. load that user's key record,
//  3. verify the token signature and expiry against the record's
//     access-token secret.
//
// Step 1 is not a trust decision; nothing is admitted until step 3
// passes. Because the record is re-read on every request, deleting it
// (logout) revokes all outstanding tokens immediately. Every failure
// mode answers 401 without detail.
func KeyRecordAuth(keys KeyLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.DecodeToken(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			idHex, _ := claims["userId"].(string)
			userID, err := bson.ObjectIDFromHex(idHex)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			rec, err := keys.FindByUserID(c.Request().Context(), userID)
			if err != nil {
				// Missing record and store fault both end the request
				// here; neither admits the caller.
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			verified, err := utils.VerifyToken(raw, rec.PublicKey)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(CtxUserID, idHex)
			if email, ok := verified["email"].(string); ok {
				c.Set(CtxEmail, email)
			}
			return next(c)
		}
	}
}
