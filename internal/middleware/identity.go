package middleware

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserID returns the authenticated user's id stored by KeyRecordAuth.
// The bool is false when the request was not authenticated or the stored
// value is not a valid object id.
func UserID(c echo.Context) (bson.ObjectID, bool) {
	v, ok := c.Get(CtxUserID).(string)
	if !ok || v == "" {
		return bson.ObjectID{}, false
	}
	id, err := bson.ObjectIDFromHex(v)
	if err != nil {
		return bson.ObjectID{}, false
	}
	return id, true
}
