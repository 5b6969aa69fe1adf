package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// KeyRecord is a document in the `key_records` collection holding the
// signing secrets for one user's current session. Despite the field names
// (kept for compatibility with the original schema), PublicKey and
// PrivateKey are NOT an asymmetric pair: both are independent random HMAC
// secrets. PublicKey signs the access token, PrivateKey the refresh token.
//
// At most one record exists per user. Deleting it invalidates every token
// signed with either secret, which is how logout revokes access without a
// blacklist.
type KeyRecord struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	UserID     bson.ObjectID `bson:"userId"`
	PublicKey  string        `bson:"publicKey"`
	PrivateKey string        `bson:"privateKey"`
	CreatedAt  time.Time     `bson:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt"`
}
