package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User lifecycle status. A user is created UNVERIFIED and becomes
// VERIFIED once they set their password through the create-password flow.
const (
	StatusUnverified = "UNVERIFIED"
	StatusVerified   = "VERIFIED"
)

// User roles.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is a document in the `users` collection. Password holds the bcrypt
// hash and is empty until the user completes the create-password flow.
// CreatePasswordSecret is a one-time secret minted at registration; it is
// removed when the password is first set so the emailed link cannot be
// replayed. Password and the secret never leave the server.
type User struct {
	ID                   bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email                string        `bson:"email" json:"email"`
	FullName             string        `bson:"fullName,omitempty" json:"fullName,omitempty"`
	Mobile               string        `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Title                string        `bson:"title,omitempty" json:"title,omitempty"`
	Memo                 string        `bson:"memo,omitempty" json:"memo,omitempty"`
	Password             string        `bson:"password,omitempty" json:"-"`
	Status               string        `bson:"status" json:"status"`
	Role                 string        `bson:"role" json:"role"`
	CreatePasswordSecret string        `bson:"createPasswordSecret,omitempty" json:"-"`
	CreatedAt            time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time     `bson:"updatedAt" json:"updatedAt"`
}
