// Package repository wraps the MongoDB collections behind small, typed
// stores. Sentinel errors defined here let the service layer react to
// well-known failures without depending on driver error types.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no document. It replaces
// mongo.ErrNoDocuments at the repository boundary so callers never import
// the driver just to check a miss.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user insert violates the unique email
// index.
var ErrEmailExists = errors.New("email already exists")
