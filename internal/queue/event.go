// Package queue defines message payloads exchanged over the message broker
// and the background consumer that delivers create-password mail.
package queue

// UserRegisteredQueue is the queue new-registration events are published to.
const UserRegisteredQueue = "user.registered"

// UserRegisteredEvent is published after a successful registration. It
// carries the create-password token so the mail worker can build the
// account-activation link without touching the primary database.
type UserRegisteredEvent struct {
	UserID              string `json:"user_id"`
	Email               string `json:"email"`
	CreatePasswordToken string `json:"create_password_token"`
	RegisteredAt        string `json:"registered_at"`
}
