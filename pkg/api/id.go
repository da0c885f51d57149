package api

import "github.com/google/uuid"

// NewUserID generates a new random user identifier.
func NewUserID() string {
	return uuid.NewString()
}
