package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber is a newsletter subscription.
type Subscriber struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
