package models

import (
	"time"

	"github.com/google/uuid"
)

// Campaign is a fundraising campaign with a monetary goal.
type Campaign struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Currency    string    `json:"currency"`
	Goal        float64   `json:"goal"`
	Raised      float64   `json:"raised"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GoalReached reports whether the campaign has met its goal.
func (c *Campaign) GoalReached() bool {
	return c.Goal > 0 && c.Raised >= c.Goal
}
