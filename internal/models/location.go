package models

import "time"

type Location struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	CustomerCount int       `json:"customer_count,omitempty"` // Joined count for listings
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateLocationRequest represents the request body for creating a location
type CreateLocationRequest struct {
	Name string `json:"name"`
}

// UpdateLocationRequest represents the request body for renaming a location
type UpdateLocationRequest struct {
	Name string `json:"name"`
}
