package models

import "time"

type Customer struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	LocationID   int       `json:"location_id"`
	LocationName string    `json:"location_name,omitempty"` // Joined from locations table
	FixedFare    float64   `json:"fixed_fare"`
	Balance      float64   `json:"balance"` // Positive = owes money, <= 0 = paid/credit
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateCustomerRequest represents the request body for creating a customer.
// A new customer starts with balance = fixed_fare (owes one full cycle).
type CreateCustomerRequest struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	LocationID int     `json:"location_id"`
	FixedFare  float64 `json:"fixed_fare"`
}

// UpdateCustomerRequest represents the request body for updating a customer.
// Balance is intentionally absent: it is only mutated through ledger operations.
type UpdateCustomerRequest struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	LocationID int     `json:"location_id"`
	FixedFare  float64 `json:"fixed_fare"`
}

// CustomerPage is a paginated customer listing
type CustomerPage struct {
	Customers  []*Customer `json:"customers"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}
