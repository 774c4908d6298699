package models

import "time"

type Payment struct {
	ID               int       `json:"id"`
	ReceiptNumber    string    `json:"receipt_number"`
	CustomerID       int       `json:"customer_id"`
	CustomerName     string    `json:"customer_name,omitempty"` // Joined from customers table
	Amount           float64   `json:"amount"`
	RecordedByUserID int       `json:"recorded_by_user_id"`
	RecordedByName   string    `json:"recorded_by_name,omitempty"` // Joined from users table
	Notes            string    `json:"notes"`
	PaidAt           time.Time `json:"paid_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreatePaymentRequest represents the request body for recording a payment
type CreatePaymentRequest struct {
	CustomerID int     `json:"customer_id"`
	Amount     float64 `json:"amount"`
	Notes      string  `json:"notes"`
}

// PaymentHistory is a customer's payment listing with the running total
type PaymentHistory struct {
	Customer  *Customer  `json:"customer"`
	Payments  []*Payment `json:"payments"`
	TotalPaid float64    `json:"total_paid"`
}

// MonthlyIncome is one month's collected total for the income chart
type MonthlyIncome struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Total float64 `json:"total"`
}
