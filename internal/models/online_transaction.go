package models

import "time"

// OnlineTransactionStatus represents the status of an online payment
type OnlineTransactionStatus string

const (
	OnlineTxStatusPending OnlineTransactionStatus = "pending"
	OnlineTxStatusSuccess OnlineTransactionStatus = "success"
	OnlineTxStatusFailed  OnlineTransactionStatus = "failed"
)

// OnlineTransaction represents a Razorpay fare payment transaction
type OnlineTransaction struct {
	ID                int                     `json:"id"`
	RazorpayOrderID   string                  `json:"razorpay_order_id"`
	RazorpayPaymentID string                  `json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string                  `json:"-"` // Don't expose signature in JSON

	CustomerID   int    `json:"customer_id"`
	CustomerName string `json:"customer_name,omitempty"`

	Amount float64 `json:"amount"`

	// Payment details from Razorpay
	UTRNumber     string `json:"utr_number,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"` // upi, card, netbanking, wallet
	VPA           string `json:"vpa,omitempty"`

	Status        OnlineTransactionStatus `json:"status"`
	FailureReason string                  `json:"failure_reason,omitempty"`

	// Ledger payment created on successful capture
	PaymentID *int `json:"payment_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CreateOnlinePaymentRequest initiates an online fare payment for a customer
type CreateOnlinePaymentRequest struct {
	CustomerID int     `json:"customer_id"`
	Amount     float64 `json:"amount"`
}

// CreateOrderResponse is returned to the frontend for Razorpay checkout
type CreateOrderResponse struct {
	OrderID      string `json:"order_id"`
	Amount       int    `json:"amount"` // In paise
	Currency     string `json:"currency"`
	KeyID        string `json:"key_id"`
	CustomerName string `json:"customer_name"`
}

// VerifyPaymentRequest is sent from the frontend after the Razorpay callback
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// RazorpayWebhookPayload represents the webhook payload from Razorpay
type RazorpayWebhookPayload struct {
	Event     string                 `json:"event"`
	Payload   map[string]interface{} `json:"payload"`
	CreatedAt int64                  `json:"created_at"`
}
