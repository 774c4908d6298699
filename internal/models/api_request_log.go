package models

import "time"

// APIRequestLog is one API request row, written asynchronously by the
// request-logging middleware
type APIRequestLog struct {
	Time         time.Time `json:"time"`
	Method       string    `json:"method"`
	Path         string    `json:"path"`
	StatusCode   int       `json:"status_code"`
	DurationMs   float64   `json:"duration_ms"`
	RequestSize  int       `json:"request_size"`
	ResponseSize int       `json:"response_size"`
	UserID       *int      `json:"user_id,omitempty"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
}
