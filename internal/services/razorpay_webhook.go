package services

import (
	"encoding/json"
	"fmt"

	"fare-backend/internal/models"
)

// webhookEvent is the subset of a Razorpay webhook we act on.
type webhookEvent struct {
	Event     string
	OrderID   string
	PaymentID string
	UTR       string
	Method    string
	VPA       string
}

func parseWebhookEvent(body []byte) (*webhookEvent, error) {
	payload := &models.RazorpayWebhookPayload{}
	if err := json.Unmarshal(body, payload); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}

	event := &webhookEvent{Event: payload.Event}

	// payload.payment.entity carries the captured payment details.
	paymentWrap, _ := payload.Payload["payment"].(map[string]interface{})
	entity, _ := paymentWrap["entity"].(map[string]interface{})
	if entity == nil {
		return event, nil
	}

	event.OrderID, _ = entity["order_id"].(string)
	event.PaymentID, _ = entity["id"].(string)
	event.Method, _ = entity["method"].(string)
	event.VPA, _ = entity["vpa"].(string)

	if acq, ok := entity["acquirer_data"].(map[string]interface{}); ok {
		if utr, ok := acq["rrn"].(string); ok {
			event.UTR = utr
		}
	}
	return event, nil
}
