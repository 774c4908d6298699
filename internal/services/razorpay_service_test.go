package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(secret string, msg []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(msg)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyCheckoutSignature(t *testing.T) {
	secret := "test_secret"
	orderID := "order_abc123"
	paymentID := "pay_xyz789"
	valid := sign(secret, []byte(orderID+"|"+paymentID))

	if !VerifyCheckoutSignature(orderID, paymentID, valid, secret) {
		t.Fatal("valid signature rejected")
	}
	if VerifyCheckoutSignature(orderID, paymentID, valid, "wrong_secret") {
		t.Fatal("signature accepted with wrong secret")
	}
	if VerifyCheckoutSignature(orderID, "pay_other", valid, secret) {
		t.Fatal("signature accepted for different payment")
	}
	if VerifyCheckoutSignature(orderID, paymentID, "deadbeef", secret) {
		t.Fatal("garbage signature accepted")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "webhook_secret"
	body := []byte(`{"event":"payment.captured"}`)

	if !VerifyWebhookSignature(body, sign(secret, body), secret) {
		t.Fatal("valid webhook signature rejected")
	}
	if VerifyWebhookSignature(body, sign(secret, body), "") {
		t.Fatal("signature accepted with empty secret")
	}
	if VerifyWebhookSignature([]byte("tampered"), sign(secret, body), secret) {
		t.Fatal("signature accepted for tampered body")
	}
}

func TestParseWebhookEvent(t *testing.T) {
	body := []byte(`{
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_xyz789",
					"order_id": "order_abc123",
					"method": "upi",
					"vpa": "ramesh@upi",
					"acquirer_data": {"rrn": "123456789012"}
				}
			}
		}
	}`)

	event, err := parseWebhookEvent(body)
	if err != nil {
		t.Fatalf("parseWebhookEvent: %v", err)
	}
	if event.Event != "payment.captured" {
		t.Fatalf("event = %q", event.Event)
	}
	if event.OrderID != "order_abc123" || event.PaymentID != "pay_xyz789" {
		t.Fatalf("ids = %q / %q", event.OrderID, event.PaymentID)
	}
	if event.Method != "upi" || event.VPA != "ramesh@upi" || event.UTR != "123456789012" {
		t.Fatalf("details = %q / %q / %q", event.Method, event.VPA, event.UTR)
	}
}

func TestParseWebhookEventWithoutPaymentEntity(t *testing.T) {
	event, err := parseWebhookEvent([]byte(`{"event":"order.paid","payload":{}}`))
	if err != nil {
		t.Fatalf("parseWebhookEvent: %v", err)
	}
	if event.Event != "order.paid" || event.OrderID != "" {
		t.Fatalf("event = %+v", event)
	}
}

func TestParseWebhookEventMalformed(t *testing.T) {
	if _, err := parseWebhookEvent([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
