package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"

	"fare-backend/internal/cache"
	"fare-backend/internal/config"
	"fare-backend/internal/ledger"
	"fare-backend/internal/models"
	"fare-backend/internal/repositories"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayService handles online fare payments. A captured online payment is
// credited through the ledger exactly like a cash payment, so balances stay
// consistent no matter how the money arrived.
type RazorpayService struct {
	cfg          *config.Config
	txRepo       *repositories.OnlineTransactionRepository
	customerRepo *repositories.CustomerRepository
	ledger       *ledger.Service
}

func NewRazorpayService(cfg *config.Config, txRepo *repositories.OnlineTransactionRepository, customerRepo *repositories.CustomerRepository, ledgerSvc *ledger.Service) *RazorpayService {
	return &RazorpayService{
		cfg:          cfg,
		txRepo:       txRepo,
		customerRepo: customerRepo,
		ledger:       ledgerSvc,
	}
}

func (s *RazorpayService) Configured() bool {
	return s.cfg.Razorpay.KeyID != "" && s.cfg.Razorpay.KeySecret != ""
}

func (s *RazorpayService) client() *razorpay.Client {
	return razorpay.NewClient(s.cfg.Razorpay.KeyID, s.cfg.Razorpay.KeySecret)
}

// CreateOrder creates a Razorpay order for a customer's fare payment and
// records a pending transaction row.
func (s *RazorpayService) CreateOrder(ctx context.Context, req *models.CreateOnlinePaymentRequest) (*models.CreateOrderResponse, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("online payments are not configured")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	amountPaise := int(req.Amount * 100)
	orderData := map[string]interface{}{
		"amount":   amountPaise,
		"currency": "INR",
		"notes": map[string]interface{}{
			"customer_id":   fmt.Sprintf("%d", customer.ID),
			"customer_name": customer.Name,
		},
	}

	order, err := s.client().Order.Create(orderData, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return nil, fmt.Errorf("unexpected order response")
	}

	tx := &models.OnlineTransaction{
		RazorpayOrderID: orderID,
		CustomerID:      customer.ID,
		Amount:          req.Amount,
		Status:          models.OnlineTxStatusPending,
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	return &models.CreateOrderResponse{
		OrderID:      orderID,
		Amount:       amountPaise,
		Currency:     "INR",
		KeyID:        s.cfg.Razorpay.KeyID,
		CustomerName: customer.Name,
	}, nil
}

// VerifyPayment checks the checkout callback signature and, on first success,
// credits the payment through the ledger.
func (s *RazorpayService) VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.OnlineTransaction, error) {
	if !VerifyCheckoutSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, s.cfg.Razorpay.KeySecret) {
		if err := s.txRepo.MarkFailed(ctx, req.RazorpayOrderID, "signature verification failed"); err != nil {
			log.Printf("[Razorpay] Failed to mark transaction failed: %v", err)
		}
		return nil, fmt.Errorf("payment signature verification failed")
	}
	return s.capture(ctx, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, "", "", "")
}

// ProcessWebhook applies a payment.captured event. Webhook delivery and the
// frontend verification can race; capture is idempotent on the pending guard.
func (s *RazorpayService) ProcessWebhook(ctx context.Context, body []byte, signature string) error {
	if !VerifyWebhookSignature(body, signature, s.cfg.Razorpay.WebhookSecret) {
		return fmt.Errorf("webhook signature verification failed")
	}

	event, err := parseWebhookEvent(body)
	if err != nil {
		return err
	}
	if event.Event != "payment.captured" {
		return nil
	}

	if _, err := s.capture(ctx, event.OrderID, event.PaymentID, signature, event.UTR, event.Method, event.VPA); err != nil {
		return err
	}
	return nil
}

// capture credits the online payment into the ledger and marks the
// transaction successful. Only the first caller for an order wins; later
// callers see the already-settled transaction.
func (s *RazorpayService) capture(ctx context.Context, orderID, paymentRefID, signature, utr, method, vpa string) (*models.OnlineTransaction, error) {
	tx, err := s.txRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if tx.Status == models.OnlineTxStatusSuccess {
		return tx, nil
	}
	if tx.Status == models.OnlineTxStatusFailed {
		return nil, fmt.Errorf("transaction already failed: %s", tx.FailureReason)
	}

	notes := fmt.Sprintf("Online payment %s", paymentRefID)
	payment, err := s.ledger.RecordPayment(ctx, tx.CustomerID, tx.Amount, 0, notes)
	if err != nil {
		return nil, fmt.Errorf("failed to credit payment: %w", err)
	}

	updated, err := s.txRepo.MarkSuccess(ctx, orderID, paymentRefID, signature, utr, method, vpa, payment.ID)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost the race: another caller already settled this order. Undo the
		// duplicate ledger credit.
		if _, rerr := s.ledger.ReversePayment(ctx, payment.ID); rerr != nil {
			log.Printf("[Razorpay] Failed to reverse duplicate credit for order %s: %v", orderID, rerr)
		}
	}

	cache.InvalidateLedgerCaches(ctx)
	return s.txRepo.GetByOrderID(ctx, orderID)
}

// VerifyCheckoutSignature checks the HMAC the Razorpay checkout returns:
// SHA256 over "orderID|paymentID" keyed with the API secret.
func VerifyCheckoutSignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the HMAC over the raw webhook body.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	if secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
