package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"

	"fare-backend/internal/metrics"
	"fare-backend/internal/models"
	"fare-backend/internal/timeutil"
)

// Error kinds surfaced by ledger operations. Callers classify with errors.Is.
var (
	// ErrNotFound means the referenced customer or payment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument means a malformed amount or unknown rollover strategy.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict means a concurrent balance update could not be serialized
	// within the bounded retry budget.
	ErrConflict = errors.New("conflict")

	// ErrStoreUnavailable means the underlying persistence failed.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// CustomerStore is the customer persistence surface the ledger engine needs.
// AdjustBalance must apply the delta atomically at the store (relative update,
// never read-modify-write) and return ErrNotFound when the customer is gone.
type CustomerStore interface {
	Get(ctx context.Context, id int) (*models.Customer, error)
	AdjustBalance(ctx context.Context, id int, delta float64) error
	ApplyRollover(ctx context.Context, strategy models.RolloverStrategy) (int64, error)
}

// PaymentStore is the payment persistence surface the ledger engine needs.
type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	Get(ctx context.Context, id int) (*models.Payment, error)
	Delete(ctx context.Context, id int) error
}

// Store binds the two stores to one backend. WithTx runs fn with stores bound
// to a single database transaction: either both writes commit or neither does.
type Store interface {
	Customers() CustomerStore
	Payments() PaymentStore
	WithTx(ctx context.Context, fn func(CustomerStore, PaymentStore) error) error
}

// maxRetries bounds internal retries of serialization conflicts before
// ErrConflict is surfaced to the caller.
const maxRetries = 3

// Service owns customer balance state. It holds no state of its own between
// calls; everything durable lives in the Store, so concurrent callers and
// horizontally scaled instances are safe by construction.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// RecordPayment creates a payment against a customer and decrements the
// customer's balance by the same amount in one transaction. The balance may go
// negative: an overpayment is carried as credit. The payment row is written
// before the balance update, so an interrupted transaction can never leave a
// changed balance without a payment explaining it.
func (s *Service) RecordPayment(ctx context.Context, customerID int, amount float64, recordedBy int, notes string) (*models.Payment, error) {
	if err := validAmount(amount); err != nil {
		metrics.LedgerErrors.WithLabelValues("invalid_argument").Inc()
		return nil, err
	}

	if _, err := s.store.Customers().Get(ctx, customerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.LedgerErrors.WithLabelValues("not_found").Inc()
			return nil, fmt.Errorf("customer %d: %w", customerID, ErrNotFound)
		}
		return nil, err
	}

	payment := &models.Payment{
		CustomerID:       customerID,
		Amount:           amount,
		RecordedByUserID: recordedBy,
		Notes:            notes,
		PaidAt:           timeutil.Now(),
	}

	err := s.withRetry(ctx, func(cs CustomerStore, ps PaymentStore) error {
		if err := ps.Create(ctx, payment); err != nil {
			return err
		}
		return cs.AdjustBalance(ctx, customerID, -amount)
	})
	if err != nil {
		metrics.LedgerErrors.WithLabelValues(errorKind(err)).Inc()
		return nil, err
	}

	metrics.PaymentsRecorded.Inc()
	return payment, nil
}

// GetPayment fetches a single payment by id.
func (s *Service) GetPayment(ctx context.Context, paymentID int) (*models.Payment, error) {
	return s.store.Payments().Get(ctx, paymentID)
}

// ReversePayment deletes a payment and restores the owning customer's balance.
// Reversing the same payment twice fails with ErrNotFound the second time; a
// reversal never silently succeeds against a missing payment. If the customer
// was deleted in the meantime the balance restore is skipped but the payment
// deletion still proceeds, so the payment log stays consistent.
func (s *Service) ReversePayment(ctx context.Context, paymentID int) (*models.Payment, error) {
	var reversed *models.Payment

	err := s.withRetry(ctx, func(cs CustomerStore, ps PaymentStore) error {
		p, err := ps.Get(ctx, paymentID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("payment %d: %w", paymentID, ErrNotFound)
			}
			return err
		}

		if err := ps.Delete(ctx, paymentID); err != nil {
			return err
		}

		if err := cs.AdjustBalance(ctx, p.CustomerID, p.Amount); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			// Customer already deleted: drop the payment anyway.
		}

		reversed = p
		return nil
	})
	if err != nil {
		metrics.LedgerErrors.WithLabelValues(errorKind(err)).Inc()
		return nil, err
	}

	metrics.PaymentsReversed.Inc()
	return reversed, nil
}

// RolloverBillingCycle starts a new billing cycle for every customer in one
// bulk update and returns how many customers were rebalanced.
//
// CarryOver adds fixed_fare on top of the existing balance; Forgive pins the
// balance to exactly fixed_fare, discarding arrears and credit alike. The
// store applies the whole rollover as a single guarded statement, so readers
// never observe half the customers on the new baseline, and two concurrent
// rollovers cannot interleave.
func (s *Service) RolloverBillingCycle(ctx context.Context, strategy models.RolloverStrategy) (int64, error) {
	if !strategy.Valid() {
		metrics.LedgerErrors.WithLabelValues("invalid_argument").Inc()
		return 0, fmt.Errorf("%w: unknown rollover strategy %q", ErrInvalidArgument, strategy)
	}

	var count int64
	err := s.withRetry(ctx, func(cs CustomerStore, _ PaymentStore) error {
		var err error
		count, err = cs.ApplyRollover(ctx, strategy)
		return err
	})
	if err != nil {
		metrics.LedgerErrors.WithLabelValues(errorKind(err)).Inc()
		// count carries how many rows were updated before the failure so the
		// caller can decide whether to retry the remainder.
		return count, err
	}

	metrics.RolloversTotal.WithLabelValues(string(strategy)).Inc()
	return count, nil
}

// withRetry runs fn in a store transaction, retrying serialization conflicts
// a bounded number of times. NotFound and InvalidArgument are never retried.
func (s *Service) withRetry(ctx context.Context, fn func(CustomerStore, PaymentStore) error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = s.store.WithTx(ctx, fn)
		if err == nil || !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("%w: retries exhausted: %v", ErrConflict, err)
}

func validAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: amount must be a finite number", ErrInvalidArgument)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidArgument)
	}
	return nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "store_unavailable"
	}
}
