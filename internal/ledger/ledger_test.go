package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"fare-backend/internal/models"
)

// memStore is an in-memory Store with transactional semantics: WithTx runs fn
// against a copy of the state and commits only on success.
type memStore struct {
	mu        sync.Mutex
	customers map[int]*models.Customer
	payments  map[int]*models.Payment
	nextID    int

	// failAdjust, when set, is returned by the next AdjustBalance call.
	failAdjust error
	// conflicts, while positive, makes WithTx fail with ErrConflict and
	// decrements.
	conflicts int
}

func newMemStore() *memStore {
	return &memStore{
		customers: make(map[int]*models.Customer),
		payments:  make(map[int]*models.Payment),
		nextID:    1,
	}
}

func (m *memStore) addCustomer(id int, fixedFare, balance float64) {
	m.customers[id] = &models.Customer{ID: id, Name: fmt.Sprintf("customer-%d", id), FixedFare: fixedFare, Balance: balance}
}

func (m *memStore) balance(t *testing.T, id int) float64 {
	t.Helper()
	c, ok := m.customers[id]
	if !ok {
		t.Fatalf("customer %d missing", id)
	}
	return c.Balance
}

func (m *memStore) Customers() CustomerStore { return (*memCustomers)(m) }
func (m *memStore) Payments() PaymentStore   { return (*memPayments)(m) }

func (m *memStore) WithTx(ctx context.Context, fn func(CustomerStore, PaymentStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conflicts > 0 {
		m.conflicts--
		return fmt.Errorf("%w: simulated serialization failure", ErrConflict)
	}

	tx := &memStore{
		customers:  make(map[int]*models.Customer, len(m.customers)),
		payments:   make(map[int]*models.Payment, len(m.payments)),
		nextID:     m.nextID,
		failAdjust: m.failAdjust,
	}
	for id, c := range m.customers {
		cc := *c
		tx.customers[id] = &cc
	}
	for id, p := range m.payments {
		pp := *p
		tx.payments[id] = &pp
	}

	if err := fn(tx.Customers(), tx.Payments()); err != nil {
		return err
	}

	m.customers = tx.customers
	m.payments = tx.payments
	m.nextID = tx.nextID
	return nil
}

type memCustomers memStore

func (m *memCustomers) Get(ctx context.Context, id int) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	cc := *c
	return &cc, nil
}

func (m *memCustomers) AdjustBalance(ctx context.Context, id int, delta float64) error {
	if m.failAdjust != nil {
		return m.failAdjust
	}
	c, ok := m.customers[id]
	if !ok {
		return fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	c.Balance += delta
	return nil
}

func (m *memCustomers) ApplyRollover(ctx context.Context, strategy models.RolloverStrategy) (int64, error) {
	var n int64
	for _, c := range m.customers {
		switch strategy {
		case models.RolloverCarryOver:
			c.Balance += c.FixedFare
		case models.RolloverForgive:
			c.Balance = c.FixedFare
		default:
			return n, fmt.Errorf("%w: strategy %q", ErrInvalidArgument, strategy)
		}
		n++
	}
	return n, nil
}

type memPayments memStore

func (m *memPayments) Create(ctx context.Context, p *models.Payment) error {
	p.ID = m.nextID
	m.nextID++
	pp := *p
	m.payments[p.ID] = &pp
	return nil
}

func (m *memPayments) Get(ctx context.Context, id int) (*models.Payment, error) {
	p, ok := m.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %d: %w", id, ErrNotFound)
	}
	pp := *p
	return &pp, nil
}

func (m *memPayments) Delete(ctx context.Context, id int) error {
	if _, ok := m.payments[id]; !ok {
		return fmt.Errorf("payment %d: %w", id, ErrNotFound)
	}
	delete(m.payments, id)
	return nil
}

func TestRecordPaymentDecrementsBalance(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 500, 500)
	svc := NewService(store)

	p, err := svc.RecordPayment(context.Background(), 1, 500, 7, "cash")
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("payment not assigned an id")
	}
	if got := store.balance(t, 1); got != 0 {
		t.Fatalf("balance = %v, want 0", got)
	}
}

func TestRecordPaymentOverpaymentGoesNegative(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 500, 300)
	svc := NewService(store)

	if _, err := svc.RecordPayment(context.Background(), 1, 500, 7, ""); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if got := store.balance(t, 1); got != -200 {
		t.Fatalf("balance = %v, want -200 (credit carried)", got)
	}
}

func TestRecordPaymentInvalidAmount(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 500, 500)
	svc := NewService(store)

	for _, amount := range []float64{0, -10, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := svc.RecordPayment(context.Background(), 1, amount, 7, "")
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("amount %v: err = %v, want ErrInvalidArgument", amount, err)
		}
	}
	if got := store.balance(t, 1); got != 500 {
		t.Fatalf("balance = %v, want 500 untouched", got)
	}
	if len(store.payments) != 0 {
		t.Fatalf("payments persisted = %d, want 0", len(store.payments))
	}
}

func TestRecordPaymentUnknownCustomer(t *testing.T) {
	svc := NewService(newMemStore())

	_, err := svc.RecordPayment(context.Background(), 42, 100, 7, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordPaymentRollsBackOnBalanceFailure(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 500, 500)
	store.failAdjust = fmt.Errorf("%w: connection reset", ErrStoreUnavailable)
	svc := NewService(store)

	_, err := svc.RecordPayment(context.Background(), 1, 100, 7, "")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	if len(store.payments) != 0 {
		t.Fatal("payment persisted despite failed balance update")
	}
	if got := store.balance(t, 1); got != 500 {
		t.Fatalf("balance = %v, want 500 untouched", got)
	}
}

func TestRecordPaymentRetriesConflicts(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 500, 500)
	store.conflicts = maxRetries - 1
	svc := NewService(store)

	if _, err := svc.RecordPayment(context.Background(), 1, 100, 7, ""); err != nil {
		t.Fatalf("RecordPayment after transient conflicts: %v", err)
	}
	if got := store.balance(t, 1); got != 400 {
		t.Fatalf("balance = %v, want 400", got)
	}
}

func TestRecordPaymentConflictRetriesExhausted(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 500, 500)
	store.conflicts = maxRetries
	svc := NewService(store)

	_, err := svc.RecordPayment(context.Background(), 1, 100, 7, "")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if got := store.balance(t, 1); got != 500 {
		t.Fatalf("balance = %v, want 500 untouched", got)
	}
}

func TestReversePaymentIsExactInverse(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 500, 500)
	svc := NewService(store)

	p, err := svc.RecordPayment(context.Background(), 1, 237.50, 7, "")
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if _, err := svc.ReversePayment(context.Background(), p.ID); err != nil {
		t.Fatalf("ReversePayment: %v", err)
	}
	if got := store.balance(t, 1); got != 500 {
		t.Fatalf("balance = %v, want 500 restored", got)
	}
	if len(store.payments) != 0 {
		t.Fatal("payment still present after reversal")
	}
}

func TestReversePaymentTwiceFailsSecondTime(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 500, 500)
	svc := NewService(store)

	p, err := svc.RecordPayment(context.Background(), 1, 200, 7, "")
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if _, err := svc.ReversePayment(context.Background(), p.ID); err != nil {
		t.Fatalf("first ReversePayment: %v", err)
	}

	_, err = svc.ReversePayment(context.Background(), p.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("second reversal err = %v, want ErrNotFound", err)
	}
	if got := store.balance(t, 1); got != 500 {
		t.Fatalf("balance = %v, want 500 after single restore", got)
	}
}

func TestReversePaymentAfterCustomerDeleted(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 500, 500)
	svc := NewService(store)

	p, err := svc.RecordPayment(context.Background(), 1, 200, 7, "")
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	delete(store.customers, 1)

	if _, err := svc.ReversePayment(context.Background(), p.ID); err != nil {
		t.Fatalf("ReversePayment with deleted customer: %v", err)
	}
	if len(store.payments) != 0 {
		t.Fatal("payment still present after reversal")
	}
}

func TestRolloverCarryOverAccumulates(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 500, 0)
	store.addCustomer(2, 750, 100)
	svc := NewService(store)

	count, err := svc.RolloverBillingCycle(context.Background(), models.RolloverCarryOver)
	if err != nil {
		t.Fatalf("RolloverBillingCycle: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if got := store.balance(t, 1); got != 500 {
		t.Fatalf("customer 1 balance = %v, want 500", got)
	}
	if got := store.balance(t, 2); got != 850 {
		t.Fatalf("customer 2 balance = %v, want 850", got)
	}

	// Applying a second cycle stacks the fare again.
	if _, err := svc.RolloverBillingCycle(context.Background(), models.RolloverCarryOver); err != nil {
		t.Fatalf("second rollover: %v", err)
	}
	if got := store.balance(t, 2); got != 1600 {
		t.Fatalf("customer 2 balance = %v, want 1600 after two cycles", got)
	}
}

func TestRolloverForgiveResetsToFare(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 500, 1200)
	store.addCustomer(2, 500, -300)
	svc := NewService(store)

	count, err := svc.RolloverBillingCycle(context.Background(), models.RolloverForgive)
	if err != nil {
		t.Fatalf("RolloverBillingCycle: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if got := store.balance(t, 1); got != 500 {
		t.Fatalf("arrears customer balance = %v, want 500", got)
	}
	if got := store.balance(t, 2); got != 500 {
		t.Fatalf("credit customer balance = %v, want 500", got)
	}

	// Forgive is idempotent because it pins rather than increments.
	if _, err := svc.RolloverBillingCycle(context.Background(), models.RolloverForgive); err != nil {
		t.Fatalf("second rollover: %v", err)
	}
	if got := store.balance(t, 1); got != 500 {
		t.Fatalf("balance = %v, want 500 after repeated forgive", got)
	}
}

func TestRolloverUnknownStrategy(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 500, 0)
	svc := NewService(store)

	_, err := svc.RolloverBillingCycle(context.Background(), models.RolloverStrategy("write_off"))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	if got := store.balance(t, 1); got != 0 {
		t.Fatalf("balance = %v, want 0 untouched", got)
	}
}

// Full month cycle: the fare is settled in one payment, then the next cycle
// carries the new fare in.
func TestMonthCycleSinglePayment(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 500, 500)
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.RecordPayment(ctx, 1, 500, 7, ""); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if got := store.balance(t, 1); got != 0 {
		t.Fatalf("balance = %v, want 0 after settling", got)
	}
	if _, err := svc.RolloverBillingCycle(ctx, models.RolloverCarryOver); err != nil {
		t.Fatalf("RolloverBillingCycle: %v", err)
	}
	if got := store.balance(t, 1); got != 500 {
		t.Fatalf("balance = %v, want 500 for the new cycle", got)
	}
}

// Partial payments settle the fare across two instalments before a forgiving
// rollover starts the next cycle clean.
func TestMonthCycleInstalments(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 500, 500)
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.RecordPayment(ctx, 1, 200, 7, "first instalment"); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if _, err := svc.RecordPayment(ctx, 1, 300, 7, "second instalment"); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if got := store.balance(t, 1); got != 0 {
		t.Fatalf("balance = %v, want 0 after both instalments", got)
	}
	if _, err := svc.RolloverBillingCycle(ctx, models.RolloverForgive); err != nil {
		t.Fatalf("RolloverBillingCycle: %v", err)
	}
	if got := store.balance(t, 1); got != 500 {
		t.Fatalf("balance = %v, want 500 for the new cycle", got)
	}
}

// Concurrent payments against one customer must all land: the net balance
// change equals the sum of recorded amounts.
func TestConcurrentPaymentsNoLostUpdates(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 10000, 10000)
	svc := NewService(store)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordPayment(context.Background(), 1, 100, 7, ""); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent RecordPayment: %v", err)
	}

	if got := store.balance(t, 1); got != 10000-workers*100 {
		t.Fatalf("balance = %v, want %v", got, 10000-workers*100)
	}
	if len(store.payments) != workers {
		t.Fatalf("payments = %d, want %d", len(store.payments), workers)
	}
}
