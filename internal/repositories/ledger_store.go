package repositories

import (
	"context"
	"errors"
	"fmt"

	"fare-backend/internal/ledger"
	"fare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the query surface shared by pgxpool.Pool and pgx.Tx, so the same
// store code runs both inside and outside a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LedgerStore implements ledger.Store on Postgres.
type LedgerStore struct {
	DB *pgxpool.Pool
}

func NewLedgerStore(db *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{DB: db}
}

func (s *LedgerStore) Customers() ledger.CustomerStore {
	return &customerStore{q: s.DB}
}

func (s *LedgerStore) Payments() ledger.PaymentStore {
	return &paymentStore{q: s.DB}
}

// WithTx runs fn with both stores bound to a single transaction and commits
// only when fn returns nil.
func (s *LedgerStore) WithTx(ctx context.Context, fn func(ledger.CustomerStore, ledger.PaymentStore) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&customerStore{q: tx}, &paymentStore{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError(err)
	}
	return nil
}

// mapError translates driver errors into the ledger's error kinds. Postgres
// serialization failures (40001) and deadlocks (40P01) become ErrConflict so
// the engine retries them.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ledger.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %v", ledger.ErrConflict, err)
		}
	}
	return fmt.Errorf("%w: %v", ledger.ErrStoreUnavailable, err)
}

type customerStore struct {
	q querier
}

func (s *customerStore) Get(ctx context.Context, id int) (*models.Customer, error) {
	query := `
		SELECT c.id, c.name, c.phone, c.location_id, COALESCE(l.name, ''),
		       c.fixed_fare, c.balance, c.created_at, c.updated_at
		FROM customers c
		LEFT JOIN locations l ON c.location_id = l.id
		WHERE c.id = $1
	`
	customer := &models.Customer{}
	err := s.q.QueryRow(ctx, query, id).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Phone,
		&customer.LocationID,
		&customer.LocationName,
		&customer.FixedFare,
		&customer.Balance,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", id, ledger.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return customer, nil
}

// AdjustBalance applies a relative update so concurrent adjustments serialize
// on the row instead of clobbering each other's reads.
func (s *customerStore) AdjustBalance(ctx context.Context, id int, delta float64) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE customers
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`, delta, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer %d: %w", id, ledger.ErrNotFound)
	}
	return nil
}

// ApplyRollover rebalances every customer in one statement under an advisory
// lock, so two concurrent rollovers queue instead of interleaving and no
// reader observes a half-applied cycle.
func (s *customerStore) ApplyRollover(ctx context.Context, strategy models.RolloverStrategy) (int64, error) {
	if _, err := s.q.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", rolloverLockID); err != nil {
		return 0, mapError(err)
	}

	var query string
	switch strategy {
	case models.RolloverCarryOver:
		query = `UPDATE customers SET balance = balance + fixed_fare, updated_at = NOW()`
	case models.RolloverForgive:
		query = `UPDATE customers SET balance = fixed_fare, updated_at = NOW()`
	default:
		return 0, fmt.Errorf("%w: unknown rollover strategy %q", ledger.ErrInvalidArgument, strategy)
	}

	tag, err := s.q.Exec(ctx, query)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

// rolloverLockID keys the advisory lock guarding billing cycle rollovers.
const rolloverLockID = 7230051

type paymentStore struct {
	q querier
}

func (s *paymentStore) Create(ctx context.Context, payment *models.Payment) error {
	var nextNum int
	if err := s.q.QueryRow(ctx, "SELECT nextval('receipt_number_seq')").Scan(&nextNum); err != nil {
		return mapError(err)
	}
	receiptNumber := fmt.Sprintf("RCP-%06d", nextNum)

	query := `
		INSERT INTO payments (receipt_number, customer_id, amount, recorded_by_user_id, notes, paid_at)
		VALUES ($1, $2, $3, NULLIF($4, 0), $5, $6)
		RETURNING id, created_at
	`
	err := s.q.QueryRow(ctx, query,
		receiptNumber,
		payment.CustomerID,
		payment.Amount,
		payment.RecordedByUserID,
		payment.Notes,
		payment.PaidAt,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return mapError(err)
	}

	payment.ReceiptNumber = receiptNumber
	return nil
}

func (s *paymentStore) Get(ctx context.Context, id int) (*models.Payment, error) {
	query := `
		SELECT p.id, p.receipt_number, p.customer_id, COALESCE(c.name, ''),
		       p.amount, COALESCE(p.recorded_by_user_id, 0), COALESCE(u.name, ''),
		       COALESCE(p.notes, ''), p.paid_at, p.created_at
		FROM payments p
		LEFT JOIN customers c ON p.customer_id = c.id
		LEFT JOIN users u ON p.recorded_by_user_id = u.id
		WHERE p.id = $1
	`
	payment := &models.Payment{}
	err := s.q.QueryRow(ctx, query, id).Scan(
		&payment.ID,
		&payment.ReceiptNumber,
		&payment.CustomerID,
		&payment.CustomerName,
		&payment.Amount,
		&payment.RecordedByUserID,
		&payment.RecordedByName,
		&payment.Notes,
		&payment.PaidAt,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("payment %d: %w", id, ledger.ErrNotFound)
		}
		return nil, mapError(err)
	}
	return payment, nil
}

func (s *paymentStore) Delete(ctx context.Context, id int) error {
	tag, err := s.q.Exec(ctx, "DELETE FROM payments WHERE id = $1", id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment %d: %w", id, ledger.ErrNotFound)
	}
	return nil
}
