package repositories

import (
	"context"
	"errors"
	"fmt"

	"fare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OnlineTransactionRepository struct {
	DB *pgxpool.Pool
}

func NewOnlineTransactionRepository(db *pgxpool.Pool) *OnlineTransactionRepository {
	return &OnlineTransactionRepository{DB: db}
}

func (r *OnlineTransactionRepository) Create(ctx context.Context, tx *models.OnlineTransaction) error {
	query := `
		INSERT INTO online_transactions (razorpay_order_id, customer_id, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(ctx, query,
		tx.RazorpayOrderID, tx.CustomerID, tx.Amount, tx.Status,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create online transaction: %w", err)
	}
	return nil
}

const onlineTxColumns = `
	t.id, t.razorpay_order_id, COALESCE(t.razorpay_payment_id, ''),
	t.customer_id, COALESCE(c.name, ''), t.amount,
	COALESCE(t.utr_number, ''), COALESCE(t.payment_method, ''), COALESCE(t.vpa, ''),
	t.status, COALESCE(t.failure_reason, ''), t.payment_id, t.created_at, t.completed_at
`

func scanOnlineTx(row pgx.Row) (*models.OnlineTransaction, error) {
	tx := &models.OnlineTransaction{}
	err := row.Scan(
		&tx.ID,
		&tx.RazorpayOrderID,
		&tx.RazorpayPaymentID,
		&tx.CustomerID,
		&tx.CustomerName,
		&tx.Amount,
		&tx.UTRNumber,
		&tx.PaymentMethod,
		&tx.VPA,
		&tx.Status,
		&tx.FailureReason,
		&tx.PaymentID,
		&tx.CreatedAt,
		&tx.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (r *OnlineTransactionRepository) GetByOrderID(ctx context.Context, orderID string) (*models.OnlineTransaction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM online_transactions t
		LEFT JOIN customers c ON t.customer_id = c.id
		WHERE t.razorpay_order_id = $1
	`, onlineTxColumns)
	tx, err := scanOnlineTx(r.DB.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction not found")
		}
		return nil, err
	}
	return tx, nil
}

// MarkSuccess records the captured payment details and the ledger payment id.
// The WHERE status = 'pending' guard makes capture idempotent: the webhook and
// the frontend verification can both fire without double-crediting.
func (r *OnlineTransactionRepository) MarkSuccess(ctx context.Context, orderID, paymentRefID, signature, utr, method, vpa string, ledgerPaymentID int) (bool, error) {
	query := `
		UPDATE online_transactions
		SET razorpay_payment_id = $1, razorpay_signature = $2, utr_number = $3,
		    payment_method = $4, vpa = $5, payment_id = $6, status = 'success', completed_at = NOW()
		WHERE razorpay_order_id = $7 AND status = 'pending'
	`
	tag, err := r.DB.Exec(ctx, query, paymentRefID, signature, utr, method, vpa, ledgerPaymentID, orderID)
	if err != nil {
		return false, fmt.Errorf("failed to mark transaction success: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OnlineTransactionRepository) MarkFailed(ctx context.Context, orderID, reason string) error {
	query := `
		UPDATE online_transactions
		SET status = 'failed', failure_reason = $1, completed_at = NOW()
		WHERE razorpay_order_id = $2 AND status = 'pending'
	`
	if _, err := r.DB.Exec(ctx, query, reason, orderID); err != nil {
		return fmt.Errorf("failed to mark transaction failed: %w", err)
	}
	return nil
}

func (r *OnlineTransactionRepository) List(ctx context.Context, limit int) ([]*models.OnlineTransaction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM online_transactions t
		LEFT JOIN customers c ON t.customer_id = c.id
		ORDER BY t.created_at DESC
		LIMIT $1
	`, onlineTxColumns)

	rows, err := r.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list online transactions: %w", err)
	}
	defer rows.Close()

	txs := []*models.OnlineTransaction{}
	for rows.Next() {
		tx, err := scanOnlineTx(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
