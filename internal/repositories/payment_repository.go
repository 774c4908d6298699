package repositories

import (
	"context"
	"fmt"
	"time"

	"fare-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository covers read-side payment queries. Writes (record, reverse)
// go through the ledger store so they stay transactional with balances.
type PaymentRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

const paymentColumns = `
	p.id, p.receipt_number, p.customer_id, COALESCE(c.name, ''),
	p.amount, COALESCE(p.recorded_by_user_id, 0), COALESCE(u.name, ''),
	COALESCE(p.notes, ''), p.paid_at, p.created_at
`

func scanPayment(row interface{ Scan(dest ...any) error }) (*models.Payment, error) {
	payment := &models.Payment{}
	err := row.Scan(
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
		return nil, err
	}
	return payment, nil
}

// ListByCustomer returns a customer's payments, newest first, with the total.
func (r *PaymentRepository) ListByCustomer(ctx context.Context, customerID int) ([]*models.Payment, float64, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM payments p
		LEFT JOIN customers c ON p.customer_id = c.id
		LEFT JOIN users u ON p.recorded_by_user_id = u.id
		WHERE p.customer_id = $1
		ORDER BY p.paid_at DESC, p.id DESC
	`, paymentColumns)

	rows, err := r.DB.Query(ctx, query, customerID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*models.Payment{}
	var total float64
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, payment)
		total += payment.Amount
	}
	return payments, total, nil
}

// List returns recent payments across all customers, newest first.
func (r *PaymentRepository) List(ctx context.Context, limit int) ([]*models.Payment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM payments p
		LEFT JOIN customers c ON p.customer_id = c.id
		LEFT JOIN users u ON p.recorded_by_user_id = u.id
		ORDER BY p.paid_at DESC, p.id DESC
		LIMIT $1
	`, paymentColumns)

	rows, err := r.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, nil
}

// MonthlyIncome returns collected totals per month for the trailing twelve
// months, oldest first. Months with no payments are filled with zero.
func (r *PaymentRepository) MonthlyIncome(ctx context.Context, now time.Time) ([]*models.MonthlyIncome, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)

	query := `
		SELECT EXTRACT(YEAR FROM paid_at)::int, EXTRACT(MONTH FROM paid_at)::int,
		       COALESCE(SUM(amount), 0)
		FROM payments
		WHERE paid_at >= $1
		GROUP BY 1, 2
	`
	rows, err := r.DB.Query(ctx, query, start)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly income: %w", err)
	}
	defer rows.Close()

	totals := map[[2]int]float64{}
	for rows.Next() {
		var year, month int
		var total float64
		if err := rows.Scan(&year, &month, &total); err != nil {
			return nil, err
		}
		totals[[2]int{year, month}] = total
	}

	income := make([]*models.MonthlyIncome, 0, 12)
	for i := 0; i < 12; i++ {
		m := start.AddDate(0, i, 0)
		income = append(income, &models.MonthlyIncome{
			Year:  m.Year(),
			Month: int(m.Month()),
			Total: totals[[2]int{m.Year(), int(m.Month())}],
		})
	}
	return income, nil
}

// CollectedSince sums payments recorded at or after the given time.
func (r *PaymentRepository) CollectedSince(ctx context.Context, since time.Time) (float64, error) {
	var total float64
	err := r.DB.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE paid_at >= $1", since,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum collected payments: %w", err)
	}
	return total, nil
}

// TotalOutstanding sums positive balances across all customers.
func (r *PaymentRepository) TotalOutstanding(ctx context.Context) (float64, error) {
	var total float64
	err := r.DB.QueryRow(ctx,
		"SELECT COALESCE(SUM(balance), 0) FROM customers WHERE balance > 0",
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum outstanding balances: %w", err)
	}
	return total, nil
}
