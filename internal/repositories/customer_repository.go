package repositories

import (
	"context"
	"errors"
	"fmt"

	"fare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

// Create inserts a customer. The opening balance is the fixed fare: a new
// customer owes exactly one billing cycle.
func (r *CustomerRepository) Create(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	query := `
		INSERT INTO customers (name, phone, location_id, fixed_fare, balance)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, created_at, updated_at
	`
	customer := &models.Customer{
		Name:       req.Name,
		Phone:      req.Phone,
		LocationID: req.LocationID,
		FixedFare:  req.FixedFare,
		Balance:    req.FixedFare,
	}
	err := r.DB.QueryRow(ctx, query, req.Name, req.Phone, req.LocationID, req.FixedFare).
		Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int) (*models.Customer, error) {
	query := `
		SELECT c.id, c.name, c.phone, c.location_id, COALESCE(l.name, ''),
		       c.fixed_fare, c.balance, c.created_at, c.updated_at
		FROM customers c
		LEFT JOIN locations l ON c.location_id = l.id
		WHERE c.id = $1
	`
	customer := &models.Customer{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
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
			return nil, fmt.Errorf("customer not found")
		}
		return nil, err
	}
	return customer, nil
}

// List returns a page of customers, optionally filtered by a name/phone search
// term and by location.
func (r *CustomerRepository) List(ctx context.Context, page, limit int, search string, locationID int) (*models.CustomerPage, error) {
	where := "WHERE 1=1"
	args := []any{}
	argPos := 1

	if search != "" {
		where += fmt.Sprintf(" AND (c.name ILIKE $%d OR c.phone ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+search+"%")
		argPos++
	}
	if locationID > 0 {
		where += fmt.Sprintf(" AND c.location_id = $%d", argPos)
		args = append(args, locationID)
		argPos++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM customers c " + where
	if err := r.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT c.id, c.name, c.phone, c.location_id, COALESCE(l.name, ''),
		       c.fixed_fare, c.balance, c.created_at, c.updated_at
		FROM customers c
		LEFT JOIN locations l ON c.location_id = l.id
		%s
		ORDER BY c.name ASC
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		customer := &models.Customer{}
		err := rows.Scan(
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
			return nil, err
		}
		customers = append(customers, customer)
	}

	totalPages := (total + limit - 1) / limit
	return &models.CustomerPage{
		Customers:  customers,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Update changes a customer's profile fields. The balance is left alone: it
// only moves through payments and rollovers.
func (r *CustomerRepository) Update(ctx context.Context, id int, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	query := `
		UPDATE customers
		SET name = $1, phone = $2, location_id = $3, fixed_fare = $4, updated_at = NOW()
		WHERE id = $5
	`
	tag, err := r.DB.Exec(ctx, query, req.Name, req.Phone, req.LocationID, req.FixedFare, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("customer not found")
	}
	return r.GetByID(ctx, id)
}

// Delete removes a customer. Payment rows survive the deletion so the payment
// log keeps its history.
func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, "DELETE FROM customers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer not found")
	}
	return nil
}

// ListUnpaid returns every customer still owing money (balance > 0), optionally
// scoped to a location, ordered by largest debt first.
func (r *CustomerRepository) ListUnpaid(ctx context.Context, locationID int) ([]*models.Customer, error) {
	query := `
		SELECT c.id, c.name, c.phone, c.location_id, COALESCE(l.name, ''),
		       c.fixed_fare, c.balance, c.created_at, c.updated_at
		FROM customers c
		LEFT JOIN locations l ON c.location_id = l.id
		WHERE c.balance > 0
	`
	args := []any{}
	if locationID > 0 {
		query += " AND c.location_id = $1"
		args = append(args, locationID)
	}
	query += " ORDER BY c.balance DESC, c.name ASC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid customers: %w", err)
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		customer := &models.Customer{}
		err := rows.Scan(
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
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

// ListAll returns every customer regardless of balance, grouped by location,
// for full-roster exports.
func (r *CustomerRepository) ListAll(ctx context.Context) ([]*models.Customer, error) {
	query := `
		SELECT c.id, c.name, c.phone, c.location_id, COALESCE(l.name, ''),
		       c.fixed_fare, c.balance, c.created_at, c.updated_at
		FROM customers c
		LEFT JOIN locations l ON c.location_id = l.id
		ORDER BY l.name ASC, c.name ASC
	`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		customer := &models.Customer{}
		err := rows.Scan(
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
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

// CountByLocation reports how many customers are assigned to a location,
// used to refuse deleting a location still in use.
func (r *CustomerRepository) CountByLocation(ctx context.Context, locationID int) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, "SELECT COUNT(*) FROM customers WHERE location_id = $1", locationID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
