package repositories

import (
	"context"
	"errors"
	"fmt"

	"fare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LocationRepository struct {
	DB *pgxpool.Pool
}

func NewLocationRepository(db *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{DB: db}
}

func (r *LocationRepository) Create(ctx context.Context, req *models.CreateLocationRequest) (*models.Location, error) {
	query := `
		INSERT INTO locations (name)
		VALUES ($1)
		RETURNING id, created_at, updated_at
	`
	location := &models.Location{Name: req.Name}
	err := r.DB.QueryRow(ctx, query, req.Name).
		Scan(&location.ID, &location.CreatedAt, &location.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	return location, nil
}

func (r *LocationRepository) GetByID(ctx context.Context, id int) (*models.Location, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM locations
		WHERE id = $1
	`
	location := &models.Location{}
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&location.ID,
		&location.Name,
		&location.CreatedAt,
		&location.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("location not found")
		}
		return nil, err
	}
	return location, nil
}

// List returns all locations with their assigned customer counts.
func (r *LocationRepository) List(ctx context.Context) ([]*models.Location, error) {
	query := `
		SELECT l.id, l.name, COUNT(c.id) AS customer_count, l.created_at, l.updated_at
		FROM locations l
		LEFT JOIN customers c ON c.location_id = l.id
		GROUP BY l.id
		ORDER BY l.name ASC
	`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	locations := []*models.Location{}
	for rows.Next() {
		location := &models.Location{}
		err := rows.Scan(
			&location.ID,
			&location.Name,
			&location.CustomerCount,
			&location.CreatedAt,
			&location.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, nil
}

func (r *LocationRepository) Update(ctx context.Context, id int, req *models.UpdateLocationRequest) (*models.Location, error) {
	query := `
		UPDATE locations
		SET name = $1, updated_at = NOW()
		WHERE id = $2
	`
	tag, err := r.DB.Exec(ctx, query, req.Name, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("location not found")
	}
	return r.GetByID(ctx, id)
}

func (r *LocationRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, "DELETE FROM locations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("location not found")
	}
	return nil
}
