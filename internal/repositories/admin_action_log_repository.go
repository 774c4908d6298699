package repositories

import (
	"context"
	"fmt"

	"fare-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminActionLogRepository struct {
	DB *pgxpool.Pool
}

func NewAdminActionLogRepository(db *pgxpool.Pool) *AdminActionLogRepository {
	return &AdminActionLogRepository{DB: db}
}

func (r *AdminActionLogRepository) Create(ctx context.Context, log *models.AdminActionLog) error {
	query := `
		INSERT INTO admin_action_logs (admin_user_id, action_type, target_type, target_id, description, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(ctx, query,
		log.AdminUserID, log.ActionType, log.TargetType, log.TargetID, log.Description, log.IPAddress,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record admin action: %w", err)
	}
	return nil
}

func (r *AdminActionLogRepository) List(ctx context.Context, limit int, actionType string) ([]*models.AdminActionLog, error) {
	query := `
		SELECT id, admin_user_id, action_type, COALESCE(target_type, ''),
		       target_id, COALESCE(description, ''), ip_address, created_at
		FROM admin_action_logs
	`
	args := []any{}
	if actionType != "" {
		query += " WHERE action_type = $1"
		args = append(args, actionType)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin actions: %w", err)
	}
	defer rows.Close()

	logs := []*models.AdminActionLog{}
	for rows.Next() {
		log := &models.AdminActionLog{}
		err := rows.Scan(
			&log.ID,
			&log.AdminUserID,
			&log.ActionType,
			&log.TargetType,
			&log.TargetID,
			&log.Description,
			&log.IPAddress,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, nil
}
