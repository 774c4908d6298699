package repositories

import (
	"context"
	"fmt"

	"fare-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LoginLogRepository struct {
	DB *pgxpool.Pool
}

func NewLoginLogRepository(db *pgxpool.Pool) *LoginLogRepository {
	return &LoginLogRepository{DB: db}
}

func (r *LoginLogRepository) Create(ctx context.Context, log *models.LoginLog) error {
	query := `
		INSERT INTO login_logs (user_id, login_time, ip_address, user_agent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.DB.QueryRow(ctx, query,
		log.UserID, log.LoginTime, log.IPAddress, log.UserAgent,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

func (r *LoginLogRepository) List(ctx context.Context, limit int) ([]*models.LoginLog, error) {
	query := `
		SELECT ll.id, ll.user_id, COALESCE(u.name, ''), ll.login_time,
		       COALESCE(ll.ip_address, ''), COALESCE(ll.user_agent, ''), ll.created_at
		FROM login_logs ll
		LEFT JOIN users u ON ll.user_id = u.id
		ORDER BY ll.login_time DESC
		LIMIT $1
	`
	rows, err := r.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list login logs: %w", err)
	}
	defer rows.Close()

	logs := []*models.LoginLog{}
	for rows.Next() {
		log := &models.LoginLog{}
		err := rows.Scan(
			&log.ID,
			&log.UserID,
			&log.UserName,
			&log.LoginTime,
			&log.IPAddress,
			&log.UserAgent,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, nil
}
