package repositories

import (
	"context"
	"fmt"

	"fare-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type APIRequestLogRepository struct {
	DB *pgxpool.Pool
}

func NewAPIRequestLogRepository(db *pgxpool.Pool) *APIRequestLogRepository {
	return &APIRequestLogRepository{DB: db}
}

// InsertBatch writes a batch of request rows in one statement. Called from the
// async logging worker, never from the request path.
func (r *APIRequestLogRepository) InsertBatch(ctx context.Context, logs []*models.APIRequestLog) error {
	if len(logs) == 0 {
		return nil
	}

	query := `
		INSERT INTO api_request_logs
			(time, method, path, status_code, duration_ms, request_size, response_size, user_id, ip_address, user_agent)
		VALUES
	`
	args := make([]any, 0, len(logs)*10)
	for i, log := range logs {
		if i > 0 {
			query += ","
		}
		base := i * 10
		query += fmt.Sprintf(" ($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10)
		args = append(args,
			log.Time, log.Method, log.Path, log.StatusCode, log.DurationMs,
			log.RequestSize, log.ResponseSize, log.UserID, log.IPAddress, log.UserAgent,
		)
	}

	if _, err := r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert request logs: %w", err)
	}
	return nil
}
