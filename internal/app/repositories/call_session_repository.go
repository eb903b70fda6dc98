package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/db"
	"github.com/yigit/peers/internal/pkg/apperrors"
	"github.com/yigit/peers/internal/pkg/dberrors"
)

// CallSessionRepository persists call sessions and the points they earn
type CallSessionRepository struct {
	db *db.PostgresDB
}

var _ ICallSessionRepository = (*CallSessionRepository)(nil)

func NewCallSessionRepository(database *db.PostgresDB) *CallSessionRepository {
	return &CallSessionRepository{db: database}
}

// Record inserts the session and adds its points to the user's total
func (r *CallSessionRepository) Record(ctx context.Context, s *models.CallSession) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO call_sessions (event_id, user_id, joined_at, left_at, points)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			s.EventID, s.UserID, s.JoinedAt, s.LeftAt, s.Points).Scan(&s.ID)
		if err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.NewResourceNotFoundError("event or user not found")
			}
			return apperrors.NewUpstreamError(err, "failed to record call session")
		}

		if s.Points == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx,
			`UPDATE users SET points = points + $2, updated_at = NOW() WHERE id = $1`,
			s.UserID, s.Points); err != nil {
			return apperrors.NewUpstreamError(err, "failed to credit points")
		}
		return nil
	})
}
