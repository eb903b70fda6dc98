package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/db"
	"github.com/yigit/peers/internal/pkg/apperrors"
	"github.com/yigit/peers/internal/pkg/dberrors"
)

// VerificationRepository stores one pending verification code per user
type VerificationRepository struct {
	db *db.PostgresDB
}

var _ IVerificationRepository = (*VerificationRepository)(nil)

func NewVerificationRepository(database *db.PostgresDB) *VerificationRepository {
	return &VerificationRepository{db: database}
}

// Upsert replaces the user's pending code and resets its creation time and
// attempt count
func (r *VerificationRepository) Upsert(ctx context.Context, code *models.VerificationCode) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO verification_codes (user_id, code_hash, email, university, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			code_hash = EXCLUDED.code_hash,
			email = EXCLUDED.email,
			university = EXCLUDED.university,
			attempts = 0,
			created_at = EXCLUDED.created_at
		RETURNING attempts, created_at`,
		code.UserID, code.CodeHash, code.Email, code.University, code.CreatedAt).Scan(&code.Attempts, &code.CreatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewValidationError("unknown user or university")
		}
		return apperrors.NewUpstreamError(err, "failed to store verification code")
	}
	return nil
}

func (r *VerificationRepository) Get(ctx context.Context, userID int64) (*models.VerificationCode, error) {
	c := &models.VerificationCode{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT user_id, code_hash, email, university, attempts, created_at
		FROM verification_codes WHERE user_id = $1`, userID).
		Scan(&c.UserID, &c.CodeHash, &c.Email, &c.University, &c.Attempts, &c.CreatedAt)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("no pending verification")
		}
		return nil, apperrors.NewUpstreamError(err, "failed to get verification code")
	}
	return c, nil
}

// Delete removes the pending code if it is still codeHash. A code that was
// resent in the meantime is left alone.
func (r *VerificationRepository) Delete(ctx context.Context, userID int64, codeHash string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM verification_codes WHERE user_id = $1 AND code_hash = $2`, userID, codeHash)
	if err != nil {
		return apperrors.NewUpstreamError(err, "failed to delete verification code")
	}
	return nil
}

func (r *VerificationRepository) RecordFailedAttempt(ctx context.Context, userID int64, codeHash string) (int, error) {
	var attempts int
	err := r.db.Pool.QueryRow(ctx, `
		UPDATE verification_codes SET attempts = attempts + 1
		WHERE user_id = $1 AND code_hash = $2
		RETURNING attempts`, userID, codeHash).Scan(&attempts)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return 0, apperrors.NewResourceNotFoundError("no pending verification")
		}
		return 0, apperrors.NewUpstreamError(err, "failed to count verification attempt")
	}
	return attempts, nil
}

// Complete consumes the pending code and flags the user as a verified
// student of its university in one transaction. Nothing changes when the
// code was resent, consumed or locked out since it was read.
func (r *VerificationRepository) Complete(ctx context.Context, code *models.VerificationCode, maxAttempts int) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM verification_codes
			WHERE user_id = $1 AND code_hash = $2 AND attempts < $3`,
			code.UserID, code.CodeHash, maxAttempts)
		if err != nil {
			return apperrors.NewUpstreamError(err, "failed to consume verification code")
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewConflictError("verification code is no longer valid, request a new one")
		}

		tag, err = tx.Exec(ctx, `
			UPDATE users SET is_verified_student = TRUE, university = $2, updated_at = NOW()
			WHERE id = $1`, code.UserID, code.University)
		if err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.NewValidationError("unknown university")
			}
			return apperrors.NewUpstreamError(err, "failed to verify user")
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewResourceNotFoundError(fmt.Sprintf("user %d not found", code.UserID))
		}
		return nil
	})
}
