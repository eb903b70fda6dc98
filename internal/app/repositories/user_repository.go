package repositories

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/peers/internal/app/feed"
	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/db"
	"github.com/yigit/peers/internal/pkg/apperrors"
	"github.com/yigit/peers/internal/pkg/dberrors"
	"github.com/yigit/peers/internal/pkg/validation"
)

var userColumns = []string{
	"id", "email", "username", "first_name", "last_name", "bio", "image",
	"website", "instagram", "linkedin", "is_verified_student", "points",
	"university", "created_at", "updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

var _ IUserRepository = (*UserRepository)(nil)

func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{db: database, sb: statementBuilder()}
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Bio, &u.Image,
		&u.Website, &u.Instagram, &u.LinkedIn, &u.IsVerifiedStudent, &u.Points,
		&u.University, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

// EnsureUser inserts the user on first authenticated request. The username
// is derived from the email, suffixed with the id when already taken.
func (r *UserRepository) EnsureUser(ctx context.Context, id int64, email string) (*models.User, error) {
	email = validation.NormalizeEmail(email)
	base := validation.UsernameFromEmail(email)

	for _, username := range []string{base, base + "_" + strconv.FormatInt(id, 10)} {
		_, err := r.db.Pool.Exec(ctx, `
			INSERT INTO users (id, email, username) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, updated_at = NOW()
			WHERE users.email <> EXCLUDED.email`,
			id, email, username)
		switch {
		case err == nil:
			return r.GetByID(ctx, id)
		case dberrors.IsDuplicateConstraintError(err, "users_username_key"):
			continue
		case dberrors.IsDuplicateConstraintError(err, "users_email_key"):
			return nil, apperrors.NewConflictError("email is already used by another account")
		default:
			return nil, apperrors.NewUpstreamError(err, "failed to ensure user")
		}
	}
	return nil, apperrors.NewConflictError("could not allocate a username")
}

// GetByID retrieves a user with interests
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	u, err := scanUser(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("user %d not found", id))
		}
		return nil, apperrors.NewUpstreamError(err, "failed to get user")
	}

	u.Interests, err = r.interests(ctx, id)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) interests(ctx context.Context, userID int64) ([]models.Tag, error) {
	sql, args, err := r.sb.Select("t.id", "t.category", "t.name").
		From("user_interests ui").
		Join("tags t ON t.id = ui.tag_id").
		Where(squirrel.Eq{"ui.user_id": userID}).
		OrderBy("t.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build interests query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to load interests")
	}
	tags, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.Tag])
	if err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to scan interests")
	}
	return tags, nil
}

// List returns every user ordered by id, without interests
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to list users")
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.NewUpstreamError(err, "failed to scan user")
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to iterate users")
	}
	return users, nil
}

// Update writes the editable profile fields
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	sql, args, err := r.sb.Update("users").
		SetMap(map[string]interface{}{
			"username":   u.Username,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"bio":        u.Bio,
			"image":      u.Image,
			"website":    u.Website,
			"instagram":  u.Instagram,
			"linkedin":   u.LinkedIn,
			"updated_at": squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": u.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(&u.UpdatedAt)
	switch {
	case err == nil:
		return nil
	case dberrors.IsNoRows(err):
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("user %d not found", u.ID))
	case dberrors.IsDuplicateConstraintError(err, "users_username_key"):
		return apperrors.NewConflictError("username is already taken")
	}
	return apperrors.NewUpstreamError(err, "failed to update user")
}

// SetInterests replaces the user's interests in one transaction
func (r *UserRepository) SetInterests(ctx context.Context, userID int64, tagIDs []int64) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_interests WHERE user_id = $1`, userID); err != nil {
			return apperrors.NewUpstreamError(err, "failed to clear interests")
		}
		if len(tagIDs) == 0 {
			return nil
		}

		insert := r.sb.Insert("user_interests").Columns("user_id", "tag_id").Suffix("ON CONFLICT DO NOTHING")
		for _, id := range tagIDs {
			insert = insert.Values(userID, id)
		}
		sql, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build interests insert: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.NewValidationError("unknown tag or user")
			}
			return apperrors.NewUpstreamError(err, "failed to set interests")
		}
		return nil
	})
}

// HostCandidates returns every user that hosted at least one event together
// with the tags of the events they hosted
func (r *UserRepository) HostCandidates(ctx context.Context) ([]feed.HostCandidate, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name, u.image, u.university,
			COUNT(DISTINCT e.id)::int AS hosted,
			COALESCE(array_agg(DISTINCT et.tag_id) FILTER (WHERE et.tag_id IS NOT NULL), '{}') AS tag_ids
		FROM users u
		JOIN events e ON e.user_host_id = u.id
		LEFT JOIN event_tags et ON et.event_id = e.id
		GROUP BY u.id
		ORDER BY u.id`)
	if err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to load user hosts")
	}
	defer rows.Close()

	out := []feed.HostCandidate{}
	for rows.Next() {
		var (
			u models.User
			c feed.HostCandidate
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &c.Image, &c.University, &c.HostedEvents, &c.HostedTagIDs); err != nil {
			return nil, apperrors.NewUpstreamError(err, "failed to scan user host")
		}
		c.Host = models.UserHost(u.ID)
		c.Name = u.DisplayName()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to iterate user hosts")
	}
	return out, nil
}
