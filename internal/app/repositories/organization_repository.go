package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/peers/internal/app/feed"
	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/db"
	"github.com/yigit/peers/internal/pkg/apperrors"
	"github.com/yigit/peers/internal/pkg/dberrors"
)

var organizationColumns = []string{
	"o.id", "o.name", "o.type", "o.description", "o.image", "o.email", "o.website",
	"o.instagram", "o.discord", "o.university", "o.created_at", "o.updated_at",
	"COALESCE((SELECT array_agg(a.user_id ORDER BY a.user_id) FROM organization_admins a WHERE a.organization_id = o.id), '{}')",
}

// OrganizationRepository handles organization database operations
type OrganizationRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

var _ IOrganizationRepository = (*OrganizationRepository)(nil)

func NewOrganizationRepository(database *db.PostgresDB) *OrganizationRepository {
	return &OrganizationRepository{db: database, sb: statementBuilder()}
}

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	o := &models.Organization{}
	err := row.Scan(
		&o.ID, &o.Name, &o.Type, &o.Description, &o.Image, &o.Email, &o.Website,
		&o.Instagram, &o.Discord, &o.University, &o.CreatedAt, &o.UpdatedAt, &o.AdminIDs,
	)
	return o, err
}

func mapOrganizationWriteError(err error, action string) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "organizations_name_key"):
		return apperrors.NewConflictError("an organization with this name already exists")
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.NewValidationError("organization references an unknown university or user")
	}
	return apperrors.NewUpstreamError(err, "failed to "+action)
}

// Create inserts the organization and its first admin in one transaction
func (r *OrganizationRepository) Create(ctx context.Context, o *models.Organization, creatorID int64) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("organizations").
			Columns("name", "type", "description", "image", "email", "website", "instagram", "discord", "university").
			Values(o.Name, o.Type, o.Description, o.Image, o.Email, o.Website, o.Instagram, o.Discord, o.University).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create organization query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return mapOrganizationWriteError(err, "create organization")
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO organization_admins (organization_id, user_id) VALUES ($1, $2)`,
			o.ID, creatorID); err != nil {
			return mapOrganizationWriteError(err, "add first admin")
		}
		o.AdminIDs = []int64{creatorID}
		return nil
	})
}

// GetByID retrieves an organization with its admin ids
func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	sql, args, err := r.sb.Select(organizationColumns...).
		From("organizations o").
		Where(squirrel.Eq{"o.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get organization query: %w", err)
	}

	o, err := scanOrganization(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("organization %d not found", id))
		}
		return nil, apperrors.NewUpstreamError(err, "failed to get organization")
	}
	return o, nil
}

// List returns every organization ordered by id
func (r *OrganizationRepository) List(ctx context.Context) ([]models.Organization, error) {
	sql, args, err := r.sb.Select(organizationColumns...).From("organizations o").OrderBy("o.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list organizations query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to list organizations")
	}
	defer rows.Close()

	orgs := []models.Organization{}
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, apperrors.NewUpstreamError(err, "failed to scan organization")
		}
		orgs = append(orgs, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to iterate organizations")
	}
	return orgs, nil
}

// Update writes the editable fields
func (r *OrganizationRepository) Update(ctx context.Context, o *models.Organization) error {
	sql, args, err := r.sb.Update("organizations").
		SetMap(map[string]interface{}{
			"name":        o.Name,
			"type":        o.Type,
			"description": o.Description,
			"image":       o.Image,
			"email":       o.Email,
			"website":     o.Website,
			"instagram":   o.Instagram,
			"discord":     o.Discord,
			"university":  o.University,
			"updated_at":  squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": o.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update organization query: %w", err)
	}

	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&o.UpdatedAt); err != nil {
		if dberrors.IsNoRows(err) {
			return apperrors.NewResourceNotFoundError(fmt.Sprintf("organization %d not found", o.ID))
		}
		return mapOrganizationWriteError(err, "update organization")
	}
	return nil
}

// Delete removes an organization together with the events it hosts
func (r *OrganizationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewUpstreamError(err, "failed to delete organization")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("organization %d not found", id))
	}
	return nil
}

// AddAdmin makes userID an admin. Adding an existing admin is a no-op.
func (r *OrganizationRepository) AddAdmin(ctx context.Context, orgID, userID int64) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO organization_admins (organization_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		orgID, userID)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("organization or user not found")
		}
		return apperrors.NewUpstreamError(err, "failed to add admin")
	}
	return nil
}

// RemoveAdmin implements IOrganizationRepository. The organization row is
// locked so two concurrent removals cannot both pass the last-admin check.
func (r *OrganizationRepository) RemoveAdmin(ctx context.Context, orgID, userID int64) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, `SELECT id FROM organizations WHERE id = $1 FOR UPDATE`, orgID).Scan(&id); err != nil {
			if dberrors.IsNoRows(err) {
				return apperrors.NewResourceNotFoundError(fmt.Sprintf("organization %d not found", orgID))
			}
			return apperrors.NewUpstreamError(err, "failed to lock organization")
		}

		var admins int
		var isAdmin bool
		err := tx.QueryRow(ctx, `
			SELECT COUNT(*), COALESCE(bool_or(user_id = $2), FALSE)
			FROM organization_admins WHERE organization_id = $1`, orgID, userID).Scan(&admins, &isAdmin)
		if err != nil {
			return apperrors.NewUpstreamError(err, "failed to count admins")
		}
		if !isAdmin {
			return apperrors.NewResourceNotFoundError(fmt.Sprintf("user %d is not an admin", userID))
		}
		if admins <= 1 {
			return apperrors.NewConflictError("cannot remove the last admin of an organization")
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM organization_admins WHERE organization_id = $1 AND user_id = $2`,
			orgID, userID); err != nil {
			return apperrors.NewUpstreamError(err, "failed to remove admin")
		}
		return nil
	})
}

// HostCandidates returns every organization that hosted at least one event
// together with the tags of the events it hosted
func (r *OrganizationRepository) HostCandidates(ctx context.Context) ([]feed.HostCandidate, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT o.id, o.name, o.image, o.university,
			COUNT(DISTINCT e.id)::int AS hosted,
			COALESCE(array_agg(DISTINCT et.tag_id) FILTER (WHERE et.tag_id IS NOT NULL), '{}') AS tag_ids
		FROM organizations o
		JOIN events e ON e.org_host_id = o.id
		LEFT JOIN event_tags et ON et.event_id = e.id
		GROUP BY o.id
		ORDER BY o.id`)
	if err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to load organization hosts")
	}
	defer rows.Close()

	out := []feed.HostCandidate{}
	for rows.Next() {
		var (
			id int64
			c  feed.HostCandidate
		)
		if err := rows.Scan(&id, &c.Name, &c.Image, &c.University, &c.HostedEvents, &c.HostedTagIDs); err != nil {
			return nil, apperrors.NewUpstreamError(err, "failed to scan organization host")
		}
		c.Host = models.OrganizationHost(id)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to iterate organization hosts")
	}
	return out, nil
}
