package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/db"
	"github.com/yigit/peers/internal/pkg/apperrors"
	"github.com/yigit/peers/internal/pkg/dberrors"
)

// TagRepository handles tag database operations
type TagRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

var _ ITagRepository = (*TagRepository)(nil)

func NewTagRepository(database *db.PostgresDB) *TagRepository {
	return &TagRepository{db: database, sb: statementBuilder()}
}

func (r *TagRepository) collect(ctx context.Context, query squirrel.SelectBuilder) ([]models.Tag, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build tags query: %w", err)
	}
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to list tags")
	}
	tags, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.Tag])
	if err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to scan tags")
	}
	return tags, nil
}

// List returns every tag ordered by category then name
func (r *TagRepository) List(ctx context.Context) ([]models.Tag, error) {
	return r.collect(ctx, r.sb.Select("id", "category", "name").From("tags").OrderBy("category", "name"))
}

// GetByIDs returns the tags among ids that exist. Unknown ids are skipped.
func (r *TagRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Tag, error) {
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}
	return r.collect(ctx, r.sb.Select("id", "category", "name").
		From("tags").
		Where(squirrel.Expr("id = ANY(?)", ids)).
		OrderBy("id"))
}

// Upsert inserts the tag by name or updates its category
func (r *TagRepository) Upsert(ctx context.Context, tag *models.Tag) error {
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO tags (category, name) VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT tags_name_key DO UPDATE SET category = EXCLUDED.category
		RETURNING id`, tag.Category, tag.Name).Scan(&tag.ID)
	if err != nil {
		return apperrors.NewUpstreamError(err, "failed to upsert tag")
	}
	return nil
}

// UniversityRepository handles university database operations
type UniversityRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

var _ IUniversityRepository = (*UniversityRepository)(nil)

func NewUniversityRepository(database *db.PostgresDB) *UniversityRepository {
	return &UniversityRepository{db: database, sb: statementBuilder()}
}

// List returns every university ordered by name
func (r *UniversityRepository) List(ctx context.Context) ([]models.University, error) {
	sql, args, err := r.sb.Select("name", "domains", "logo").From("universities").OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list universities query: %w", err)
	}
	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to list universities")
	}
	unis, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.University])
	if err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to scan universities")
	}
	return unis, nil
}

// GetByName retrieves a university by its exact name
func (r *UniversityRepository) GetByName(ctx context.Context, name string) (*models.University, error) {
	u := &models.University{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT name, domains, logo FROM universities WHERE name = $1`, name).
		Scan(&u.Name, &u.Domains, &u.Logo)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("university %q not found", name))
		}
		return nil, apperrors.NewUpstreamError(err, "failed to get university")
	}
	return u, nil
}

// Upsert inserts the university or replaces its domains and logo
func (r *UniversityRepository) Upsert(ctx context.Context, u *models.University) error {
	domains := u.Domains
	if domains == nil {
		domains = []string{}
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO universities (name, domains, logo) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET domains = EXCLUDED.domains, logo = EXCLUDED.logo`,
		u.Name, domains, u.Logo)
	if err != nil {
		return apperrors.NewUpstreamError(err, "failed to upsert university")
	}
	return nil
}
