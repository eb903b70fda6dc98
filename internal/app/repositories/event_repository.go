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

var eventColumns = []string{
	"e.id", "e.title", "e.description", "e.date", "e.duration", "e.type",
	"e.location", "e.location_details", "e.image", "e.user_host_id", "e.org_host_id",
	"e.created_at", "e.updated_at",
}

// EventRepository handles event database operations
type EventRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

var _ IEventRepository = (*EventRepository)(nil)

func NewEventRepository(database *db.PostgresDB) *EventRepository {
	return &EventRepository{db: database, sb: statementBuilder()}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	e := &models.Event{}
	var userHost, orgHost *int64
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Duration, &e.Type,
		&e.Location, &e.LocationDetails, &e.Image, &userHost, &orgHost,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	host, err := models.NewHost(userHost, orgHost)
	if err != nil {
		return nil, fmt.Errorf("event %d: %w", e.ID, err)
	}
	e.Host = host
	return e, nil
}

func mapEventWriteError(err error, action string) error {
	switch {
	case dberrors.IsCheckViolation(err, "events_one_host"):
		return apperrors.NewValidationError("event must have exactly one host")
	case dberrors.IsCheckViolation(err, "events_duration_positive"):
		return apperrors.NewValidationError("duration must be positive")
	case dberrors.IsCheckViolation(err, "events_location_required"):
		return apperrors.NewValidationError("location is required for in-person events")
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.NewValidationError("event references an unknown host or tag")
	}
	return apperrors.NewUpstreamError(err, "failed to "+action)
}

// Create inserts the event and its tags in one transaction
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	userHost, orgHost := e.Host.Columns()

	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("events").
			Columns("title", "description", "date", "duration", "type", "location",
				"location_details", "image", "user_host_id", "org_host_id").
			Values(e.Title, e.Description, e.Date, e.Duration, e.Type, e.Location,
				e.LocationDetails, e.Image, userHost, orgHost).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create event query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return mapEventWriteError(err, "create event")
		}
		return r.replaceTags(ctx, tx, e.ID, e.TagIDs())
	})
}

func (r *EventRepository) replaceTags(ctx context.Context, tx pgx.Tx, eventID int64, tagIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM event_tags WHERE event_id = $1`, eventID); err != nil {
		return apperrors.NewUpstreamError(err, "failed to clear event tags")
	}
	if len(tagIDs) == 0 {
		return nil
	}

	insert := r.sb.Insert("event_tags").Columns("event_id", "tag_id").Suffix("ON CONFLICT DO NOTHING")
	for _, id := range tagIDs {
		insert = insert.Values(eventID, id)
	}
	sql, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build event tags insert: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return mapEventWriteError(err, "tag event")
	}
	return nil
}

// GetByID retrieves an event with its tags and attendees
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	events, err := r.query(ctx, r.sb.Select(eventColumns...).From("events e").Where(squirrel.Eq{"e.id": id}))
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("event %d not found", id))
	}
	return &events[0], nil
}

// List returns the events matching filter ordered by date then id
func (r *EventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	q := r.sb.Select(eventColumns...).From("events e")
	if filter.EndingAfter != nil {
		q = q.Where(squirrel.Expr("e.date + make_interval(mins => e.duration) >= ?", *filter.EndingAfter))
	}
	if filter.Host != nil {
		userHost, orgHost := filter.Host.Columns()
		if userHost != nil {
			q = q.Where(squirrel.Eq{"e.user_host_id": *userHost})
		} else {
			q = q.Where(squirrel.Eq{"e.org_host_id": *orgHost})
		}
	}
	if filter.AttendeeID != nil {
		q = q.Where(squirrel.Expr("EXISTS (SELECT 1 FROM event_attendees a WHERE a.event_id = e.id AND a.user_id = ?)", *filter.AttendeeID))
	}
	return r.query(ctx, q.OrderBy("e.date", "e.id"))
}

// ListByHostsOrTags implements IEventRepository
func (r *EventRepository) ListByHostsOrTags(ctx context.Context, hosts []models.Host, tagIDs []int64) ([]models.Event, error) {
	var userIDs, orgIDs []int64
	for _, h := range hosts {
		switch h.Kind {
		case models.HostKindUser:
			userIDs = append(userIDs, h.ID)
		case models.HostKindOrganization:
			orgIDs = append(orgIDs, h.ID)
		}
	}
	if len(userIDs) == 0 && len(orgIDs) == 0 && len(tagIDs) == 0 {
		return []models.Event{}, nil
	}

	or := squirrel.Or{}
	if len(userIDs) > 0 {
		or = append(or, squirrel.Eq{"e.user_host_id": userIDs})
	}
	if len(orgIDs) > 0 {
		or = append(or, squirrel.Eq{"e.org_host_id": orgIDs})
	}
	if len(tagIDs) > 0 {
		or = append(or, squirrel.Expr("EXISTS (SELECT 1 FROM event_tags t WHERE t.event_id = e.id AND t.tag_id = ANY(?))", tagIDs))
	}

	return r.query(ctx, r.sb.Select(eventColumns...).From("events e").Where(or).OrderBy("e.date", "e.id"))
}

func (r *EventRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]models.Event, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build events query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to query events")
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, apperrors.NewUpstreamError(err, "failed to scan event")
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to iterate events")
	}

	if err := r.loadRelations(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// loadRelations fills tags and attendee ids with one query each
func (r *EventRepository) loadRelations(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]int64, len(events))
	index := make(map[int64]int, len(events))
	for i, e := range events {
		ids[i] = e.ID
		index[e.ID] = i
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT et.event_id, t.id, t.category, t.name
		FROM event_tags et JOIN tags t ON t.id = et.tag_id
		WHERE et.event_id = ANY($1)
		ORDER BY t.name`, ids)
	if err != nil {
		return apperrors.NewUpstreamError(err, "failed to load event tags")
	}
	for rows.Next() {
		var (
			eventID int64
			tag     models.Tag
		)
		if err := rows.Scan(&eventID, &tag.ID, &tag.Category, &tag.Name); err != nil {
			rows.Close()
			return apperrors.NewUpstreamError(err, "failed to scan event tag")
		}
		e := &events[index[eventID]]
		e.Tags = append(e.Tags, tag)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return apperrors.NewUpstreamError(err, "failed to iterate event tags")
	}

	rows, err = r.db.Pool.Query(ctx, `
		SELECT event_id, user_id FROM event_attendees
		WHERE event_id = ANY($1)
		ORDER BY created_at, user_id`, ids)
	if err != nil {
		return apperrors.NewUpstreamError(err, "failed to load attendees")
	}
	defer rows.Close()
	for rows.Next() {
		var eventID, userID int64
		if err := rows.Scan(&eventID, &userID); err != nil {
			return apperrors.NewUpstreamError(err, "failed to scan attendee")
		}
		e := &events[index[eventID]]
		e.AttendeeIDs = append(e.AttendeeIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return apperrors.NewUpstreamError(err, "failed to iterate attendees")
	}
	return nil
}

// Update writes the editable fields and replaces the tags. The host never changes.
func (r *EventRepository) Update(ctx context.Context, e *models.Event) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Update("events").
			SetMap(map[string]interface{}{
				"title":            e.Title,
				"description":      e.Description,
				"date":             e.Date,
				"duration":         e.Duration,
				"type":             e.Type,
				"location":         e.Location,
				"location_details": e.LocationDetails,
				"updated_at":       squirrel.Expr("NOW()"),
			}).
			Where(squirrel.Eq{"id": e.ID}).
			Suffix("RETURNING updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update event query: %w", err)
		}

		if err := tx.QueryRow(ctx, sql, args...).Scan(&e.UpdatedAt); err != nil {
			if dberrors.IsNoRows(err) {
				return apperrors.NewResourceNotFoundError(fmt.Sprintf("event %d not found", e.ID))
			}
			return mapEventWriteError(err, "update event")
		}
		return r.replaceTags(ctx, tx, e.ID, e.TagIDs())
	})
}

// Delete removes an event; tags and attendance cascade
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewUpstreamError(err, "failed to delete event")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("event %d not found", id))
	}
	return nil
}

// SetImage stores the URL of the event's uploaded image
func (r *EventRepository) SetImage(ctx context.Context, id int64, url string) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE events SET image = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		return apperrors.NewUpstreamError(err, "failed to set event image")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("event %d not found", id))
	}
	return nil
}

// ToggleAttendance implements IEventRepository
func (r *EventRepository) ToggleAttendance(ctx context.Context, eventID, userID int64, attend bool) (bool, error) {
	var attending bool
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, eventID).Scan(&locked)
		if err != nil {
			if dberrors.IsNoRows(err) {
				return apperrors.NewResourceNotFoundError(fmt.Sprintf("event %d not found", eventID))
			}
			return apperrors.NewUpstreamError(err, "failed to lock event")
		}

		err = tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)`,
			eventID, userID).Scan(&attending)
		if err != nil {
			return apperrors.NewUpstreamError(err, "failed to read attendance")
		}
		if attending == attend {
			return nil
		}

		if attend {
			_, err = tx.Exec(ctx,
				`INSERT INTO event_attendees (event_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				eventID, userID)
		} else {
			_, err = tx.Exec(ctx,
				`DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2`,
				eventID, userID)
		}
		if err != nil {
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.NewResourceNotFoundError(fmt.Sprintf("user %d not found", userID))
			}
			return apperrors.NewUpstreamError(err, "failed to update attendance")
		}
		attending = attend
		return nil
	})
	return attending, err
}

// AttendedHosts implements IEventRepository
func (r *EventRepository) AttendedHosts(ctx context.Context, userID int64) ([]models.Host, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT DISTINCT e.user_host_id, e.org_host_id
		FROM event_attendees a JOIN events e ON e.id = a.event_id
		WHERE a.user_id = $1`, userID)
	if err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to load attended hosts")
	}
	defer rows.Close()

	hosts := []models.Host{}
	for rows.Next() {
		var userHost, orgHost *int64
		if err := rows.Scan(&userHost, &orgHost); err != nil {
			return nil, apperrors.NewUpstreamError(err, "failed to scan attended host")
		}
		h, err := models.NewHost(userHost, orgHost)
		if err != nil {
			return nil, apperrors.NewUpstreamError(err, "stored event has an invalid host")
		}
		hosts = append(hosts, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewUpstreamError(err, "failed to iterate attended hosts")
	}
	return hosts, nil
}
