package services

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	appAuth "github.com/yigit/peers/internal/app/auth"
	"github.com/yigit/peers/internal/app/feed"
	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/repositories"
	"github.com/yigit/peers/internal/pkg/apperrors"
	"github.com/yigit/peers/internal/pkg/eventtime"
	"github.com/yigit/peers/internal/pkg/filestorage"
	"github.com/yigit/peers/internal/pkg/helpers"
)

// EventService defines the interface for event operations. Every method
// takes the acting user explicitly.
type EventService interface {
	ListUpcoming(ctx context.Context, userID int64) ([]dto.EventResponse, error)
	ListAttending(ctx context.Context, userID int64) ([]dto.EventResponse, error)
	ListHostedBy(ctx context.Context, userID int64, host models.Host) ([]dto.EventResponse, error)
	GetEvent(ctx context.Context, userID, eventID int64) (*dto.EventResponse, error)
	CreateEvent(ctx context.Context, userID int64, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	UpdateEvent(ctx context.Context, userID, eventID int64, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	DeleteEvent(ctx context.Context, userID, eventID int64) error
	ToggleAttendance(ctx context.Context, eventID, userID int64, attend bool) (bool, error)
	UploadImage(ctx context.Context, userID, eventID int64, r io.Reader, filename string) (*dto.EventResponse, error)
}

// eventServiceImpl implements EventService
type eventServiceImpl struct {
	eventRepo repositories.IEventRepository
	tagRepo   repositories.ITagRepository
	authz     *appAuth.AuthorizationService
	storage   filestorage.ImageStorage
	clock     eventtime.Clock
	logger    zerolog.Logger
}

// NewEventService creates a new EventService
func NewEventService(
	eventRepo repositories.IEventRepository,
	tagRepo repositories.ITagRepository,
	authz *appAuth.AuthorizationService,
	storage filestorage.ImageStorage,
	clock eventtime.Clock,
	logger zerolog.Logger,
) EventService {
	return &eventServiceImpl{
		eventRepo: eventRepo,
		tagRepo:   tagRepo,
		authz:     authz,
		storage:   storage,
		clock:     clock,
		logger:    logger.With().Str("service", "event").Logger(),
	}
}

// ListUpcoming returns every event that has not ended, soonest first
func (s *eventServiceImpl) ListUpcoming(ctx context.Context, userID int64) ([]dto.EventResponse, error) {
	now := s.clock.Now()
	events, err := s.eventRepo.List(ctx, repositories.EventFilter{EndingAfter: &now})
	if err != nil {
		return nil, err
	}
	return dto.NewEventResponses(feed.FilterUpcoming(events, now), userID, now), nil
}

// ListAttending returns the upcoming events userID attends
func (s *eventServiceImpl) ListAttending(ctx context.Context, userID int64) ([]dto.EventResponse, error) {
	now := s.clock.Now()
	events, err := s.eventRepo.List(ctx, repositories.EventFilter{EndingAfter: &now, AttendeeID: &userID})
	if err != nil {
		return nil, err
	}
	return dto.NewEventResponses(feed.FilterUpcoming(events, now), userID, now), nil
}

// ListHostedBy returns all events of host, past ones included
func (s *eventServiceImpl) ListHostedBy(ctx context.Context, userID int64, host models.Host) ([]dto.EventResponse, error) {
	events, err := s.eventRepo.List(ctx, repositories.EventFilter{Host: &host})
	if err != nil {
		return nil, err
	}
	return dto.NewEventResponses(events, userID, s.clock.Now()), nil
}

func (s *eventServiceImpl) GetEvent(ctx context.Context, userID, eventID int64) (*dto.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewEventResponse(*event, userID, s.clock.Now())
	return &resp, nil
}

// CreateEvent creates an event hosted by the caller, or by the organization
// named in the request when the caller administers it
func (s *eventServiceImpl) CreateEvent(ctx context.Context, userID int64, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	now := s.clock.Now()
	event := models.Event{
		Title:           req.Title,
		Description:     req.Description,
		Date:            req.Date,
		Duration:        req.Duration,
		Type:            req.Type,
		Location:        req.Location,
		LocationDetails: req.LocationDetails,
		Host:            models.UserHost(userID),
	}
	if err := normalizeEvent(&event); err != nil {
		return nil, err
	}
	if now.After(event.EndsAt()) {
		return nil, apperrors.NewValidationError("event would already be over").
			WithDetails(map[string]interface{}{"field": "date"})
	}

	if _, err := s.authz.ValidateVerifiedStudent(ctx, userID); err != nil {
		return nil, err
	}
	if req.OrganizationID != nil {
		if _, err := s.authz.ValidateOrganizationAdmin(ctx, *req.OrganizationID, userID); err != nil {
			return nil, err
		}
		event.Host = models.OrganizationHost(*req.OrganizationID)
	}

	tags, err := s.resolveTags(ctx, req.TagIDs)
	if err != nil {
		return nil, err
	}
	event.Tags = tags

	if err := s.eventRepo.Create(ctx, &event); err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to create event")
		return nil, err
	}

	s.logger.Info().
		Int64("eventID", event.ID).
		Str("host", event.Host.String()).
		Msg("Event created")

	resp := dto.NewEventResponse(event, userID, now)
	return &resp, nil
}

// UpdateEvent replaces the editable fields. Only the host may do this.
func (s *eventServiceImpl) UpdateEvent(ctx context.Context, userID, eventID int64, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	existing, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Title = req.Title
	updated.Description = req.Description
	updated.Date = req.Date
	updated.Duration = req.Duration
	updated.Type = req.Type
	updated.Location = req.Location
	updated.LocationDetails = req.LocationDetails
	if err := normalizeEvent(&updated); err != nil {
		return nil, err
	}

	if err := s.authz.ValidateHostManager(ctx, existing.Host, userID); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, req.TagIDs)
	if err != nil {
		return nil, err
	}
	updated.Tags = tags

	if err := s.eventRepo.Update(ctx, &updated); err != nil {
		s.logger.Error().Err(err).Int64("eventID", eventID).Msg("Failed to update event")
		return nil, err
	}

	s.logger.Info().Int64("eventID", eventID).Int64("userID", userID).Msg("Event updated")
	resp := dto.NewEventResponse(updated, userID, s.clock.Now())
	return &resp, nil
}

// DeleteEvent removes the event and its image. Only the host may do this.
func (s *eventServiceImpl) DeleteEvent(ctx context.Context, userID, eventID int64) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateHostManager(ctx, event.Host, userID); err != nil {
		return err
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return err
	}
	if event.Image != nil {
		if err := s.storage.Delete(*event.Image); err != nil {
			s.logger.Warn().Err(err).Int64("eventID", eventID).Msg("Failed to delete event image")
		}
	}

	s.logger.Info().Int64("eventID", eventID).Int64("userID", userID).Msg("Event deleted")
	return nil
}

// ToggleAttendance sets whether userID attends eventID and returns the
// resulting state. Requesting the current state changes nothing.
func (s *eventServiceImpl) ToggleAttendance(ctx context.Context, eventID, userID int64, attend bool) (bool, error) {
	attending, err := s.eventRepo.ToggleAttendance(ctx, eventID, userID, attend)
	if err != nil {
		return false, err
	}
	s.logger.Debug().
		Int64("eventID", eventID).
		Int64("userID", userID).
		Bool("attending", attending).
		Msg("Attendance set")
	return attending, nil
}

// UploadImage stores a new event image and replaces the previous one
func (s *eventServiceImpl) UploadImage(ctx context.Context, userID, eventID int64, r io.Reader, filename string) (*dto.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateHostManager(ctx, event.Host, userID); err != nil {
		return nil, err
	}

	url, err := s.storage.SaveImage(r, filename, "events")
	if err != nil {
		if errors.Is(err, filestorage.ErrUnsupportedType) || errors.Is(err, filestorage.ErrTooLarge) {
			return nil, apperrors.NewValidationError(err.Error()).
				WithDetails(map[string]interface{}{"field": "image"})
		}
		return nil, apperrors.NewUpstreamError(err, "failed to store image")
	}

	if err := s.eventRepo.SetImage(ctx, eventID, url); err != nil {
		_ = s.storage.Delete(url)
		return nil, err
	}
	if event.Image != nil {
		if err := s.storage.Delete(*event.Image); err != nil {
			s.logger.Warn().Err(err).Int64("eventID", eventID).Msg("Failed to delete previous event image")
		}
	}

	event.Image = &url
	resp := dto.NewEventResponse(*event, userID, s.clock.Now())
	return &resp, nil
}

// resolveTags loads the tags behind ids, rejecting unknown ids
func (s *eventServiceImpl) resolveTags(ctx context.Context, ids []int64) ([]models.Tag, error) {
	return lookupTags(ctx, s.tagRepo, ids)
}

func lookupTags(ctx context.Context, tagRepo repositories.ITagRepository, ids []int64) ([]models.Tag, error) {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return []models.Tag{}, nil
	}

	tags, err := tagRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		known := make(map[int64]bool, len(tags))
		for _, t := range tags {
			known[t.ID] = true
		}
		var unknown []int64
		for _, id := range ids {
			if !known[id] {
				unknown = append(unknown, id)
			}
		}
		return nil, apperrors.NewValidationError("unknown tag ids").
			WithDetails(map[string]interface{}{"field": "tagIds", "ids": unknown})
	}
	return tags, nil
}

// normalizeEvent trims the text fields and enforces the event invariants
func normalizeEvent(e *models.Event) error {
	e.Title = strings.TrimSpace(e.Title)
	e.Description = strings.TrimSpace(e.Description)
	e.Location = helpers.NilIfBlank(e.Location)
	e.LocationDetails = helpers.NilIfBlank(e.LocationDetails)

	switch {
	case e.Title == "":
		return fieldError("title", "title is required")
	case e.Duration <= 0:
		return fieldError("duration", "duration must be a positive number of minutes")
	case !e.Type.Valid():
		return fieldError("type", "unknown event type")
	case e.Type == models.EventTypeInPerson && e.Location == nil:
		return fieldError("location", "in-person events need a location")
	}
	return nil
}

func fieldError(field, message string) error {
	return apperrors.NewValidationError(message).
		WithDetails(map[string]interface{}{"field": field})
}
