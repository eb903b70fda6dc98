package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	appAuth "github.com/yigit/peers/internal/app/auth"
	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/repositories"
	"github.com/yigit/peers/internal/pkg/apperrors"
	"github.com/yigit/peers/internal/pkg/callprovider"
	"github.com/yigit/peers/internal/pkg/eventtime"
	"github.com/yigit/peers/internal/pkg/websocket"
)

// RoomProvider creates the rooms online events are held in
type RoomProvider interface {
	CreateRoom(ctx context.Context, name string, opts callprovider.RoomOptions) (callprovider.Room, error)
}

// CallService runs the live calls of online events
type CallService interface {
	// JoinCall returns the room of a live online event to an attendee or host
	JoinCall(ctx context.Context, userID, eventID int64) (*dto.CallRoomResponse, error)
	// AuthorizeCall checks that userID may be present in eventID's call
	AuthorizeCall(ctx context.Context, userID, eventID int64) error
	// RecordSession credits the points earned by a finished stay in a call
	RecordSession(ctx context.Context, s websocket.Session) error
}

// callServiceImpl implements CallService and websocket.SessionRecorder
type callServiceImpl struct {
	eventRepo   repositories.IEventRepository
	sessionRepo repositories.ICallSessionRepository
	authz       *appAuth.AuthorizationService
	rooms       RoomProvider
	clock       eventtime.Clock
	logger      zerolog.Logger
}

var _ websocket.SessionRecorder = (*callServiceImpl)(nil)

// NewCallService creates a new CallService
func NewCallService(
	eventRepo repositories.IEventRepository,
	sessionRepo repositories.ICallSessionRepository,
	authz *appAuth.AuthorizationService,
	rooms RoomProvider,
	clock eventtime.Clock,
	logger zerolog.Logger,
) CallService {
	return &callServiceImpl{
		eventRepo:   eventRepo,
		sessionRepo: sessionRepo,
		authz:       authz,
		rooms:       rooms,
		clock:       clock,
		logger:      logger.With().Str("service", "call").Logger(),
	}
}

// RoomName is the provider room used by an event
func RoomName(eventID int64) string {
	return fmt.Sprintf("peers-event-%d", eventID)
}

func (s *callServiceImpl) JoinCall(ctx context.Context, userID, eventID int64) (*dto.CallRoomResponse, error) {
	event, err := s.authorize(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	opts := callprovider.RoomOptions{
		ExpiresAt: event.EndsAt(),
		AudioOnly: event.Type == models.EventTypeOnlineAudio,
	}
	room, err := s.rooms.CreateRoom(ctx, RoomName(eventID), opts)
	if err != nil {
		s.logger.Error().Err(err).Int64("eventID", eventID).Msg("Failed to open call room")
		return nil, apperrors.NewUpstreamError(err, "failed to open call room")
	}

	s.logger.Info().Int64("eventID", eventID).Int64("userID", userID).Msg("User joining call")
	return &dto.CallRoomResponse{
		EventID:   eventID,
		RoomName:  room.Name,
		URL:       room.URL,
		ExpiresAt: opts.ExpiresAt,
		AudioOnly: opts.AudioOnly,
	}, nil
}

func (s *callServiceImpl) AuthorizeCall(ctx context.Context, userID, eventID int64) error {
	_, err := s.authorize(ctx, userID, eventID)
	return err
}

func (s *callServiceImpl) authorize(ctx context.Context, userID, eventID int64) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.Type.IsOnline() {
		return nil, apperrors.NewValidationError("event is not held online")
	}
	if state := eventtime.Classify(event.Date, event.Duration, s.clock.Now()); state != eventtime.StateLive {
		return nil, apperrors.NewValidationError(fmt.Sprintf("the call is only open while the event is live, it is %s", state))
	}

	if event.HasAttendee(userID) {
		return event, nil
	}
	isHost, err := s.authz.CanManageHost(ctx, event.Host, userID)
	if err != nil {
		return nil, err
	}
	if !isHost {
		return nil, apperrors.NewForbiddenError("only attendees can join the call")
	}
	return event, nil
}

// RecordSession implements websocket.SessionRecorder
func (s *callServiceImpl) RecordSession(ctx context.Context, session websocket.Session) error {
	record := &models.CallSession{
		EventID:  session.EventID,
		UserID:   session.UserID,
		JoinedAt: session.JoinedAt,
		LeftAt:   session.LeftAt,
		Points:   eventtime.SessionPoints(session.Minutes()),
	}
	if err := s.sessionRepo.Record(ctx, record); err != nil {
		return err
	}

	s.logger.Info().
		Int64("eventID", session.EventID).
		Int64("userID", session.UserID).
		Int("minutes", session.Minutes()).
		Int("points", record.Points).
		Msg("Call session recorded")
	return nil
}
