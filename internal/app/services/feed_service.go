package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yigit/peers/internal/app/feed"
	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/repositories"
	"github.com/yigit/peers/internal/pkg/eventtime"
)

// FeedService builds the personalized recommendations of a user
type FeedService interface {
	RecommendedEvents(ctx context.Context, userID int64) ([]dto.EventResponse, error)
	RecommendedHosts(ctx context.Context, userID int64) ([]feed.HostCandidate, error)
}

// feedServiceImpl implements FeedService
type feedServiceImpl struct {
	eventRepo repositories.IEventRepository
	userRepo  repositories.IUserRepository
	orgRepo   repositories.IOrganizationRepository
	clock     eventtime.Clock
	logger    zerolog.Logger
}

// NewFeedService creates a new FeedService
func NewFeedService(
	eventRepo repositories.IEventRepository,
	userRepo repositories.IUserRepository,
	orgRepo repositories.IOrganizationRepository,
	clock eventtime.Clock,
	logger zerolog.Logger,
) FeedService {
	return &feedServiceImpl{
		eventRepo: eventRepo,
		userRepo:  userRepo,
		orgRepo:   orgRepo,
		clock:     clock,
		logger:    logger.With().Str("service", "feed").Logger(),
	}
}

// RecommendedEvents returns the upcoming events hosted by someone the user
// attended before or tagged with one of the user's interests. Users with
// neither get every upcoming event.
func (s *feedServiceImpl) RecommendedEvents(ctx context.Context, userID int64) ([]dto.EventResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	hosts, err := s.eventRepo.AttendedHosts(ctx, userID)
	if err != nil {
		return nil, err
	}
	interests := user.InterestIDs()
	now := s.clock.Now()

	var candidates []models.Event
	if len(hosts) == 0 && len(interests) == 0 {
		candidates, err = s.eventRepo.List(ctx, repositories.EventFilter{EndingAfter: &now})
		if err != nil {
			return nil, err
		}
	} else {
		byHost, err := s.eventRepo.ListByHostsOrTags(ctx, hosts, nil)
		if err != nil {
			return nil, err
		}
		byTag, err := s.eventRepo.ListByHostsOrTags(ctx, nil, interests)
		if err != nil {
			return nil, err
		}
		candidates = feed.MergeEvents(byHost, byTag)
	}

	events := feed.RecommendEvents(feed.EventInput{
		UserID:         userID,
		AttendedHosts:  hosts,
		InterestTagIDs: interests,
		Candidates:     candidates,
	}, now)

	s.logger.Debug().
		Int64("userID", userID).
		Int("candidates", len(candidates)).
		Int("recommended", len(events)).
		Msg("Event feed built")
	return dto.NewEventResponses(events, userID, now), nil
}

// RecommendedHosts returns organizations then users worth following.
// Limiting and shuffling is left to the caller.
func (s *feedServiceImpl) RecommendedHosts(ctx context.Context, userID int64) ([]feed.HostCandidate, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	hosts, err := s.eventRepo.AttendedHosts(ctx, userID)
	if err != nil {
		return nil, err
	}
	orgs, err := s.orgRepo.HostCandidates(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.HostCandidates(ctx)
	if err != nil {
		return nil, err
	}

	return feed.RecommendHosts(feed.HostInput{
		UserID:         userID,
		University:     user.University,
		AttendedHosts:  hosts,
		InterestTagIDs: user.InterestIDs(),
		Organizations:  orgs,
		Users:          users,
	}), nil
}
