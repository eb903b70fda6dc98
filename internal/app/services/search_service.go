package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/repositories"
	"github.com/yigit/peers/internal/app/search"
	"github.com/yigit/peers/internal/pkg/eventtime"
)

// SearchService matches a free-text query against the stored collections
type SearchService interface {
	Search(ctx context.Context, userID int64, q string, kind search.Kind) (*dto.SearchResponse, error)
}

// searchServiceImpl implements SearchService
type searchServiceImpl struct {
	eventRepo repositories.IEventRepository
	orgRepo   repositories.IOrganizationRepository
	userRepo  repositories.IUserRepository
	clock     eventtime.Clock
	logger    zerolog.Logger
}

// NewSearchService creates a new SearchService
func NewSearchService(
	eventRepo repositories.IEventRepository,
	orgRepo repositories.IOrganizationRepository,
	userRepo repositories.IUserRepository,
	clock eventtime.Clock,
	logger zerolog.Logger,
) SearchService {
	return &searchServiceImpl{
		eventRepo: eventRepo,
		orgRepo:   orgRepo,
		userRepo:  userRepo,
		clock:     clock,
		logger:    logger.With().Str("service", "search").Logger(),
	}
}

// Search returns the entities of kind matching q in store order. An empty
// query matches everything.
func (s *searchServiceImpl) Search(ctx context.Context, userID int64, q string, kind search.Kind) (*dto.SearchResponse, error) {
	query := search.Parse(q)
	resp := &dto.SearchResponse{Query: q}

	if kind.Includes(search.KindEvents) {
		events, err := s.eventRepo.List(ctx, repositories.EventFilter{})
		if err != nil {
			return nil, err
		}
		resp.Events = dto.NewEventResponses(search.FilterEvents(query, events), userID, s.clock.Now())
	}

	if kind.Includes(search.KindOrganizations) {
		orgs, err := s.orgRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		matched := search.FilterOrganizations(query, orgs)
		resp.Organizations = make([]dto.OrganizationResponse, 0, len(matched))
		for _, o := range matched {
			resp.Organizations = append(resp.Organizations, dto.NewOrganizationResponse(o, userID))
		}
	}

	if kind.Includes(search.KindUsers) {
		users, err := s.userRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		matched := search.FilterUsers(query, users)
		resp.Users = make([]dto.PublicUserResponse, 0, len(matched))
		for _, u := range matched {
			resp.Users = append(resp.Users, dto.NewPublicUserResponse(u))
		}
	}

	s.logger.Debug().
		Str("query", q).
		Str("kind", string(kind)).
		Int("events", len(resp.Events)).
		Int("organizations", len(resp.Organizations)).
		Int("users", len(resp.Users)).
		Msg("Search executed")
	return resp, nil
}
