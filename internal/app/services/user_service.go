package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/repositories"
	"github.com/yigit/peers/internal/pkg/helpers"
	"github.com/yigit/peers/internal/pkg/validation"
)

// UserService defines the interface for user profile operations
type UserService interface {
	// EnsureUser creates the user behind a valid token on first sight
	EnsureUser(ctx context.Context, userID int64, email string) (*models.User, error)
	GetMe(ctx context.Context, userID int64) (*models.User, error)
	GetProfile(ctx context.Context, userID int64) (*dto.PublicUserResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error)
	SetInterests(ctx context.Context, userID int64, tagIDs []int64) (*models.User, error)
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userRepo repositories.IUserRepository
	tagRepo  repositories.ITagRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.IUserRepository, tagRepo repositories.ITagRepository, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		tagRepo:  tagRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

func (s *userServiceImpl) EnsureUser(ctx context.Context, userID int64, email string) (*models.User, error) {
	if !validation.IsEmail(validation.NormalizeEmail(email)) {
		return nil, fieldError("email", "token carries an invalid email")
	}
	return s.userRepo.EnsureUser(ctx, userID, email)
}

func (s *userServiceImpl) GetMe(ctx context.Context, userID int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// GetProfile returns another user's public profile
func (s *userServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.PublicUserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewPublicUserResponse(*user)
	return &resp, nil
}

// UpdateProfile replaces the caller's editable profile fields
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if !validation.IsUsername(username) {
		return nil, fieldError("username", "username may only contain lowercase letters, digits, dots and underscores")
	}
	for field, link := range map[string]*string{"website": req.Website, "linkedin": req.LinkedIn, "image": req.Image} {
		if v := helpers.NilIfBlank(link); v != nil && !validation.IsHTTPURL(*v) {
			return nil, fieldError(field, field+" must be an http(s) URL")
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Username = username
	user.FirstName = helpers.NilIfBlank(req.FirstName)
	user.LastName = helpers.NilIfBlank(req.LastName)
	user.Bio = helpers.NilIfBlank(req.Bio)
	user.Image = helpers.NilIfBlank(req.Image)
	user.Website = helpers.NilIfBlank(req.Website)
	user.Instagram = helpers.NilIfBlank(req.Instagram)
	user.LinkedIn = helpers.NilIfBlank(req.LinkedIn)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", userID).Msg("Profile updated")
	return user, nil
}

// SetInterests replaces the caller's interests with the given tags
func (s *userServiceImpl) SetInterests(ctx context.Context, userID int64, tagIDs []int64) (*models.User, error) {
	tags, err := lookupTags(ctx, s.tagRepo, tagIDs)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	if err := s.userRepo.SetInterests(ctx, userID, ids); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Int("interests", len(ids)).Msg("Interests updated")
	return s.userRepo.GetByID(ctx, userID)
}

// CatalogService serves the read-only reference data
type CatalogService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	ListUniversities(ctx context.Context) ([]models.University, error)
}

type catalogServiceImpl struct {
	tagRepo        repositories.ITagRepository
	universityRepo repositories.IUniversityRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(tagRepo repositories.ITagRepository, universityRepo repositories.IUniversityRepository) CatalogService {
	return &catalogServiceImpl{tagRepo: tagRepo, universityRepo: universityRepo}
}

func (s *catalogServiceImpl) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.List(ctx)
}

func (s *catalogServiceImpl) ListUniversities(ctx context.Context) ([]models.University, error) {
	return s.universityRepo.List(ctx)
}
