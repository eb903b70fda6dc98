package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	appAuth "github.com/yigit/peers/internal/app/auth"
	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/app/repositories"
	"github.com/yigit/peers/internal/pkg/helpers"
	"github.com/yigit/peers/internal/pkg/validation"
)

// OrganizationService defines the interface for organization operations
type OrganizationService interface {
	ListOrganizations(ctx context.Context, userID int64) ([]dto.OrganizationResponse, error)
	GetOrganization(ctx context.Context, userID, orgID int64) (*dto.OrganizationResponse, error)
	CreateOrganization(ctx context.Context, userID int64, req *dto.OrganizationRequest) (*dto.OrganizationResponse, error)
	UpdateOrganization(ctx context.Context, userID, orgID int64, req *dto.OrganizationRequest) (*dto.OrganizationResponse, error)
	DeleteOrganization(ctx context.Context, userID, orgID int64) error
	AddAdmin(ctx context.Context, userID, orgID, newAdminID int64) (*dto.OrganizationResponse, error)
	RemoveAdmin(ctx context.Context, userID, orgID, adminID int64) (*dto.OrganizationResponse, error)
}

// organizationServiceImpl implements OrganizationService
type organizationServiceImpl struct {
	orgRepo  repositories.IOrganizationRepository
	userRepo repositories.IUserRepository
	authz    *appAuth.AuthorizationService
	logger   zerolog.Logger
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(
	orgRepo repositories.IOrganizationRepository,
	userRepo repositories.IUserRepository,
	authz *appAuth.AuthorizationService,
	logger zerolog.Logger,
) OrganizationService {
	return &organizationServiceImpl{
		orgRepo:  orgRepo,
		userRepo: userRepo,
		authz:    authz,
		logger:   logger.With().Str("service", "organization").Logger(),
	}
}

func (s *organizationServiceImpl) ListOrganizations(ctx context.Context, userID int64) ([]dto.OrganizationResponse, error) {
	orgs, err := s.orgRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrganizationResponse, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, dto.NewOrganizationResponse(o, userID))
	}
	return out, nil
}

func (s *organizationServiceImpl) GetOrganization(ctx context.Context, userID, orgID int64) (*dto.OrganizationResponse, error) {
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewOrganizationResponse(*org, userID)
	return &resp, nil
}

// CreateOrganization creates an organization with the caller as its first
// admin. Only verified students may create organizations.
func (s *organizationServiceImpl) CreateOrganization(ctx context.Context, userID int64, req *dto.OrganizationRequest) (*dto.OrganizationResponse, error) {
	org := &models.Organization{}
	if err := applyOrganizationRequest(org, req); err != nil {
		return nil, err
	}
	if _, err := s.authz.ValidateVerifiedStudent(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.orgRepo.Create(ctx, org, userID); err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to create organization")
		return nil, err
	}

	s.logger.Info().Int64("orgID", org.ID).Int64("userID", userID).Msg("Organization created")
	resp := dto.NewOrganizationResponse(*org, userID)
	return &resp, nil
}

// UpdateOrganization replaces the editable fields. Admins only.
func (s *organizationServiceImpl) UpdateOrganization(ctx context.Context, userID, orgID int64, req *dto.OrganizationRequest) (*dto.OrganizationResponse, error) {
	org, err := s.authz.ValidateOrganizationAdmin(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if err := applyOrganizationRequest(org, req); err != nil {
		return nil, err
	}

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("orgID", orgID).Int64("userID", userID).Msg("Organization updated")
	resp := dto.NewOrganizationResponse(*org, userID)
	return &resp, nil
}

// DeleteOrganization removes the organization and the events it hosts
func (s *organizationServiceImpl) DeleteOrganization(ctx context.Context, userID, orgID int64) error {
	if _, err := s.authz.ValidateOrganizationAdmin(ctx, orgID, userID); err != nil {
		return err
	}
	if err := s.orgRepo.Delete(ctx, orgID); err != nil {
		return err
	}
	s.logger.Info().Int64("orgID", orgID).Int64("userID", userID).Msg("Organization deleted")
	return nil
}

// AddAdmin promotes newAdminID. The caller must already be an admin.
func (s *organizationServiceImpl) AddAdmin(ctx context.Context, userID, orgID, newAdminID int64) (*dto.OrganizationResponse, error) {
	if _, err := s.authz.ValidateOrganizationAdmin(ctx, orgID, userID); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, newAdminID); err != nil {
		return nil, err
	}
	if err := s.orgRepo.AddAdmin(ctx, orgID, newAdminID); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("orgID", orgID).Int64("adminID", newAdminID).Msg("Organization admin added")
	return s.GetOrganization(ctx, userID, orgID)
}

// RemoveAdmin demotes adminID. Admins may remove themselves, but an
// organization always keeps at least one admin.
func (s *organizationServiceImpl) RemoveAdmin(ctx context.Context, userID, orgID, adminID int64) (*dto.OrganizationResponse, error) {
	if _, err := s.authz.ValidateOrganizationAdmin(ctx, orgID, userID); err != nil {
		return nil, err
	}
	if err := s.orgRepo.RemoveAdmin(ctx, orgID, adminID); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("orgID", orgID).Int64("adminID", adminID).Msg("Organization admin removed")
	return s.GetOrganization(ctx, userID, orgID)
}

func applyOrganizationRequest(org *models.Organization, req *dto.OrganizationRequest) error {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return fieldError("name", "name is required")
	case len(name) > validation.NameMaxLength:
		return fieldError("name", "name is too long")
	case !req.Type.Valid():
		return fieldError("type", "unknown organization type")
	}

	email := helpers.NilIfBlank(req.Email)
	if email != nil {
		normalized := validation.NormalizeEmail(*email)
		if !validation.IsEmail(normalized) {
			return fieldError("email", "invalid email")
		}
		email = &normalized
	}
	for field, link := range map[string]*string{"website": req.Website, "image": req.Image} {
		if v := helpers.NilIfBlank(link); v != nil && !validation.IsHTTPURL(*v) {
			return fieldError(field, field+" must be an http(s) URL")
		}
	}

	org.Name = name
	org.Type = req.Type
	org.Description = strings.TrimSpace(req.Description)
	org.Image = helpers.NilIfBlank(req.Image)
	org.Email = email
	org.Website = helpers.NilIfBlank(req.Website)
	org.Instagram = helpers.NilIfBlank(req.Instagram)
	org.Discord = helpers.NilIfBlank(req.Discord)
	org.University = helpers.NilIfBlank(req.University)
	return nil
}
