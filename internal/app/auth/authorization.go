package auth

import (
	"context"
	"fmt"

	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/app/repositories"
	"github.com/yigit/peers/internal/pkg/apperrors"
)

// AuthorizationService answers who may act on which host
type AuthorizationService struct {
	userRepo repositories.IUserRepository
	orgRepo  repositories.IOrganizationRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo repositories.IUserRepository, orgRepo repositories.IOrganizationRepository) *AuthorizationService {
	return &AuthorizationService{
		userRepo: userRepo,
		orgRepo:  orgRepo,
	}
}

// ValidateVerifiedStudent returns the user when they completed student
// verification, otherwise a permission error
func (s *AuthorizationService) ValidateVerifiedStudent(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsVerifiedStudent {
		return nil, apperrors.NewForbiddenError("only verified students can do this")
	}
	return user, nil
}

// ValidateOrganizationAdmin returns the organization when userID administers it
func (s *AuthorizationService) ValidateOrganizationAdmin(ctx context.Context, orgID, userID int64) (*models.Organization, error) {
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !org.HasAdmin(userID) {
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("you are not an admin of organization %d", orgID))
	}
	return org, nil
}

// CanManageHost reports whether userID acts for host: the user itself or
// any admin of the organization
func (s *AuthorizationService) CanManageHost(ctx context.Context, host models.Host, userID int64) (bool, error) {
	switch host.Kind {
	case models.HostKindUser:
		return host.ID == userID, nil
	case models.HostKindOrganization:
		org, err := s.orgRepo.GetByID(ctx, host.ID)
		if err != nil {
			return false, err
		}
		return org.HasAdmin(userID), nil
	}
	return false, nil
}

// ValidateHostManager returns a permission error unless userID acts for host
func (s *AuthorizationService) ValidateHostManager(ctx context.Context, host models.Host, userID int64) error {
	ok, err := s.CanManageHost(ctx, host, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewForbiddenError("only the event host can do this")
	}
	return nil
}
