package dto

import (
	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/pkg/helpers"
)

// OrganizationRequest is the body of POST and PUT /organizations
type OrganizationRequest struct {
	Name        string                  `json:"name" binding:"required,min=2,max=100" example:"Chess Club"`
	Type        models.OrganizationType `json:"type" binding:"required,oneof=CLUB SOCIETY SPORTS ACADEMIC CULTURAL VOLUNTEER OTHER" example:"CLUB"`
	Description string                  `json:"description" binding:"max=2000"`
	Image       *string                 `json:"image,omitempty" binding:"omitempty,max=500"`
	Email       *string                 `json:"email,omitempty" binding:"omitempty,email"`
	Website     *string                 `json:"website,omitempty" binding:"omitempty,max=200"`
	Instagram   *string                 `json:"instagram,omitempty" binding:"omitempty,max=100"`
	Discord     *string                 `json:"discord,omitempty" binding:"omitempty,max=200"`
	University  *string                 `json:"university,omitempty" binding:"omitempty,max=200"`
}

// AddAdminRequest names the user to promote
type AddAdminRequest struct {
	UserID int64 `json:"userId" binding:"required,gt=0" example:"7"`
}

// OrganizationResponse is an organization as seen by one user
type OrganizationResponse struct {
	models.Organization
	IsAdmin bool `json:"isAdmin"`
}

// NewOrganizationResponse marks whether viewerID administers o
func NewOrganizationResponse(o models.Organization, viewerID int64) OrganizationResponse {
	return OrganizationResponse{Organization: o, IsAdmin: o.HasAdmin(viewerID)}
}

// OrganizationListResponse is one page of organizations
type OrganizationListResponse struct {
	Organizations []OrganizationResponse `json:"organizations"`
	PageInfo      helpers.PageInfo       `json:"pageInfo"`
}
