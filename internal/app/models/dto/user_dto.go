package dto

import (
	"time"

	"github.com/yigit/peers/internal/app/models"
)

// UpdateProfileRequest is the body of PUT /users/me. Nil fields are cleared.
type UpdateProfileRequest struct {
	Username  string  `json:"username" binding:"required,min=3,max=30" example:"ada"`
	FirstName *string `json:"firstName,omitempty" binding:"omitempty,max=50" example:"Ada"`
	LastName  *string `json:"lastName,omitempty" binding:"omitempty,max=50" example:"Lovelace"`
	Bio       *string `json:"bio,omitempty" binding:"omitempty,max=500"`
	Image     *string `json:"image,omitempty" binding:"omitempty,max=500"`
	Website   *string `json:"website,omitempty" binding:"omitempty,max=200"`
	Instagram *string `json:"instagram,omitempty" binding:"omitempty,max=100"`
	LinkedIn  *string `json:"linkedin,omitempty" binding:"omitempty,max=200"`
}

// UpdateInterestsRequest replaces the caller's interests. An empty list
// clears them.
type UpdateInterestsRequest struct {
	TagIDs []int64 `json:"tagIds" binding:"max=20,dive,gt=0" example:"1,4,7"`
}

// PublicUserResponse is a user profile without the private fields
type PublicUserResponse struct {
	ID                int64        `json:"id" example:"1"`
	Username          string       `json:"username" example:"ada"`
	FirstName         *string      `json:"firstName,omitempty"`
	LastName          *string      `json:"lastName,omitempty"`
	Bio               *string      `json:"bio,omitempty"`
	Image             *string      `json:"image,omitempty"`
	Website           *string      `json:"website,omitempty"`
	Instagram         *string      `json:"instagram,omitempty"`
	LinkedIn          *string      `json:"linkedin,omitempty"`
	IsVerifiedStudent bool         `json:"isVerifiedStudent"`
	Points            int          `json:"points"`
	University        *string      `json:"university,omitempty"`
	Interests         []models.Tag `json:"interests,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
}

// NewPublicUserResponse drops the email of u
func NewPublicUserResponse(u models.User) PublicUserResponse {
	return PublicUserResponse{
		ID:                u.ID,
		Username:          u.Username,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Bio:               u.Bio,
		Image:             u.Image,
		Website:           u.Website,
		Instagram:         u.Instagram,
		LinkedIn:          u.LinkedIn,
		IsVerifiedStudent: u.IsVerifiedStudent,
		Points:            u.Points,
		University:        u.University,
		Interests:         u.Interests,
		CreatedAt:         u.CreatedAt,
	}
}

// RequestCodeRequest starts (or restarts) student verification
type RequestCodeRequest struct {
	Email      string `json:"email" binding:"required,email,max=254" example:"ada@student.uni.edu"`
	University string `json:"university" binding:"required,max=200" example:"University of Example"`
}

// VerifyCodeRequest submits the code received by email
type VerifyCodeRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric" example:"042917"`
}

// VerificationResponse describes a pending verification
type VerificationResponse struct {
	Email      string    `json:"email" example:"ada@student.uni.edu"`
	University string    `json:"university" example:"University of Example"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
