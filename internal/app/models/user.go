package models

import (
	"time"
)

// User defines the user model based on the 'users' table.
// The ID is assigned by the auth provider and arrives as the token subject.
type User struct {
	ID                int64     `json:"id" db:"id" example:"1"`
	Email             string    `json:"email" db:"email" example:"ada@uni.edu"`
	Username          string    `json:"username" db:"username" example:"ada"`
	FirstName         *string   `json:"firstName,omitempty" db:"first_name" example:"Ada"`
	LastName          *string   `json:"lastName,omitempty" db:"last_name" example:"Lovelace"`
	Bio               *string   `json:"bio,omitempty" db:"bio"`
	Image             *string   `json:"image,omitempty" db:"image"`
	Website           *string   `json:"website,omitempty" db:"website"`
	Instagram         *string   `json:"instagram,omitempty" db:"instagram"`
	LinkedIn          *string   `json:"linkedin,omitempty" db:"linkedin"`
	IsVerifiedStudent bool      `json:"isVerifiedStudent" db:"is_verified_student"`
	Points            int       `json:"points" db:"points"`
	University        *string   `json:"university,omitempty" db:"university"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`

	// Relations, no db tag
	Interests []Tag `json:"interests,omitempty"`
}

// DisplayName returns the full name when known, otherwise the username
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != nil && u.LastName != nil:
		return *u.FirstName + " " + *u.LastName
	case u.FirstName != nil:
		return *u.FirstName
	}
	return u.Username
}

// InterestIDs returns the ids of the user's interest tags
func (u *User) InterestIDs() []int64 {
	ids := make([]int64, 0, len(u.Interests))
	for _, t := range u.Interests {
		ids = append(ids, t.ID)
	}
	return ids
}
