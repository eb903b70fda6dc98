package models

import "time"

// Organization represents a student organization that can host events
type Organization struct {
	ID          int64            `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Type        OrganizationType `json:"type" db:"type"`
	Description string           `json:"description" db:"description"`
	Image       *string          `json:"image,omitempty" db:"image"`
	Email       *string          `json:"email,omitempty" db:"email"`
	Website     *string          `json:"website,omitempty" db:"website"`
	Instagram   *string          `json:"instagram,omitempty" db:"instagram"`
	Discord     *string          `json:"discord,omitempty" db:"discord"`
	University  *string          `json:"university,omitempty" db:"university"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`

	// Related entities
	AdminIDs []int64 `json:"adminIds,omitempty"`
}

// HasAdmin reports whether userID administers the organization
func (o *Organization) HasAdmin(userID int64) bool {
	for _, id := range o.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
