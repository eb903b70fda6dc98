package models

import (
	"fmt"
	"time"

	"github.com/yigit/peers/internal/pkg/apperrors"
)

// HostKind tells which kind of entity hosts an event
type HostKind string

const (
	HostKindUser         HostKind = "user"
	HostKindOrganization HostKind = "organization"
)

// Host identifies the single user or organization hosting an event.
// The zero value is not a valid host.
type Host struct {
	Kind HostKind `json:"kind" example:"organization"`
	ID   int64    `json:"id" example:"3"`
}

// UserHost returns a host referring to a user
func UserHost(id int64) Host {
	return Host{Kind: HostKindUser, ID: id}
}

// OrganizationHost returns a host referring to an organization
func OrganizationHost(id int64) Host {
	return Host{Kind: HostKindOrganization, ID: id}
}

// NewHost builds a Host from the two optional host columns.
// Exactly one of userID and orgID must be set.
func NewHost(userID, orgID *int64) (Host, error) {
	switch {
	case userID != nil && orgID != nil:
		return Host{}, apperrors.NewValidationError("event must have exactly one host, got both a user and an organization")
	case userID != nil:
		return UserHost(*userID), nil
	case orgID != nil:
		return OrganizationHost(*orgID), nil
	}
	return Host{}, apperrors.NewValidationError("event must have exactly one host, got none")
}

// Columns splits the host back into the user_host_id and org_host_id columns
func (h Host) Columns() (userID, orgID *int64) {
	id := h.ID
	switch h.Kind {
	case HostKindUser:
		return &id, nil
	case HostKindOrganization:
		return nil, &id
	}
	return nil, nil
}

// IsUser reports whether the host is the given user
func (h Host) IsUser(userID int64) bool {
	return h.Kind == HostKindUser && h.ID == userID
}

func (h Host) String() string {
	return fmt.Sprintf("%s:%d", h.Kind, h.ID)
}

// Event represents something students can attend
type Event struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	Date            time.Time `json:"date" db:"date"`
	Duration        int       `json:"duration" db:"duration"` // minutes
	Type            EventType `json:"type" db:"type"`
	Location        *string   `json:"location,omitempty" db:"location"`
	LocationDetails *string   `json:"locationDetails,omitempty" db:"location_details"`
	Image           *string   `json:"image,omitempty" db:"image"`
	Host            Host      `json:"host"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`

	// Related entities
	Tags        []Tag   `json:"tags,omitempty"`
	AttendeeIDs []int64 `json:"attendeeIds,omitempty"`
}

// EndsAt returns the instant the event is over
func (e *Event) EndsAt() time.Time {
	return e.Date.Add(time.Duration(e.Duration) * time.Minute)
}

// HasAttendee reports whether userID is attending
func (e *Event) HasAttendee(userID int64) bool {
	for _, id := range e.AttendeeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// TagIDs returns the ids of the event's tags
func (e *Event) TagIDs() []int64 {
	ids := make([]int64, 0, len(e.Tags))
	for _, t := range e.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
