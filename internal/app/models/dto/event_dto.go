package dto

import (
	"time"

	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/pkg/eventtime"
)

// CreateEventRequest is the body of POST /events. Leaving OrganizationID
// empty makes the caller the host.
type CreateEventRequest struct {
	Title           string           `json:"title" binding:"required,max=200" example:"Go meetup"`
	Description     string           `json:"description" binding:"max=5000" example:"Talks and pizza"`
	Date            time.Time        `json:"date" binding:"required" example:"2025-05-01T18:00:00Z"`
	Duration        int              `json:"duration" binding:"required,gt=0,lte=10080" example:"90"`
	Type            models.EventType `json:"type" binding:"required,oneof=IN_PERSON ONLINE_VIDEO ONLINE_AUDIO" example:"IN_PERSON"`
	Location        *string          `json:"location,omitempty" binding:"omitempty,max=300" example:"Room B12"`
	LocationDetails *string          `json:"locationDetails,omitempty" binding:"omitempty,max=1000"`
	TagIDs          []int64          `json:"tagIds" binding:"max=10,dive,gt=0"`
	OrganizationID  *int64           `json:"organizationId,omitempty" binding:"omitempty,gt=0" example:"3"`
}

// UpdateEventRequest is the body of PUT /events/:id. The host never changes.
type UpdateEventRequest struct {
	Title           string           `json:"title" binding:"required,max=200"`
	Description     string           `json:"description" binding:"max=5000"`
	Date            time.Time        `json:"date" binding:"required"`
	Duration        int              `json:"duration" binding:"required,gt=0,lte=10080"`
	Type            models.EventType `json:"type" binding:"required,oneof=IN_PERSON ONLINE_VIDEO ONLINE_AUDIO"`
	Location        *string          `json:"location,omitempty" binding:"omitempty,max=300"`
	LocationDetails *string          `json:"locationDetails,omitempty" binding:"omitempty,max=1000"`
	TagIDs          []int64          `json:"tagIds" binding:"max=10,dive,gt=0"`
}

// AttendanceRequest sets whether the caller attends an event
type AttendanceRequest struct {
	Attending *bool `json:"attending" binding:"required" example:"true"`
}

// AttendanceResponse is the attendance state after a toggle
type AttendanceResponse struct {
	EventID   int64 `json:"eventId" example:"12"`
	Attending bool  `json:"attending" example:"true"`
}

// EventResponse is an event as seen by one user at one instant
type EventResponse struct {
	models.Event
	Status        eventtime.Window `json:"status"`
	AttendeeCount int              `json:"attendeeCount" example:"14"`
	IsAttending   bool             `json:"isAttending"`
}

// NewEventResponse builds the response for viewerID at now
func NewEventResponse(e models.Event, viewerID int64, now time.Time) EventResponse {
	return EventResponse{
		Event:         e,
		Status:        eventtime.Status(e.Date, e.Duration, now),
		AttendeeCount: len(e.AttendeeIDs),
		IsAttending:   e.HasAttendee(viewerID),
	}
}

// NewEventResponses maps NewEventResponse over events
func NewEventResponses(events []models.Event, viewerID int64, now time.Time) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, NewEventResponse(e, viewerID, now))
	}
	return out
}

// CallRoomResponse tells a participant where to join an event's call
type CallRoomResponse struct {
	EventID   int64     `json:"eventId" example:"12"`
	RoomName  string    `json:"roomName" example:"peers-event-12"`
	URL       string    `json:"url" example:"https://peers.daily.co/peers-event-12"`
	ExpiresAt time.Time `json:"expiresAt"`
	AudioOnly bool      `json:"audioOnly"`
}

// CallParticipantsResponse lists who is connected to an event's call
type CallParticipantsResponse struct {
	EventID      int64   `json:"eventId" example:"12"`
	Participants []int64 `json:"participants" example:"3,7"`
}
