package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/app/models/dto"
	"github.com/yigit/peers/internal/pkg/apperrors"
	"github.com/yigit/peers/internal/pkg/eventtime"
	"github.com/yigit/peers/internal/pkg/filestorage"
)

func validCreateRequest() *dto.CreateEventRequest {
	return &dto.CreateEventRequest{
		Title:    "  Go meetup ",
		Date:     testNow.Add(2 * time.Hour),
		Duration: 90,
		Type:     models.EventTypeInPerson,
		Location: strPtr("Room B12"),
		TagIDs:   []int64{2, 1, 2},
	}
}

func TestCreateEvent(t *testing.T) {
	f := newFixture()
	f.store.addUser(models.User{ID: 1, IsVerifiedStudent: true})
	f.store.addTag(1, "go")
	f.store.addTag(2, "meetup")

	resp, err := f.events.CreateEvent(context.Background(), 1, validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "Go meetup", resp.Title)
	assert.Equal(t, models.UserHost(1), resp.Host)
	assert.Equal(t, []int64{1, 2}, resp.TagIDs())
	assert.Equal(t, eventtime.StateUpcoming, resp.Status.State)
	assert.Equal(t, "in 2 hours", resp.Status.Countdown)

	stored, err := fakeEventRepo{f.store}.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go meetup", stored.Title)
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture()
	f.store.addUser(models.User{ID: 1, IsVerifiedStudent: true})
	f.store.addTag(1, "go")

	cases := map[string]func(r *dto.CreateEventRequest){
		"blank title":        func(r *dto.CreateEventRequest) { r.Title = "   " },
		"zero duration":      func(r *dto.CreateEventRequest) { r.Duration = 0 },
		"negative duration":  func(r *dto.CreateEventRequest) { r.Duration = -5 },
		"unknown type":       func(r *dto.CreateEventRequest) { r.Type = "HYBRID" },
		"in person no place": func(r *dto.CreateEventRequest) { r.Location = strPtr("  ") },
		"already over":       func(r *dto.CreateEventRequest) { r.Date = testNow.Add(-3 * time.Hour) },
		"one unknown tag":    func(r *dto.CreateEventRequest) { r.TagIDs = []int64{1, 99} },
		"only unknown tags":  func(r *dto.CreateEventRequest) { r.TagIDs = []int64{42} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validCreateRequest()
			req.TagIDs = []int64{1}
			mutate(req)

			_, err := f.events.CreateEvent(context.Background(), 1, req)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
	assert.Empty(t, f.store.events, "nothing is stored when validation fails")
}

func TestCreateEventOnlineWithoutLocation(t *testing.T) {
	f := newFixture()
	f.store.addUser(models.User{ID: 1, IsVerifiedStudent: true})

	req := validCreateRequest()
	req.Type = models.EventTypeOnlineAudio
	req.Location = nil
	req.TagIDs = nil

	resp, err := f.events.CreateEvent(context.Background(), 1, req)
	require.NoError(t, err)
	assert.Nil(t, resp.Location)
	assert.Empty(t, resp.Tags)
}

func TestCreateEventPermissions(t *testing.T) {
	f := newFixture()
	f.store.addUser(models.User{ID: 1})
	f.store.addUser(models.User{ID: 2, IsVerifiedStudent: true})
	f.store.addOrg(models.Organization{ID: 5, Name: "Chess", AdminIDs: []int64{3}})

	req := validCreateRequest()
	req.TagIDs = nil

	_, err := f.events.CreateEvent(context.Background(), 1, req)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied, "unverified users cannot host")

	req.OrganizationID = new(int64)
	*req.OrganizationID = 5
	_, err = f.events.CreateEvent(context.Background(), 2, req)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied, "only admins host for an organization")

	f.store.orgs[5].AdminIDs = append(f.store.orgs[5].AdminIDs, 2)
	resp, err := f.events.CreateEvent(context.Background(), 2, req)
	require.NoError(t, err)
	assert.Equal(t, models.OrganizationHost(5), resp.Host)
}

func TestUpdateEvent(t *testing.T) {
	f := newFixture()
	f.store.addUser(models.User{ID: 1})
	f.store.addUser(models.User{ID: 2})
	f.store.addEvent(models.Event{
		ID: 7, Title: "Old", Date: testNow.Add(time.Hour), Duration: 30,
		Host: models.UserHost(1), AttendeeIDs: []int64{2},
	})

	req := &dto.UpdateEventRequest{
		Title:    "New",
		Date:     testNow.Add(time.Hour),
		Duration: 60,
		Type:     models.EventTypeOnlineVideo,
	}

	_, err := f.events.UpdateEvent(context.Background(), 2, 7, req)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	resp, err := f.events.UpdateEvent(context.Background(), 1, 7, req)
	require.NoError(t, err)
	assert.Equal(t, "New", resp.Title)
	assert.Equal(t, models.UserHost(1), resp.Host)
	assert.Equal(t, []int64{2}, resp.AttendeeIDs, "attendees survive an update")

	req.Duration = 0
	_, err = f.events.UpdateEvent(context.Background(), 1, 7, req)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.events.UpdateEvent(context.Background(), 1, 404, req)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestDeleteEventRemovesImage(t *testing.T) {
	f := newFixture()
	f.store.addOrg(models.Organization{ID: 3, AdminIDs: []int64{9}})
	f.store.addEvent(models.Event{ID: 1, Date: testNow, Duration: 10, Host: models.OrganizationHost(3), Image: strPtr("http://localhost/uploads/events/a.png")})

	assert.ErrorIs(t, f.events.DeleteEvent(context.Background(), 8, 1), apperrors.ErrPermissionDenied)

	require.NoError(t, f.events.DeleteEvent(context.Background(), 9, 1))
	assert.NotContains(t, f.store.events, int64(1))
	assert.Equal(t, []string{"http://localhost/uploads/events/a.png"}, f.storage.deleted)
}

func TestToggleAttendanceIsIdempotent(t *testing.T) {
	f := newFixture()
	f.store.addEvent(models.Event{ID: 1, Date: testNow.Add(time.Hour), Duration: 60, Host: models.UserHost(9)})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		attending, err := f.events.ToggleAttendance(ctx, 1, 4, true)
		require.NoError(t, err)
		assert.True(t, attending)
	}
	assert.Equal(t, []int64{4}, f.store.events[1].AttendeeIDs)

	for i := 0; i < 2; i++ {
		attending, err := f.events.ToggleAttendance(ctx, 1, 4, false)
		require.NoError(t, err)
		assert.False(t, attending)
	}
	assert.Empty(t, f.store.events[1].AttendeeIDs)

	_, err := f.events.ToggleAttendance(ctx, 2, 4, true)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestListUpcomingFiltersAndSorts(t *testing.T) {
	f := newFixture()
	f.store.addEvent(models.Event{ID: 1, Title: "ended", Date: testNow.Add(-2 * time.Hour), Duration: 60})
	f.store.addEvent(models.Event{ID: 2, Title: "later", Date: testNow.Add(48 * time.Hour), Duration: 60})
	f.store.addEvent(models.Event{ID: 3, Title: "live", Date: testNow.Add(-10 * time.Minute), Duration: 60, AttendeeIDs: []int64{5}})
	f.store.addEvent(models.Event{ID: 4, Title: "soon", Date: testNow.Add(time.Hour), Duration: 60})

	events, err := f.events.ListUpcoming(context.Background(), 5)
	require.NoError(t, err)

	var titles []string
	for _, e := range events {
		titles = append(titles, e.Title)
	}
	assert.Equal(t, []string{"live", "soon", "later"}, titles)
	assert.True(t, events[0].IsAttending)
	assert.Equal(t, eventtime.StateLive, events[0].Status.State)
	assert.Equal(t, "50 minutes left", events[0].Status.Remaining)

	attending, err := f.events.ListAttending(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, attending, 1)
	assert.Equal(t, int64(3), attending[0].ID)
}

func TestUploadImage(t *testing.T) {
	f := newFixture()
	f.store.addEvent(models.Event{ID: 1, Date: testNow, Duration: 10, Host: models.UserHost(1), Image: strPtr("http://localhost/uploads/events/old.png")})
	ctx := context.Background()

	_, err := f.events.UploadImage(ctx, 2, 1, strings.NewReader("img"), "new.png")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	resp, err := f.events.UploadImage(ctx, 1, 1, strings.NewReader("img"), "new.png")
	require.NoError(t, err)
	require.NotNil(t, resp.Image)
	assert.Equal(t, f.storage.saved[0], *resp.Image)
	assert.Equal(t, f.storage.saved[0], *f.store.events[1].Image)
	assert.Equal(t, []string{"http://localhost/uploads/events/old.png"}, f.storage.deleted)

	f.storage.err = filestorage.ErrUnsupportedType
	_, err = f.events.UploadImage(ctx, 1, 1, strings.NewReader("pdf"), "doc.pdf")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
