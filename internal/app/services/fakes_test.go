package services

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	appAuth "github.com/yigit/peers/internal/app/auth"
	"github.com/yigit/peers/internal/app/feed"
	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/app/repositories"
	"github.com/yigit/peers/internal/pkg/apperrors"
	"github.com/yigit/peers/internal/pkg/callprovider"
	"github.com/yigit/peers/internal/pkg/eventtime"
	"github.com/yigit/peers/internal/pkg/filestorage"
)

var (
	testNow   = time.Date(2025, 4, 23, 12, 0, 0, 0, time.UTC)
	testClock = eventtime.ClockFunc(func() time.Time { return testNow })
	nopLogger = zerolog.Nop()
)

func strPtr(s string) *string { return &s }

// store is an in-memory stand-in for the database shared by the fake repositories
type store struct {
	mu            sync.Mutex
	users         map[int64]*models.User
	events        map[int64]*models.Event
	orgs          map[int64]*models.Organization
	tags          map[int64]models.Tag
	universities  map[string]models.University
	codes         map[int64]models.VerificationCode
	sessions      []models.CallSession
	nextEventID   int64
	nextOrgID     int64
	failEventList error
}

func newStore() *store {
	return &store{
		users:        map[int64]*models.User{},
		events:       map[int64]*models.Event{},
		orgs:         map[int64]*models.Organization{},
		tags:         map[int64]models.Tag{},
		universities: map[string]models.University{},
		codes:        map[int64]models.VerificationCode{},
		nextEventID:  1,
		nextOrgID:    1,
	}
}

func (s *store) addUser(u models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Username == "" {
		u.Username = fmt.Sprintf("user%d", u.ID)
	}
	if u.Email == "" {
		u.Email = fmt.Sprintf("user%d@uni.edu", u.ID)
	}
	s.users[u.ID] = &u
	return &u
}

func (s *store) addTag(id int64, name string) models.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := models.Tag{ID: id, Category: models.TagCategoryOther, Name: name}
	s.tags[id] = t
	return t
}

func (s *store) addEvent(e models.Event) *models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.nextEventID
	}
	if e.ID >= s.nextEventID {
		s.nextEventID = e.ID + 1
	}
	if e.Type == "" {
		e.Type = models.EventTypeOnlineVideo
	}
	s.events[e.ID] = &e
	return &e
}

func (s *store) addOrg(o models.Organization) *models.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.nextOrgID
	}
	if o.ID >= s.nextOrgID {
		s.nextOrgID = o.ID + 1
	}
	s.orgs[o.ID] = &o
	return &o
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func cloneEvent(e *models.Event) models.Event {
	c := *e
	c.Tags = slices.Clone(e.Tags)
	c.AttendeeIDs = slices.Clone(e.AttendeeIDs)
	return c
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Interests = slices.Clone(u.Interests)
	return &c
}

func cloneOrg(o *models.Organization) *models.Organization {
	c := *o
	c.AdminIDs = slices.Clone(o.AdminIDs)
	return &c
}

// userRepo

type fakeUserRepo struct{ s *store }

var _ repositories.IUserRepository = fakeUserRepo{}

func (r fakeUserRepo) EnsureUser(_ context.Context, id int64, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.Email = email
		return cloneUser(u), nil
	}
	u := &models.User{ID: id, Email: email, Username: fmt.Sprintf("user%d", id), CreatedAt: testNow}
	r.s.users[id] = u
	return cloneUser(u), nil
}

func (r fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("user %d not found", id))
	}
	return cloneUser(u), nil
}

func (r fakeUserRepo) List(context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.User{}
	for _, id := range sortedKeys(r.s.users) {
		out = append(out, *cloneUser(r.s.users[id]))
	}
	return out, nil
}

func (r fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return apperrors.NewResourceNotFoundError("user not found")
	}
	for id, other := range r.s.users {
		if id != u.ID && other.Username == u.Username {
			return apperrors.NewConflictError("username is already taken")
		}
	}
	r.s.users[u.ID] = cloneUser(u)
	return nil
}

func (r fakeUserRepo) SetInterests(_ context.Context, userID int64, tagIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return apperrors.NewValidationError("unknown tag or user")
	}
	u.Interests = nil
	for _, id := range tagIDs {
		u.Interests = append(u.Interests, r.s.tags[id])
	}
	return nil
}

func (r fakeUserRepo) HostCandidates(context.Context) ([]feed.HostCandidate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []feed.HostCandidate{}
	for _, id := range sortedKeys(r.s.users) {
		if c, ok := r.s.candidate(models.UserHost(id), r.s.users[id].DisplayName(), r.s.users[id].University); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *store) candidate(host models.Host, name string, university *string) (feed.HostCandidate, bool) {
	c := feed.HostCandidate{Host: host, Name: name, University: university}
	for _, id := range sortedKeys(s.events) {
		e := s.events[id]
		if e.Host != host {
			continue
		}
		c.HostedEvents++
		c.HostedTagIDs = append(c.HostedTagIDs, e.TagIDs()...)
	}
	return c, c.HostedEvents > 0
}

// eventRepo

type fakeEventRepo struct{ s *store }

var _ repositories.IEventRepository = fakeEventRepo{}

func (r fakeEventRepo) Create(_ context.Context, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = r.s.nextEventID
	r.s.nextEventID++
	e.CreatedAt, e.UpdatedAt = testNow, testNow
	c := cloneEvent(e)
	r.s.events[e.ID] = &c
	return nil
}

func (r fakeEventRepo) GetByID(_ context.Context, id int64) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("event %d not found", id))
	}
	c := cloneEvent(e)
	return &c, nil
}

func (r fakeEventRepo) List(_ context.Context, f repositories.EventFilter) ([]models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failEventList != nil {
		return nil, r.s.failEventList
	}
	out := []models.Event{}
	for _, id := range sortedKeys(r.s.events) {
		e := r.s.events[id]
		if f.EndingAfter != nil && e.EndsAt().Before(*f.EndingAfter) {
			continue
		}
		if f.Host != nil && e.Host != *f.Host {
			continue
		}
		if f.AttendeeID != nil && !e.HasAttendee(*f.AttendeeID) {
			continue
		}
		out = append(out, cloneEvent(e))
	}
	return out, nil
}

func (r fakeEventRepo) Update(_ context.Context, e *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[e.ID]; !ok {
		return apperrors.NewResourceNotFoundError("event not found")
	}
	c := cloneEvent(e)
	r.s.events[e.ID] = &c
	return nil
}

func (r fakeEventRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return apperrors.NewResourceNotFoundError("event not found")
	}
	delete(r.s.events, id)
	return nil
}

func (r fakeEventRepo) SetImage(_ context.Context, id int64, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("event not found")
	}
	e.Image = &url
	return nil
}

func (r fakeEventRepo) ToggleAttendance(_ context.Context, eventID, userID int64, attend bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok {
		return false, apperrors.NewResourceNotFoundError("event not found")
	}
	has := e.HasAttendee(userID)
	switch {
	case attend && !has:
		e.AttendeeIDs = append(e.AttendeeIDs, userID)
	case !attend && has:
		e.AttendeeIDs = slices.DeleteFunc(e.AttendeeIDs, func(id int64) bool { return id == userID })
	}
	return attend, nil
}

func (r fakeEventRepo) ListByHostsOrTags(_ context.Context, hosts []models.Host, tagIDs []int64) ([]models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Event{}
	for _, id := range sortedKeys(r.s.events) {
		e := r.s.events[id]
		match := slices.Contains(hosts, e.Host)
		for _, t := range e.TagIDs() {
			match = match || slices.Contains(tagIDs, t)
		}
		if match {
			out = append(out, cloneEvent(e))
		}
	}
	return out, nil
}

func (r fakeEventRepo) AttendedHosts(_ context.Context, userID int64) ([]models.Host, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Host
	for _, id := range sortedKeys(r.s.events) {
		e := r.s.events[id]
		if e.HasAttendee(userID) && !slices.Contains(out, e.Host) {
			out = append(out, e.Host)
		}
	}
	return out, nil
}

// orgRepo

type fakeOrgRepo struct{ s *store }

var _ repositories.IOrganizationRepository = fakeOrgRepo{}

func (r fakeOrgRepo) Create(_ context.Context, o *models.Organization, creatorID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.orgs {
		if other.Name == o.Name {
			return apperrors.NewConflictError("an organization with this name already exists")
		}
	}
	o.ID = r.s.nextOrgID
	r.s.nextOrgID++
	o.AdminIDs = []int64{creatorID}
	r.s.orgs[o.ID] = cloneOrg(o)
	return nil
}

func (r fakeOrgRepo) GetByID(_ context.Context, id int64) (*models.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orgs[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("organization %d not found", id))
	}
	return cloneOrg(o), nil
}

func (r fakeOrgRepo) List(context.Context) ([]models.Organization, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Organization{}
	for _, id := range sortedKeys(r.s.orgs) {
		out = append(out, *cloneOrg(r.s.orgs[id]))
	}
	return out, nil
}

func (r fakeOrgRepo) Update(_ context.Context, o *models.Organization) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orgs[o.ID]; !ok {
		return apperrors.NewResourceNotFoundError("organization not found")
	}
	r.s.orgs[o.ID] = cloneOrg(o)
	return nil
}

func (r fakeOrgRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orgs[id]; !ok {
		return apperrors.NewResourceNotFoundError("organization not found")
	}
	delete(r.s.orgs, id)
	return nil
}

func (r fakeOrgRepo) AddAdmin(_ context.Context, orgID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orgs[orgID]
	if !ok {
		return apperrors.NewResourceNotFoundError("organization or user not found")
	}
	if !o.HasAdmin(userID) {
		o.AdminIDs = append(o.AdminIDs, userID)
	}
	return nil
}

func (r fakeOrgRepo) RemoveAdmin(_ context.Context, orgID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orgs[orgID]
	if !ok {
		return apperrors.NewResourceNotFoundError("organization not found")
	}
	if !o.HasAdmin(userID) {
		return apperrors.NewResourceNotFoundError("not an admin")
	}
	if len(o.AdminIDs) <= 1 {
		return apperrors.NewConflictError("cannot remove the last admin of an organization")
	}
	o.AdminIDs = slices.DeleteFunc(o.AdminIDs, func(id int64) bool { return id == userID })
	return nil
}

func (r fakeOrgRepo) HostCandidates(context.Context) ([]feed.HostCandidate, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []feed.HostCandidate{}
	for _, id := range sortedKeys(r.s.orgs) {
		o := r.s.orgs[id]
		if c, ok := r.s.candidate(models.OrganizationHost(id), o.Name, o.University); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// tagRepo and universityRepo

type fakeTagRepo struct{ s *store }

var _ repositories.ITagRepository = fakeTagRepo{}

func (r fakeTagRepo) List(context.Context) ([]models.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Tag{}
	for _, id := range sortedKeys(r.s.tags) {
		out = append(out, r.s.tags[id])
	}
	return out, nil
}

func (r fakeTagRepo) GetByIDs(_ context.Context, ids []int64) ([]models.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Tag{}
	for _, id := range ids {
		if t, ok := r.s.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r fakeTagRepo) Upsert(_ context.Context, t *models.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tags[t.ID] = *t
	return nil
}

type fakeUniversityRepo struct{ s *store }

var _ repositories.IUniversityRepository = fakeUniversityRepo{}

func (r fakeUniversityRepo) List(context.Context) ([]models.University, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.University{}
	for _, u := range r.s.universities {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b models.University) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out, nil
}

func (r fakeUniversityRepo) GetByName(_ context.Context, name string) (*models.University, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.universities[name]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("university not found")
	}
	return &u, nil
}

func (r fakeUniversityRepo) Upsert(_ context.Context, u *models.University) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.universities[u.Name] = *u
	return nil
}

// verificationRepo

type fakeVerificationRepo struct{ s *store }

var _ repositories.IVerificationRepository = fakeVerificationRepo{}

func (r fakeVerificationRepo) Upsert(_ context.Context, c *models.VerificationCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.codes[c.UserID] = *c
	return nil
}

func (r fakeVerificationRepo) Get(_ context.Context, userID int64) (*models.VerificationCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.codes[userID]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("no pending verification")
	}
	return &c, nil
}

func (r fakeVerificationRepo) Delete(_ context.Context, userID int64, codeHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.codes[userID]; ok && c.CodeHash == codeHash {
		delete(r.s.codes, userID)
	}
	return nil
}

func (r fakeVerificationRepo) RecordFailedAttempt(_ context.Context, userID int64, codeHash string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.codes[userID]
	if !ok || c.CodeHash != codeHash {
		return 0, apperrors.NewResourceNotFoundError("no pending verification")
	}
	c.Attempts++
	r.s.codes[userID] = c
	return c.Attempts, nil
}

func (r fakeVerificationRepo) Complete(_ context.Context, code *models.VerificationCode, maxAttempts int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pending, ok := r.s.codes[code.UserID]
	if !ok || pending.CodeHash != code.CodeHash || pending.Attempts >= maxAttempts {
		return apperrors.NewConflictError("verification code is no longer valid, request a new one")
	}
	u, ok := r.s.users[code.UserID]
	if !ok {
		return apperrors.NewResourceNotFoundError("user not found")
	}
	university := code.University
	u.IsVerifiedStudent = true
	u.University = &university
	delete(r.s.codes, code.UserID)
	return nil
}

// callSessionRepo

type fakeCallSessionRepo struct{ s *store }

var _ repositories.ICallSessionRepository = fakeCallSessionRepo{}

func (r fakeCallSessionRepo) Record(_ context.Context, cs *models.CallSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[cs.UserID]
	if !ok {
		return apperrors.NewResourceNotFoundError("event or user not found")
	}
	cs.ID = int64(len(r.s.sessions) + 1)
	r.s.sessions = append(r.s.sessions, *cs)
	u.Points += cs.Points
	return nil
}

// collaborators

type fakeStorage struct {
	saved   []string
	deleted []string
	err     error
}

var _ filestorage.ImageStorage = (*fakeStorage)(nil)

func (f *fakeStorage) SaveImage(r io.Reader, originalName, dir string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	url := fmt.Sprintf("http://localhost/uploads/%s/%d-%s", dir, len(f.saved)+1, originalName)
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeStorage) Delete(url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

type sentCode struct {
	to, code string
	ttl      time.Duration
}

type fakeSender struct {
	sent []sentCode
	err  error
}

func (f *fakeSender) SendVerificationCode(_ context.Context, to, code string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentCode{to: to, code: code, ttl: ttl})
	return nil
}

type fakeRooms struct {
	created []string
	opts    []callprovider.RoomOptions
	err     error
}

func (f *fakeRooms) CreateRoom(_ context.Context, name string, opts callprovider.RoomOptions) (callprovider.Room, error) {
	if f.err != nil {
		return callprovider.Room{}, f.err
	}
	f.created = append(f.created, name)
	f.opts = append(f.opts, opts)
	return callprovider.Room{Name: name, URL: "https://calls.test/" + name}, nil
}

// fixture wires every service to one store
type fixture struct {
	store   *store
	storage *fakeStorage
	sender  *fakeSender
	rooms   *fakeRooms
	authz   *appAuth.AuthorizationService
	events  EventService
	users   UserService
	orgs    OrganizationService
	feed    FeedService
	search  SearchService
	verify  VerificationService
	calls   CallService
	catalog CatalogService
	codeTTL time.Duration
}

func newFixture() *fixture {
	s := newStore()
	f := &fixture{
		store:   s,
		storage: &fakeStorage{},
		sender:  &fakeSender{},
		rooms:   &fakeRooms{},
		codeTTL: 30 * time.Minute,
	}
	users, events, orgs := fakeUserRepo{s}, fakeEventRepo{s}, fakeOrgRepo{s}
	f.authz = appAuth.NewAuthorizationService(users, orgs)
	f.events = NewEventService(events, fakeTagRepo{s}, f.authz, f.storage, testClock, nopLogger)
	f.users = NewUserService(users, fakeTagRepo{s}, nopLogger)
	f.orgs = NewOrganizationService(orgs, users, f.authz, nopLogger)
	f.feed = NewFeedService(events, users, orgs, testClock, nopLogger)
	f.search = NewSearchService(events, orgs, users, testClock, nopLogger)
	f.verify = NewVerificationService(fakeVerificationRepo{s}, fakeUniversityRepo{s}, users, f.sender, testClock, f.codeTTL, nopLogger)
	f.calls = NewCallService(events, fakeCallSessionRepo{s}, f.authz, f.rooms, testClock, nopLogger)
	f.catalog = NewCatalogService(fakeTagRepo{s}, fakeUniversityRepo{s})
	return f
}
