package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/peers/internal/app/feed"
	"github.com/yigit/peers/internal/app/models"
	"github.com/yigit/peers/internal/db"
)

// IUserRepository defines the user operations the services rely on
type IUserRepository interface {
	// EnsureUser creates the user on first sight and keeps the email in sync
	EnsureUser(ctx context.Context, id int64, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetInterests(ctx context.Context, userID int64, tagIDs []int64) error
	HostCandidates(ctx context.Context) ([]feed.HostCandidate, error)
}

// EventFilter narrows event listings. Zero fields do not filter.
type EventFilter struct {
	// EndingAfter keeps events whose end is not before this instant
	EndingAfter *time.Time
	Host        *models.Host
	AttendeeID  *int64
}

// IEventRepository defines the event operations the services rely on
type IEventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context, filter EventFilter) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int64) error
	SetImage(ctx context.Context, id int64, url string) error

	// ToggleAttendance makes the attendance of userID match attend and
	// returns the resulting state. It locks the event row for the duration.
	ToggleAttendance(ctx context.Context, eventID, userID int64, attend bool) (bool, error)

	// ListByHostsOrTags returns events hosted by any of hosts or tagged
	// with any of tagIDs
	ListByHostsOrTags(ctx context.Context, hosts []models.Host, tagIDs []int64) ([]models.Event, error)

	// AttendedHosts returns the distinct hosts of events userID attends
	AttendedHosts(ctx context.Context, userID int64) ([]models.Host, error)
}

// IOrganizationRepository defines the organization operations the services rely on
type IOrganizationRepository interface {
	// Create inserts the organization with creatorID as its first admin
	Create(ctx context.Context, org *models.Organization, creatorID int64) error
	GetByID(ctx context.Context, id int64) (*models.Organization, error)
	List(ctx context.Context) ([]models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	Delete(ctx context.Context, id int64) error
	AddAdmin(ctx context.Context, orgID, userID int64) error
	// RemoveAdmin refuses to remove the last admin
	RemoveAdmin(ctx context.Context, orgID, userID int64) error
	HostCandidates(ctx context.Context) ([]feed.HostCandidate, error)
}

// ITagRepository reads and seeds tags
type ITagRepository interface {
	List(ctx context.Context) ([]models.Tag, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.Tag, error)
	Upsert(ctx context.Context, tag *models.Tag) error
}

// IUniversityRepository reads and seeds universities
type IUniversityRepository interface {
	List(ctx context.Context) ([]models.University, error)
	GetByName(ctx context.Context, name string) (*models.University, error)
	Upsert(ctx context.Context, u *models.University) error
}

// IVerificationRepository stores pending student verifications
type IVerificationRepository interface {
	// Upsert replaces any pending code of the user
	Upsert(ctx context.Context, code *models.VerificationCode) error
	Get(ctx context.Context, userID int64) (*models.VerificationCode, error)
	// Delete removes the user's pending code only if it is still codeHash
	Delete(ctx context.Context, userID int64, codeHash string) error
	// RecordFailedAttempt counts a wrong guess against codeHash and returns
	// the new total
	RecordFailedAttempt(ctx context.Context, userID int64, codeHash string) (int, error)
	// Complete marks the user verified at the code's university and consumes
	// the code, provided it is still pending with fewer than maxAttempts misses
	Complete(ctx context.Context, code *models.VerificationCode, maxAttempts int) error
}

// ICallSessionRepository persists finished call sessions
type ICallSessionRepository interface {
	// Record stores the session and credits its points to the user
	Record(ctx context.Context, session *models.CallSession) error
}

// Repositories holds all the repository instances
type Repositories struct {
	Users         *UserRepository
	Events        *EventRepository
	Organizations *OrganizationRepository
	Tags          *TagRepository
	Universities  *UniversityRepository
	Verifications *VerificationRepository
	CallSessions  *CallSessionRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(database),
		Events:        NewEventRepository(database),
		Organizations: NewOrganizationRepository(database),
		Tags:          NewTagRepository(database),
		Universities:  NewUniversityRepository(database),
		Verifications: NewVerificationRepository(database),
		CallSessions:  NewCallSessionRepository(database),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
