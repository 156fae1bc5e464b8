// Package database persists users, rooms, issue categories, issues and audit
// logs. Two backends implement Store: GormStore (MySQL, SQLite) and
// MongoStore.
package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/hotel-ops/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// LogFilter narrows ListLogs. A nil UserIDs applies no user filter, an empty
// non-nil slice matches nothing. From and To are inclusive.
type LogFilter struct {
	Action  string
	UserIDs []string
	From    *time.Time
	To      *time.Time
}

type Store interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	// FindUserIDs returns the ids of users whose username contains part,
	// ignoring case.
	FindUserIDs(ctx context.Context, part string) ([]string, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	UpdateUserRole(ctx context.Context, id, role string) error
	DeleteUser(ctx context.Context, id string) error

	ListRooms(ctx context.Context) ([]models.Room, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	GetRoomByNumber(ctx context.Context, number string) (*models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	UpdateRoom(ctx context.Context, room *models.Room) error
	// DeleteRoom removes the room, its categories and their issues.
	DeleteRoom(ctx context.Context, id string) error

	// ListTitles returns the categories of a room with their issues and the
	// issue creators populated.
	ListTitles(ctx context.Context, roomID string) ([]models.IssueTitle, error)
	GetTitle(ctx context.Context, id string) (*models.IssueTitle, error)
	CreateTitle(ctx context.Context, title *models.IssueTitle) error
	UpdateTitle(ctx context.Context, title *models.IssueTitle) error
	// DeleteTitle removes the category and its issues.
	DeleteTitle(ctx context.Context, id string) error

	ListIssues(ctx context.Context, titleID string) ([]models.Issue, error)
	GetIssue(ctx context.Context, id string) (*models.Issue, error)
	CreateIssue(ctx context.Context, issue *models.Issue) error
	UpdateIssue(ctx context.Context, issue *models.Issue) error
	DeleteIssue(ctx context.Context, id string) error

	CreateLog(ctx context.Context, entry *models.Log) error
	ListLogs(ctx context.Context, filter LogFilter) ([]models.Log, error)
}

// prepare fills in the id and creation time of a new record.
func prepare(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}
