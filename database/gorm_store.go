package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/hotel-ops/models"
	"gorm.io/gorm"
)

// GormStore keeps every collection in a relational database through gorm.
// Cascading deletes run inside one transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying connection for migrations and tests.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// ---------------------------------------------------------------- users

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	prepare(&user.ID, &user.CreatedAt)
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *GormStore) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *GormStore) FindUserIDs(ctx context.Context, part string) ([]string, error) {
	ids := []string{}
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("INSTR(LOWER(username), ?) > 0", strings.ToLower(part)).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *GormStore) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return s.updateUser(ctx, id, "password", passwordHash)
}

func (s *GormStore) UpdateUserRole(ctx context.Context, id, role string) error {
	return s.updateUser(ctx, id, "role", role)
}

func (s *GormStore) updateUser(ctx context.Context, id, column string, value any) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update(column, value).Error
}

func (s *GormStore) DeleteUser(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------- rooms

func (s *GormStore) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := s.db.WithContext(ctx).Order("number ASC").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (s *GormStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	if err := s.db.WithContext(ctx).First(&room, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (s *GormStore) GetRoomByNumber(ctx context.Context, number string) (*models.Room, error) {
	var room models.Room
	if err := s.db.WithContext(ctx).Where("number = ?", number).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (s *GormStore) CreateRoom(ctx context.Context, room *models.Room) error {
	prepare(&room.ID, &room.CreatedAt)
	return translate(s.db.WithContext(ctx).Create(room).Error)
}

func (s *GormStore) UpdateRoom(ctx context.Context, room *models.Room) error {
	err := s.db.WithContext(ctx).
		Model(room).
		Select("number", "type", "status", "floor").
		Updates(room).Error
	return translate(err)
}

func (s *GormStore) DeleteRoom(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		titleIDs := tx.Model(&models.IssueTitle{}).Select("id").Where("room_id = ?", id)
		if err := tx.Where("title_id IN (?)", titleIDs).Delete(&models.Issue{}).Error; err != nil {
			return fmt.Errorf("delete issues of room %s: %w", id, err)
		}
		if err := tx.Where("room_id = ?", id).Delete(&models.IssueTitle{}).Error; err != nil {
			return fmt.Errorf("delete categories of room %s: %w", id, err)
		}
		res := tx.Delete(&models.Room{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete room %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ---------------------------------------------------------------- titles

func newestIssuesFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

func (s *GormStore) ListTitles(ctx context.Context, roomID string) ([]models.IssueTitle, error) {
	var titles []models.IssueTitle
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Preload("Issues", newestIssuesFirst).
		Preload("Issues.Creator").
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Find(&titles).Error
	if err != nil {
		return nil, err
	}
	for i := range titles {
		if titles[i].Issues == nil {
			titles[i].Issues = []models.Issue{}
		}
	}
	return titles, nil
}

func (s *GormStore) GetTitle(ctx context.Context, id string) (*models.IssueTitle, error) {
	var title models.IssueTitle
	if err := s.db.WithContext(ctx).Preload("Creator").First(&title, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &title, nil
}

func (s *GormStore) CreateTitle(ctx context.Context, title *models.IssueTitle) error {
	prepare(&title.ID, &title.CreatedAt)
	return translate(s.db.WithContext(ctx).Omit("Creator", "Issues").Create(title).Error)
}

func (s *GormStore) UpdateTitle(ctx context.Context, title *models.IssueTitle) error {
	err := s.db.WithContext(ctx).
		Model(&models.IssueTitle{}).
		Where("id = ?", title.ID).
		Update("title", title.Title).Error
	return translate(err)
}

func (s *GormStore) DeleteTitle(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("title_id = ?", id).Delete(&models.Issue{}).Error; err != nil {
			return fmt.Errorf("delete issues of category %s: %w", id, err)
		}
		res := tx.Delete(&models.IssueTitle{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete category %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ---------------------------------------------------------------- issues

func (s *GormStore) ListIssues(ctx context.Context, titleID string) ([]models.Issue, error) {
	var issues []models.Issue
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Where("title_id = ?", titleID).
		Order("created_at DESC").
		Find(&issues).Error
	if err != nil {
		return nil, err
	}
	return issues, nil
}

func (s *GormStore) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	var issue models.Issue
	if err := s.db.WithContext(ctx).First(&issue, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &issue, nil
}

func (s *GormStore) CreateIssue(ctx context.Context, issue *models.Issue) error {
	prepare(&issue.ID, &issue.CreatedAt)
	return translate(s.db.WithContext(ctx).Omit("Creator").Create(issue).Error)
}

func (s *GormStore) UpdateIssue(ctx context.Context, issue *models.Issue) error {
	err := s.db.WithContext(ctx).
		Model(&models.Issue{}).
		Where("id = ?", issue.ID).
		Update("description", issue.Description).Error
	return translate(err)
}

func (s *GormStore) DeleteIssue(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Issue{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------- logs

func (s *GormStore) CreateLog(ctx context.Context, entry *models.Log) error {
	prepare(&entry.ID, &entry.CreatedAt)
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormStore) ListLogs(ctx context.Context, filter LogFilter) ([]models.Log, error) {
	logs := []models.Log{}
	if filter.UserIDs != nil && len(filter.UserIDs) == 0 {
		return logs, nil
	}

	q := s.db.WithContext(ctx).Model(&models.Log{})
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.UserIDs != nil {
		q = q.Where("user_id IN ?", filter.UserIDs)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", filter.To.UTC())
	}

	if err := q.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
