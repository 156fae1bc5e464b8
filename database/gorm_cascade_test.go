package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return NewGormStore(db), mock
}

func TestDeleteRoom_RollsBackWhenIssueDeleteFails(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `issues`").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	err := store.DeleteRoom(context.Background(), "room-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete issues of room room-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoom_RollsBackWhenCategoryDeleteFails(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `issues`").WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("DELETE FROM `issue_titles`").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := store.DeleteRoom(context.Background(), "room-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete categories of room room-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoom_CommitsCascade(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `issues`").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM `issue_titles`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `rooms`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.DeleteRoom(context.Background(), "room-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoom_MissingRoomRollsBack(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `issues`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `issue_titles`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM `rooms`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.DeleteRoom(context.Background(), "room-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTitle_RollsBackWhenIssueDeleteFails(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `issues`").WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	err := store.DeleteTitle(context.Background(), "title-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete issues of category title-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}
