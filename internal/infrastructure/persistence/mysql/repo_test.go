package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/restbookstore/internal/domain/book"
	"github.com/xiebiao/restbookstore/internal/domain/publisher"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
	"github.com/xiebiao/restbookstore/internal/domain/user"
)

// newMockDB 基于sqlmock的GORM连接，不开启默认事务
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func errDuplicate(key string) error {
	return errors.New("Error 1062 (23000): Duplicate entry 'x' for key '" + key + "'")
}

func TestPublisherRepository_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPublisherRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM `publishers` WHERE `publishers`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "image", "active", "created_at", "updated_at"}).
			AddRow(7, "Planeta", "", true, now, now))

	p, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), p.ID)
	assert.Equal(t, "Planeta", p.Name)
	assert.True(t, p.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublisherRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPublisherRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `publishers`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, publisher.ErrPublisherNotFound)
}

func TestPublisherRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPublisherRepository(db)

	mock.ExpectExec("INSERT INTO `publishers`").
		WillReturnError(errDuplicate("publishers.idx_publishers_name"))

	err := repo.Create(context.Background(), publisher.NewPublisher("Planeta", ""))
	assert.ErrorIs(t, err, publisher.ErrNameDuplicate)
}

func TestPublisherRepository_List_EmptySkipsFind(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPublisherRepository(db)
	active := true

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `publishers` WHERE name LIKE \\? AND active = \\?").
		WithArgs("%pla%", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	list, total, err := repo.List(context.Background(), publisher.ListParams{
		PageQuery: shared.PageQuery{}.Normalize("id"),
		Name:      "pla",
		Active:    &active,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_UpdateStock(t *testing.T) {
	t.Run("库存充足", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookRepository(db)

		mock.ExpectExec("UPDATE `books` SET `stock`=stock \\+ \\?").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateStock(context.Background(), 1, -2))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("库存不足", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookRepository(db)

		mock.ExpectExec("UPDATE `books`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT `id` FROM `books`").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		err := repo.UpdateStock(context.Background(), 1, -100)
		assert.ErrorIs(t, err, book.ErrInsufficientStock)
	})

	t.Run("图书不存在", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookRepository(db)

		mock.ExpectExec("UPDATE `books`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT `id` FROM `books`").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		err := repo.UpdateStock(context.Background(), 1, -1)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})
}

func TestBookRepository_CountActiveByPublisher(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `books` WHERE publisher_id = \\? AND active = \\?").
		WithArgs(3, true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.CountActiveByPublisher(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestUserRepository_Create_DuplicateMapping(t *testing.T) {
	cases := map[string]error{
		"users.idx_users_username": user.ErrUsernameDuplicate,
		"users.idx_users_email":    user.ErrEmailDuplicate,
	}
	for key, want := range cases {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db)

		mock.ExpectExec("INSERT INTO `users`").WillReturnError(errDuplicate(key))

		err := repo.Create(context.Background(), user.NewUser(user.Fields{Username: "ana", Email: "ana@example.com"}, "hash"))
		assert.ErrorIs(t, err, want, key)
	}
}

func TestUserRepository_FindByID_ParsesRoles(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "roles", "is_deleted"}).
			AddRow("u-1", "ana", "ADMIN,USER,BOGUS", false))

	u, err := repo.FindByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []user.Role{user.RoleAdmin, user.RoleUser}, u.Roles)
}

func TestTxManager_Transaction(t *testing.T) {
	t.Run("提交", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTxManager(db)
		repo := NewBookRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `books`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE `books`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tm.Transaction(context.Background(), func(ctx context.Context) error {
			if err := repo.UpdateStock(ctx, 1, -1); err != nil {
				return err
			}
			return repo.UpdateStock(ctx, 2, -1)
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("回滚", func(t *testing.T) {
		db, mock := newMockDB(t)
		tm := NewTxManager(db)
		repo := NewBookRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `books`").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE `books`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT `id` FROM `books`").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
		mock.ExpectRollback()

		err := tm.Transaction(context.Background(), func(ctx context.Context) error {
			if err := repo.UpdateStock(ctx, 1, -1); err != nil {
				return err
			}
			return repo.UpdateStock(ctx, 2, -5)
		})
		assert.ErrorIs(t, err, book.ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
