package book

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/book"
	"github.com/xiebiao/restbookstore/internal/domain/category"
	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/domain/notification/notificationtest"
	"github.com/xiebiao/restbookstore/internal/domain/publisher"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/logger"
)

// mockPublishers 只实现图书服务用到的方法
type mockPublishers struct {
	mock.Mock
	publisher.Repository
}

func (m *mockPublishers) FindByID(ctx context.Context, id uint) (*publisher.Publisher, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*publisher.Publisher)
	return p, args.Error(1)
}

type mockCategories struct {
	mock.Mock
	category.Repository
}

func (m *mockCategories) FindByName(ctx context.Context, name string) (*category.Category, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(*category.Category)
	return c, args.Error(1)
}

// fakeBooks 内存版图书仓储
type fakeBooks struct {
	book.Repository
	nextID uint
	data   map[uint]book.Book
}

func (r *fakeBooks) Create(_ context.Context, b *book.Book) error {
	r.nextID++
	b.ID = r.nextID
	r.data[b.ID] = *b
	return nil
}

func (r *fakeBooks) FindByID(_ context.Context, id uint) (*book.Book, error) {
	b, ok := r.data[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return &b, nil
}

func (r *fakeBooks) Update(_ context.Context, b *book.Book) error {
	r.data[b.ID] = *b
	return nil
}

type fixture struct {
	svc        *Service
	books      *fakeBooks
	publishers *mockPublishers
	categories *mockCategories
	rec        *notificationtest.Recorder
}

func newFixture(inShops common.DependentCounter[uint]) *fixture {
	f := &fixture{
		books:      &fakeBooks{data: map[uint]book.Book{}},
		publishers: &mockPublishers{},
		categories: &mockCategories{},
		rec:        &notificationtest.Recorder{},
	}
	f.svc = NewService(f.books, f.publishers, f.categories, inShops, common.Deps{Notifier: f.rec, Log: logger.Discard()})

	f.publishers.On("FindByID", mock.Anything, uint(1)).Return(&publisher.Publisher{ID: 1, Name: "Planeta", Active: true}, nil).Maybe()
	f.publishers.On("FindByID", mock.Anything, uint(2)).Return(&publisher.Publisher{ID: 2, Name: "Closed", Active: false}, nil).Maybe()
	f.publishers.On("FindByID", mock.Anything, mock.Anything).Return(nil, publisher.ErrPublisherNotFound).Maybe()
	f.categories.On("FindByName", mock.Anything, "Fantasy").Return(&category.Category{ID: "cat-1", Name: "Fantasy", Active: true}, nil).Maybe()
	f.categories.On("FindByName", mock.Anything, mock.Anything).Return(nil, category.ErrCategoryNotFound).Maybe()
	return f
}

func validCommand() Command {
	return Command{
		Fields:       book.Fields{Name: "Dune", Author: "Herbert", Price: 1999, Stock: 5, Active: true},
		PublisherID:  1,
		CategoryName: "Fantasy",
	}
}

func TestBookService_CreateResolvesReferences(t *testing.T) {
	f := newFixture(nil)

	resp, err := f.svc.Create(context.Background(), validCommand())
	require.NoError(t, err)
	assert.Equal(t, "Planeta", resp.PublisherName)
	assert.Equal(t, "Fantasy", resp.Category)
	assert.Equal(t, "cat-1", resp.CategoryID)

	require.Len(t, f.rec.All(), 1)
	n := f.rec.Last().(notification.Notification[*Response])
	assert.Equal(t, notification.Books, n.Entity)
	assert.Equal(t, notification.Create, n.Type)
	assert.Equal(t, uint(1), n.Data.ID)
}

func TestBookService_CreateDependencyErrors(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	cmd := validCommand()
	cmd.PublisherID = 9
	_, err := f.svc.Create(ctx, cmd)
	assert.ErrorIs(t, err, apperrors.ErrDependencyNotFound)

	cmd = validCommand()
	cmd.PublisherID = 2
	_, err = f.svc.Create(ctx, cmd)
	assert.ErrorIs(t, err, apperrors.ErrDependencyNotFound)

	cmd = validCommand()
	cmd.CategoryName = "Poetry"
	_, err = f.svc.Create(ctx, cmd)
	assert.ErrorIs(t, err, apperrors.ErrDependencyNotFound)

	cmd = validCommand()
	cmd.Price = -1
	_, err = f.svc.Create(ctx, cmd)
	assert.ErrorIs(t, err, book.ErrInvalidPrice)

	assert.Empty(t, f.rec.All())
	assert.Empty(t, f.books.data)
}

func TestBookService_PatchKeepsUntouchedFields(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, validCommand())
	require.NoError(t, err)

	price := int64(2500)
	resp, err := f.svc.Patch(ctx, "1", PatchCommand{Patch: book.Patch{Price: &price}})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), resp.Price)
	assert.Equal(t, "Dune", resp.Name)
	assert.Equal(t, 5, resp.Stock)

	missing := "Poetry"
	_, err = f.svc.Patch(ctx, "1", PatchCommand{CategoryName: &missing})
	assert.ErrorIs(t, err, apperrors.ErrDependencyNotFound)
	assert.Equal(t, "Fantasy", f.books.data[1].CategoryName)

	assert.Equal(t, []notification.Type{notification.Create, notification.Update}, f.rec.Kinds())
}

func TestBookService_Update(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, validCommand())
	require.NoError(t, err)

	cmd := validCommand()
	cmd.Name = "Dune Messiah"
	cmd.Image = ""
	resp, err := f.svc.Update(ctx, "1", cmd)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", resp.Name)

	_, err = f.svc.Update(ctx, "x1", cmd)
	assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)
	_, err = f.svc.Update(ctx, "3", cmd)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.Equal(t, []notification.Type{notification.Create, notification.Update}, f.rec.Kinds())
}

func TestBookService_Delete(t *testing.T) {
	shops := int64(1)
	f := newFixture(func(context.Context, uint) (int64, error) { return shops, nil })
	ctx := context.Background()

	_, err := f.svc.Create(ctx, validCommand())
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, "1"), book.ErrInShops)
	assert.True(t, f.books.data[1].Active)

	shops = 0
	require.NoError(t, f.svc.Delete(ctx, "1"))
	require.NoError(t, f.svc.Delete(ctx, "1"))
	assert.False(t, f.books.data[1].Active)

	assert.Equal(t, []notification.Type{notification.Create, notification.Delete}, f.rec.Kinds())
}
