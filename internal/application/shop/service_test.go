package shop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/book"
	"github.com/xiebiao/restbookstore/internal/domain/client"
	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/domain/notification/notificationtest"
	"github.com/xiebiao/restbookstore/internal/domain/shop"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/logger"
)

const (
	clientAna    = "0b6a3c1e-0d8e-4a52-bb51-2f1b7c55d001"
	clientClosed = "0b6a3c1e-0d8e-4a52-bb51-2f1b7c55d002"
)

type fakeShops struct {
	shop.Repository
	data map[string]shop.Shop
}

func (r *fakeShops) Create(_ context.Context, s *shop.Shop) error {
	r.data[s.ID] = *s
	return nil
}

func (r *fakeShops) FindByID(_ context.Context, id string) (*shop.Shop, error) {
	s, ok := r.data[id]
	if !ok {
		return nil, shop.ErrShopNotFound
	}
	s.BookIDs = append([]uint(nil), s.BookIDs...)
	s.ClientIDs = append([]string(nil), s.ClientIDs...)
	return &s, nil
}

func (r *fakeShops) Update(_ context.Context, s *shop.Shop) error {
	r.data[s.ID] = *s
	return nil
}

type fakeBooks struct {
	book.Repository
}

func (fakeBooks) FindByID(_ context.Context, id uint) (*book.Book, error) {
	switch id {
	case 1:
		return &book.Book{ID: 1, Active: true}, nil
	case 2:
		return &book.Book{ID: 2, Active: false}, nil
	}
	return nil, book.ErrBookNotFound
}

type fakeClients struct {
	client.Repository
}

func (fakeClients) FindByID(_ context.Context, id string) (*client.Client, error) {
	switch id {
	case clientAna:
		return &client.Client{ID: id, Active: true}, nil
	case clientClosed:
		return &client.Client{ID: id, Active: false}, nil
	}
	return nil, client.ErrClientNotFound
}

func newTestService(orders common.DependentCounter[string]) (*Service, *fakeShops, *notificationtest.Recorder) {
	shops := &fakeShops{data: map[string]shop.Shop{}}
	rec := &notificationtest.Recorder{}
	svc := NewService(shops, fakeBooks{}, fakeClients{}, orders, common.Deps{Notifier: rec, Log: logger.Discard()})
	return svc, shops, rec
}

func TestShopService_BookAssociation(t *testing.T) {
	svc, shops, rec := newTestService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Command{Name: "Central", Address: "Main St"})
	require.NoError(t, err)
	assert.Empty(t, created.BookIDs)

	resp, err := svc.AddBook(ctx, created.ID, "1")
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, resp.BookIDs)

	// 重复关联不再通知
	_, err = svc.AddBook(ctx, created.ID, "1")
	require.NoError(t, err)

	_, err = svc.AddBook(ctx, created.ID, "2")
	assert.ErrorIs(t, err, apperrors.ErrDependencyNotFound)
	_, err = svc.AddBook(ctx, created.ID, "9")
	assert.ErrorIs(t, err, apperrors.ErrDependencyNotFound)

	resp, err = svc.RemoveBook(ctx, created.ID, "1")
	require.NoError(t, err)
	assert.Empty(t, resp.BookIDs)
	assert.Empty(t, shops.data[created.ID].BookIDs)

	_, err = svc.RemoveBook(ctx, created.ID, "1")
	assert.ErrorIs(t, err, shop.ErrBookNotInShop)

	assert.Equal(t, []notification.Type{notification.Create, notification.Update, notification.Update}, rec.Kinds())
}

func TestShopService_ClientAssociation(t *testing.T) {
	svc, _, rec := newTestService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Command{Name: "Central"})
	require.NoError(t, err)

	resp, err := svc.AddClient(ctx, created.ID, clientAna)
	require.NoError(t, err)
	assert.Equal(t, []string{clientAna}, resp.ClientIDs)

	_, err = svc.AddClient(ctx, created.ID, clientClosed)
	assert.ErrorIs(t, err, apperrors.ErrDependencyNotFound)
	_, err = svc.AddClient(ctx, created.ID, "nope")
	assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)

	_, err = svc.RemoveClient(ctx, created.ID, clientAna)
	require.NoError(t, err)
	_, err = svc.RemoveClient(ctx, created.ID, clientAna)
	assert.ErrorIs(t, err, shop.ErrClientNotInShop)

	assert.Equal(t, []notification.Type{notification.Create, notification.Update, notification.Update}, rec.Kinds())
}

func TestShopService_UpdateKeepsAssociations(t *testing.T) {
	svc, _, _ := newTestService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Command{Name: "Central"})
	require.NoError(t, err)
	_, err = svc.AddBook(ctx, created.ID, "1")
	require.NoError(t, err)

	resp, err := svc.Update(ctx, created.ID, Command{Name: "North", Address: "2nd Ave"})
	require.NoError(t, err)
	assert.Equal(t, "North", resp.Name)
	assert.Equal(t, []uint{1}, resp.BookIDs)
}

func TestShopService_DeleteRestrictedByOrders(t *testing.T) {
	orders := int64(3)
	svc, _, rec := newTestService(func(context.Context, string) (int64, error) { return orders, nil })
	ctx := context.Background()

	created, err := svc.Create(ctx, Command{Name: "Central"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), shop.ErrHasActiveOrders)
	orders = 0
	require.NoError(t, svc.Delete(ctx, created.ID))
	require.NoError(t, svc.Delete(ctx, created.ID))

	assert.Equal(t, []notification.Type{notification.Create, notification.Delete}, rec.Kinds())
}
