package shop

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/book"
	"github.com/xiebiao/restbookstore/internal/domain/client"
	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
	"github.com/xiebiao/restbookstore/internal/domain/shop"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/tracing"
)

// Service 书店用例
// 设计说明：
// 1. 关联图书/客户与基本字段的修改一样，都发出UPDATE通知
// 2. 关联已存在时视为成功，不重复通知
// 3. activeOrders非nil时，仍有有效订单的书店不能删除
type Service struct {
	shops        shop.Repository
	books        book.Repository
	clients      client.Repository
	activeOrders common.DependentCounter[string]
	notifier     notification.Notifier
	cache        common.Cache
	log          logrus.FieldLogger
}

// NewService 创建书店服务
func NewService(
	shops shop.Repository,
	books book.Repository,
	clients client.Repository,
	activeOrders common.DependentCounter[string],
	deps common.Deps,
) *Service {
	deps = deps.WithDefaults()
	return &Service{
		shops:        shops,
		books:        books,
		clients:      clients,
		activeOrders: activeOrders,
		notifier:     deps.Notifier,
		cache:        deps.Cache,
		log:          deps.Log.WithField("service", "shop"),
	}
}

func (s *Service) Get(ctx context.Context, rawID string) (*Response, error) {
	id, err := shared.ParseUUID(rawID)
	if err != nil {
		return nil, err
	}
	var cached Response
	if s.cache.Get(ctx, notification.Shops, id, &cached) {
		return &cached, nil
	}
	sh, err := s.shops.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(sh)
	s.cache.Put(ctx, notification.Shops, id, resp)
	return resp, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) (*common.Page[*Response], error) {
	params := shop.ListParams{
		PageQuery: q.PageQuery.Normalize("name"),
		Name:      q.Name,
		Active:    q.Active,
	}
	list, total, err := s.shops.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return common.NewPage(common.MapList(list, toResponse), total, params.PageQuery), nil
}

func (s *Service) Create(ctx context.Context, cmd Command) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "shop.Create")
	defer func() { tracing.End(span, err) }()

	sh := shop.NewShop(cmd.Name, cmd.Address)
	if cmd.Active != nil {
		sh.Active = *cmd.Active
	}
	if err := s.shops.Create(ctx, sh); err != nil {
		return nil, err
	}
	return s.changed(ctx, sh, notification.Create), nil
}

// Update 整体替换基本字段，不影响图书与客户关联
func (s *Service) Update(ctx context.Context, rawID string, cmd Command) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "shop.Update")
	defer func() { tracing.End(span, err) }()

	sh, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	active := true
	if cmd.Active != nil {
		active = *cmd.Active
	}
	sh.Replace(cmd.Name, cmd.Address, active)
	if err := s.shops.Update(ctx, sh); err != nil {
		return nil, err
	}
	return s.changed(ctx, sh, notification.Update), nil
}

func (s *Service) Patch(ctx context.Context, rawID string, patch shop.Patch) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "shop.Patch")
	defer func() { tracing.End(span, err) }()

	sh, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	sh.Apply(patch)
	if err := s.shops.Update(ctx, sh); err != nil {
		return nil, err
	}
	return s.changed(ctx, sh, notification.Update), nil
}

// AddBook 书店上架图书，图书必须存在且在售
func (s *Service) AddBook(ctx context.Context, rawShopID, rawBookID string) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "shop.AddBook")
	defer func() { tracing.End(span, err) }()

	bookID, err := shared.ParseUintID(rawBookID)
	if err != nil {
		return nil, err
	}
	sh, err := s.find(ctx, rawShopID)
	if err != nil {
		return nil, err
	}
	b, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, shop.ErrBookNotFound.WithMessage("图书不存在: %d", bookID)
		}
		return nil, err
	}
	if !b.Active {
		return nil, shop.ErrBookNotFound.WithMessage("图书已下架: %d", bookID)
	}

	if !sh.AddBook(bookID) {
		return toResponse(sh), nil
	}
	if err := s.shops.Update(ctx, sh); err != nil {
		return nil, err
	}
	return s.changed(ctx, sh, notification.Update), nil
}

// RemoveBook 书店下架图书
func (s *Service) RemoveBook(ctx context.Context, rawShopID, rawBookID string) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "shop.RemoveBook")
	defer func() { tracing.End(span, err) }()

	bookID, err := shared.ParseUintID(rawBookID)
	if err != nil {
		return nil, err
	}
	sh, err := s.find(ctx, rawShopID)
	if err != nil {
		return nil, err
	}
	if !sh.RemoveBook(bookID) {
		return nil, shop.ErrBookNotInShop
	}
	if err := s.shops.Update(ctx, sh); err != nil {
		return nil, err
	}
	return s.changed(ctx, sh, notification.Update), nil
}

// AddClient 关联客户，客户必须存在且启用
func (s *Service) AddClient(ctx context.Context, rawShopID, rawClientID string) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "shop.AddClient")
	defer func() { tracing.End(span, err) }()

	clientID, err := shared.ParseUUID(rawClientID)
	if err != nil {
		return nil, err
	}
	sh, err := s.find(ctx, rawShopID)
	if err != nil {
		return nil, err
	}
	c, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, shop.ErrClientNotFound.WithMessage("客户不存在: %s", clientID)
		}
		return nil, err
	}
	if !c.Active {
		return nil, shop.ErrClientNotFound.WithMessage("客户已停用: %s", clientID)
	}

	if !sh.AddClient(clientID) {
		return toResponse(sh), nil
	}
	if err := s.shops.Update(ctx, sh); err != nil {
		return nil, err
	}
	return s.changed(ctx, sh, notification.Update), nil
}

func (s *Service) RemoveClient(ctx context.Context, rawShopID, rawClientID string) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "shop.RemoveClient")
	defer func() { tracing.End(span, err) }()

	clientID, err := shared.ParseUUID(rawClientID)
	if err != nil {
		return nil, err
	}
	sh, err := s.find(ctx, rawShopID)
	if err != nil {
		return nil, err
	}
	if !sh.RemoveClient(clientID) {
		return nil, shop.ErrClientNotInShop
	}
	if err := s.shops.Update(ctx, sh); err != nil {
		return nil, err
	}
	return s.changed(ctx, sh, notification.Update), nil
}

// Delete 停用书店，关联关系保留
func (s *Service) Delete(ctx context.Context, rawID string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "shop.Delete")
	defer func() { tracing.End(span, err) }()

	sh, err := s.find(ctx, rawID)
	if err != nil {
		return err
	}
	if !sh.Active {
		return nil
	}
	if err := common.CheckDependents(ctx, s.activeOrders, sh.ID, shop.ErrHasActiveOrders); err != nil {
		return err
	}

	sh.Deactivate()
	if err := s.shops.Update(ctx, sh); err != nil {
		return err
	}
	s.cache.Evict(ctx, notification.Shops, sh.ID)
	s.notifier.Notify(ctx, notification.New(notification.Shops, notification.Delete, toResponse(sh)))
	return nil
}

func (s *Service) find(ctx context.Context, rawID string) (*shop.Shop, error) {
	id, err := shared.ParseUUID(rawID)
	if err != nil {
		return nil, err
	}
	return s.shops.FindByID(ctx, id)
}

func (s *Service) changed(ctx context.Context, sh *shop.Shop, typ notification.Type) *Response {
	resp := toResponse(sh)
	s.cache.Put(ctx, notification.Shops, sh.ID, resp)
	s.notifier.Notify(ctx, notification.New(notification.Shops, typ, resp))
	s.log.WithFields(logrus.Fields{"id": sh.ID, "type": typ}).Debug("书店已变更")
	return resp
}
