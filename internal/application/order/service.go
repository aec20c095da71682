package order

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/book"
	"github.com/xiebiao/restbookstore/internal/domain/client"
	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/domain/order"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
	"github.com/xiebiao/restbookstore/internal/domain/shop"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/saga"
	"github.com/xiebiao/restbookstore/pkg/tracing"
)

// DefaultSagaTimeout 单次下单/改单/删单saga的超时时间
const DefaultSagaTimeout = 10 * time.Second

// Service 订单用例
// 设计说明：
// 1. 库存在MySQL、订单在MongoDB，写操作用saga编排
// 2. 库存变更在一个MySQL事务内完成，订单写入失败时补偿库存
// 3. 普通用户只能查看自己的订单，修改与删除需要管理员
// 4. 删除为软删除，同时归还库存
type Service struct {
	orders   order.Repository
	books    book.Repository
	clients  client.Repository
	shops    shop.Repository
	tx       common.TxManager
	timeout  time.Duration
	notifier notification.Notifier
	log      logrus.FieldLogger
}

// NewService 创建订单服务
func NewService(
	orders order.Repository,
	books book.Repository,
	clients client.Repository,
	shops shop.Repository,
	tx common.TxManager,
	deps common.Deps,
) *Service {
	deps = deps.WithDefaults()
	return &Service{
		orders:   orders,
		books:    books,
		clients:  clients,
		shops:    shops,
		tx:       tx,
		timeout:  DefaultSagaTimeout,
		notifier: deps.Notifier,
		log:      deps.Log.WithField("service", "order"),
	}
}

// Get 查询订单，非管理员只能看自己未删除的订单
func (s *Service) Get(ctx context.Context, actor common.Actor, rawID string) (*Response, error) {
	o, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin {
		if o.IsDeleted {
			return nil, order.ErrOrderNotFound
		}
		if !o.IsOwnedBy(actor.UserID) {
			return nil, order.ErrNotOwner
		}
	}
	return toResponse(o), nil
}

// List 分页查询，非管理员强制按本人过滤
func (s *Service) List(ctx context.Context, actor common.Actor, q ListQuery) (*common.Page[*Response], error) {
	params := order.ListParams{
		PageQuery:      q.PageQuery.Normalize("createdAt"),
		UserID:         q.UserID,
		ClientID:       q.ClientID,
		ShopID:         q.ShopID,
		IncludeDeleted: q.IncludeDeleted,
	}
	if !actor.Admin {
		params.UserID = actor.UserID
		params.IncludeDeleted = false
	}
	list, total, err := s.orders.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return common.NewPage(common.MapList(list, toResponse), total, params.PageQuery), nil
}

// Create 下单
// 流程：
// 1. 校验明细、客户、书店
// 2. saga步骤一：事务内查询单价并扣减库存（补偿：归还库存）
// 3. saga步骤二：写入订单文档
func (s *Service) Create(ctx context.Context, actor common.Actor, cmd Command) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "order.Create")
	defer func() { tracing.End(span, err) }()

	requests, err := order.NormalizeLines(cmd.Lines)
	if err != nil {
		return nil, err
	}
	clientID, shopID, err := s.resolveParties(ctx, cmd.ClientID, cmd.ShopID)
	if err != nil {
		return nil, err
	}

	var o *order.Order
	var lines []order.Line
	err = saga.New("create_order", s.timeout, s.log).
		AddStep("reserve_stock",
			func(ctx context.Context) error {
				return s.tx.Transaction(ctx, func(ctx context.Context) error {
					var err error
					lines, err = s.priceLines(ctx, requests, nil)
					if err != nil {
						return err
					}
					return s.adjustStock(ctx, order.StockDelta(nil, lines))
				})
			},
			func(ctx context.Context) error {
				return s.tx.Transaction(ctx, func(ctx context.Context) error {
					return s.adjustStock(ctx, order.StockDelta(lines, nil))
				})
			}).
		AddStep("insert_order",
			func(ctx context.Context) error {
				o = order.NewOrder(order.GenerateOrderNo(), actor.UserID, clientID, shopID, lines)
				return s.orders.Create(ctx, o)
			}, nil).
		Execute(ctx)
	if err != nil {
		return nil, err
	}

	return s.changed(ctx, o, notification.Create), nil
}

// Update 整体替换客户、书店与明细，库存按差额调整
func (s *Service) Update(ctx context.Context, rawID string, cmd Command) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "order.Update")
	defer func() { tracing.End(span, err) }()

	requests, err := order.NormalizeLines(cmd.Lines)
	if err != nil {
		return nil, err
	}
	o, err := s.findActive(ctx, rawID)
	if err != nil {
		return nil, err
	}
	clientID, shopID, err := s.resolveParties(ctx, cmd.ClientID, cmd.ShopID)
	if err != nil {
		return nil, err
	}

	before := slices.Clone(o.Lines)
	var delta map[uint]int
	err = saga.New("update_order", s.timeout, s.log).
		AddStep("adjust_stock",
			func(ctx context.Context) error {
				return s.tx.Transaction(ctx, func(ctx context.Context) error {
					lines, err := s.priceLines(ctx, requests, before)
					if err != nil {
						return err
					}
					o.ClientID, o.ShopID = clientID, shopID
					o.SetLines(lines)
					delta = order.StockDelta(before, lines)
					return s.adjustStock(ctx, delta)
				})
			},
			func(ctx context.Context) error {
				return s.tx.Transaction(ctx, func(ctx context.Context) error {
					return s.adjustStock(ctx, negate(delta))
				})
			}).
		AddStep("save_order",
			func(ctx context.Context) error {
				return s.orders.Update(ctx, o)
			}, nil).
		Execute(ctx)
	if err != nil {
		return nil, err
	}

	return s.changed(ctx, o, notification.Update), nil
}

// Patch 只修改客户或书店
func (s *Service) Patch(ctx context.Context, rawID string, cmd PatchCommand) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "order.Patch")
	defer func() { tracing.End(span, err) }()

	o, err := s.findActive(ctx, rawID)
	if err != nil {
		return nil, err
	}

	var patch order.Patch
	if cmd.ClientID != nil {
		id, err := s.resolveClient(ctx, *cmd.ClientID)
		if err != nil {
			return nil, err
		}
		patch.ClientID = &id
	}
	if cmd.ShopID != nil {
		id, err := s.resolveShop(ctx, *cmd.ShopID)
		if err != nil {
			return nil, err
		}
		patch.ShopID = &id
	}

	o.Apply(patch)
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return s.changed(ctx, o, notification.Update), nil
}

// Delete 软删除并归还库存，已删除时直接返回
func (s *Service) Delete(ctx context.Context, rawID string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "order.Delete")
	defer func() { tracing.End(span, err) }()

	o, err := s.find(ctx, rawID)
	if err != nil {
		return err
	}
	if o.IsDeleted {
		return nil
	}

	restock := order.StockDelta(o.Lines, nil)
	err = saga.New("delete_order", s.timeout, s.log).
		AddStep("restock",
			func(ctx context.Context) error {
				return s.tx.Transaction(ctx, func(ctx context.Context) error {
					return s.adjustStock(ctx, restock)
				})
			},
			func(ctx context.Context) error {
				return s.tx.Transaction(ctx, func(ctx context.Context) error {
					return s.adjustStock(ctx, negate(restock))
				})
			}).
		AddStep("mark_deleted",
			func(ctx context.Context) error {
				o.MarkDeleted()
				return s.orders.Update(ctx, o)
			}, nil).
		Execute(ctx)
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, notification.New(notification.Orders, notification.Delete, toResponse(o)))
	return nil
}

// priceLines 查询图书单价生成明细
// previous中已有的图书沿用原单价且允许已下架，新增图书必须在售
func (s *Service) priceLines(ctx context.Context, requests []order.LineRequest, previous []order.Line) ([]order.Line, error) {
	kept := make(map[uint]int64, len(previous))
	for _, l := range previous {
		kept[l.BookID] = l.Price
	}

	lines := make([]order.Line, 0, len(requests))
	for _, r := range requests {
		if price, ok := kept[r.BookID]; ok {
			lines = append(lines, order.Line{BookID: r.BookID, Quantity: r.Quantity, Price: price})
			continue
		}
		b, err := s.books.FindByID(ctx, r.BookID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, order.ErrBookNotFound.WithMessage("图书不存在: %d", r.BookID)
			}
			return nil, err
		}
		if !b.Active {
			return nil, order.ErrBookNotFound.WithMessage("图书已下架: %s", b.Name)
		}
		lines = append(lines, order.Line{BookID: b.ID, Quantity: r.Quantity, Price: b.Price})
	}
	return lines, nil
}

// adjustStock 按图书ID升序调整库存，正数为归还
func (s *Service) adjustStock(ctx context.Context, delta map[uint]int) error {
	for _, id := range slices.Sorted(maps.Keys(delta)) {
		if err := s.books.UpdateStock(ctx, id, delta[id]); err != nil {
			return err
		}
	}
	return nil
}

func negate(delta map[uint]int) map[uint]int {
	out := make(map[uint]int, len(delta))
	for id, d := range delta {
		out[id] = -d
	}
	return out
}

func (s *Service) resolveParties(ctx context.Context, rawClientID, rawShopID string) (string, string, error) {
	clientID, err := s.resolveClient(ctx, rawClientID)
	if err != nil {
		return "", "", err
	}
	shopID, err := s.resolveShop(ctx, rawShopID)
	if err != nil {
		return "", "", err
	}
	return clientID, shopID, nil
}

func (s *Service) resolveClient(ctx context.Context, raw string) (string, error) {
	id, err := shared.ParseUUID(raw)
	if err != nil {
		return "", err
	}
	c, err := s.clients.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", order.ErrClientNotFound
		}
		return "", err
	}
	if !c.Active {
		return "", order.ErrClientNotFound
	}
	return c.ID, nil
}

func (s *Service) resolveShop(ctx context.Context, raw string) (string, error) {
	id, err := shared.ParseUUID(raw)
	if err != nil {
		return "", err
	}
	sh, err := s.shops.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", order.ErrShopNotFound
		}
		return "", err
	}
	if !sh.Active {
		return "", order.ErrShopNotFound
	}
	return sh.ID, nil
}

func (s *Service) find(ctx context.Context, rawID string) (*order.Order, error) {
	id, err := order.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.orders.FindByID(ctx, id)
}

// findActive 已删除的订单不可修改
func (s *Service) findActive(ctx context.Context, rawID string) (*order.Order, error) {
	o, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if o.IsDeleted {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) changed(ctx context.Context, o *order.Order, typ notification.Type) *Response {
	resp := toResponse(o)
	s.notifier.Notify(ctx, notification.New(notification.Orders, typ, resp))
	s.log.WithFields(logrus.Fields{"id": o.ID, "order_no": o.OrderNo, "type": typ}).Debug("订单已变更")
	return resp
}
