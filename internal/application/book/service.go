package book

import (
	"context"
	"errors"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/book"
	"github.com/xiebiao/restbookstore/internal/domain/category"
	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/domain/publisher"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/tracing"
)

// Service 图书用例
// 设计说明：
// 1. 出版社按ID、分类按名称引用，创建和变更时都要求对方存在且启用
// 2. 通知数据是包含出版社名与分类名的读模型
// 3. inShops非nil时，仍在书店上架的图书不能删除
type Service struct {
	books      book.Repository
	publishers publisher.Repository
	categories category.Repository
	inShops    common.DependentCounter[uint]
	notifier   notification.Notifier
	cache      common.Cache
	log        logrus.FieldLogger
}

// NewService 创建图书服务
func NewService(
	books book.Repository,
	publishers publisher.Repository,
	categories category.Repository,
	inShops common.DependentCounter[uint],
	deps common.Deps,
) *Service {
	deps = deps.WithDefaults()
	return &Service{
		books:      books,
		publishers: publishers,
		categories: categories,
		inShops:    inShops,
		notifier:   deps.Notifier,
		cache:      deps.Cache,
		log:        deps.Log.WithField("service", "book"),
	}
}

// Get 查询图书详情（读缓存）
func (s *Service) Get(ctx context.Context, rawID string) (*Response, error) {
	id, err := shared.ParseUintID(rawID)
	if err != nil {
		return nil, err
	}
	key := strconv.FormatUint(uint64(id), 10)

	var cached Response
	if s.cache.Get(ctx, notification.Books, key, &cached) {
		return &cached, nil
	}
	b, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(b)
	s.cache.Put(ctx, notification.Books, key, resp)
	return resp, nil
}

// List 分页查询，支持出版社名、分类名、价格上限、状态过滤
func (s *Service) List(ctx context.Context, q ListQuery) (*common.Page[*Response], error) {
	params := book.ListParams{
		PageQuery:     q.PageQuery.Normalize("id"),
		PublisherName: q.PublisherName,
		CategoryName:  q.CategoryName,
		MaxPrice:      q.MaxPrice,
		Active:        q.Active,
	}
	list, total, err := s.books.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return common.NewPage(common.MapList(list, toResponse), total, params.PageQuery), nil
}

// Create 创建图书
func (s *Service) Create(ctx context.Context, cmd Command) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "book.Create")
	defer func() { tracing.End(span, err) }()

	// 1. 校验业务规则
	if err := cmd.Fields.Validate(); err != nil {
		return nil, err
	}

	// 2. 解析引用
	p, err := s.resolvePublisher(ctx, cmd.PublisherID)
	if err != nil {
		return nil, err
	}
	c, err := s.resolveCategory(ctx, cmd.CategoryName)
	if err != nil {
		return nil, err
	}

	// 3. 持久化并通知
	b := book.NewBook(cmd.Fields, p.ID, p.Name, c.ID, c.Name)
	if err := s.books.Create(ctx, b); err != nil {
		return nil, err
	}
	return s.changed(ctx, b, notification.Create), nil
}

// Update 整体替换（PUT）
func (s *Service) Update(ctx context.Context, rawID string, cmd Command) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "book.Update")
	defer func() { tracing.End(span, err) }()

	if err := cmd.Fields.Validate(); err != nil {
		return nil, err
	}
	b, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	p, err := s.resolvePublisher(ctx, cmd.PublisherID)
	if err != nil {
		return nil, err
	}
	c, err := s.resolveCategory(ctx, cmd.CategoryName)
	if err != nil {
		return nil, err
	}

	b.Replace(cmd.Fields)
	b.SetPublisher(p.ID, p.Name)
	b.SetCategory(c.ID, c.Name)
	if err := s.books.Update(ctx, b); err != nil {
		return nil, err
	}
	return s.changed(ctx, b, notification.Update), nil
}

// Patch 部分更新（PATCH），引用字段非nil时重新解析
func (s *Service) Patch(ctx context.Context, rawID string, patch PatchCommand) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "book.Patch")
	defer func() { tracing.End(span, err) }()

	if err := patch.Patch.Validate(); err != nil {
		return nil, err
	}
	b, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if patch.PublisherID != nil {
		p, err := s.resolvePublisher(ctx, *patch.PublisherID)
		if err != nil {
			return nil, err
		}
		b.SetPublisher(p.ID, p.Name)
	}
	if patch.CategoryName != nil {
		c, err := s.resolveCategory(ctx, *patch.CategoryName)
		if err != nil {
			return nil, err
		}
		b.SetCategory(c.ID, c.Name)
	}

	b.Apply(patch.Patch)
	if err := s.books.Update(ctx, b); err != nil {
		return nil, err
	}
	return s.changed(ctx, b, notification.Update), nil
}

// SetImage 替换封面地址，返回旧地址
func (s *Service) SetImage(ctx context.Context, rawID, url string) (string, error) {
	b, err := s.find(ctx, rawID)
	if err != nil {
		return "", err
	}
	previous := b.Image
	if _, err := s.Patch(ctx, rawID, PatchCommand{Patch: book.Patch{Image: &url}}); err != nil {
		return "", err
	}
	return previous, nil
}

// Delete 下架（软删除）
func (s *Service) Delete(ctx context.Context, rawID string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "book.Delete")
	defer func() { tracing.End(span, err) }()

	b, err := s.find(ctx, rawID)
	if err != nil {
		return err
	}
	if !b.Active {
		return nil
	}
	if err := common.CheckDependents(ctx, s.inShops, b.ID, book.ErrInShops); err != nil {
		return err
	}

	b.Deactivate()
	if err := s.books.Update(ctx, b); err != nil {
		return err
	}
	s.cache.Evict(ctx, notification.Books, strconv.FormatUint(uint64(b.ID), 10))
	s.notifier.Notify(ctx, notification.New(notification.Books, notification.Delete, toResponse(b)))
	return nil
}

func (s *Service) find(ctx context.Context, rawID string) (*book.Book, error) {
	id, err := shared.ParseUintID(rawID)
	if err != nil {
		return nil, err
	}
	return s.books.FindByID(ctx, id)
}

// resolvePublisher 出版社不存在或已停用时返回DependencyNotFound
func (s *Service) resolvePublisher(ctx context.Context, id uint) (*publisher.Publisher, error) {
	if id == 0 {
		return nil, book.ErrPublisherNotFound
	}
	p, err := s.publishers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, book.ErrPublisherNotFound.WithMessage("出版社不存在: %d", id)
		}
		return nil, err
	}
	if !p.Active {
		return nil, book.ErrPublisherNotFound.WithMessage("出版社已停用: %s", p.Name)
	}
	return p, nil
}

func (s *Service) resolveCategory(ctx context.Context, name string) (*category.Category, error) {
	if name == "" {
		return nil, book.ErrCategoryNotFound
	}
	c, err := s.categories.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, book.ErrCategoryNotFound.WithMessage("分类不存在: %s", name)
		}
		return nil, err
	}
	if !c.Active {
		return nil, book.ErrCategoryNotFound.WithMessage("分类已停用: %s", c.Name)
	}
	return c, nil
}

func (s *Service) changed(ctx context.Context, b *book.Book, typ notification.Type) *Response {
	resp := toResponse(b)
	s.cache.Put(ctx, notification.Books, strconv.FormatUint(uint64(b.ID), 10), resp)
	s.notifier.Notify(ctx, notification.New(notification.Books, typ, resp))
	s.log.WithFields(logrus.Fields{"id": b.ID, "type": typ}).Debug("图书已变更")
	return resp
}
