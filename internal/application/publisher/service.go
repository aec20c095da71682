package publisher

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/domain/publisher"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
	"github.com/xiebiao/restbookstore/pkg/tracing"
)

// Service 出版社用例
// 设计说明：
// 1. 每次成功的写操作恰好发出一条通知，失败不发
// 2. 删除为软删除，重复删除直接成功且不发通知
// 3. activeBooks非nil时启用restrict删除策略
type Service struct {
	repo        publisher.Repository
	activeBooks common.DependentCounter[uint]
	notifier    notification.Notifier
	cache       common.Cache
	log         logrus.FieldLogger
}

// NewService 创建出版社服务
func NewService(repo publisher.Repository, activeBooks common.DependentCounter[uint], deps common.Deps) *Service {
	deps = deps.WithDefaults()
	return &Service{
		repo:        repo,
		activeBooks: activeBooks,
		notifier:    deps.Notifier,
		cache:       deps.Cache,
		log:         deps.Log.WithField("service", "publisher"),
	}
}

// Get 查询单个出版社（读缓存）
func (s *Service) Get(ctx context.Context, rawID string) (*Response, error) {
	id, err := shared.ParseUintID(rawID)
	if err != nil {
		return nil, err
	}

	var cached Response
	if s.cache.Get(ctx, notification.Publishers, rawKey(id), &cached) {
		return &cached, nil
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(p)
	s.cache.Put(ctx, notification.Publishers, rawKey(id), resp)
	return resp, nil
}

// List 分页查询
func (s *Service) List(ctx context.Context, q ListQuery) (*common.Page[*Response], error) {
	params := publisher.ListParams{
		PageQuery: q.PageQuery.Normalize("id"),
		Name:      q.Name,
		Active:    q.Active,
	}
	list, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return common.NewPage(common.MapList(list, toResponse), total, params.PageQuery), nil
}

// Create 创建出版社
func (s *Service) Create(ctx context.Context, cmd Command) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "publisher.Create")
	defer func() { tracing.End(span, err) }()

	p := publisher.NewPublisher(cmd.Name, cmd.Image)
	if cmd.Active != nil {
		p.Active = *cmd.Active
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.changed(ctx, p, notification.Create), nil
}

// Update 整体替换（PUT）
func (s *Service) Update(ctx context.Context, rawID string, cmd Command) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "publisher.Update")
	defer func() { tracing.End(span, err) }()

	p, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	active := true
	if cmd.Active != nil {
		active = *cmd.Active
	}
	p.Replace(cmd.Name, cmd.Image, active)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.changed(ctx, p, notification.Update), nil
}

// Patch 部分更新（PATCH）
func (s *Service) Patch(ctx context.Context, rawID string, patch publisher.Patch) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "publisher.Patch")
	defer func() { tracing.End(span, err) }()

	p, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	p.Apply(patch)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.changed(ctx, p, notification.Update), nil
}

// SetImage 替换图片地址，返回旧地址
func (s *Service) SetImage(ctx context.Context, rawID, url string) (string, error) {
	p, err := s.find(ctx, rawID)
	if err != nil {
		return "", err
	}
	previous := p.Image
	if _, err := s.Patch(ctx, rawID, publisher.Patch{Image: &url}); err != nil {
		return "", err
	}
	return previous, nil
}

// Delete 软删除
func (s *Service) Delete(ctx context.Context, rawID string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "publisher.Delete")
	defer func() { tracing.End(span, err) }()

	p, err := s.find(ctx, rawID)
	if err != nil {
		return err
	}
	if !p.Active {
		return nil
	}
	if err := common.CheckDependents(ctx, s.activeBooks, p.ID, publisher.ErrHasActiveBooks); err != nil {
		return err
	}

	p.Deactivate()
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	resp := toResponse(p)
	s.cache.Evict(ctx, notification.Publishers, rawKey(p.ID))
	s.notifier.Notify(ctx, notification.New(notification.Publishers, notification.Delete, resp))
	return nil
}

func (s *Service) find(ctx context.Context, rawID string) (*publisher.Publisher, error) {
	id, err := shared.ParseUintID(rawID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// changed 刷新缓存并发出通知
func (s *Service) changed(ctx context.Context, p *publisher.Publisher, typ notification.Type) *Response {
	resp := toResponse(p)
	s.cache.Put(ctx, notification.Publishers, rawKey(p.ID), resp)
	s.notifier.Notify(ctx, notification.New(notification.Publishers, typ, resp))
	s.log.WithFields(logrus.Fields{"id": p.ID, "type": typ}).Debug("出版社已变更")
	return resp
}
