package category

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/category"
	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
	"github.com/xiebiao/restbookstore/pkg/tracing"
)

// Service 分类用例
type Service struct {
	repo        category.Repository
	activeBooks common.DependentCounter[string]
	notifier    notification.Notifier
	cache       common.Cache
	log         logrus.FieldLogger
}

// NewService activeBooks为nil时删除不检查在售图书
func NewService(repo category.Repository, activeBooks common.DependentCounter[string], deps common.Deps) *Service {
	deps = deps.WithDefaults()
	return &Service{
		repo:        repo,
		activeBooks: activeBooks,
		notifier:    deps.Notifier,
		cache:       deps.Cache,
		log:         deps.Log.WithField("service", "category"),
	}
}

func (s *Service) Get(ctx context.Context, rawID string) (*Response, error) {
	id, err := shared.ParseUUID(rawID)
	if err != nil {
		return nil, err
	}

	var cached Response
	if s.cache.Get(ctx, notification.Categories, id, &cached) {
		return &cached, nil
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(c)
	s.cache.Put(ctx, notification.Categories, id, resp)
	return resp, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) (*common.Page[*Response], error) {
	params := category.ListParams{
		PageQuery: q.PageQuery.Normalize("name"),
		Name:      q.Name,
		Active:    q.Active,
	}
	list, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return common.NewPage(common.MapList(list, toResponse), total, params.PageQuery), nil
}

func (s *Service) Create(ctx context.Context, cmd Command) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "category.Create")
	defer func() { tracing.End(span, err) }()

	c := category.NewCategory(cmd.Name)
	if cmd.Active != nil {
		c.Active = *cmd.Active
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.changed(ctx, c, notification.Create), nil
}

func (s *Service) Update(ctx context.Context, rawID string, cmd Command) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "category.Update")
	defer func() { tracing.End(span, err) }()

	c, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	active := true
	if cmd.Active != nil {
		active = *cmd.Active
	}
	c.Replace(cmd.Name, active)
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.changed(ctx, c, notification.Update), nil
}

func (s *Service) Patch(ctx context.Context, rawID string, patch category.Patch) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "category.Patch")
	defer func() { tracing.End(span, err) }()

	c, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	c.Apply(patch)
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.changed(ctx, c, notification.Update), nil
}

// Delete 软删除，已停用时直接返回
func (s *Service) Delete(ctx context.Context, rawID string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "category.Delete")
	defer func() { tracing.End(span, err) }()

	c, err := s.find(ctx, rawID)
	if err != nil {
		return err
	}
	if !c.Active {
		return nil
	}
	if err := common.CheckDependents(ctx, s.activeBooks, c.ID, category.ErrHasActiveBooks); err != nil {
		return err
	}

	c.Deactivate()
	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}
	s.cache.Evict(ctx, notification.Categories, c.ID)
	s.notifier.Notify(ctx, notification.New(notification.Categories, notification.Delete, toResponse(c)))
	return nil
}

func (s *Service) find(ctx context.Context, rawID string) (*category.Category, error) {
	id, err := shared.ParseUUID(rawID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) changed(ctx context.Context, c *category.Category, typ notification.Type) *Response {
	resp := toResponse(c)
	s.cache.Put(ctx, notification.Categories, c.ID, resp)
	s.notifier.Notify(ctx, notification.New(notification.Categories, typ, resp))
	s.log.WithFields(logrus.Fields{"id": c.ID, "type": typ}).Debug("分类已变更")
	return resp
}
