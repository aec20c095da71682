package client

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/client"
	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
	"github.com/xiebiao/restbookstore/pkg/tracing"
)

// Service 客户用例
type Service struct {
	repo     client.Repository
	inShops  common.DependentCounter[string]
	notifier notification.Notifier
	cache    common.Cache
	log      logrus.FieldLogger
}

// NewService inShops非nil时，仍关联在有效书店中的客户不能删除
func NewService(repo client.Repository, inShops common.DependentCounter[string], deps common.Deps) *Service {
	deps = deps.WithDefaults()
	return &Service{
		repo:     repo,
		inShops:  inShops,
		notifier: deps.Notifier,
		cache:    deps.Cache,
		log:      deps.Log.WithField("service", "client"),
	}
}

func (s *Service) Get(ctx context.Context, rawID string) (*Response, error) {
	id, err := shared.ParseUUID(rawID)
	if err != nil {
		return nil, err
	}
	var cached Response
	if s.cache.Get(ctx, notification.Clients, id, &cached) {
		return &cached, nil
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(c)
	s.cache.Put(ctx, notification.Clients, id, resp)
	return resp, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) (*common.Page[*Response], error) {
	params := client.ListParams{
		PageQuery: q.PageQuery.Normalize("surname"),
		Name:      q.Name,
		Email:     q.Email,
		Active:    q.Active,
	}
	list, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return common.NewPage(common.MapList(list, toResponse), total, params.PageQuery), nil
}

func (s *Service) Create(ctx context.Context, f client.Fields) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "client.Create")
	defer func() { tracing.End(span, err) }()

	c := client.NewClient(f)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.changed(ctx, c, notification.Create), nil
}

func (s *Service) Update(ctx context.Context, rawID string, f client.Fields) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "client.Update")
	defer func() { tracing.End(span, err) }()

	c, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	c.Replace(f)
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.changed(ctx, c, notification.Update), nil
}

func (s *Service) Patch(ctx context.Context, rawID string, patch client.Patch) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "client.Patch")
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

// SetImage 替换头像地址，返回旧地址
func (s *Service) SetImage(ctx context.Context, rawID, url string) (string, error) {
	c, err := s.find(ctx, rawID)
	if err != nil {
		return "", err
	}
	previous := c.Image
	if _, err := s.Patch(ctx, rawID, client.Patch{Image: &url}); err != nil {
		return "", err
	}
	return previous, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "client.Delete")
	defer func() { tracing.End(span, err) }()

	c, err := s.find(ctx, rawID)
	if err != nil {
		return err
	}
	if !c.Active {
		return nil
	}
	if err := common.CheckDependents(ctx, s.inShops, c.ID, client.ErrInShops); err != nil {
		return err
	}

	c.Deactivate()
	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}
	s.cache.Evict(ctx, notification.Clients, c.ID)
	s.notifier.Notify(ctx, notification.New(notification.Clients, notification.Delete, toResponse(c)))
	return nil
}

func (s *Service) find(ctx context.Context, rawID string) (*client.Client, error) {
	id, err := shared.ParseUUID(rawID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) changed(ctx context.Context, c *client.Client, typ notification.Type) *Response {
	resp := toResponse(c)
	s.cache.Put(ctx, notification.Clients, c.ID, resp)
	s.notifier.Notify(ctx, notification.New(notification.Clients, typ, resp))
	return resp
}
