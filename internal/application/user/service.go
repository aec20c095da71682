package user

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/domain/shared"
	"github.com/xiebiao/restbookstore/internal/domain/user"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/tracing"
)

// OrderIDsFunc 查询用户的有效订单ID（订单存储在文档库）
type OrderIDsFunc func(ctx context.Context, userID string) ([]string, error)

// Service 用户管理用例（管理员）与 /users/me
// 设计说明：
// 1. 密码只以bcrypt哈希保存，读模型与通知中都不出现
// 2. 删除为软删除（is_deleted），重复删除不发通知
// 3. activeOrders非nil时，仍有有效订单的用户不能删除
type Service struct {
	repo         user.Repository
	passwords    *user.PasswordService
	orderIDs     OrderIDsFunc
	activeOrders common.DependentCounter[string]
	notifier     notification.Notifier
	log          logrus.FieldLogger
}

// NewService 创建用户服务
func NewService(
	repo user.Repository,
	passwords *user.PasswordService,
	orderIDs OrderIDsFunc,
	activeOrders common.DependentCounter[string],
	deps common.Deps,
) *Service {
	deps = deps.WithDefaults()
	return &Service{
		repo:         repo,
		passwords:    passwords,
		orderIDs:     orderIDs,
		activeOrders: activeOrders,
		notifier:     deps.Notifier,
		log:          deps.Log.WithField("service", "user"),
	}
}

func (s *Service) Get(ctx context.Context, rawID string) (*Response, error) {
	u, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	return toResponse(u), nil
}

// Me 当前用户资料及其订单ID
func (s *Service) Me(ctx context.Context, userID string) (*MeResponse, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.IsDeleted {
		return nil, apperrors.ErrUnauthorized
	}

	ids := []string{}
	if s.orderIDs != nil {
		found, err := s.orderIDs(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, found...)
	}
	return &MeResponse{Response: *toResponse(u), OrderIDs: ids}, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) (*common.Page[*Response], error) {
	params := user.ListParams{
		PageQuery:      q.PageQuery.Normalize("username"),
		Username:       q.Username,
		Email:          q.Email,
		IncludeDeleted: q.IncludeDeleted,
	}
	list, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return common.NewPage(common.MapList(list, toResponse), total, params.PageQuery), nil
}

// Create 管理员创建用户
func (s *Service) Create(ctx context.Context, cmd Command) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "user.Create")
	defer func() { tracing.End(span, err) }()

	// 1. 校验资料与角色
	fields, err := cmd.fields()
	if err != nil {
		return nil, err
	}

	// 2. 加密密码
	hashed, err := s.passwords.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}

	// 3. 持久化并通知
	u := user.NewUser(fields, hashed)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.changed(ctx, u, notification.Create), nil
}

// Update 整体替换资料，Password非空时同时修改密码
func (s *Service) Update(ctx context.Context, rawID string, cmd Command) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "user.Update")
	defer func() { tracing.End(span, err) }()

	fields, err := cmd.fields()
	if err != nil {
		return nil, err
	}
	u, err := s.findActive(ctx, rawID)
	if err != nil {
		return nil, err
	}
	u.Replace(fields)
	if cmd.Password != "" {
		if err := s.setPassword(u, cmd.Password); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return s.changed(ctx, u, notification.Update), nil
}

// Patch 部分更新
func (s *Service) Patch(ctx context.Context, rawID string, cmd PatchCommand) (_ *Response, err error) {
	ctx, span := tracing.StartSpan(ctx, "user.Patch")
	defer func() { tracing.End(span, err) }()

	patch, err := cmd.patch()
	if err != nil {
		return nil, err
	}
	u, err := s.findActive(ctx, rawID)
	if err != nil {
		return nil, err
	}
	u.Apply(patch)
	if cmd.Password != nil {
		if err := s.setPassword(u, *cmd.Password); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return s.changed(ctx, u, notification.Update), nil
}

// Delete 软删除
func (s *Service) Delete(ctx context.Context, rawID string) (err error) {
	ctx, span := tracing.StartSpan(ctx, "user.Delete")
	defer func() { tracing.End(span, err) }()

	u, err := s.find(ctx, rawID)
	if err != nil {
		return err
	}
	if u.IsDeleted {
		return nil
	}
	if err := common.CheckDependents(ctx, s.activeOrders, u.ID, user.ErrHasActiveOrders); err != nil {
		return err
	}

	u.MarkDeleted()
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}
	s.notifier.Notify(ctx, notification.New(notification.Users, notification.Delete, toResponse(u)))
	return nil
}

func (s *Service) find(ctx context.Context, rawID string) (*user.User, error) {
	id, err := shared.ParseUUID(rawID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// findActive 已删除的用户不可修改
func (s *Service) findActive(ctx context.Context, rawID string) (*user.User, error) {
	u, err := s.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if u.IsDeleted {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) setPassword(u *user.User, plain string) error {
	hashed, err := s.passwords.Hash(plain)
	if err != nil {
		return err
	}
	u.SetPassword(hashed)
	return nil
}

func (s *Service) changed(ctx context.Context, u *user.User, typ notification.Type) *Response {
	resp := toResponse(u)
	s.notifier.Notify(ctx, notification.New(notification.Users, typ, resp))
	s.log.WithFields(logrus.Fields{"id": u.ID, "type": typ}).Debug("用户已变更")
	return resp
}
