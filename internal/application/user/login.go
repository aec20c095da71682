package user

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/notification"
	"github.com/xiebiao/restbookstore/internal/domain/user"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/jwt"
)

// SessionStore 登录会话与Token黑名单（实现见 persistence/redis.SessionStore）
type SessionStore interface {
	SaveSession(ctx context.Context, userID string, sessionData map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID string) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
}

// AuthService 注册、登录、登出
// 设计说明：
// 1. 登录成功生成JWT Token对并在Redis保存会话
// 2. 登出时删除会话，并把Access Token拉黑到其自然过期
type AuthService struct {
	users      user.Repository
	passwords  *user.PasswordService
	jwtManager *jwt.Manager
	sessions   SessionStore
	sessionTTL time.Duration
	notifier   notification.Notifier
	log        logrus.FieldLogger
}

// NewAuthService sessionTTL通常与Refresh Token有效期一致
func NewAuthService(
	users user.Repository,
	passwords *user.PasswordService,
	jwtManager *jwt.Manager,
	sessions SessionStore,
	sessionTTL time.Duration,
	deps common.Deps,
) *AuthService {
	deps = deps.WithDefaults()
	return &AuthService{
		users:      users,
		passwords:  passwords,
		jwtManager: jwtManager,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		notifier:   deps.Notifier,
		log:        deps.Log.WithField("service", "auth"),
	}
}

// SigninRequest 登录请求
type SigninRequest struct {
	Username string
	Password string
	ClientIP string
}

// SigninResponse 登录响应
type SigninResponse struct {
	User         *Response `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"` // Access Token过期时间（秒）
}

// Signin 用户名密码登录
func (s *AuthService) Signin(ctx context.Context, req SigninRequest) (*SigninResponse, error) {
	// 1. 查找用户，不存在与密码错误返回同一个错误
	u, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}
	if err := s.passwords.Verify(u.Password, req.Password); err != nil {
		return nil, err
	}

	// 2. 生成JWT Token对
	tokenPair, err := s.jwtManager.GenerateToken(u.ID, u.Username, u.RoleNames())
	if err != nil {
		return nil, err
	}

	// 3. 保存会话到Redis，失败不影响登录
	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"username": u.Username,
		"login_at": time.Now().Unix(),
		"ip":       req.ClientIP,
	}
	if err := s.sessions.SaveSession(ctx, u.ID, sessionData, s.sessionTTL); err != nil {
		s.log.WithError(err).WithField("user_id", u.ID).Warn("保存会话失败")
	}

	return &SigninResponse{
		User:         toResponse(u),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// Signout 登出：删除会话并拉黑当前Access Token
func (s *AuthService) Signout(ctx context.Context, claims *jwt.Claims, accessToken string) error {
	// 1. 删除会话
	if err := s.sessions.DeleteSession(ctx, claims.UserID); err != nil {
		return err
	}

	// 2. 黑名单有效期 = Token剩余有效期
	return s.sessions.AddToBlacklist(ctx, accessToken, s.jwtManager.RemainingTTL(claims))
}
