package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/restbookstore/internal/application/common"
	"github.com/xiebiao/restbookstore/internal/domain/user"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/jwt"
	"github.com/xiebiao/restbookstore/pkg/response"
)

const (
	claimsKey = "claims"
	tokenKey  = "access_token"
)

// TokenBlacklist 已登出Token的黑名单
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 1. 从Header（WebSocket握手时也可以是?token=）提取Token
// 2. 检查Token黑名单
// 3. 验证Token并把Claims注入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// RequireAuth 要求登录，Token只从Authorization头读取
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return m.handler(false)
}

// RequireAuthOrQuery 浏览器的WebSocket API无法设置请求头，额外接受?token=
func (m *AuthMiddleware) RequireAuthOrQuery() gin.HandlerFunc {
	return m.handler(true)
}

func (m *AuthMiddleware) handler(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 提取Token
		token, err := extractToken(c, allowQuery)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		// 2. 已登出的Token直接拒绝
		blacklisted, err := m.blacklist.IsInBlacklist(c.Request.Context(), token)
		if err != nil {
			response.Error(c, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "验证Token失败"))
			c.Abort()
			return
		}
		if blacklisted {
			response.Error(c, apperrors.ErrTokenExpired.WithMessage("Token已失效，请重新登录"))
			c.Abort()
			return
		}

		// 3. 校验签名与过期时间
		claims, err := m.jwtManager.ParseToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// RequireRole 要求拥有指定角色，必须放在RequireAuth之后
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !claims.HasRole(role) {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin 管理员接口
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(string(user.RoleAdmin))
}

func extractToken(c *gin.Context, allowQuery bool) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		// 格式：Authorization: Bearer <token>
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", apperrors.ErrInvalidToken.WithMessage("Token格式错误")
		}
		return parts[1], nil
	}
	if allowQuery {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
	}
	return "", apperrors.ErrUnauthorized
}

// GetClaims 当前登录用户的Claims，未登录返回nil
func GetClaims(c *gin.Context) *jwt.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID 当前登录用户ID，未登录返回空串
func GetUserID(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// GetToken 本次请求使用的Access Token
func GetToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// GetActor 当前请求的操作者，用于订单等按用户隔离的资源
func GetActor(c *gin.Context) common.Actor {
	claims := GetClaims(c)
	if claims == nil {
		return common.Actor{}
	}
	return common.Actor{
		UserID: claims.UserID,
		Admin:  claims.HasRole(string(user.RoleAdmin)),
	}
}
