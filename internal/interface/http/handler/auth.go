package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/restbookstore/internal/application/user"
	"github.com/xiebiao/restbookstore/internal/interface/http/dto"
	"github.com/xiebiao/restbookstore/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/jwt"
	"github.com/xiebiao/restbookstore/pkg/response"
)

type AuthService interface {
	Signup(ctx context.Context, req appuser.SignupRequest) (*appuser.Response, error)
	Signin(ctx context.Context, req appuser.SigninRequest) (*appuser.SigninResponse, error)
	Signout(ctx context.Context, claims *jwt.Claims, accessToken string) error
}

// AuthHandler 注册、登录、登出
type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup 用户注册
// @Summary      用户注册
// @Description  两次输入的密码必须一致；新用户只有USER角色
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.SignupRequest true "注册信息"
// @Success      201 {object} response.Response{data=appuser.Response} "注册成功"
// @Failure      400 {object} response.Response "参数错误/密码不一致/密码强度不足"
// @Failure      409 {object} response.Response "用户名或邮箱已存在"
// @Router       /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.auth.Signup(c.Request.Context(), req.Request())
	render(c, u, err, response.Created)
}

// Signin 用户登录
// @Summary      用户登录
// @Description  验证用户名密码，返回JWT Token对
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.SigninRequest true "登录信息"
// @Success      200 {object} response.Response{data=appuser.SigninResponse} "登录成功"
// @Failure      401 {object} response.Response "用户名或密码错误"
// @Router       /api/v1/auth/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req dto.SigninRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.auth.Signin(c.Request.Context(), appuser.SigninRequest{
		Username: req.Username,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	render(c, result, err, response.Success)
}

// Signout 登出，当前Token在剩余有效期内进入黑名单
// @Summary      用户登出
// @Tags         认证
// @Security     BearerAuth
// @Success      204
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/auth/signout [post]
func (h *AuthHandler) Signout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	renderDelete(c, h.auth.Signout(c.Request.Context(), claims, middleware.GetToken(c)))
}
