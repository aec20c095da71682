// Package handler HTTP处理器
//
// Handler只做HTTP相关的事情：绑定参数、调用应用层、渲染响应。
// 业务规则、通知与缓存都在应用层；这里依赖的是小接口，测试时用mock替换。
package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
	"github.com/xiebiao/restbookstore/pkg/response"
)

// bindJSON 绑定并校验请求体，失败时直接写出40001响应
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, apperrors.ErrBindError.WithMessage("参数错误: %v", err))
		return false
	}
	return true
}

// bindQuery 绑定并校验query参数
func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.Error(c, apperrors.ErrBindError.WithMessage("参数错误: %v", err))
		return false
	}
	return true
}

// render 有错误时写错误响应，否则按ok写出数据
func render[T any](c *gin.Context, data T, err error, ok func(*gin.Context, any)) {
	if err != nil {
		response.Error(c, err)
		return
	}
	ok(c, data)
}

func renderDelete(c *gin.Context, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
