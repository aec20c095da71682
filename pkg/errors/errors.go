package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code是业务错误码，前三位即HTTP状态码（40400 → 404）
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，使 errors.Is(err, ErrNotFound) 对同类错误都成立
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// HTTPStatus 由业务错误码推导HTTP状态码
func (e *AppError) HTTPStatus() int {
	status := e.Code / 100
	if status < 400 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WrapCode 以指定错误码包装内部错误
func WrapCode(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithMessage 复制错误码并替换提示信息（用于给通用错误附加实体名）
func (e *AppError) WithMessage(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
		Err:     e.Err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：XXXYY，XXX为HTTP状态码，YY为细分原因

const (
	// 参数错误（400xx）
	ErrCodeInvalidParams     = 40000 // 参数错误
	ErrCodeBindError         = 40001 // 参数绑定失败
	ErrCodeInvalidIdentifier = 40002 // ID格式错误
	ErrCodeWeakPassword      = 40003 // 密码强度不足
	ErrCodePasswordMismatch  = 40004 // 两次密码不一致
	ErrCodeInsufficientStock = 40005 // 库存不足
	ErrCodeInvalidFile       = 40006 // 文件类型不支持

	// 认证授权错误（401xx / 403xx）
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 用户名或密码错误
	ErrCodeForbidden       = 40300 // 无权限

	// 资源错误（404xx）
	ErrCodeNotFound           = 40400 // 资源不存在
	ErrCodeDependencyNotFound = 40410 // 关联资源不存在或已停用

	// 冲突（409xx）
	ErrCodeConflict       = 40900 // 唯一约束冲突
	ErrCodeHasDependents  = 40901 // 仍被其他有效记录引用
	ErrCodeDuplicateEntry = ErrCodeConflict

	// 系统级错误（500xx）
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeStorageError  = 50003 // 文件存储错误
)

// =========================================
// 预定义错误
// =========================================

var (
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")
	ErrStorageError  = New(ErrCodeStorageError, "文件存储错误")

	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "用户名或密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	ErrNotFound           = New(ErrCodeNotFound, "资源不存在")
	ErrDependencyNotFound = New(ErrCodeDependencyNotFound, "关联资源不存在或已停用")
	ErrConflict           = New(ErrCodeConflict, "记录已存在")
	ErrHasDependents      = New(ErrCodeHasDependents, "仍有关联的有效记录，无法删除")

	ErrInvalidParams     = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError         = New(ErrCodeBindError, "参数格式错误")
	ErrInvalidIdentifier = New(ErrCodeInvalidIdentifier, "ID格式错误")
	ErrWeakPassword      = New(ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")
	ErrPasswordMismatch  = New(ErrCodePasswordMismatch, "两次输入的密码不一致")
	ErrInsufficientStock = New(ErrCodeInsufficientStock, "库存不足")
	ErrInvalidFile       = New(ErrCodeInvalidFile, "不支持的文件类型")
)

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}
