package user

import (
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// PasswordService 密码领域服务
// 设计说明：
// 1. 密码强度校验与bcrypt加密属于领域规则，不属于单个实体
// 2. cost可配置，测试中使用bcrypt.MinCost加速
type PasswordService struct {
	cost int
}

// NewPasswordService 创建密码服务，cost<=0时使用默认值12
func NewPasswordService(cost int) *PasswordService {
	if cost <= 0 {
		cost = 12
	}
	return &PasswordService{cost: cost}
}

// Hash 校验强度并加密
func (s *PasswordService) Hash(plain string) (string, error) {
	if err := ValidatePasswordStrength(plain); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", apperrors.Wrap(err, "密码加密失败")
	}
	return string(hashed), nil
}

// Verify 验证密码
func (s *PasswordService) Verify(hashed, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperrors.ErrInvalidPassword
		}
		return apperrors.Wrap(err, "密码验证失败")
	}
	return nil
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	hasLetter    = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit     = regexp.MustCompile(`[0-9]`)
)

// IsValidEmail 邮箱格式校验
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePasswordStrength 密码强度校验
// 规则：8-20位，必须包含字母和数字
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 20 {
		return apperrors.ErrWeakPassword
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return apperrors.ErrWeakPassword
	}
	return nil
}
