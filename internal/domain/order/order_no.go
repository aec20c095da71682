package order

import (
	"fmt"
	"math/rand/v2"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// GenerateOrderNo 生成订单号
// 格式:ORD + 时间戳(秒) + 6位随机数,如 ORD1699248000123456
func GenerateOrderNo() string {
	return fmt.Sprintf("ORD%d%06d", time.Now().Unix(), rand.IntN(1000000))
}

// ParseID 校验订单ID(24位十六进制ObjectID)
func ParseID(raw string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return "", apperrors.ErrInvalidIdentifier.WithMessage("订单ID格式错误: %q", raw)
	}
	return oid.Hex(), nil
}
