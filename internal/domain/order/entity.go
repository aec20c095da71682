package order

import (
	"time"
)

// Order 订单实体(聚合根),存储在MongoDB
// 设计说明:
// 1. ID为ObjectID的十六进制形式,由仓储在插入时生成
// 2. OrderNo是面向用户的业务单号
// 3. Line.Price记录下单时的单价快照,Total/TotalBooks冗余存储
type Order struct {
	ID         string
	OrderNo    string
	UserID     string
	ClientID   string
	ShopID     string
	Lines      []Line
	Total      int64 // 订单总金额(分)
	TotalBooks int   // 图书总册数
	IsDeleted  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Line 订单明细项
// 不直接引用Book对象,只保存BookID(避免跨聚合引用)
type Line struct {
	BookID   uint
	Quantity int
	Price    int64 // 下单时单价(分)
	Total    int64 // Price*Quantity
}

// LineRequest 下单请求中的一行(单价由服务端查询)
type LineRequest struct {
	BookID   uint
	Quantity int
}

// NormalizeLines 校验并合并同一图书的多行
func NormalizeLines(lines []LineRequest) ([]LineRequest, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyLines
	}
	merged := make([]LineRequest, 0, len(lines))
	index := make(map[uint]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if i, ok := index[l.BookID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.BookID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

// NewOrder 创建新订单(工厂方法)
func NewOrder(orderNo, userID, clientID, shopID string, lines []Line) *Order {
	now := time.Now()
	o := &Order{
		OrderNo:   orderNo,
		UserID:    userID,
		ClientID:  clientID,
		ShopID:    shopID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.SetLines(lines)
	return o
}

// SetLines 替换明细并重新计算合计
func (o *Order) SetLines(lines []Line) {
	o.Lines = make([]Line, len(lines))
	o.Total, o.TotalBooks = 0, 0
	for i, l := range lines {
		l.Total = l.Price * int64(l.Quantity)
		o.Lines[i] = l
		o.Total += l.Total
		o.TotalBooks += l.Quantity
	}
	o.UpdatedAt = time.Now()
}

// Patch 部分更新:只允许修改客户和书店,明细变更走整体替换
type Patch struct {
	ClientID *string
	ShopID   *string
}

func (o *Order) Apply(p Patch) {
	if p.ClientID != nil {
		o.ClientID = *p.ClientID
	}
	if p.ShopID != nil {
		o.ShopID = *p.ShopID
	}
	o.UpdatedAt = time.Now()
}

// MarkDeleted 软删除,已删除时返回false
func (o *Order) MarkDeleted() bool {
	if o.IsDeleted {
		return false
	}
	o.IsDeleted = true
	o.UpdatedAt = time.Now()
	return true
}

// IsOwnedBy 检查订单是否属于指定用户
func (o *Order) IsOwnedBy(userID string) bool {
	return o.UserID == userID
}

// StockDelta 从旧明细变为新明细时每本书的库存变化量(正数为归还)
func StockDelta(before, after []Line) map[uint]int {
	delta := make(map[uint]int)
	for _, l := range before {
		delta[l.BookID] += l.Quantity
	}
	for _, l := range after {
		delta[l.BookID] -= l.Quantity
	}
	for id, d := range delta {
		if d == 0 {
			delete(delta, id)
		}
	}
	return delta
}
