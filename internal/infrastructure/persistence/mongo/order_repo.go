package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xiebiao/restbookstore/internal/domain/order"
	apperrors "github.com/xiebiao/restbookstore/pkg/errors"
)

// orderDocument 订单文档
type orderDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	OrderNo    string             `bson:"order_no"`
	UserID     string             `bson:"user_id"`
	ClientID   string             `bson:"client_id"`
	ShopID     string             `bson:"shop_id"`
	Lines      []lineDocument     `bson:"lines"`
	Total      int64              `bson:"total"`
	TotalBooks int                `bson:"total_books"`
	IsDeleted  bool               `bson:"is_deleted"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

type lineDocument struct {
	BookID   uint  `bson:"book_id"`
	Quantity int   `bson:"quantity"`
	Price    int64 `bson:"price"`
	Total    int64 `bson:"total"`
}

// orderRepository 订单仓储实现(MongoDB)
type orderRepository struct {
	coll *mongo.Collection
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(coll *mongo.Collection) order.Repository {
	return &orderRepository{coll: coll}
}

var orderSortFields = map[string]string{
	"createdAt":  "created_at",
	"total":      "total",
	"totalBooks": "total_books",
}

// EnsureIndexes 创建查询用索引(启动时调用,幂等)
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_no", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_deleted", Value: 1}}},
		{Keys: bson.D{{Key: "shop_id", Value: 1}, {Key: "is_deleted", Value: 1}}},
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
	})
	if err != nil {
		return apperrors.Wrap(err, "创建订单索引失败")
	}
	return nil
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	doc := toOrderDocument(o)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrConflict.WithMessage("订单号重复: %s", o.OrderNo)
		}
		return apperrors.Wrap(err, "创建订单失败")
	}
	o.ID = doc.ID.Hex()
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, order.ErrOrderNotFound
	}

	var doc orderDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}
	return toOrderEntity(&doc), nil
}

func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	doc := toOrderDocument(o)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return apperrors.Wrap(err, "更新订单失败")
	}
	if res.MatchedCount == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return order.ErrOrderNotFound
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return apperrors.Wrap(err, "删除订单失败")
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context, params order.ListParams) ([]*order.Order, int64, error) {
	filter := listFilter(params)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "统计订单失败")
	}
	if total == 0 {
		return nil, 0, nil
	}

	field, ok := orderSortFields[params.SortBy]
	if !ok {
		field = "created_at"
	}
	dir := 1
	if params.Direction == "desc" {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: field, Value: dir}}).
		SetSkip(int64(params.Offset())).
		SetLimit(int64(params.PageSize))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}
	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, apperrors.Wrap(err, "读取订单列表失败")
	}

	list := make([]*order.Order, len(docs))
	for i := range docs {
		list[i] = toOrderEntity(&docs[i])
	}
	return list, total, nil
}

func (r *orderRepository) IDsByUser(ctx context.Context, userID string) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID, "is_deleted": false}, opts)
	if err != nil {
		return nil, apperrors.Wrap(err, "查询用户订单失败")
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperrors.Wrap(err, "读取用户订单失败")
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID.Hex()
	}
	return ids, nil
}

func (r *orderRepository) CountActiveByShop(ctx context.Context, shopID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"shop_id": shopID, "is_deleted": false})
	if err != nil {
		return 0, apperrors.Wrap(err, "统计书店订单失败")
	}
	return n, nil
}

func (r *orderRepository) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"user_id": userID, "is_deleted": false})
	if err != nil {
		return 0, apperrors.Wrap(err, "统计用户订单失败")
	}
	return n, nil
}

// listFilter 列表过滤条件
func listFilter(params order.ListParams) bson.M {
	filter := bson.M{}
	if params.UserID != "" {
		filter["user_id"] = params.UserID
	}
	if params.ClientID != "" {
		filter["client_id"] = params.ClientID
	}
	if params.ShopID != "" {
		filter["shop_id"] = params.ShopID
	}
	if !params.IncludeDeleted {
		filter["is_deleted"] = false
	}
	return filter
}

func toOrderDocument(o *order.Order) *orderDocument {
	doc := &orderDocument{
		OrderNo:    o.OrderNo,
		UserID:     o.UserID,
		ClientID:   o.ClientID,
		ShopID:     o.ShopID,
		Lines:      make([]lineDocument, len(o.Lines)),
		Total:      o.Total,
		TotalBooks: o.TotalBooks,
		IsDeleted:  o.IsDeleted,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	if oid, err := primitive.ObjectIDFromHex(o.ID); err == nil {
		doc.ID = oid
	}
	for i, l := range o.Lines {
		doc.Lines[i] = lineDocument(l)
	}
	return doc
}

func toOrderEntity(doc *orderDocument) *order.Order {
	o := &order.Order{
		ID:         doc.ID.Hex(),
		OrderNo:    doc.OrderNo,
		UserID:     doc.UserID,
		ClientID:   doc.ClientID,
		ShopID:     doc.ShopID,
		Lines:      make([]order.Line, len(doc.Lines)),
		Total:      doc.Total,
		TotalBooks: doc.TotalBooks,
		IsDeleted:  doc.IsDeleted,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
	for i, l := range doc.Lines {
		o.Lines[i] = order.Line(l)
	}
	return o
}
