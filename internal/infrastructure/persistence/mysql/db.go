package mysql

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/restbookstore/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 按配置自动迁移表结构
func NewDB(cfg *config.Config, log logrus.FieldLogger) (*gorm.DB, error) {
	// 1. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	// 2. 连接数据库
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 3. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 4. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	log.WithField("db", cfg.Database.DBName).Info("数据库连接成功")

	// 5. 自动迁移表结构（开发环境）
	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}

	return db, nil
}

// AutoMigrate 自动迁移表结构
// 注意：AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&PublisherModel{},
		&CategoryModel{},
		&BookModel{},
		&ClientModel{},
		&ShopModel{}, // 同时创建shop_books、shop_clients关联表
		&UserModel{},
	)
}

// 以下为GORM数据模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain层的实体不依赖GORM，Repository负责两者之间的转换
// 3. Active/IsDeleted是业务层的软删除标记，不使用gorm.DeletedAt
//    （停用的记录仍需能按ID查到，以便重复删除时幂等返回）

// PublisherModel 出版社
type PublisherModel struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:100;not null;comment:出版社名称"`
	Image     string    `gorm:"size:500;comment:图片URL"`
	Active    bool      `gorm:"index;not null;comment:是否启用"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (PublisherModel) TableName() string { return "publishers" }

// CategoryModel 分类
type CategoryModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"uniqueIndex;size:100;not null;comment:分类名称"`
	Active    bool      `gorm:"index;not null;comment:是否启用"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (CategoryModel) TableName() string { return "categories" }

// BookModel 图书
// 价格使用int64存储"分"为单位
type BookModel struct {
	ID          uint           `gorm:"primaryKey"`
	Name        string         `gorm:"index;size:200;not null;comment:书名"`
	Author      string         `gorm:"size:100;not null;comment:作者"`
	PublisherID uint           `gorm:"index;not null;comment:出版社ID"`
	Publisher   PublisherModel `gorm:"foreignKey:PublisherID"`
	CategoryID  string         `gorm:"index;size:36;not null;comment:分类ID"`
	Category    CategoryModel  `gorm:"foreignKey:CategoryID"`
	Image       string         `gorm:"size:500;comment:封面图片URL"`
	Description string         `gorm:"type:text;comment:图书描述"`
	Price       int64          `gorm:"index;not null;comment:价格(分)"`
	Stock       int            `gorm:"not null;comment:库存数量"`
	Active      bool           `gorm:"index;not null;comment:是否在售"`
	CreatedAt   time.Time      `gorm:"comment:创建时间"`
	UpdatedAt   time.Time      `gorm:"comment:更新时间"`
}

func (BookModel) TableName() string { return "books" }

// AddressColumns 客户地址（嵌入到clients表，列名前缀address_）
type AddressColumns struct {
	Street     string `gorm:"size:200"`
	Number     string `gorm:"size:20"`
	City       string `gorm:"size:100"`
	Province   string `gorm:"size:100"`
	Country    string `gorm:"size:100"`
	PostalCode string `gorm:"size:20"`
}

// ClientModel 客户
type ClientModel struct {
	ID        string         `gorm:"primaryKey;size:36"`
	Name      string         `gorm:"size:100;not null;comment:名"`
	Surname   string         `gorm:"size:100;comment:姓"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Phone     string         `gorm:"size:30;comment:电话"`
	Image     string         `gorm:"size:500;comment:头像URL"`
	Address   AddressColumns `gorm:"embedded;embeddedPrefix:address_"`
	Active    bool           `gorm:"index;not null;comment:是否启用"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
}

func (ClientModel) TableName() string { return "clients" }

// ShopModel 书店，与图书、客户为多对多
type ShopModel struct {
	ID        string        `gorm:"primaryKey;size:36"`
	Name      string        `gorm:"size:100;not null;comment:书店名称"`
	Address   string        `gorm:"size:300;comment:地址"`
	Books     []BookModel   `gorm:"many2many:shop_books;joinForeignKey:ShopID;joinReferences:BookID"`
	Clients   []ClientModel `gorm:"many2many:shop_clients;joinForeignKey:ShopID;joinReferences:ClientID"`
	Active    bool          `gorm:"index;not null;comment:是否营业"`
	CreatedAt time.Time     `gorm:"comment:创建时间"`
	UpdatedAt time.Time     `gorm:"comment:更新时间"`
}

func (ShopModel) TableName() string { return "shops" }

// UserModel 用户
// Roles以逗号分隔存储（如 "ADMIN,USER"）
type UserModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"size:100;comment:名"`
	Surname   string    `gorm:"size:100;comment:姓"`
	Username  string    `gorm:"uniqueIndex;size:50;not null;comment:用户名"`
	Email     string    `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string    `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Roles     string    `gorm:"size:100;not null;comment:角色"`
	IsDeleted bool      `gorm:"index;not null;comment:是否已删除"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (UserModel) TableName() string { return "users" }
