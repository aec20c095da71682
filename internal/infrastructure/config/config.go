package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件与环境变量覆盖
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Mongo        MongoConfig        `mapstructure:"mongo"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Log          LogConfig          `mapstructure:"log"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Notification NotificationConfig `mapstructure:"notification"`
	Storage      StorageConfig      `mapstructure:"storage"`
	MQ           MQConfig           `mapstructure:"mq"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	CORS         CORSConfig         `mapstructure:"cors"`
	DeletePolicy DeletePolicyConfig `mapstructure:"delete_policy"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN 生成MySQL连接字符串
// 注意：loc参数需要URL编码（Asia/Shanghai → Asia%2FShanghai）
func (d DatabaseConfig) DSN() string {
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
}

// MongoConfig 订单文档库
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpire  time.Duration `mapstructure:"access_token_expire"`
	RefreshTokenExpire time.Duration `mapstructure:"refresh_token_expire"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// CacheConfig 单条记录读缓存
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// NotificationConfig 变更通知推送
type NotificationConfig struct {
	Workers      int           `mapstructure:"workers"`    // 分发协程数
	QueueSize    int           `mapstructure:"queue_size"` // 待分发队列容量，满则丢弃
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PingInterval time.Duration `mapstructure:"ping_interval"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"` // 超过此时间未收到pong则断开
}

// StorageConfig 图片存储
type StorageConfig struct {
	Dir         string   `mapstructure:"dir"`
	BaseURL     string   `mapstructure:"base_url"`
	AllowedExts []string `mapstructure:"allowed_exts"`
	MaxSize     int64    `mapstructure:"max_size"`
}

// MQConfig 通知同时投递到RabbitMQ（可选）
type MQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
	AllowMethods []string `mapstructure:"allow_methods"`
	AllowHeaders []string `mapstructure:"allow_headers"`
}

// DeletePolicy 软删除时对仍被引用记录的处理方式
type DeletePolicy string

const (
	// DeletePolicyIgnore 直接停用，不检查引用
	DeletePolicyIgnore DeletePolicy = "ignore"
	// DeletePolicyRestrict 存在有效引用时拒绝删除
	DeletePolicyRestrict DeletePolicy = "restrict"
)

// DeletePolicyConfig 各实体的删除策略
type DeletePolicyConfig struct {
	Publishers DeletePolicy `mapstructure:"publishers"`
	Categories DeletePolicy `mapstructure:"categories"`
	Books      DeletePolicy `mapstructure:"books"`
	Clients    DeletePolicy `mapstructure:"clients"`
	Shops      DeletePolicy `mapstructure:"shops"`
	Users      DeletePolicy `mapstructure:"users"`
}

// Load 加载配置文件
// 支持：
// 1. 默认加载config/config.yaml
// 2. 通过环境变量BOOKSTORE_ENV指定环境（如config.prod.yaml）
// 3. 环境变量覆盖（如BOOKSTORE_DATABASE_PASSWORD）
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	if env := os.Getenv("BOOKSTORE_ENV"); env != "" {
		v.SetConfigName("config." + env)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// BOOKSTORE_DATABASE_PASSWORD → database.password
	v.SetEnvPrefix("BOOKSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults 未在yaml中出现的键使用默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("notification.workers", 4)
	v.SetDefault("notification.queue_size", 256)
	v.SetDefault("notification.write_timeout", 5*time.Second)
	v.SetDefault("notification.ping_interval", 30*time.Second)
	v.SetDefault("notification.read_timeout", 60*time.Second)
	v.SetDefault("storage.dir", "uploads")
	v.SetDefault("storage.base_url", "/storage")
	v.SetDefault("storage.allowed_exts", []string{".jpg", ".jpeg", ".png"})
	v.SetDefault("storage.max_size", 5<<20)
	v.SetDefault("mongo.collection", "orders")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("tracing.service_name", "restbookstore")
	v.SetDefault("delete_policy.publishers", string(DeletePolicyRestrict))
	v.SetDefault("delete_policy.categories", string(DeletePolicyRestrict))
	v.SetDefault("delete_policy.books", string(DeletePolicyIgnore))
	v.SetDefault("delete_policy.clients", string(DeletePolicyIgnore))
	v.SetDefault("delete_policy.shops", string(DeletePolicyIgnore))
	v.SetDefault("delete_policy.users", string(DeletePolicyIgnore))
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	if cfg.JWT.Secret == "your-secret-key-change-in-production" && cfg.Server.Mode == "release" {
		return fmt.Errorf("生产环境必须修改JWT密钥")
	}

	if cfg.Notification.Workers <= 0 {
		return fmt.Errorf("notification.workers必须大于0: %d", cfg.Notification.Workers)
	}
	if cfg.Notification.QueueSize < 0 {
		return fmt.Errorf("notification.queue_size不能为负数: %d", cfg.Notification.QueueSize)
	}

	policies := map[string]DeletePolicy{
		"publishers": cfg.DeletePolicy.Publishers,
		"categories": cfg.DeletePolicy.Categories,
		"books":      cfg.DeletePolicy.Books,
		"clients":    cfg.DeletePolicy.Clients,
		"shops":      cfg.DeletePolicy.Shops,
		"users":      cfg.DeletePolicy.Users,
	}
	for entity, p := range policies {
		if p != DeletePolicyIgnore && p != DeletePolicyRestrict {
			return fmt.Errorf("delete_policy.%s取值无效: %q", entity, p)
		}
	}

	return nil
}
