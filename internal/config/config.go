package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（对应 config/config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // HTTP 服务配置
	Database DatabaseConfig `mapstructure:"database"` // PostgreSQL 配置
	Queue    QueueConfig    `mapstructure:"queue"`    // 消息队列配置
	Sync     SyncConfig     `mapstructure:"sync"`     // 同步引擎配置
	Archive  ArchiveConfig  `mapstructure:"archive"`  // 原始消息归档配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（URL 形式）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	LogLevel        string        `mapstructure:"log_level"`         // GORM 日志级别：silent/error/warn/info
	AutoMigrate     bool          `mapstructure:"auto_migrate"`      // 启动时自动迁移表结构
}

// QueueConfig 消息队列配置
type QueueConfig struct {
	DSN           string        `mapstructure:"dsn"`            // memory:// 或 postgres://...
	SyncQueue     string        `mapstructure:"sync_queue"`     // 同步任务队列名
	InstanceQueue string        `mapstructure:"instance_queue"` // 实例详情拉取队列名（下游）
	PollInterval  time.Duration `mapstructure:"poll_interval"`  // 空队列轮询间隔
	MaxAttempts   int           `mapstructure:"max_attempts"`   // 最大投递次数，超过后进入 dead 状态
	Workers       int           `mapstructure:"workers"`        // 消费协程数
	Capacity      int           `mapstructure:"capacity"`       // 内存队列容量
	Visibility    time.Duration `mapstructure:"visibility"`     // 表队列：领取后不可见时长
	RetryDelay    time.Duration `mapstructure:"retry_delay"`    // 失败消息重新可见的延迟
}

// SyncConfig 同步引擎配置
type SyncConfig struct {
	CharacterConcurrency int `mapstructure:"character_concurrency"` // 角色并行处理上限
	RepublishChunk       int `mapstructure:"republish_chunk"`       // 每条下游消息携带的实例ID数量
}

// ArchiveConfig 原始消息归档（MinIO/S3）配置
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug/info/warn/error
	Format string `mapstructure:"format"` // text/json
}

// LoadConfigFrom 从指定目录加载 config.yaml，敏感项从 .env / 环境变量覆盖；文件不存在时仅使用默认值与环境变量
func LoadConfigFrom(dir string) (*Config, error) {
	// 1. 加载 .env（若存在）
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("queue.dsn", "memory://")
	v.SetDefault("queue.sync_queue", "destiny.sync")
	v.SetDefault("queue.instance_queue", "destiny.instance")
	v.SetDefault("queue.poll_interval", 500*time.Millisecond)
	v.SetDefault("queue.max_attempts", 5)
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.capacity", 10000)
	v.SetDefault("queue.visibility", 5*time.Minute)
	v.SetDefault("queue.retry_delay", 5*time.Second)
	v.SetDefault("sync.character_concurrency", 3)
	v.SetDefault("sync.republish_chunk", 100)
	v.SetDefault("archive.bucket", "destiny-sync-archive")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("QUEUE_DSN"); v != "" {
		cfg.Queue.DSN = v
	}
	if v := os.Getenv("ARCHIVE_ACCESS_KEY"); v != "" {
		cfg.Archive.AccessKey = v
	}
	if v := os.Getenv("ARCHIVE_SECRET_KEY"); v != "" {
		cfg.Archive.SecretKey = v
	}
}
