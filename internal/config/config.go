package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	AI       AIConfig       `mapstructure:"ai"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"` // debug, release, test
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"` // 秒，AI 调用最长 600s，需大于该值
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres, sqlite
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	Path            string `mapstructure:"path"` // sqlite 文件路径
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // 秒
	AutoMigrate     bool   `mapstructure:"auto_migrate"`      // 是否自动迁移表结构
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// 连接模式: standalone(单节点), sentinel(哨兵), cluster(集群)
	Mode string `mapstructure:"mode"`

	// 单节点模式配置
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// 哨兵模式配置
	MasterName       string   `mapstructure:"master_name"`
	SentinelAddrs    []string `mapstructure:"sentinel_addrs"`
	SentinelPassword string   `mapstructure:"sentinel_password"`

	// 集群模式配置
	ClusterAddrs []string `mapstructure:"cluster_addrs"`

	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`

	// AI 配置快照缓存时间（秒）
	SettingsCacheTTL int `mapstructure:"settings_cache_ttl"`
}

// Addr 单节点地址
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, /path/to/log
}

// AuthConfig 登录与令牌配置
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret"`
	Issuer             string `mapstructure:"issuer"`
	AccessTTLMinutes   int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLHours    int    `mapstructure:"refresh_ttl_hours"`
	ResetPasswordToken string `mapstructure:"reset_password_token"` // 为空时禁用令牌重置密码
}

// AccessTTL 访问令牌有效期
func (c *AuthConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMinutes) * time.Minute
}

// RefreshTTL 刷新令牌有效期
func (c *AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLHours) * time.Hour
}

// AIConfig AI 调用的进程级配置。
// 超时、地址、max_tokens、流式开关在每次调用时从环境变量读取，这里只放连接层参数。
type AIConfig struct {
	RetryDelaysMs         []int `mapstructure:"retry_delays_ms"`
	ConnectTimeoutSeconds int   `mapstructure:"connect_timeout_seconds"`
	HeadersTimeoutSeconds int   `mapstructure:"headers_timeout_seconds"`
	UseTiktoken           bool  `mapstructure:"use_tiktoken"`
}

// RetryDelays 转换为 time.Duration，为空时返回 nil
func (c *AIConfig) RetryDelays() []time.Duration {
	if len(c.RetryDelaysMs) == 0 {
		return nil
	}
	out := make([]time.Duration, 0, len(c.RetryDelaysMs))
	for _, ms := range c.RetryDelaysMs {
		out = append(out, time.Duration(ms)*time.Millisecond)
	}
	return out
}

// WorkerConfig 异步任务与定时任务配置
type WorkerConfig struct {
	Enabled            bool   `mapstructure:"enabled"` // 需要 Redis
	Concurrency        int    `mapstructure:"concurrency"`
	OplogRetentionDays int    `mapstructure:"oplog_retention_days"` // 0 表示不清理
	RetentionCron      string `mapstructure:"retention_cron"`
}

// WorkerActive worker 与任务队列只在 Redis 同时开启时运行
func (c *Config) WorkerActive() bool {
	return c.Worker.Enabled && c.Redis.Enabled
}

// SeedConfig 初始数据
type SeedConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
}

var globalConfig *Config

// setDefaults 只有声明过的键才能被 APP_ 环境变量覆盖
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 660)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "agentdesk.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "agentdesk")
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.mode", "standalone")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.settings_cache_ttl", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "stdout")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "agentdesk")
	v.SetDefault("auth.reset_password_token", "")
	v.SetDefault("auth.access_ttl_minutes", 120)
	v.SetDefault("auth.refresh_ttl_hours", 168)
	v.SetDefault("ai.retry_delays_ms", []int{0, 400, 1200})
	v.SetDefault("ai.connect_timeout_seconds", 10)
	v.SetDefault("ai.headers_timeout_seconds", 300)
	v.SetDefault("worker.enabled", false)
	v.SetDefault("worker.concurrency", 5)
	v.SetDefault("worker.oplog_retention_days", 0)
	v.SetDefault("worker.retention_cron", "0 3 * * *")
	v.SetDefault("seed.admin_username", "")
	v.SetDefault("seed.admin_password", "")
}

// Load 加载配置
// env: 环境名称（dev, prod, test）
// configPath: 配置文件路径（可选）
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath == "" {
		v.SetConfigName(env)
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
		v.AddConfigPath("../../config")
	} else {
		v.SetConfigFile(configPath)
	}
	v.SetConfigType("yaml")

	// 环境变量优先级高于配置文件：APP_DATABASE_HOST
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	globalConfig = &cfg
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret 不能为空")
	}
	if c.Worker.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("worker.enabled 需要同时开启 redis.enabled")
	}
	return nil
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		panic("配置未初始化，请先调用 Load()")
	}
	return globalConfig
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
