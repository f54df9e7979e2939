// config.go

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 服务器配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Game     GameConfig     `mapstructure:"game"`
	Trigger  TriggerConfig  `mapstructure:"trigger"`
}

// ServerConfig 服务器基本配置
type ServerConfig struct {
	HTTPPort           int    `mapstructure:"http_port"`
	Debug              bool   `mapstructure:"debug"`
	LogLevel           string `mapstructure:"log_level"`
	RateLimitPerMinute int    `mapstructure:"rate_limit_per_minute"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"` // postgres 或 sqlite
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"` // sqlite 文件路径
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GameConfig 游戏引擎配置
type GameConfig struct {
	TickTimeout      time.Duration `mapstructure:"tick_timeout"`
	TickWorkers      int           `mapstructure:"tick_workers"`
	MaxRetries       int           `mapstructure:"max_retries"`
	SchedulerEnabled bool          `mapstructure:"scheduler_enabled"`
	CombatInterval   time.Duration `mapstructure:"combat_interval"`
	RegenInterval    time.Duration `mapstructure:"regen_interval"`
	AttackLogLimit   int           `mapstructure:"attack_log_limit"`
}

// TriggerConfig 定时触发接口配置
type TriggerConfig struct {
	Secret string `mapstructure:"secret"`
}

const (
	// DriverPostgres PostgreSQL驱动
	DriverPostgres = "postgres"
	// DriverSQLite SQLite驱动
	DriverSQLite = "sqlite"
)

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.rate_limit_per_minute", 120)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "homedefense.db")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("game.tick_timeout", 5*time.Second)
	v.SetDefault("game.tick_workers", 8)
	v.SetDefault("game.max_retries", 3)
	v.SetDefault("game.combat_interval", time.Hour)
	v.SetDefault("game.regen_interval", 10*time.Minute)
	v.SetDefault("game.attack_log_limit", 10)
}

// Default 返回只包含默认值的配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// 默认值都是合法类型，这里不会失败
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// LoadConfig 从文件加载配置，环境变量 HOMEDEFENSE_* 覆盖文件中的值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("homedefense")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("无法读取配置文件: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("无效的HTTP端口: %d", c.Server.HTTPPort)
	}
	if c.Game.TickTimeout <= 0 {
		return fmt.Errorf("game.tick_timeout 必须大于0")
	}
	if c.Game.TickWorkers <= 0 {
		return fmt.Errorf("game.tick_workers 必须大于0")
	}
	if c.Game.MaxRetries < 0 {
		return fmt.Errorf("game.max_retries 不能为负数")
	}
	if c.Game.SchedulerEnabled && (c.Game.CombatInterval <= 0 || c.Game.RegenInterval <= 0) {
		return fmt.Errorf("启用调度器时 combat_interval 和 regen_interval 必须大于0")
	}
	return nil
}

// GetDSN 获取PostgreSQL连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetRedisAddr 获取Redis连接地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
