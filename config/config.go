package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Budget   BudgetConfig   `mapstructure:"budget"`
	Email    EmailConfig    `mapstructure:"email"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	Timezone        string        `mapstructure:"timezone"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	WriteRateLimit  int           `mapstructure:"write_rate_limit"`
	WriteRateWindow time.Duration `mapstructure:"write_rate_window"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	location        *time.Location
}

// DatabaseConfig 数据库配置
// Driver 为 mysql 或 sqlite，Path 仅 sqlite 使用
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	Charset      string `mapstructure:"charset"`
	Path         string `mapstructure:"path"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	LogLevel     string `mapstructure:"log_level"`
}

// BudgetConfig 预算配置
type BudgetConfig struct {
	DefaultMonthly float64 `mapstructure:"default_monthly"`
	DefaultTheme   string  `mapstructure:"default_theme"`
}

// EmailConfig 邮件配置（预算提醒）
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	AlertTo  string `mapstructure:"alert_to"`
}

// LogConfig 日志配置，Format 为 console 或 json
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置
// 优先级: 环境变量 > 外部配置文件 > 嵌入的默认配置
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("read embedded config: %w", err)
	}
	log.Debug().Msg("loaded embedded default config")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			log.Warn().Err(err).Str("path", configPath).Msg("cannot read config file")
		} else {
			log.Info().Str("path", configPath).Msg("merged external config file")
		}
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("/etc/expense-tracker")
		externalViper.AddConfigPath("$HOME/.expense-tracker")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				log.Warn().Err(err).Msg("merge external config failed")
			} else {
				log.Info().Str("path", externalViper.ConfigFileUsed()).Msg("merged external config file")
			}
		}
	}

	v.SetEnvPrefix("EXPENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	GlobalConfig = &cfg

	return &cfg, nil
}

func (c *Config) normalize() error {
	if c.Server.Port != "" && !strings.HasPrefix(c.Server.Port, ":") {
		c.Server.Port = ":" + c.Server.Port
	}
	if c.Server.Timezone == "" {
		c.Server.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return fmt.Errorf("invalid server.timezone %q: %w", c.Server.Timezone, err)
	}
	c.Server.location = loc

	if c.Server.WriteRateLimit <= 0 {
		c.Server.WriteRateLimit = 60
	}
	if c.Server.WriteRateWindow <= 0 {
		c.Server.WriteRateWindow = time.Minute
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Budget.DefaultMonthly < 0 {
		return fmt.Errorf("budget.default_monthly must not be negative")
	}
	if c.Budget.DefaultTheme == "" {
		c.Budget.DefaultTheme = "light"
	}
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	return nil
}

// Location 获取按自然月统计所用的时区
func (s ServerConfig) Location() *time.Location {
	if s.location == nil {
		return time.UTC
	}
	return s.location
}

// PrintConfig 打印当前配置（隐藏敏感信息）
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	c := GlobalConfig
	ev := log.Info().
		Str("port", c.Server.Port).
		Str("mode", c.Server.Mode).
		Str("timezone", c.Server.Timezone).
		Str("db_driver", c.Database.Driver).
		Bool("email_enabled", c.Email.Enabled).
		Float64("default_budget", c.Budget.DefaultMonthly)
	if c.Database.Driver == "sqlite" {
		ev = ev.Str("db_path", c.Database.Path)
	} else {
		ev = ev.Str("db", fmt.Sprintf("%s@%s:%s/%s", c.Database.Username, c.Database.Host, c.Database.Port, c.Database.DBName))
	}
	ev.Msg("current config")
}

// SafeErrorMessage release 模式下对客户端隐藏内部错误详情
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
