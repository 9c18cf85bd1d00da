package config

import (
	"fmt"
	"os"
	"time"

	"taskboard/pkg/config"
)

type Config struct {
	Server   config.ServerConfig `yaml:"server"`
	Store    config.StoreConfig  `yaml:"store"`
	Redis    config.RedisConfig  `yaml:"redis"`
	DB       config.DBConfig     `yaml:"db"`
	MQ       config.MQConfig     `yaml:"mq"`
	JWT      config.JWTConfig    `yaml:"jwt"`
	OTel     config.OTelConfig   `yaml:"otel"`
	Timezone string              `yaml:"timezone"` // 到期日按此时区的日历显示，空表示本地时区
}

// Load 读取 configDir 下的分层配置，再用环境变量覆盖
func Load(env, configDir string) (*Config, error) {
	merged, err := config.LoadConfig(env, configDir)
	if err != nil {
		return nil, err
	}

	cfg := defaults()
	if err := config.Decode(merged, cfg); err != nil {
		return nil, err
	}

	// 环境变量覆盖
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideStoreFromEnv(&cfg.Store)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideOTelFromEnv(&cfg.OTel)
	if tz := os.Getenv("APP_TIMEZONE"); tz != "" {
		cfg.Timezone = tz
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: config.ServerConfig{Port: "8080", LogLevel: "info"},
		Store: config.StoreConfig{
			Timeout:         10 * time.Second,
			RetryCount:      2,
			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
		},
		Redis: config.RedisConfig{GuardTTL: 30 * time.Second},
	}
}

func (c *Config) validate() error {
	if c.Store.BaseURL == "" {
		return fmt.Errorf("store.base_url is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location 返回到期日使用的时区
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
