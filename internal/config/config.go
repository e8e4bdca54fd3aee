package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type ServerConfig struct {
	Address           string `koanf:"address"`
	Port              string `koanf:"port" validate:"required"`
	BehindNginx       bool   `koanf:"behind_nginx"`
	TlsCert           string `koanf:"tls_cert"`
	TlsKey            string `koanf:"tls_key"`
	Cors              bool   `koanf:"cors"`
	PrintHttpRequests bool   `koanf:"print_http_requests"`
}

type DiscordConfig struct {
	BaseUrl   string        `koanf:"base_url" validate:"required,url"`
	PageCap   int           `koanf:"page_cap" validate:"min=1,max=100"`
	PageDelay time.Duration `koanf:"page_delay"`
}

type DatabaseConfig struct {
	SelfContained bool   `koanf:"self_contained"`
	Path          string `koanf:"path"`
	User          string `koanf:"user"`
	Password      string `koanf:"password"`
	Address       string `koanf:"address"`
	Port          string `koanf:"port"`
	Database      string `koanf:"database"`
}

type RedisConfig struct {
	SelfContained bool   `koanf:"self_contained"`
	Address       string `koanf:"address"`
	Password      string `koanf:"password"`
	DB            int    `koanf:"db"`
}

type Config struct {
	Server            ServerConfig   `koanf:"server"`
	Discord           DiscordConfig  `koanf:"discord"`
	Database          DatabaseConfig `koanf:"database"`
	Redis             RedisConfig    `koanf:"redis"`
	JwtSecret         string         `koanf:"jwt_secret" validate:"required"`
	SnowflakeWorkerID int64          `koanf:"snowflake_worker_id"`
	LogToFile         bool           `koanf:"log_to_file"`
	LogLevel          string         `koanf:"log_level"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, err
	}

	// ARCHIVE_SERVER__PORT=8080 overrides server.port
	err := k.Load(env.Provider("ARCHIVE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "ARCHIVE_")), "__", ".")
	}), nil)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Discord.BaseUrl == "" {
		cfg.Discord.BaseUrl = "https://discord.com/api/v10"
	}
	if cfg.Discord.PageCap == 0 {
		cfg.Discord.PageCap = 100
	}
	if cfg.Discord.PageDelay == 0 {
		cfg.Discord.PageDelay = 100 * time.Millisecond
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./database.db"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "3000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
}
