package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Catalog struct {
		TTL string `yaml:"ttl"`
	} `yaml:"catalog"`
	Auth struct {
		Secret            string `yaml:"secret"`
		AdminUser         string `yaml:"admin_user"`
		AdminPasswordHash string `yaml:"admin_password_hash"`
		TokenTTL          string `yaml:"token_ttl"`
	} `yaml:"auth"`
	Notification struct {
		APIURL  string `yaml:"api_url"`
		Timeout string `yaml:"timeout"`
		Locale  string `yaml:"locale"`
	} `yaml:"notification"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file is not an error: defaults plus environment are used.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	override(&c.Server.Port, "PORT")
	override(&c.Database.Driver, "DATABASE_DRIVER")
	override(&c.Database.URL, "DATABASE_URL")
	override(&c.Redis.Addr, "REDIS_ADDR")
	override(&c.Redis.Password, "REDIS_PASSWORD")
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if db, err := strconv.Atoi(raw); err == nil {
			c.Redis.DB = db
		}
	}
	override(&c.Auth.Secret, "AUTH_SECRET")
	override(&c.Auth.AdminUser, "ADMIN_USER")
	override(&c.Auth.AdminPasswordHash, "ADMIN_PASSWORD_HASH")
	override(&c.Notification.APIURL, "TELEGRAM_API_URL")
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		c.Server.CORSOrigins = strings.Split(raw, ",")
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Notification.Locale == "" {
		c.Notification.Locale = "uz"
	}
}

func override(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
