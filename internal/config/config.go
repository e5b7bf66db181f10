package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port                     string `yaml:"port" toml:"port"`
	Env                      string `yaml:"env" toml:"env"`
	AllowedOrigin            string `yaml:"allowed_origin" toml:"allowed_origin"`
	DatabaseURL              string `yaml:"database_url" toml:"database_url"`
	DBMaxOpenConns           int    `yaml:"db_max_open_conns" toml:"db_max_open_conns"`
	MigrateOnStart           bool   `yaml:"migrate_on_start" toml:"migrate_on_start"`
	RedisAddr                string `yaml:"redis_addr" toml:"redis_addr"`
	RedisPassword            string `yaml:"redis_password" toml:"redis_password"`
	RedisDB                  int    `yaml:"redis_db" toml:"redis_db"`
	DashboardCacheTTLSeconds int    `yaml:"dashboard_cache_ttl_seconds" toml:"dashboard_cache_ttl_seconds"`
	TZName                   string `yaml:"tz_name" toml:"tz_name"`
	AuthSecret               string `yaml:"auth_secret" toml:"auth_secret"`
	AccessTokenTTLMinutes    int    `yaml:"access_token_ttl_minutes" toml:"access_token_ttl_minutes"`
	AdminUsername            string `yaml:"admin_username" toml:"admin_username"`
	AdminPassword            string `yaml:"admin_password" toml:"admin_password"`
	LogLevel                 string `yaml:"log_level" toml:"log_level"`
	LogFormat                string `yaml:"log_format" toml:"log_format"`
}

func defaults() Config {
	return Config{
		Port:                     "3005",
		Env:                      "production",
		AllowedOrigin:            "*",
		DBMaxOpenConns:           20,
		MigrateOnStart:           true,
		DashboardCacheTTLSeconds: 30,
		TZName:                   "Local",
		AccessTokenTTLMinutes:    480,
		AdminUsername:            "admin",
		LogLevel:                 "info",
		LogFormat:                "text",
	}
}

// Load builds the configuration from defaults, then the file named by
// CONFIG_FILE if any, then environment variables.
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg.AuthSecret = strings.TrimSpace(cfg.AuthSecret)
	if cfg.DBMaxOpenConns < 1 {
		cfg.DBMaxOpenConns = 20
	}
	if cfg.DashboardCacheTTLSeconds < 0 {
		cfg.DashboardCacheTTLSeconds = 0
	}
	if cfg.AccessTokenTTLMinutes < 1 {
		cfg.AccessTokenTTLMinutes = 480
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("config file %s: unsupported extension", path)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.Env, "ENV")
	setString(&cfg.AllowedOrigin, "ALLOWED_ORIGIN")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.TZName, "TZ_NAME")
	setString(&cfg.AuthSecret, "AUTH_SECRET")
	setString(&cfg.AdminUsername, "ADMIN_USERNAME")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")

	for key, dest := range map[string]*int{
		"DB_MAX_OPEN_CONNS":           &cfg.DBMaxOpenConns,
		"REDIS_DB":                    &cfg.RedisDB,
		"DASHBOARD_CACHE_TTL_SECONDS": &cfg.DashboardCacheTTLSeconds,
		"ACCESS_TOKEN_TTL_MINUTES":    &cfg.AccessTokenTTLMinutes,
	} {
		if err := setInt(dest, key); err != nil {
			return err
		}
	}

	if raw := strings.TrimSpace(os.Getenv("MIGRATE_ON_START")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("MIGRATE_ON_START: %w", err)
		}
		cfg.MigrateOnStart = v
	}
	return nil
}

func setString(dest *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dest = val
	}
}

func setInt(dest *int, key string) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dest = v
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) Development() bool {
	return strings.EqualFold(c.Env, "development")
}

func (c Config) DashboardCacheTTL() time.Duration {
	return time.Duration(c.DashboardCacheTTLSeconds) * time.Second
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// Location resolves TZ_NAME; "Local" and "" mean the process zone.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.TZName)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}
