// AngelaMos | 2026
// config.go

package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const minProductionSecretLen = 32

type Config struct {
	App        AppConfig        `koanf:"app"`
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	JWT        JWTConfig        `koanf:"jwt"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`
	CORS       CORSConfig       `koanf:"cors"`
	Log        LogConfig        `koanf:"log"`
	Otel       OtelConfig       `koanf:"otel"`
	Scheduler  SchedulerConfig  `koanf:"scheduler"`
	PublicData PublicDataConfig `koanf:"public_data"`
	Geocoding  GeocodingConfig  `koanf:"geocoding"`
	Slack      SlackConfig      `koanf:"slack"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	Secret             string        `koanf:"secret"`
	AccessTokenExpire  time.Duration `koanf:"access_token_expire"`
	RefreshTokenExpire time.Duration `koanf:"refresh_token_expire"`
	Issuer             string        `koanf:"issuer"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// SchedulerConfig guards the ingestion trigger. An empty APIKey disables
// the endpoint.
type SchedulerConfig struct {
	APIKey  string        `koanf:"api_key"`
	LockTTL time.Duration `koanf:"lock_ttl"`
}

type PublicDataConfig struct {
	BaseURL  string        `koanf:"base_url"`
	APIKey   string        `koanf:"api_key"`
	PerPage  int           `koanf:"per_page"`
	MaxPages int           `koanf:"max_pages"`
	Since    string        `koanf:"since"`
	Timeout  time.Duration `koanf:"timeout"`
}

type GeocodingConfig struct {
	URL          string        `koanf:"url"`
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
	Timeout      time.Duration `koanf:"timeout"`
}

type SlackConfig struct {
	WebhookURL string        `koanf:"webhook_url"`
	Timeout    time.Duration `koanf:"timeout"`
}

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		cfg, loadErr = load(configPath)
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "byzip-backend",
		"app.version":     "2.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             3000,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "120s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.auto_migrate":       true,

		"redis.pool_size":      10,
		"redis.min_idle_conns": 2,

		"jwt.access_token_expire":  "1h",
		"jwt.refresh_token_expire": "720h",
		"jwt.issuer":               "byzip",

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			"X-API-Key",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "byzip-backend",

		"scheduler.lock_ttl": "10m",

		"public_data.base_url":  "https://api.odcloud.kr/api",
		"public_data.per_page":  10,
		"public_data.max_pages": 1,
		"public_data.since":     "2023-01-01",
		"public_data.timeout":   "30s",

		"geocoding.url":       "https://maps.apigw.ntruss.com/map-geocode/v2/geocode",
		"geocoding.cache_ttl": "720h",
		"geocoding.timeout":   "10s",

		"slack.timeout": "10s",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"DATABASE_AUTO_MIGRATE":       "database.auto_migrate",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"NODE_ENV":                    "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_SECRET":                  "jwt.secret",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_REFRESH_TOKEN_EXPIRE":    "jwt.refresh_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"CORS_ORIGINS":                "cors.allowed_origins",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"SCHEDULER_API_KEY":           "scheduler.api_key",
	"SCHEDULER_LOCK_TTL":          "scheduler.lock_ttl",
	"DATA_HOME_API_KEY":           "public_data.api_key",
	"DATA_HOME_BASE_URL":          "public_data.base_url",
	"DATA_HOME_PER_PAGE":          "public_data.per_page",
	"DATA_HOME_MAX_PAGES":         "public_data.max_pages",
	"DATA_HOME_SINCE":             "public_data.since",
	"NAVER_GEOCODE_URL":           "geocoding.url",
	"NAVER_CLIENT_ID":             "geocoding.client_id",
	"NAVER_CLIENT_SECRET":         "geocoding.client_secret",
	"SLACK_WEBHOOK_URL":           "slack.webhook_url",
}

var envListKeys = map[string]bool{
	"cors.allowed_origins": true,
}

func envKeyValue(key, value string) (string, any) {
	mapped, ok := envKeyMap[key]
	if !ok {
		return "", nil
	}

	if envListKeys[mapped] {
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return mapped, items
	}

	return mapped, value
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.JWT.AccessTokenExpire <= 0 || c.JWT.RefreshTokenExpire <= 0 {
		return fmt.Errorf("jwt token lifetimes must be positive")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.IsProduction() {
		if len(c.JWT.Secret) < minProductionSecretLen {
			return fmt.Errorf(
				"JWT_SECRET must be at least %d bytes in production",
				minProductionSecretLen,
			)
		}
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	if c.PublicData.PerPage < 1 || c.PublicData.MaxPages < 1 {
		return fmt.Errorf("public_data.per_page and public_data.max_pages must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
