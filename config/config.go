// Package config loads runtime settings from an optional YAML file, a .env
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/yeremiapane/hotel-ops/utils"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverMySQL   = "mysql"
	DriverSQLite  = "sqlite"
	DriverMongoDB = "mongodb"
)

type Config struct {
	App         AppConfig         `koanf:"app"`
	HTTP        HTTPConfig        `koanf:"http"`
	Database    DatabaseConfig    `koanf:"database"`
	Auth        AuthConfig        `koanf:"auth"`
	Audit       AuditConfig       `koanf:"audit"`
	RateLimiter RateLimiterConfig `koanf:"rate_limiter"`
}

type AppConfig struct {
	Env       string `koanf:"env"`
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

type HTTPConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	GinMode         string        `koanf:"gin_mode"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver        string `koanf:"driver"`
	DSN           string `koanf:"dsn"`
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	JWTTTL    time.Duration `koanf:"jwt_ttl"`
	JWTIssuer string        `koanf:"jwt_issuer"`
	// ViewPINs lists every PIN currently accepted for read-only access.
	// Rotate by adding the new PIN, then removing the old one.
	ViewPINs []string `koanf:"view_pins"`
}

type AuditConfig struct {
	BufferSize int `koanf:"buffer_size"`
}

type RateLimiterConfig struct {
	RequestsPerSecond int `koanf:"requests_per_second"`
	Burst             int `koanf:"burst"`
	LoginPerMinute    int `koanf:"login_per_minute"`
	LoginBurst        int `koanf:"login_burst"`
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
}

func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("No .env file loaded, using process environment")
	}

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	setDefault(k, "app.env", EnvProduction)
	setDefault(k, "app.log_level", "info")
	setDefault(k, "app.log_format", "text")

	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 5000)
	setDefault(k, "http.gin_mode", "release")
	setDefault(k, "http.allowed_origins", []string{"*"})
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.shutdown_timeout", 15*time.Second)

	setDefault(k, "database.driver", DriverSQLite)
	setDefault(k, "database.dsn", "hotel.db")
	setDefault(k, "database.mongo_database", "hotel_management")

	setDefault(k, "auth.jwt_ttl", 24*time.Hour)
	setDefault(k, "auth.jwt_issuer", "hotel-ops")

	setDefault(k, "audit.buffer_size", 256)

	setDefault(k, "rate_limiter.requests_per_second", 50)
	setDefault(k, "rate_limiter.burst", 100)
	setDefault(k, "rate_limiter.login_per_minute", 10)
	setDefault(k, "rate_limiter.login_burst", 5)
}

func applyEnvOverrides(k *koanf.Koanf) {
	if env := getString("APP_ENV", ""); env != "" {
		k.Set("app.env", env)
	}
	if level := getString("LOG_LEVEL", ""); level != "" {
		k.Set("app.log_level", level)
	}
	if format := getString("LOG_FORMAT", ""); format != "" {
		k.Set("app.log_format", format)
	}

	if host := getString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := getInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if mode := getString("GIN_MODE", ""); mode != "" {
		k.Set("http.gin_mode", mode)
	}
	if origins := getList("ALLOWED_ORIGINS"); len(origins) > 0 {
		k.Set("http.allowed_origins", origins)
	}

	if driver := getString("DB_DRIVER", ""); driver != "" {
		k.Set("database.driver", driver)
	}
	if dsn := getString("DB_DSN", ""); dsn != "" {
		k.Set("database.dsn", dsn)
	}
	if uri := getString("MONGODB_URI", ""); uri != "" {
		k.Set("database.mongo_uri", uri)
	}
	if name := getString("MONGODB_DATABASE", ""); name != "" {
		k.Set("database.mongo_database", name)
	}

	if secret := getString("JWT_SECRET", ""); secret != "" {
		k.Set("auth.jwt_secret", secret)
	}
	if ttl := getInt("JWT_TTL_HOURS", 0); ttl > 0 {
		k.Set("auth.jwt_ttl", time.Duration(ttl)*time.Hour)
	}
	if issuer := getString("JWT_ISSUER", ""); issuer != "" {
		k.Set("auth.jwt_issuer", issuer)
	}
	if pins := getList("VIEW_PINS"); len(pins) > 0 {
		k.Set("auth.view_pins", pins)
	}

	if size := getInt("AUDIT_BUFFER_SIZE", 0); size > 0 {
		k.Set("audit.buffer_size", size)
	}

	if rps := getInt("RATE_LIMIT_RPS", 0); rps > 0 {
		k.Set("rate_limiter.requests_per_second", rps)
	}
	if burst := getInt("RATE_LIMIT_BURST", 0); burst > 0 {
		k.Set("rate_limiter.burst", burst)
	}
	if perMinute := getInt("LOGIN_RATE_PER_MINUTE", 0); perMinute > 0 {
		k.Set("rate_limiter.login_per_minute", perMinute)
	}
	if burst := getInt("LOGIN_BURST", 0); burst > 0 {
		k.Set("rate_limiter.login_burst", burst)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}

func (c *Config) Validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.JWTTTL <= 0 {
		errs = append(errs, errors.New("jwt ttl must be positive"))
	}
	switch c.App.Env {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("unknown APP_ENV %q", c.App.Env))
	}
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite:
		if c.Database.DSN == "" {
			errs = append(errs, fmt.Errorf("DB_DSN is required for driver %s", c.Database.Driver))
		}
	case DriverMongoDB:
		if c.Database.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required for driver mongodb"))
		}
		if c.Database.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGODB_DATABASE is required for driver mongodb"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port %d", c.HTTP.Port))
	}
	if c.RateLimiter.RequestsPerSecond <= 0 || c.RateLimiter.LoginPerMinute <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}

	return errors.Join(errs...)
}
