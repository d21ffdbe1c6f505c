package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Argon2   Argon2Config
	Pricing  PricingConfig
	APIKeys  APIKeyConfig
	Widget   WidgetConfig
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns a lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type JWTConfig struct {
	SecretKey   string
	ExpiryHours int
}

type Argon2Config struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength int
}

// PricingConfig configures the external price source and the quote refresh policy.
type PricingConfig struct {
	BaseURL          string
	APIKey           string
	Asset            string
	Currency         string
	Timeout          time.Duration
	RefreshThreshold time.Duration
}

type APIKeyConfig struct {
	Prefix     string
	BcryptCost int
}

// WidgetConfig feeds the embed snippet generator.
type WidgetConfig struct {
	ScriptURL  string
	APIBaseURL string
	AssetsDir  string
}

var bindings = map[string]string{
	"env":                        "APP_ENV",
	"server.port":                "PORT",
	"server.read_timeout":        "SERVER_READ_TIMEOUT",
	"server.write_timeout":       "SERVER_WRITE_TIMEOUT",
	"server.allowed_origins":     "SERVER_ALLOWED_ORIGINS",
	"database.host":              "DATABASE_HOST",
	"database.port":              "DATABASE_PORT",
	"database.user":              "DATABASE_USER",
	"database.password":          "DATABASE_PASSWORD",
	"database.name":              "DATABASE_NAME",
	"database.ssl_mode":          "DATABASE_SSL_MODE",
	"database.max_open_conns":    "DATABASE_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DATABASE_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DATABASE_CONN_MAX_LIFETIME",
	"redis.host":                 "REDIS_HOST",
	"redis.port":                 "REDIS_PORT",
	"redis.password":             "REDIS_PASSWORD",
	"redis.db":                   "REDIS_DB",
	"jwt.secret_key":             "JWT_SECRET_KEY",
	"jwt.expiry_hours":           "JWT_EXPIRY_HOURS",
	"argon2.time":                "ARGON2_TIME",
	"argon2.memory":              "ARGON2_MEMORY",
	"argon2.threads":             "ARGON2_THREADS",
	"argon2.key_length":          "ARGON2_KEY_LENGTH",
	"argon2.salt_length":         "ARGON2_SALT_LENGTH",
	"pricing.base_url":           "PRICE_API_BASE_URL",
	"pricing.api_key":            "PRICE_API_KEY",
	"pricing.asset":              "PRICE_ASSET",
	"pricing.currency":           "LEDGER_CURRENCY",
	"pricing.timeout":            "PRICE_API_TIMEOUT",
	"pricing.refresh_threshold":  "PRICE_REFRESH_THRESHOLD",
	"api_keys.prefix":            "API_KEY_PREFIX",
	"api_keys.bcrypt_cost":       "API_KEY_BCRYPT_COST",
	"widget.script_url":          "WIDGET_SCRIPT_URL",
	"widget.api_base_url":        "WIDGET_API_BASE_URL",
	"widget.assets_dir":          "WIDGET_ASSETS_DIR",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.allowed_origins", "http://localhost:5173")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.name", "paydash")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.expiry_hours", 24)

	v.SetDefault("argon2.time", 1)
	v.SetDefault("argon2.memory", 64*1024)
	v.SetDefault("argon2.threads", 4)
	v.SetDefault("argon2.key_length", 32)
	v.SetDefault("argon2.salt_length", 16)

	v.SetDefault("pricing.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("pricing.asset", "solana")
	v.SetDefault("pricing.currency", "SOL")
	v.SetDefault("pricing.timeout", 5*time.Second)
	v.SetDefault("pricing.refresh_threshold", time.Hour)

	v.SetDefault("api_keys.prefix", "pk_live_")
	v.SetDefault("api_keys.bcrypt_cost", 12)

	v.SetDefault("widget.script_url", "https://cdn.paydash.dev/widget.js")
	v.SetDefault("widget.api_base_url", "https://api.paydash.dev")
}

// Load reads configuration from an optional .env file and the environment.
// Environment variables override values from the file.
func Load(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("env")
	}
	v.AutomaticEnv()

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	setDefaults(v)

	if file != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else {
			// dotenv keys arrive under their variable names; real env vars still win
			for key, env := range bindings {
				if name := strings.ToLower(env); v.InConfig(name) {
					v.SetDefault(key, v.Get(name))
				}
			}
		}
	}

	cfg := &Config{
		Env: v.GetString("env"),
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			ReadTimeout:    v.GetDuration("server.read_timeout"),
			WriteTimeout:   v.GetDuration("server.write_timeout"),
			AllowedOrigins: splitList(v.GetString("server.allowed_origins")),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetString("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			SSLMode:         v.GetString("database.ssl_mode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			SecretKey:   v.GetString("jwt.secret_key"),
			ExpiryHours: v.GetInt("jwt.expiry_hours"),
		},
		Argon2: Argon2Config{
			Time:       v.GetUint32("argon2.time"),
			Memory:     v.GetUint32("argon2.memory"),
			Threads:    uint8(v.GetUint("argon2.threads")),
			KeyLength:  v.GetUint32("argon2.key_length"),
			SaltLength: v.GetInt("argon2.salt_length"),
		},
		Pricing: PricingConfig{
			BaseURL:          strings.TrimRight(v.GetString("pricing.base_url"), "/"),
			APIKey:           v.GetString("pricing.api_key"),
			Asset:            v.GetString("pricing.asset"),
			Currency:         v.GetString("pricing.currency"),
			Timeout:          v.GetDuration("pricing.timeout"),
			RefreshThreshold: v.GetDuration("pricing.refresh_threshold"),
		},
		APIKeys: APIKeyConfig{
			Prefix:     v.GetString("api_keys.prefix"),
			BcryptCost: v.GetInt("api_keys.bcrypt_cost"),
		},
		Widget: WidgetConfig{
			ScriptURL:  v.GetString("widget.script_url"),
			APIBaseURL: strings.TrimRight(v.GetString("widget.api_base_url"), "/"),
			AssetsDir:  v.GetString("widget.assets_dir"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the services cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.JWT.SecretKey == "" {
		problems = append(problems, "JWT_SECRET_KEY is required")
	}
	if c.JWT.ExpiryHours <= 0 {
		problems = append(problems, "JWT_EXPIRY_HOURS must be positive")
	}
	if c.APIKeys.BcryptCost < 10 || c.APIKeys.BcryptCost > 31 {
		problems = append(problems, "API_KEY_BCRYPT_COST must be between 10 and 31")
	}
	if c.APIKeys.Prefix == "" {
		problems = append(problems, "API_KEY_PREFIX must not be empty")
	}
	if c.Pricing.RefreshThreshold <= 0 {
		problems = append(problems, "PRICE_REFRESH_THRESHOLD must be positive")
	}
	if c.Pricing.Timeout <= 0 {
		problems = append(problems, "PRICE_API_TIMEOUT must be positive")
	}
	if c.Pricing.Asset == "" || c.Pricing.Currency == "" {
		problems = append(problems, "PRICE_ASSET and LEDGER_CURRENCY are required")
	}
	if c.Argon2.SaltLength < 8 || c.Argon2.KeyLength < 16 {
		problems = append(problems, "argon2 salt/key lengths are too small")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
