package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers understood by repository.Open.
const (
	DriverAuto     = "auto"
	DriverMemory   = "memory"
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
	DriverRedis    = "redis"
	DriverMinIO    = "minio"
)

var ErrUnknownDriver = errors.New("unknown store driver")

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Service   ServiceConfig
	Store     StoreConfig
	Supabase  SupabaseConfig
	Postgres  PostgresConfig
	SQLite    SQLiteConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	RateLimit RateLimitConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	GatewayPath  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// ServiceConfig is the static metadata reported by the health query.
type ServiceConfig struct {
	Name     string
	Provider string
}

type StoreConfig struct {
	Driver  string
	Table   string
	Timeout time.Duration
	// UniqueContent asks SQL and Mongo backends to enforce uniqueness on content.
	UniqueContent bool
}

type SupabaseConfig struct {
	URL string
	Key string
}

type PostgresConfig struct {
	DSN     string
	MaxOpen int
	MaxIdle int
	MaxLife time.Duration
}

type SQLiteConfig struct {
	Path string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port.
func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("GATEWAY_PATH", "/api/checkRedundancy")
	viper.SetDefault("SERVICE_NAME", "Data Redundancy System")
	viper.SetDefault("STORE_DRIVER", DriverAuto)
	viper.SetDefault("STORE_TABLE", "user_data")
	viper.SetDefault("STORE_TIMEOUT", 10)
	viper.SetDefault("STORE_UNIQUE_CONTENT", false)
	viper.SetDefault("POSTGRES_MAX_OPEN", 10)
	viper.SetDefault("POSTGRES_MAX_IDLE", 5)
	viper.SetDefault("POSTGRES_MAX_LIFE", 300)
	viper.SetDefault("SQLITE_PATH", "data/redundancy.db")
	viper.SetDefault("MONGODB_DATABASE", "redundancy")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("MINIO_BUCKET", "redundancy")
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_USE_REDIS", false)
	viper.SetDefault("RATE_LIMIT_RPS", 5.0)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	viper.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			GatewayPath:  viper.GetString("GATEWAY_PATH"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Service: ServiceConfig{
			Name:     viper.GetString("SERVICE_NAME"),
			Provider: viper.GetString("SERVICE_PROVIDER"),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(strings.TrimSpace(viper.GetString("STORE_DRIVER"))),
			Table:         viper.GetString("STORE_TABLE"),
			Timeout:       time.Duration(viper.GetInt("STORE_TIMEOUT")) * time.Second,
			UniqueContent: viper.GetBool("STORE_UNIQUE_CONTENT"),
		},
		Supabase: SupabaseConfig{
			URL: strings.TrimRight(viper.GetString("SUPABASE_URL"), "/"),
			Key: viper.GetString("SUPABASE_KEY"),
		},
		Postgres: PostgresConfig{
			DSN:     viper.GetString("POSTGRES_DSN"),
			MaxOpen: viper.GetInt("POSTGRES_MAX_OPEN"),
			MaxIdle: viper.GetInt("POSTGRES_MAX_IDLE"),
			MaxLife: time.Duration(viper.GetInt("POSTGRES_MAX_LIFE")) * time.Second,
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("SQLITE_PATH"),
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		MinIO: MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	if cfg.Store.Driver == "" || cfg.Store.Driver == DriverAuto {
		cfg.Store.Driver = DriverMemory
		if cfg.Supabase.URL != "" {
			cfg.Store.Driver = DriverSupabase
		}
	}
	if cfg.Service.Provider == "" {
		cfg.Service.Provider = defaultProvider(cfg.Store.Driver)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected store driver has what it needs.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSupabase:
		if c.Supabase.URL == "" || c.Supabase.Key == "" {
			return errors.New("SUPABASE_URL and SUPABASE_KEY are required for the supabase driver")
		}
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLite.Path == "" {
			return errors.New("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI is required for the mongo driver")
		}
	case DriverRedis:
		if c.Redis.Host == "" {
			return errors.New("REDIS_HOST is required for the redis driver")
		}
	case DriverMinIO:
		if c.MinIO.Endpoint == "" {
			return errors.New("MINIO_ENDPOINT is required for the minio driver")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Store.Driver)
	}
	if c.Store.Table == "" {
		return errors.New("STORE_TABLE must not be empty")
	}
	return nil
}

func defaultProvider(driver string) string {
	switch driver {
	case DriverSupabase:
		return "Go + Supabase"
	case DriverPostgres:
		return "Go + PostgreSQL"
	case DriverSQLite:
		return "Go + SQLite"
	case DriverMongo:
		return "Go + MongoDB"
	case DriverRedis:
		return "Go + Redis"
	case DriverMinIO:
		return "Go + MinIO"
	}
	return "Go + in-memory"
}
