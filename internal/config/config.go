package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Store      StoreConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Validation ValidationConfig
	Notify     NotifyConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration

	MigrationsDir string
}

type StoreDriver string

const (
	StorePostgres StoreDriver = "postgres"
	StoreMongo    StoreDriver = "mongo"
	StoreMemory   StoreDriver = "memory"
)

type StoreConfig struct {
	Driver        StoreDriver
	MongoURI      string
	MongoDatabase string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

type JWTConfig struct {
	AccessSecret    string
	AccessExpiresIn time.Duration
}

type ValidationConfig struct {
	RulesPath string
}

type NotifyConfig struct {
	Timeout time.Duration
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads the process environment. A .env file in the working directory is applied
// first; variables already set in the environment take precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	dur := func(key string, def time.Duration) time.Duration {
		raw := opt(key)
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			invalid = append(invalid, key)
			return def
		}
		return d
	}
	num := func(key string, def int) int {
		raw := opt(key)
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			invalid = append(invalid, key)
			return def
		}
		return n
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Store = StoreConfig{
		Driver:        StoreDriver(strings.ToLower(opt("STORE_DRIVER"))),
		MongoURI:      opt("MONGODB_URI"),
		MongoDatabase: opt("MONGODB_DATABASE"),
	}
	switch cfg.Store.Driver {
	case "":
		cfg.Store.Driver = StorePostgres
	case StorePostgres, StoreMongo, StoreMemory:
	default:
		invalid = append(invalid, "STORE_DRIVER")
	}

	switch cfg.Store.Driver {
	case StorePostgres:
		cfg.Database = DatabaseConfig{
			DBHost:     req("DB_HOST"),
			DBPort:     req("DB_PORT"),
			DBName:     req("DB_NAME"),
			DBUser:     req("DB_USER"),
			DBPassword: opt("DB_PASSWORD"),
			DBSSLMode:  opt("DB_SSL_MODE"),
		}
		if cfg.Database.DBSSLMode == "" {
			cfg.Database.DBSSLMode = "disable"
		}
	case StoreMongo:
		cfg.Store.MongoURI = req("MONGODB_URI")
		if cfg.Store.MongoDatabase == "" {
			cfg.Store.MongoDatabase = "classifieds"
		}
	}
	cfg.Database.ConnectTimeout = dur("DB_CONNECT_TIMEOUT", 5*time.Second)
	cfg.Database.PoolMaxConns = int32(num("DB_POOL_MAX_CONNS", 0))
	cfg.Database.PoolMinConns = int32(num("DB_POOL_MIN_CONNS", 0))
	cfg.Database.PoolMaxConnLifetime = dur("DB_POOL_MAX_CONN_LIFETIME", 0)
	cfg.Database.PoolMaxConnIdleTime = dur("DB_POOL_MAX_CONN_IDLE_TIME", 0)
	cfg.Database.PoolHealthCheckPeriod = dur("DB_POOL_HEALTH_CHECK_PERIOD", 0)
	cfg.Database.MigrationsDir = opt("DB_MIGRATIONS_DIR")

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
		DB:       num("REDIS_DB", 0),
		TTL:      dur("REDIS_TTL", 60*time.Second),
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == "" {
		cfg.Redis.Port = "6379"
	}

	cfg.JWT = JWTConfig{
		AccessSecret:    req("JWT_ACCESS_SECRET"),
		AccessExpiresIn: dur("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
	}

	cfg.Validation = ValidationConfig{RulesPath: opt("VALIDATION_RULES_PATH")}
	cfg.Notify = NotifyConfig{Timeout: dur("NOTIFY_TIMEOUT", 5*time.Second)}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
