package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers
const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Session drivers
const (
	SessionDriverRedis  = "redis"
	SessionDriverMemory = "memory"
)

type Config struct {
	App     AppConfig
	Store   StoreConfig
	Mongo   MongoConfig
	DB      DBConfig
	Redis   RedisConfig
	Session SessionConfig
	JWT     JWTConfig
	Auth    AuthConfig
	CORS    CORSConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type StoreConfig struct {
	Driver string
}

type MongoConfig struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SessionConfig struct {
	Driver string
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

type AuthConfig struct {
	Username     string
	PasswordHash string
	ProtectAPI   bool
}

type CORSConfig struct {
	AllowedOrigin string
}

// IsDevelopment reports whether the app runs with APP_ENV=development.
func (c AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func LoadConfig() (*Config, error) {
	return loadConfig(".env")
}

func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 12 * time.Hour
	}

	connectTimeout, err := time.ParseDuration(v.GetString("MONGO_CONNECT_TIMEOUT"))
	if err != nil {
		connectTimeout = 10 * time.Second
	}

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("STORE_DRIVER")),
		},
		Mongo: MongoConfig{
			URI:            v.GetString("MONGO_URI"),
			Database:       v.GetString("MONGO_DATABASE"),
			Collection:     v.GetString("MONGO_COLLECTION"),
			ConnectTimeout: connectTimeout,
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			Driver: strings.ToLower(v.GetString("SESSION_DRIVER")),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			AccessExpiry: accessExpiry,
		},
		Auth: AuthConfig{
			Username:     v.GetString("AUTH_USERNAME"),
			PasswordHash: v.GetString("AUTH_PASSWORD_HASH"),
			ProtectAPI:   v.GetBool("AUTH_PROTECT_API"),
		},
		CORS: CORSConfig{
			AllowedOrigin: v.GetString("CORS_ALLOWED_ORIGIN"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", StoreDriverMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "inventory")
	v.SetDefault("MONGO_COLLECTION", "products")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "inventory")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_DRIVER", SessionDriverRedis)
	v.SetDefault("JWT_ACCESS_EXPIRY", "12h")
	v.SetDefault("AUTH_USERNAME", "admin")
	v.SetDefault("AUTH_PROTECT_API", false)
	v.SetDefault("CORS_ALLOWED_ORIGIN", "*")
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreDriverMongo, StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Session.Driver {
	case SessionDriverRedis, SessionDriverMemory:
	default:
		return fmt.Errorf("unknown SESSION_DRIVER %q", c.Session.Driver)
	}

	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.PasswordHash == "" {
		return errors.New("AUTH_PASSWORD_HASH is required")
	}

	return nil
}
