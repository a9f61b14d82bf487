package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	MinIO    MinIOConfig
	Redis    RedisConfig
	Log      LogConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Env            string
	URL            string
	MigrationsPath string
	TrustedProxies []string // CIDRs whose X-Forwarded-For is believed
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret          string
	ExpireHours     int
	RefreshExpHours int
}

type MinIOConfig struct {
	Enabled  bool
	Endpoint string
	User     string
	Password string
	Bucket   string
	UseSSL   bool
}

// RedisConfig is optional. An empty Addr disables the login rate limiter.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	LoginLimit  int
	LoginWindow time.Duration
}

type LogConfig struct {
	Level string
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.App.Env, "development")
}

func Load() *Config {
	// .env only exists in development; production reads the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "Test Center")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_URL", "http://localhost:8080")
	v.SetDefault("MIGRATIONS_PATH", "./migrations")
	v.SetDefault("TRUSTED_PROXIES", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "testcenter")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "testcenter")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_SECRET", "change-this-secret")
	v.SetDefault("JWT_EXPIRE_HOURS", 24)
	v.SetDefault("JWT_REFRESH_EXPIRE_HOURS", 168)

	v.SetDefault("MINIO_ENABLED", false)
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_USER", "minioadmin")
	v.SetDefault("MINIO_PASSWORD", "minioadmin123")
	v.SetDefault("MINIO_BUCKET", "testcenter-tickets")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("LOGIN_RATE_WINDOW", "1m")

	v.SetDefault("LOG_LEVEL", "info")
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Name:           v.GetString("APP_NAME"),
			Port:           v.GetString("APP_PORT"),
			Env:            v.GetString("APP_ENV"),
			URL:            strings.TrimRight(v.GetString("APP_URL"), "/"),
			MigrationsPath: v.GetString("MIGRATIONS_PATH"),
			TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			ExpireHours:     v.GetInt("JWT_EXPIRE_HOURS"),
			RefreshExpHours: v.GetInt("JWT_REFRESH_EXPIRE_HOURS"),
		},
		MinIO: MinIOConfig{
			Enabled:  v.GetBool("MINIO_ENABLED"),
			Endpoint: v.GetString("MINIO_ENDPOINT"),
			User:     v.GetString("MINIO_USER"),
			Password: v.GetString("MINIO_PASSWORD"),
			Bucket:   v.GetString("MINIO_BUCKET"),
			UseSSL:   v.GetBool("MINIO_USE_SSL"),
		},
		Redis: RedisConfig{
			Addr:        v.GetString("REDIS_ADDR"),
			Password:    v.GetString("REDIS_PASSWORD"),
			DB:          v.GetInt("REDIS_DB"),
			LoginLimit:  v.GetInt("LOGIN_RATE_LIMIT"),
			LoginWindow: v.GetDuration("LOGIN_RATE_WINDOW"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
