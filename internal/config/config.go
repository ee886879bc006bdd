package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
)

type MySQL struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

func (m MySQL) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", m.User, m.Password, m.Host, m.Port, m.Database)
}

type Config struct {
	Port        string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string

	StoreBackend string
	DatabaseURL  string
	MySQL        MySQL
	SeedFile     string

	RedisHost      string
	RabbitMQURL    string
	RabbitExchange string
	KafkaBrokers   string
	KafkaTopic     string

	ReleaseStockOnFailure bool
	InvoiceDueDays        int
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so tests can pass a map.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:           get("PORT", "8080"),
		JWTSecret:      get("JWT_SECRET", ""),
		StoreBackend:   strings.ToLower(get("STORE_BACKEND", BackendMemory)),
		DatabaseURL:    get("DATABASE_URL", ""),
		SeedFile:       get("SEED_FILE", ""),
		RedisHost:      get("REDIS_HOST", ""),
		RabbitMQURL:    get("RABBITMQ_URL", ""),
		RabbitExchange: get("RABBITMQ_EXCHANGE", "shop.exchange"),
		KafkaBrokers:   get("KAFKA_BROKERS", ""),
		KafkaTopic:     get("KAFKA_TOPIC", "shop.events"),
		MySQL: MySQL{
			User:     get("MYSQL_USER", "root"),
			Password: get("MYSQL_PASSWORD", ""),
			Host:     get("MYSQL_HOST", "localhost"),
			Port:     get("MYSQL_PORT", "3306"),
			Database: get("MYSQL_DATABASE", "shop"),
		},
	}

	for _, o := range strings.Split(get("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	ttl, err := time.ParseDuration(get("TOKEN_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	release, err := strconv.ParseBool(get("CHECKOUT_RELEASE_ON_FAILURE", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("CHECKOUT_RELEASE_ON_FAILURE: %w", err)
	}
	cfg.ReleaseStockOnFailure = release

	days, err := strconv.Atoi(get("INVOICE_DUE_DAYS", "0"))
	if err != nil || days < 0 {
		return Config{}, fmt.Errorf("INVOICE_DUE_DAYS must be a non-negative integer, got %q", getenv("INVOICE_DUE_DAYS"))
	}
	cfg.InvoiceDueDays = days

	switch cfg.StoreBackend {
	case BackendMemory, BackendMySQL:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for the %s backend", BackendPostgres)
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func (c Config) InvoiceDue() time.Duration {
	return time.Duration(c.InvoiceDueDays) * 24 * time.Hour
}

func (c Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	if strings.Contains(c.RedisHost, ":") {
		return c.RedisHost
	}
	return c.RedisHost + ":6379"
}
