package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DatabaseURL returns a postgres:// URL suitable for golang-migrate.
func (c DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// DSN returns a keyword/value connection string for the GORM driver.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// KafkaConfig holds event-stream settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
}

// CacheConfig holds the in-process cache coordinator settings.
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// InventoryConfig holds ledger tuning.
type InventoryConfig struct {
	// LowStockThreshold is the default quantity below which restock intake
	// publishes a low-stock alert.
	LowStockThreshold float64
}

// ServiceConfig holds all configuration for the back-office service.
type ServiceConfig struct {
	Port      string
	AppEnv    string
	DB        DatabaseConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	Cache     CacheConfig
	Inventory InventoryConfig
}

// Load reads configuration from BACKOFFICE_-prefixed environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("BACKOFFICE")
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "fuel_backoffice")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "fuel-nexus.")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("CACHE_SIZE", 2048)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("LOW_STOCK_THRESHOLD", 50.0)

	port := v.GetString("SERVICE_PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	appEnv := v.GetString("APP_ENV")
	if appEnv != "development" && v.GetString("JWT_SECRET") == "" {
		return nil, fmt.Errorf("BACKOFFICE_JWT_SECRET is required outside development")
	}

	return &ServiceConfig{
		Port:   port,
		AppEnv: appEnv,
		DB: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		Cache: CacheConfig{
			Size: v.GetInt("CACHE_SIZE"),
			TTL:  v.GetDuration("CACHE_TTL"),
		},
		Inventory: InventoryConfig{
			LowStockThreshold: v.GetFloat64("LOW_STOCK_THRESHOLD"),
		},
	}, nil
}
