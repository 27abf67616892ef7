package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"shop-service/internal/database"

	"go.uber.org/zap"
)

type Config struct {
	Port  string
	DB    DB
	Redis Redis
	Kafka Kafka

	ReportInterval time.Duration
}

type DB struct {
	database.Config
}

type Redis struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

type Kafka struct {
	Brokers      []string
	GroupID      string
	ProductTopic string
	OrderTopic   string
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnv("APP_PORT", log),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		Redis: Redis{
			Enabled:    getEnv("REDIS_ENABLED", log) == "true",
			Addr:       getEnv("REDIS_ADDR", log),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         atoiDefault(os.Getenv("REDIS_DB"), 0),
			TTLSeconds: atoiDefault(os.Getenv("CACHE_TTL_SECONDS"), 600),
		},
		Kafka: Kafka{
			Brokers:      splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			GroupID:      getEnv("KAFKA_GROUP_ID", log),
			ProductTopic: getEnvDefault("KAFKA_TOPIC_PRODUCT", "product"),
			OrderTopic:   getEnvDefault("KAFKA_TOPIC_ORDER", "order"),
		},
		ReportInterval: durationDefault(os.Getenv("REPORT_INTERVAL"), 24*time.Hour),
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return def
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func durationDefault(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
