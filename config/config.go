package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Catalog CatalogConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Observ  ObservabilityConfig
	Settle  SettleConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type CatalogConfig struct {
	// Path optionally overrides the embedded seed catalog.
	Path string
}

type RedisConfig struct {
	// Addr empty means the in-memory store is used instead.
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type KafkaConfig struct {
	// Enabled is false when no brokers are configured; the service
	// then runs without cross-instance sync.
	Enabled       bool
	Brokers       []string
	TopicChanges  string
	ConsumerGroup string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

// SettleConfig holds the debounce windows: URL pushes coalesce filter
// edits, cart broadcasts let the persisted write settle first.
type SettleConfig struct {
	URLUpdate     time.Duration
	CartBroadcast time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	urlDebounceMS, _ := strconv.Atoi(getEnv("URL_DEBOUNCE_MS", "300"))
	cartDebounceMS, _ := strconv.Atoi(getEnv("CART_BROADCAST_MS", "100"))

	brokers := getEnv("KAFKA_BROKERS", "")

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Catalog: CatalogConfig{
			Path: getEnv("CATALOG_PATH", ""),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", ""),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "storefront"),
		},
		Kafka: KafkaConfig{
			Enabled:       brokers != "",
			Brokers:       strings.Split(brokers, ","),
			TopicChanges:  getEnv("KAFKA_TOPIC_CHANGES", "storefront-changes"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "storefront-service-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Settle: SettleConfig{
			URLUpdate:     time.Duration(urlDebounceMS) * time.Millisecond,
			CartBroadcast: time.Duration(cartDebounceMS) * time.Millisecond,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s", cfg.Server.Env, cfg.Server.Port)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
