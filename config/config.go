package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Catalog CatalogConfig
	Redis   RedisConfig
	Search  SearchConfig
	Observ  ObservabilityConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type CatalogConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SearchConfig struct {
	DebounceMillis int
}

type ObservabilityConfig struct {
	JaegerEndpoint string
	PrometheusPort string
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	catalogTimeout, _ := strconv.Atoi(getEnv("CATALOG_TIMEOUT_SECONDS", "10"))
	debounce, _ := strconv.Atoi(getEnv("SEARCH_DEBOUNCE_MS", "300"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Catalog: CatalogConfig{
			BaseURL:        getEnv("CATALOG_BASE_URL", "http://127.0.0.1:8000"),
			TimeoutSeconds: catalogTimeout,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Search: SearchConfig{
			DebounceMillis: debounce,
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
			PrometheusPort: getEnv("PROMETHEUS_PORT", "9090"),
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, catalog=%s", cfg.Server.Env, cfg.Server.Port, cfg.Catalog.BaseURL)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
