package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Catalog      CatalogConfig
	Translation  TranslationConfig
	Localization LocalizationConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type CatalogConfig struct {
	BaseURL string
	Timeout time.Duration
}

type TranslationConfig struct {
	Endpoint string
	Timeout  time.Duration
}

type LocalizationConfig struct {
	CanonicalLanguage string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	RequestsPerWindow int
	WindowSeconds     int
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CATALOG_BASE_URL", "https://fakestoreapi.com")
	viper.SetDefault("CATALOG_TIMEOUT_SECONDS", 10)
	viper.SetDefault("TRANSLATE_URL", "http://localhost:5000/translate")
	viper.SetDefault("TRANSLATE_TIMEOUT_SECONDS", 10)
	viper.SetDefault("CANONICAL_LANG", "en")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 120)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Catalog: CatalogConfig{
			BaseURL: viper.GetString("CATALOG_BASE_URL"),
			Timeout: time.Duration(viper.GetInt("CATALOG_TIMEOUT_SECONDS")) * time.Second,
		},
		Translation: TranslationConfig{
			Endpoint: viper.GetString("TRANSLATE_URL"),
			Timeout:  time.Duration(viper.GetInt("TRANSLATE_TIMEOUT_SECONDS")) * time.Second,
		},
		Localization: LocalizationConfig{
			CanonicalLanguage: viper.GetString("CANONICAL_LANG"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds:     viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}
}
