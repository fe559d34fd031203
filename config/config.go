package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	GRPCPort string `mapstructure:"GRPC_PORT"`
	Env      string `mapstructure:"ENV"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB    int    `mapstructure:"REDIS_CACHE_DB"`
	RedisIdemDB     int    `mapstructure:"REDIS_IDEM_DB"`
	RedisJobQueueDB int    `mapstructure:"REDIS_JOB_QUEUE_DB"`

	// Fan-out tunables.
	AdapterCallTimeoutMS int `mapstructure:"ADAPTER_CALL_TIMEOUT_MS"`
	JobDeadlineMS        int `mapstructure:"JOB_DEADLINE_MS"`
	JobTTLMS             int `mapstructure:"JOB_TTL_MS"`
	RecommendedPollMS    int `mapstructure:"RECOMMENDED_POLL_MS"`

	// Source health policy. The curve is policy, not protocol: the state
	// machine reads whatever is configured here.
	SlowCallThresholdMS int     `mapstructure:"SLOW_CALL_THRESHOLD_MS"`
	SlowRateTrip        float64 `mapstructure:"SLOW_RATE_TRIP"`
	HealthWindowSize    int     `mapstructure:"HEALTH_WINDOW_SIZE"`
	StrikeLimit         int     `mapstructure:"STRIKE_LIMIT"`
	BackoffBaseMS       int     `mapstructure:"BACKOFF_BASE_MS"`
	BackoffCapMS        int     `mapstructure:"BACKOFF_CAP_MS"`

	// Mock adapters fabricate data and are refused in production unless this
	// is set explicitly.
	AllowMockAdapters bool `mapstructure:"ALLOW_MOCK_ADAPTERS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("GRPC_PORT", "9090")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_IDEM_DB", 1)
	viper.SetDefault("REDIS_JOB_QUEUE_DB", 2)
	viper.SetDefault("ADAPTER_CALL_TIMEOUT_MS", 8000)
	viper.SetDefault("JOB_DEADLINE_MS", 30000)
	viper.SetDefault("JOB_TTL_MS", 120000)
	viper.SetDefault("RECOMMENDED_POLL_MS", 1000)
	viper.SetDefault("SLOW_CALL_THRESHOLD_MS", 2000)
	viper.SetDefault("SLOW_RATE_TRIP", 0.5)
	viper.SetDefault("HEALTH_WINDOW_SIZE", 20)
	viper.SetDefault("STRIKE_LIMIT", 3)
	viper.SetDefault("BACKOFF_BASE_MS", 30000)
	viper.SetDefault("BACKOFF_CAP_MS", 900000)
	viper.SetDefault("ALLOW_MOCK_ADAPTERS", false)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
