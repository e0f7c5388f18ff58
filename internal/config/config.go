package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	BackendModeREST    = "rest"
	BackendModePredict = "predict"

	SessionStoreFile  = "file"
	SessionStoreRedis = "redis"
)

type Config struct {
	DashboardPort string
	LogLevel      string

	BackendURL            string
	BackendMode           string
	PredictURL            string
	BackendTimeoutSeconds int
	BackendBreakerEnabled bool

	SessionStore   string
	SessionDir     string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	SpeechCommand   string
	DefaultLanguage string

	UploadMaxBytes int64

	APIRateLimitRPS            float64
	APIRateLimitBurst          int
	APIBackpressureMaxInFlight int
	APIBackpressureWaitMS      int
}

func Load() Config {
	return Config{
		DashboardPort: mustEnv("DASHBOARD_PORT", "8088"),
		LogLevel:      mustEnv("LOG_LEVEL", "info"),

		BackendURL:            strings.TrimRight(mustEnv("BACKEND_URL", "http://localhost:5000/api"), "/"),
		BackendMode:           strings.ToLower(mustEnv("BACKEND_MODE", BackendModeREST)),
		PredictURL:            strings.TrimRight(mustEnv("PREDICT_URL", "http://localhost:5000"), "/"),
		BackendTimeoutSeconds: mustEnvInt("BACKEND_TIMEOUT_SECONDS", 0),
		BackendBreakerEnabled: mustEnvBool("BACKEND_BREAKER_ENABLED", true),

		SessionStore:   strings.ToLower(mustEnv("SESSION_STORE", SessionStoreFile)),
		SessionDir:     mustEnv("SESSION_DIR", defaultSessionDir()),
		RedisAddr:      mustEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  mustEnv("REDIS_PASSWORD", ""),
		RedisDB:        mustEnvInt("REDIS_DB", 0),
		RedisKeyPrefix: mustEnv("REDIS_KEY_PREFIX", "blood-insights:session:"),

		SpeechCommand:   mustEnv("SPEECH_COMMAND", "espeak-ng -v {lang} --stdin"),
		DefaultLanguage: mustEnv("DEFAULT_LANGUAGE", "en"),

		UploadMaxBytes: int64(mustEnvInt("UPLOAD_MAX_BYTES", 16<<20)),

		APIRateLimitRPS:            mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst:          mustEnvInt("API_RATE_LIMIT_BURST", 20),
		APIBackpressureMaxInFlight: mustEnvInt("API_BACKPRESSURE_MAX_IN_FLIGHT", 0),
		APIBackpressureWaitMS:      mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250),
	}
}

func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data/session"
	}
	return filepath.Join(home, ".blood-insights", "session")
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
