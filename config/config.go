package config

import (
	"os"
	"strconv"
	"time"
)

// Config adalah konfigurasi terminal, semua dari environment (.env dimuat
// di main lewat godotenv).
type Config struct {
	// Mode "remote" memakai server pusat lewat HTTP, "standalone" memakai
	// database embedded.
	Mode       string
	ServerURL  string
	DBDriver   string
	DBDSN      string
	ListenAddr string

	SyncInterval      time.Duration
	OptimisticEnabled bool
	RetryAttempts     int
	RetryBaseDelay    time.Duration
	RequestTimeout    time.Duration
}

// Load -> baca konfigurasi dari environment dengan default yang masuk akal
// untuk satu terminal kasir
func Load() Config {
	cfg := Config{
		Mode:              getEnv("POS_MODE", "standalone"),
		ServerURL:         getEnv("POS_SERVER_URL", "http://localhost:8080/api"),
		DBDriver:          getEnv("POS_DB_DRIVER", "sqlite"),
		DBDSN:             os.Getenv("POS_DB_DSN"),
		ListenAddr:        getEnv("POS_LISTEN_ADDR", ":8090"),
		SyncInterval:      getDuration("POS_SYNC_INTERVAL", 30*time.Second),
		OptimisticEnabled: getBool("POS_OPTIMISTIC_UPDATES", true),
		RetryAttempts:     getInt("POS_RETRY_ATTEMPTS", 3),
		RetryBaseDelay:    getDuration("POS_RETRY_BASE_DELAY", 500*time.Millisecond),
		RequestTimeout:    getDuration("POS_REQUEST_TIMEOUT", 10*time.Second),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
