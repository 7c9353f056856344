package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort string

	LocalDBPath string
	DatabaseURL string

	TokenPath string
	JWTSecret string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	ProbeURL      string
	ProbeInterval time.Duration
	Technology    string

	SyncInterval      time.Duration
	ReconnectDebounce time.Duration
	RemoteCallTimeout time.Duration
	MaxUploadAttempts int
}

func LoadConfig() (*Config, error) {
	syncInterval, err := getDuration("SYNC_INTERVAL", "5m")
	if err != nil {
		return nil, errors.New("invalid SYNC_INTERVAL format")
	}
	debounce, err := getDuration("RECONNECT_DEBOUNCE", "3s")
	if err != nil {
		return nil, errors.New("invalid RECONNECT_DEBOUNCE format")
	}
	callTimeout, err := getDuration("REMOTE_CALL_TIMEOUT", "10s")
	if err != nil {
		return nil, errors.New("invalid REMOTE_CALL_TIMEOUT format")
	}
	probeInterval, err := getDuration("PROBE_INTERVAL", "30s")
	if err != nil {
		return nil, errors.New("invalid PROBE_INTERVAL format")
	}

	maxAttempts := 3
	if v := os.Getenv("MAX_UPLOAD_ATTEMPTS"); v != "" {
		maxAttempts, err = strconv.Atoi(v)
		if err != nil || maxAttempts < 1 {
			return nil, errors.New("invalid MAX_UPLOAD_ATTEMPTS")
		}
	}

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8090"),
		LocalDBPath:       getEnv("LOCAL_DB_PATH", "fieldsync.db"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		TokenPath:         getEnv("TOKEN_PATH", ".fieldsync-token"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		MinioEndpoint:     os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:    os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey:    os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:       getEnv("MINIO_BUCKET", "field-evidence"),
		MinioUseSSL:       getEnv("MINIO_USE_SSL", "true") == "true",
		ProbeURL:          os.Getenv("PROBE_URL"),
		ProbeInterval:     probeInterval,
		Technology:        getEnv("NETWORK_TECHNOLOGY", "ethernet"),
		SyncInterval:      syncInterval,
		ReconnectDebounce: debounce,
		RemoteCallTimeout: callTimeout,
		MaxUploadAttempts: maxAttempts,
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.ProbeURL == "" {
		return nil, errors.New("PROBE_URL is required")
	}

	return cfg, nil
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key, defaultValue string) (time.Duration, error) {
	return time.ParseDuration(getEnv(key, defaultValue))
}
