package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	LogFile      string
	MaxUploadMB  int

	// Matching
	MatchThreshold float64

	// Image ingestion backend (cutout + OCR)
	BackendURL     string
	BackendTimeout time.Duration
	CutoutDir      string

	// DeepSeek extraction
	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	DeepSeekModel   string
	DeepSeekTimeout time.Duration
}

func Load() Config {
	port, _ := strconv.Atoi(getenv("PORT", "8084"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "256"))
	threshold, err := strconv.ParseFloat(getenv("MATCH_THRESHOLD", "0.35"), 64)
	if err != nil || threshold <= 0 || threshold > 1 {
		threshold = 0.35
	}
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	return Config{
		Host:         getenv("HOST", "127.0.0.1"),
		Port:         port,
		AllowOrigins: origins,
		LogLevel:     getenv("LOG_LEVEL", "info"),
		LogFile:      getenv("LOG_FILE", "logs/flyer-service.log"),
		MaxUploadMB:  mb,

		MatchThreshold: threshold,

		BackendURL:     getenv("BACKEND_URL", "http://127.0.0.1:5000"),
		BackendTimeout: getduration("BACKEND_TIMEOUT", 120*time.Second),
		CutoutDir:      getenv("CUTOUT_DIR", "cutouts"),

		DeepSeekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekBaseURL: getenv("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
		DeepSeekModel:   getenv("DEEPSEEK_MODEL", "deepseek-chat"),
		DeepSeekTimeout: getduration("DEEPSEEK_TIMEOUT", 90*time.Second),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
