// Package config handles bridge configuration
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Busy policies for a capture command arriving while another is in flight.
const (
	BusyReject = "reject"
	BusyQueue  = "queue"
)

type Config struct {
	HTTPAddr       string
	GRPCAddr       string // empty disables the health server
	LogLevel       string
	ViewportWidth  int
	ViewportHeight int
	Renderer       string // "pattern" or "screen"
	BusyPolicy     string
	UploadTimeout  time.Duration
	UploadOrigin   string
	UploadBreaker  bool
	AckEnabled     bool
}

func Load() *Config {
	return &Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8000"),
		GRPCAddr:       lookupEnv("GRPC_ADDR", ":50052"),
		LogLevel:       getEnv("LOG_LEVEL", "debug"),
		ViewportWidth:  getEnvInt("VIEWPORT_WIDTH", 1280),
		ViewportHeight: getEnvInt("VIEWPORT_HEIGHT", 720),
		Renderer:       strings.ToLower(getEnv("RENDERER", "pattern")),
		BusyPolicy:     busyPolicy(getEnv("CAPTURE_BUSY_POLICY", BusyReject)),
		UploadTimeout:  getEnvDuration("UPLOAD_TIMEOUT", 30*time.Second),
		UploadOrigin:   os.Getenv("UPLOAD_ORIGIN"),
		UploadBreaker:  getEnvBool("UPLOAD_BREAKER_ENABLED", true),
		AckEnabled:     getEnvBool("ACK_ENABLED", true),
	}
}

// busyPolicy falls back to reject for anything it does not recognise.
func busyPolicy(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), BusyQueue) {
		return BusyQueue
	}
	return BusyReject
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// lookupEnv differs from getEnv in that an explicitly empty value is kept.
func lookupEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}

// getEnvDuration accepts Go duration strings ("5s") or plain seconds ("5").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(f * float64(time.Second))
	}
	return def
}
