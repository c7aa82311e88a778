package config

import (
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"activitylog/transport"

	"github.com/joho/godotenv"
)

// Config holds the process configuration.
type Config struct {
	BackendURL string
	Channels   []string
	ListenAddr string
	APIToken   string

	MaxEvents         int
	PreferencesPath   string
	PersistDebounce   time.Duration
	HonorEmptyFilters bool
	DatabaseURL       string

	TUI      bool
	LogLevel string
	LogFile  string
}

const (
	DefaultBackendURL = "http://localhost:8765"
	DefaultListenAddr = ":8080"
)

// Load reads .env if present, then the environment. Unparseable values fall
// back to their defaults.
func Load() Config {
	godotenv.Load()
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() Config {
	return Config{
		BackendURL: getenv("ACTIVITY_BACKEND_URL", DefaultBackendURL),
		Channels:   getenvList("ACTIVITY_CHANNELS", slices.Clone(transport.DefaultChannels)),
		ListenAddr: getenv("ACTIVITY_LISTEN_ADDR", DefaultListenAddr),
		APIToken:   os.Getenv("ACTIVITY_API_TOKEN"),

		MaxEvents:         getenvInt("ACTIVITY_MAX_EVENTS", 1000),
		PreferencesPath:   os.Getenv("ACTIVITY_PREFS_PATH"),
		PersistDebounce:   getenvDuration("ACTIVITY_PERSIST_DEBOUNCE", 250*time.Millisecond),
		HonorEmptyFilters: getenvBool("ACTIVITY_HONOR_EMPTY_FILTERS", false),
		DatabaseURL:       os.Getenv("DATABASE_URL"),

		TUI:      getenvBool("ACTIVITY_TUI", false),
		LogLevel: getenv("ACTIVITY_LOG_LEVEL", "info"),
		LogFile:  os.Getenv("ACTIVITY_LOG_FILE"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// getenvList splits a comma-separated value, dropping blanks.
func getenvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
