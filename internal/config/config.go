package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr       = ":8099"
	defaultDBPath         = "/data/wrtmon.db"
	defaultGatewayHost    = "10.0.0.1"
	defaultGatewayUser    = "root"
	defaultWANInterface   = "eth0"
	defaultLANInterface   = "br-lan"
	defaultConnectTimeout = 3 * time.Second
	defaultCommandTimeout = 10 * time.Second
	defaultPollInterval   = 2500 * time.Millisecond
	defaultJournalLimit   = 200
)

// Config stores runtime settings loaded from environment variables.
type Config struct {
	HTTPAddr         string
	DBPath           string
	GatewayHost      string
	GatewayUser      string
	WANInterface     string
	LANInterface     string
	ConnectTimeout   time.Duration
	CommandTimeout   time.Duration
	PollInterval     time.Duration
	JournalLimit     int
	BandThresholdMHz int
	LogLevel         slog.Level
}

// Load builds Config from environment variables using stable defaults.
// An optional .env file in the working directory is applied first and
// never overrides variables already present in the environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:         getenv("HTTP_ADDR", defaultHTTPAddr),
		DBPath:           getenv("DB_PATH", defaultDBPath),
		GatewayHost:      getenv("GATEWAY_HOST", defaultGatewayHost),
		GatewayUser:      getenv("GATEWAY_USER", defaultGatewayUser),
		WANInterface:     getenv("WAN_INTERFACE", defaultWANInterface),
		LANInterface:     getenv("LAN_INTERFACE", defaultLANInterface),
		ConnectTimeout:   parseDuration("SSH_CONNECT_TIMEOUT", defaultConnectTimeout),
		CommandTimeout:   parseDuration("COMMAND_TIMEOUT", defaultCommandTimeout),
		PollInterval:     parseDuration("POLL_INTERVAL", defaultPollInterval),
		JournalLimit:     parseInt("JOURNAL_LIMIT", defaultJournalLimit),
		BandThresholdMHz: parseInt("BAND_THRESHOLD_MHZ", 0),
		LogLevel:         parseLogLevel(getenv("LOG_LEVEL", "info")),
	}
}

// DBDir returns the target directory for DBPath.
func (c Config) DBDir() string {
	return filepath.Dir(c.DBPath)
}

func getenv(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func parseInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
