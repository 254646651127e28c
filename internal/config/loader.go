package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the poll service.
type Config struct {
	HTTPPort          int
	SQLiteDSN         string
	BaseURL           string
	DefaultSessionTTL time.Duration
	RateLimitRPS      float64
	AllowedOrigins    []string
}

// Load parses configuration values from the current process environment.
//
// Every value has a working default so a bare `meetpoll` starts locally;
// malformed entries are collected and reported together.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:          8080,
		SQLiteDSN:         "file:meetpoll.db",
		BaseURL:           "http://localhost:8080",
		DefaultSessionTTL: 0,
		RateLimitRPS:      10,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("MEETPOLL_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "MEETPOLL_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("MEETPOLL_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if baseURL := strings.TrimSpace(os.Getenv("MEETPOLL_BASE_URL")); baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	if ttlValue := strings.TrimSpace(os.Getenv("MEETPOLL_DEFAULT_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl < 0 {
			invalid = append(invalid, "MEETPOLL_DEFAULT_SESSION_TTL")
		} else {
			cfg.DefaultSessionTTL = ttl
		}
	}

	if rpsValue := strings.TrimSpace(os.Getenv("MEETPOLL_RATE_LIMIT_RPS")); rpsValue != "" {
		rps, err := strconv.ParseFloat(rpsValue, 64)
		if err != nil || rps <= 0 {
			invalid = append(invalid, "MEETPOLL_RATE_LIMIT_RPS")
		} else {
			cfg.RateLimitRPS = rps
		}
	}

	if origins := strings.TrimSpace(os.Getenv("MEETPOLL_ALLOWED_ORIGINS")); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
