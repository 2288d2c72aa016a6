package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort    int
	SQLiteDSN   string
	CORSOrigins []string
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to sensible defaults; invalid values are
// accumulated and reported together so operators see every problem at once.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:    8080,
		SQLiteDSN:   "file:booking.db?_foreign_keys=on",
		CORSOrigins: []string{"http://localhost:5173"},
	}

	invalid := make([]string, 0, 1)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if origins := strings.TrimSpace(os.Getenv("BOOKING_CORS_ORIGINS")); origins != "" {
		parsed := make([]string, 0, 2)
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				parsed = append(parsed, trimmed)
			}
		}
		if len(parsed) == 0 {
			invalid = append(invalid, "BOOKING_CORS_ORIGINS")
		} else {
			cfg.CORSOrigins = parsed
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
