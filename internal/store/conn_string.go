package store

import (
	"fmt"
	"net/url"

	"github.com/dkeye/Boxcall/internal/config"
)

// BuildConnString creates a PostgreSQL connection string from config.
func BuildConnString(cfg config.DBConfig) string {
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}
