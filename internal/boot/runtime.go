// Package boot provides runtime configuration derived from config and environment.
package boot

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dawnhq/stickyboard/internal/config"
)

// RuntimeConfig holds parsed runtime settings (token verification, server
// address, presence freshness window). Values may be overridden by
// environment variables (HTTP_ADDR, JWT_SECRET).
type RuntimeConfig struct {
	JWTSecret      string
	TokenIssuer    string
	TokenAudience  string
	ServerAddr     string
	PresenceWindow time.Duration
	ReapEvery      string
}

// ProvideRuntimeConfig builds RuntimeConfig from the given config and applies env overrides.
func ProvideRuntimeConfig(cfg config.Config) (*RuntimeConfig, error) {
	secret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if value := os.Getenv("JWT_SECRET"); value != "" {
		secret = value
	}
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}

	if cfg.Presence.WindowSeconds <= 0 {
		return nil, fmt.Errorf("invalid presence window: %d", cfg.Presence.WindowSeconds)
	}

	ret := &RuntimeConfig{
		JWTSecret:      secret,
		TokenIssuer:    cfg.Auth.Issuer,
		TokenAudience:  cfg.Auth.Audience,
		ServerAddr:     cfg.Server.Addr,
		PresenceWindow: time.Duration(cfg.Presence.WindowSeconds) * time.Second,
		ReapEvery:      strings.TrimSpace(cfg.Presence.ReapEvery),
	}

	if value := os.Getenv("HTTP_ADDR"); value != "" {
		ret.ServerAddr = value
	}
	return ret, nil
}
