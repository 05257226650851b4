package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/leshachaplin/eventrelay/internal/domain"
	"github.com/leshachaplin/eventrelay/internal/upstream/meta"
	"github.com/leshachaplin/eventrelay/internal/upstream/webhook"
)

const (
	defaultAddr            = ":8080"
	defaultLogLevel        = "INFO"
	defaultUpstreamTimeout = 10 * time.Second

	// Stays below the HTTP server's write timeout so an upstream failure can
	// still be reported to the caller.
	maxUpstreamTimeout = 25 * time.Second
)

// Config is the main config for the application
type Config struct {
	LogLevel      string         `mapstructure:"log_level"`
	Addr          string         `mapstructure:"addr"`
	AllowOrigins  []string       `mapstructure:"cors_allow_origin"`
	BlockedEvents []string       `mapstructure:"blocked_events"`
	Meta          meta.Config    `mapstructure:"meta"`
	Webhook       webhook.Config `mapstructure:"webhook"`
}

// Load reads the configuration from the environment. Missing Meta credentials
// are not an error here: the relay reports them on every POST instead.
func Load() (Config, error) {
	timeout, err := getenvDuration("UPSTREAM_TIMEOUT", defaultUpstreamTimeout)
	if err != nil {
		return Config{}, err
	}
	if timeout > maxUpstreamTimeout {
		return Config{}, fmt.Errorf("UPSTREAM_TIMEOUT must not exceed %s, got %s", maxUpstreamTimeout, timeout)
	}

	blocked := splitList(os.Getenv("META_BLOCKED_EVENTS"))
	if len(blocked) == 0 {
		blocked = append(blocked, domain.DefaultBlockedEvents...)
	}

	return Config{
		LogLevel:      strings.ToUpper(getenv("LOG_LEVEL", defaultLogLevel)),
		Addr:          getenv("HTTP_ADDR", defaultAddr),
		AllowOrigins:  splitList(os.Getenv("CORS_ALLOW_ORIGIN")),
		BlockedEvents: blocked,
		Meta: meta.Config{
			GraphURL:      getenv("META_GRAPH_URL", meta.DefaultGraphURL),
			APIVersion:    getenv("META_API_VERSION", meta.DefaultAPIVersion),
			PixelID:       strings.TrimSpace(os.Getenv("META_PIXEL_ID")),
			AccessToken:   strings.TrimSpace(os.Getenv("META_ACCESS_TOKEN")),
			TestEventCode: strings.TrimSpace(os.Getenv("META_TEST_EVENT_CODE")),
			Timeout:       timeout,
		},
		Webhook: webhook.Config{
			URL:     strings.TrimSpace(os.Getenv("MAKE_WEBHOOK_URL")),
			Timeout: timeout,
		},
	}, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, v)
	}
	return d, nil
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(v string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
