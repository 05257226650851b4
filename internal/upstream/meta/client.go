package meta

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leshachaplin/eventrelay/internal/domain"
)

const (
	DefaultGraphURL   = "https://graph.facebook.com"
	DefaultAPIVersion = "v18.0"
	DefaultTimeout    = 10 * time.Second

	maxResponseBytes = 1 << 20
)

type Config struct {
	GraphURL      string        `mapstructure:"graph_url"`
	APIVersion    string        `mapstructure:"api_version"`
	PixelID       string        `mapstructure:"pixel_id"`
	AccessToken   string        `mapstructure:"access_token"`
	TestEventCode string        `mapstructure:"test_event_code"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client posts event batches to the Conversions API of one pixel.
type Client struct {
	endpoint string
	timeout  time.Duration
	ready    bool
	http     HTTPClient
}

func NewClient(cfg Config, httpClient HTTPClient) *Client {
	if cfg.GraphURL == "" {
		cfg.GraphURL = DefaultGraphURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		endpoint: fmt.Sprintf("%s/%s/%s/events?access_token=%s",
			strings.TrimRight(cfg.GraphURL, "/"),
			cfg.APIVersion,
			url.PathEscape(cfg.PixelID),
			url.QueryEscape(cfg.AccessToken),
		),
		timeout: cfg.Timeout,
		ready:   cfg.PixelID != "" && cfg.AccessToken != "",
		http:    httpClient,
	}
}

// Configured reports whether both the pixel id and the access token are set.
func (c *Client) Configured() bool {
	return c.ready
}

// SendEvents makes exactly one call. A body that is not JSON is reported as an
// empty object.
func (c *Client) SendEvents(ctx context.Context, batch domain.Batch) (domain.UpstreamResult, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return domain.UpstreamResult{}, fmt.Errorf("marshal batch: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.UpstreamResult{}, fmt.Errorf("could not create request: %w", redact(err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return domain.UpstreamResult{}, fmt.Errorf("could not send request: %w", redact(err))
	}
	defer res.Body.Close()

	return domain.UpstreamResult{
		StatusCode: res.StatusCode,
		Body:       decodeBody(res.Body),
	}, nil
}

func decodeBody(r io.Reader) any {
	dec := json.NewDecoder(io.LimitReader(r, maxResponseBytes))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// redact drops the request URL, which carries the access token, from
// transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
