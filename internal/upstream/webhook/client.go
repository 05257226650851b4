package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const DefaultTimeout = 10 * time.Second

type Config struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client posts JSON documents to an automation webhook (Make.com scenarios).
type Client struct {
	url     string
	timeout time.Duration
	http    HTTPClient
}

func NewClient(cfg Config, httpClient HTTPClient) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		url:     cfg.URL,
		timeout: cfg.Timeout,
		http:    httpClient,
	}
}

func (c *Client) Configured() bool {
	return c.url != ""
}

// Post sends body as is and reports the webhook's status code.
func (c *Client) Post(ctx context.Context, body []byte) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("could not create request: %w", redact(err))
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("could not send request: %w", redact(err))
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	return res.StatusCode, nil
}

// redact drops the hook URL, which is a bearer secret, from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
