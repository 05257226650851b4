package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/leshachaplin/eventrelay/internal/apierror"
)

const msgMissingWebhook = "MAKE_WEBHOOK_URL missing"

type WebhookSender interface {
	Configured() bool
	Post(ctx context.Context, body []byte) (int, error)
}

type ForwardResult struct {
	Delivered  bool
	StatusCode int
}

// Forwarder passes arbitrary JSON documents to an automation webhook without
// looking at them.
type Forwarder struct {
	sender WebhookSender
	logger zerolog.Logger
}

func NewForwarder(sender WebhookSender, logger zerolog.Logger) *Forwarder {
	return &Forwarder{
		sender: sender,
		logger: logger,
	}
}

func (f *Forwarder) Forward(ctx context.Context, body io.Reader) (ForwardResult, error) {
	if !f.sender.Configured() {
		return ForwardResult{}, apierror.NewAPIError(msgMissingWebhook, http.StatusInternalServerError)
	}

	raw, err := readBody(body)
	if err != nil {
		return ForwardResult{}, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if !json.Valid(raw) {
		return ForwardResult{}, apierror.NewAPIError(msgInvalidJSON, http.StatusBadRequest)
	}

	status, err := f.sender.Post(ctx, raw)
	if err != nil {
		f.logger.Error().Err(err).Msg("forward to webhook")
		return ForwardResult{}, apierror.Wrap(err, http.StatusInternalServerError)
	}

	delivered := status >= 200 && status < 300
	if !delivered {
		f.logger.Warn().Int("status", status).Msg("webhook rejected payload")
	}
	return ForwardResult{
		Delivered:  delivered,
		StatusCode: status,
	}, nil
}
