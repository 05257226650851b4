package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/leshachaplin/eventrelay/internal/apierror"
	"github.com/leshachaplin/eventrelay/internal/service"
)

const maxBodyBytes = 1 << 20

type Relay interface {
	Relay(ctx context.Context, req service.RelayRequest) (service.RelayResult, error)
	RelayCheckout(ctx context.Context, req service.RelayRequest) (service.RelayResult, error)
}

type Forwarder interface {
	Forward(ctx context.Context, body io.Reader) (service.ForwardResult, error)
}

type Handler struct {
	relay     Relay
	forwarder Forwarder
	logger    zerolog.Logger
}

func NewHandler(relay Relay, forwarder Forwarder, logger zerolog.Logger) *Handler {
	return &Handler{
		relay:     relay,
		forwarder: forwarder,
		logger:    logger,
	}
}

func (h *Handler) error(err error, w http.ResponseWriter) {
	var apiErr apierror.Error
	if !errors.As(err, &apiErr) {
		apiErr = apierror.Wrap(err, http.StatusInternalServerError)
	}

	if err = encodeJSONResponse(w, apiErr.StatusCode(), apiErr); err != nil {
		h.logger.Error().Err(err).Msg("write error response")
	}
}

func (h *Handler) json(w http.ResponseWriter, code int, data any) {
	if err := encodeJSONResponse(w, code, data); err != nil {
		h.logger.Error().Err(err).Msg("write response")
	}
}

func (h *Handler) relayResponse(w http.ResponseWriter, res service.RelayResult) {
	if !res.Forwarded {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	status := http.StatusOK
	if !res.Upstream.OK() {
		status = http.StatusBadRequest
	}
	h.json(w, status, relayResponse{
		OK:   res.Upstream.OK(),
		Meta: res.Upstream.Body,
	})
}

type pingResponse struct {
	OK   bool   `json:"ok"`
	Ping string `json:"ping"`
}

type relayResponse struct {
	OK   bool `json:"ok"`
	Meta any  `json:"meta"`
}

type forwardResponse struct {
	OK bool `json:"ok"`
}
