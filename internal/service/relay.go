package service

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/leshachaplin/eventrelay/internal/apierror"
	"github.com/leshachaplin/eventrelay/internal/domain"
)

const msgMissingCredentials = "Server missing META env vars"

type EventSender interface {
	Configured() bool
	SendEvents(ctx context.Context, batch domain.Batch) (domain.UpstreamResult, error)
}

type RelayConfig struct {
	Blocked       domain.BlockSet
	TestEventCode string
}

type RelayRequest struct {
	Body     io.Reader
	Identity domain.RequestIdentity
	TestMode bool

	// ContentType selects the body decoder for checkout webhooks.
	ContentType string
}

type RelayResult struct {
	// Forwarded is false when every event was blocked and nothing was sent.
	Forwarded bool
	Blocked   int
	Upstream  domain.UpstreamResult
}

// Relay normalizes inbound events and sends them to the Conversions API in a
// single call.
type Relay struct {
	sender EventSender
	cfg    RelayConfig
	now    func() time.Time
	logger zerolog.Logger
}

func NewRelay(sender EventSender, cfg RelayConfig, logger zerolog.Logger) *Relay {
	return &Relay{
		sender: sender,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// Relay handles a body shaped as {"event":{...}} or {"events":[...]}.
func (r *Relay) Relay(ctx context.Context, req RelayRequest) (RelayResult, error) {
	if !r.sender.Configured() {
		return RelayResult{}, apierror.NewAPIError(msgMissingCredentials, http.StatusInternalServerError)
	}

	payload, err := readPayload(req.Body)
	if err != nil {
		return RelayResult{}, err
	}

	events, err := payload.Events()
	if err != nil {
		return RelayResult{}, apierror.NewAPIError(msgMissingEvents, http.StatusBadRequest)
	}

	return r.relay(ctx, events, req)
}

// RelayCheckout handles a checkout provider's order webhook as one Purchase.
func (r *Relay) RelayCheckout(ctx context.Context, req RelayRequest) (RelayResult, error) {
	if !r.sender.Configured() {
		return RelayResult{}, apierror.NewAPIError(msgMissingCredentials, http.StatusInternalServerError)
	}

	payload, err := readCheckoutPayload(req.Body, req.ContentType)
	if err != nil {
		return RelayResult{}, err
	}

	return r.relay(ctx, []domain.Event{domain.PurchaseFromCheckout(payload, r.now())}, req)
}

func (r *Relay) relay(ctx context.Context, events []domain.Event, req RelayRequest) (RelayResult, error) {
	now := r.now()
	enriched := make([]domain.Event, len(events))
	for i, ev := range events {
		enriched[i] = domain.Enrich(ev, req.Identity)
		enriched[i].SetDefaults(now)
	}

	kept, blocked := domain.Filter(enriched, r.cfg.Blocked)
	if blocked > 0 {
		r.logger.Info().Int("blocked", blocked).Msg("skipped blocked events")
	}
	if len(kept) == 0 {
		return RelayResult{Blocked: blocked}, nil
	}

	batch := domain.Batch{Data: kept}
	if req.TestMode {
		if r.cfg.TestEventCode != "" {
			batch.TestEventCode = r.cfg.TestEventCode
		} else {
			r.logger.Debug().Msg("test mode requested without a test event code")
		}
	}

	res, err := r.sender.SendEvents(ctx, batch)
	if err != nil {
		r.logger.Error().Err(err).Int("events", len(kept)).Msg("send events")
		return RelayResult{}, apierror.Wrap(err, http.StatusInternalServerError)
	}
	if !res.OK() {
		r.logger.Error().
			Int("status", res.StatusCode).
			Interface("response", res.Body).
			Msg("upstream rejected events")
	}

	return RelayResult{
		Forwarded: true,
		Blocked:   blocked,
		Upstream:  res,
	}, nil
}
