package http

import (
	"net/http"

	"github.com/leshachaplin/eventrelay/internal/apierror"
	"github.com/leshachaplin/eventrelay/internal/domain"
	"github.com/leshachaplin/eventrelay/internal/service"
)

var (
	errUsePost          = apierror.NewAPIError("Use POST for events", http.StatusMethodNotAllowed)
	errMethodNotAllowed = apierror.NewAPIError("Method not allowed", http.StatusMethodNotAllowed)
)

// CAPI relays website events to the Conversions API.
//
//	GET     ?ping  health check
//	OPTIONS        CORS preflight
//	POST           {"event":{...}} or {"events":[...]}, ?test=1 for test mode
func (h *Handler) CAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet:
		if r.URL.Query().Has("ping") {
			h.json(w, http.StatusOK, pingResponse{OK: true, Ping: "pong"})
			return
		}
		h.error(errUsePost, w)
		return
	case http.MethodPost:
	default:
		h.error(errMethodNotAllowed, w)
		return
	}

	res, err := h.relay.Relay(r.Context(), relayRequest(w, r))
	if err != nil {
		h.error(err, w)
		return
	}
	h.relayResponse(w, res)
}

// Checkout turns a checkout provider's order webhook into a Purchase event.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		h.error(errMethodNotAllowed, w)
		return
	}

	res, err := h.relay.RelayCheckout(r.Context(), relayRequest(w, r))
	if err != nil {
		h.error(err, w)
		return
	}
	h.relayResponse(w, res)
}

func relayRequest(w http.ResponseWriter, r *http.Request) service.RelayRequest {
	return service.RelayRequest{
		Body:        http.MaxBytesReader(w, r.Body, maxBodyBytes),
		ContentType: r.Header.Get("Content-Type"),
		Identity: domain.RequestIdentity{
			ClientIP:  getClientIP(r),
			UserAgent: r.Header.Get("User-Agent"),
		},
		TestMode: isTestMode(r),
	}
}
