package http

import (
	"net/http"
)

// Forward passes the body on to the automation webhook.
func (h *Handler) Forward(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		h.error(errMethodNotAllowed, w)
		return
	}

	res, err := h.forwarder.Forward(r.Context(), http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.error(err, w)
		return
	}

	status := http.StatusOK
	if !res.Delivered {
		status = http.StatusBadGateway
	}
	h.json(w, status, forwardResponse{OK: res.Delivered})
}
