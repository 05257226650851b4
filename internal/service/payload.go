package service

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/leshachaplin/eventrelay/internal/apierror"
	"github.com/leshachaplin/eventrelay/internal/domain"
)

const (
	msgInvalidJSON   = "Invalid JSON body"
	msgInvalidForm   = "Invalid form body"
	msgBodyTooLarge  = "Request body too large"
	msgMissingEvents = "Missing 'events' array or 'event' object"
)

func readBody(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apierror.NewAPIError(msgBodyTooLarge, http.StatusRequestEntityTooLarge)
		}
		return nil, apierror.NewAPIError(msgInvalidJSON, http.StatusBadRequest)
	}
	return raw, nil
}

func readPayload(body io.Reader) (domain.Payload, error) {
	raw, err := readBody(body)
	if err != nil {
		return nil, err
	}
	payload, err := domain.DecodePayload(raw)
	if err != nil {
		return nil, apierror.NewAPIError(msgInvalidJSON, http.StatusBadRequest)
	}
	return payload, nil
}

// readCheckoutPayload accepts JSON and url-encoded form bodies, the latter
// being what checkout providers usually post.
func readCheckoutPayload(body io.Reader, contentType string) (domain.Payload, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType != "application/x-www-form-urlencoded" {
		return readPayload(body)
	}

	raw, err := readBody(body)
	if err != nil {
		return nil, err
	}
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, apierror.NewAPIError(msgInvalidForm, http.StatusBadRequest)
	}
	return domain.DecodeFormPayload(values), nil
}
