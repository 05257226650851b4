package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	ErrInvalidJSON   = errors.New("invalid json body")
	ErrMissingEvents = errors.New("missing events")
)

// Payload is a decoded request body.
type Payload map[string]any

// DecodePayload decodes a request body. An empty body decodes to an empty
// payload. A body that is a JSON string literal is decoded once more, which is
// how text/plain beacons arrive. Anything that is valid JSON but not an object
// decodes to an empty payload.
func DecodePayload(raw []byte) (Payload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Payload{}, nil
	}

	v, err := decodeJSON(raw)
	if err != nil {
		return nil, err
	}

	if s, ok := v.(string); ok {
		inner := bytes.TrimSpace([]byte(s))
		if len(inner) == 0 {
			return Payload{}, nil
		}
		if v, err = decodeJSON(inner); err != nil {
			return nil, err
		}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return Payload{}, nil
	}
	return Payload(obj), nil
}

// Events resolves the payload to its ordered event list: an "events" array is
// taken as is, a single "event" object becomes a one-element list.
func (p Payload) Events() ([]Event, error) {
	if list, ok := p["events"].([]any); ok {
		events := make([]Event, len(list))
		for i, item := range list {
			obj, _ := item.(map[string]any)
			if obj == nil {
				obj = map[string]any{}
			}
			events[i] = Event(obj)
		}
		return events, nil
	}

	if obj, ok := p["event"].(map[string]any); ok {
		return []Event{Event(obj)}, nil
	}

	return nil, ErrMissingEvents
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after document", ErrInvalidJSON)
	}
	return v, nil
}
