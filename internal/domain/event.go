package domain

import "time"

const (
	FieldEventName    = "event_name"
	FieldEventTime    = "event_time"
	FieldEventID      = "event_id"
	FieldActionSource = "action_source"
	FieldUserData     = "user_data"
	FieldCustomData   = "custom_data"

	UserClientIP        = "client_ip_address"
	UserClientUserAgent = "client_user_agent"
	UserEmail           = "em"
	UserRawEmail        = "email"
	UserExternalID      = "external_id"
	UserFBP             = "fbp"
	UserFBC             = "fbc"

	defaultActionSource = "website"
)

// Event is one conversion event as supplied by the caller. Its schema is open:
// everything except the identity fields is passed upstream untouched.
type Event map[string]any

func (e Event) Name() string {
	name, _ := e[FieldEventName].(string)
	return name
}

// UserData returns the event's identity sub-mapping, or nil when it has none.
func (e Event) UserData() map[string]any {
	ud, _ := e[FieldUserData].(map[string]any)
	return ud
}

// SetDefaults fills event_time and action_source when they are missing.
func (e Event) SetDefaults(now time.Time) {
	if !isSet(e[FieldEventTime]) {
		e[FieldEventTime] = now.Unix()
	}
	if !isSet(e[FieldActionSource]) {
		e[FieldActionSource] = defaultActionSource
	}
}

// Batch is the body of one Conversions API call.
type Batch struct {
	Data          []Event `json:"data"`
	TestEventCode string  `json:"test_event_code,omitempty"`
}

// UpstreamResult is what the ad API answered: its status and decoded JSON body.
type UpstreamResult struct {
	StatusCode int
	Body       any
}

func (r UpstreamResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func isSet(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	default:
		return true
	}
}
