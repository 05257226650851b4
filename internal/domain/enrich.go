package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// RequestIdentity holds the identity signals derived from the inbound request.
type RequestIdentity struct {
	ClientIP  string
	UserAgent string
}

// Enrich returns a copy of ev whose user_data carries the client IP and user
// agent. Values already in user_data win over top-level ones, which win over
// the request-derived ones; empty candidates are never written. Top-level
// client_ip_address and client_user_agent are always removed. Emails in
// user_data are hashed.
func Enrich(ev Event, id RequestIdentity) Event {
	out := make(Event, len(ev)+1)
	for k, v := range ev {
		out[k] = v
	}

	ud := make(map[string]any, len(ev.UserData())+2)
	for k, v := range ev.UserData() {
		ud[k] = v
	}

	for _, key := range []string{UserClientIP, UserClientUserAgent} {
		if !isSet(ud[key]) && isSet(out[key]) {
			ud[key] = out[key]
		}
		delete(out, key)
	}

	if !isSet(ud[UserClientIP]) && id.ClientIP != "" {
		ud[UserClientIP] = id.ClientIP
	}
	if !isSet(ud[UserClientUserAgent]) && id.UserAgent != "" {
		ud[UserClientUserAgent] = id.UserAgent
	}

	hashEmails(ud)

	out[FieldUserData] = ud
	return out
}

// HashEmail normalizes an address and returns its hex SHA-256 digest.
// Values that already are a digest are returned in lower case.
func HashEmail(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if isSHA256Hex(normalized) {
		return normalized
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func hashEmails(ud map[string]any) {
	if raw, ok := ud[UserRawEmail]; ok {
		if !isSet(ud[UserEmail]) && isSet(raw) {
			ud[UserEmail] = raw
		}
		delete(ud, UserRawEmail)
	}

	switch v := ud[UserEmail].(type) {
	case string:
		if v != "" {
			ud[UserEmail] = HashEmail(v)
		}
	case []any:
		hashed := make([]any, len(v))
		for i, item := range v {
			if s, ok := item.(string); ok && s != "" {
				hashed[i] = HashEmail(s)
				continue
			}
			hashed[i] = item
		}
		ud[UserEmail] = hashed
	}
}

func isSHA256Hex(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
