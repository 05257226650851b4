package apierror

import (
	"encoding/json"
	"net/http"
)

// Error is a failure that is reported to the caller as
// {"ok":false,"error":"..."} with the given HTTP status.
type Error struct {
	Message string
	Code    int
	cause   error
}

func (e Error) Error() string {
	return e.Message
}

func (e Error) Unwrap() error {
	return e.cause
}

func (e Error) StatusCode() int {
	if e.Code == 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

func (e Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}{
		OK:    false,
		Error: e.Message,
	})
}

func NewAPIError(msg string, status int) Error {
	return Error{
		Message: msg,
		Code:    status,
	}
}

// Wrap exposes err's text to the caller under status.
func Wrap(err error, status int) Error {
	return Error{
		Message: err.Error(),
		Code:    status,
		cause:   err,
	}
}
