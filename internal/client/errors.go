package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a failed request
type Kind int

const (
	// KindHTTP is any error status without a dedicated kind
	KindHTTP Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindServer
	// KindNetwork means no response was received (dial failure, timeout, cancellation)
	KindNetwork
	// KindConfig means the request could not be built
	KindConfig
)

var (
	ErrHTTP         = errors.New("request failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrConfig       = errors.New("request configuration error")
)

// User-facing messages per kind
const (
	MessageUnauthorized = "login expired, please log in again"
	MessageForbidden    = "permission denied"
	MessageNotFound     = "requested resource not found"
	MessageServer       = "server error, please try again later"
	MessageNetwork      = "network error, please check your connection"
	MessageConfig       = "request configuration error"
	MessageDefault      = "request failed"
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	case KindConfig:
		return "config"
	default:
		return "http"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindServer:
		return ErrServer
	case KindNetwork:
		return ErrNetwork
	case KindConfig:
		return ErrConfig
	default:
		return ErrHTTP
	}
}

// kindForStatus maps an HTTP error status to its Kind
func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusInternalServerError:
		return KindServer
	default:
		return KindHTTP
	}
}

// Error is returned for every failed request
type Error struct {
	Kind   Kind
	Status int
	Method string
	Path   string
	// Message is the text shown to the user for this failure
	Message string
	// BackendMessage is the error text found in the response body, if any
	BackendMessage string
	Body           []byte
	Err            error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s", e.Method, e.Path, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.BackendMessage != "" {
		fmt.Fprintf(&b, ": %s", e.BackendMessage)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind, e.g. errors.Is(err, ErrForbidden)
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// BackendMessage returns the backend-provided error text carried by err
func BackendMessage(err error) (string, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.BackendMessage != "" {
		return apiErr.BackendMessage, true
	}
	return "", false
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// userMessage picks the notification text for a failure
func userMessage(kind Kind, backendMessage string) string {
	switch kind {
	case KindUnauthorized:
		return MessageUnauthorized
	case KindForbidden:
		return MessageForbidden
	case KindNotFound:
		return MessageNotFound
	case KindServer:
		return MessageServer
	case KindNetwork:
		return MessageNetwork
	case KindConfig:
		return MessageConfig
	}
	if backendMessage != "" {
		return backendMessage
	}
	return MessageDefault
}

// extractMessage finds a human readable error in a JSON error body.
// It understands {"message"}, {"error"}, {"detail"}, {"non_field_errors": [...]}
// and field error maps like {"username": ["already taken"]}.
func extractMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"message", "error", "detail"} {
		if msg := firstString(payload[key]); msg != "" {
			return msg
		}
	}
	if msg := firstString(payload["non_field_errors"]); msg != "" {
		return msg
	}

	fields := make([]string, 0, len(payload))
	for field := range payload {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if msg := firstString(payload[field]); msg != "" {
			return field + ": " + msg
		}
	}
	return ""
}

func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if msg := firstString(item); msg != "" {
				return msg
			}
		}
	}
	return ""
}
