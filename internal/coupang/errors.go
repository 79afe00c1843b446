package coupang

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks unrecoverable setup problems such as missing
// credentials. It must propagate to process exit.
var ErrConfiguration = errors.New("configuration error")

// Classification sentinels. An *APIError matches exactly one of them through
// errors.Is.
var (
	ErrClient    = errors.New("client error")
	ErrTransient = errors.New("transient error")
	ErrServer    = errors.New("server error")
	ErrParsing   = errors.New("parsing error")
)

// ErrorKind classifies a failed API call.
type ErrorKind int

// Error kinds.
const (
	KindClient ErrorKind = iota + 1
	KindTransient
	KindServer
	KindParsing
)

func (k ErrorKind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindTransient:
		return "transient"
	case KindServer:
		return "server"
	case KindParsing:
		return "parsing"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindClient:
		return ErrClient
	case KindTransient:
		return ErrTransient
	case KindServer:
		return ErrServer
	case KindParsing:
		return ErrParsing
	default:
		return nil
	}
}

// APIError is a classified failure from a single logical request, after any
// retries.
type APIError struct {
	Kind       ErrorKind
	Method     string
	Path       string
	StatusCode int // 0 when no response was received
	Attempts   int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("coupang API %s error: %s %s", e.Kind, e.Method, e.Path)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	} else if e.Body != "" {
		msg += ": " + truncate(e.Body, 200)
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *APIError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Retryable reports whether the failure may succeed on another attempt.
func (e *APIError) Retryable() bool {
	return e.Kind == KindTransient
}

// IsFatal reports whether err must abort the whole run rather than a single
// category or item.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// AttemptsOf returns the attempt count recorded on an *APIError in err's
// chain, or 0.
func AttemptsOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Attempts
	}
	return 0
}

// KindOf returns the classification of err, or "unknown".
func KindOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind.String()
	}
	if errors.Is(err, ErrDailyLimitReached) {
		return "quota"
	}
	if IsFatal(err) {
		return "configuration"
	}
	return "unknown"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
