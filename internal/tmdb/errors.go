package tmdb

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/containerd/errdefs"
)

// Kind classifies a failed provider request.
type Kind string

const (
	KindAuth        Kind = "auth"
	KindNotFound    Kind = "not_found"
	KindRateLimited Kind = "rate_limited"
	KindServer      Kind = "server"
	KindNetwork     Kind = "network"
	KindUnknown     Kind = "unknown"
)

// Sentinels matched with errors.Is against any *Error of the same kind.
var (
	ErrAuth        = errors.New("tmdb: authentication failed")
	ErrNotFound    = errors.New("tmdb: resource not found")
	ErrRateLimited = errors.New("tmdb: rate limited")
	ErrServer      = errors.New("tmdb: server error")
	ErrNetwork     = errors.New("tmdb: network error")
	ErrUnknown     = errors.New("tmdb: unexpected error")
)

// Error is a classified provider failure.
// It unwraps to the package sentinel of its Kind and to the matching errdefs class,
// so both errors.Is(err, tmdb.ErrNotFound) and errdefs.IsNotFound(err) hold.
type Error struct {
	Kind       Kind
	StatusCode int // 0 when no response was received
	Endpoint   string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("tmdb %s %s: status %d: %s", e.Kind, e.Endpoint, e.StatusCode, msg)
	}
	return fmt.Sprintf("tmdb %s %s: %s", e.Kind, e.Endpoint, msg)
}

func (e *Error) Unwrap() []error {
	errs := []error{e.sentinel(), e.class()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindAuth:
		return ErrAuth
	case KindNotFound:
		return ErrNotFound
	case KindRateLimited:
		return ErrRateLimited
	case KindServer:
		return ErrServer
	case KindNetwork:
		return ErrNetwork
	default:
		return ErrUnknown
	}
}

func (e *Error) class() error {
	switch e.Kind {
	case KindAuth:
		if e.StatusCode == http.StatusForbidden {
			return errdefs.ErrPermissionDenied
		}
		return errdefs.ErrUnauthenticated
	case KindNotFound:
		return errdefs.ErrNotFound
	case KindRateLimited:
		return errdefs.ErrResourceExhausted
	case KindServer, KindNetwork:
		return errdefs.ErrUnavailable
	default:
		return errdefs.ErrUnknown
	}
}

// KindOf returns the kind of a classified error, or "" when err is not one.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsNotFound reports whether err is a provider 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// classifyStatus maps a non-2xx status code to an error kind.
func classifyStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500 && status <= 599:
		return KindServer
	default:
		return KindUnknown
	}
}
