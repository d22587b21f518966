package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches any FetchError caused by connecting, sending or timing out.
	ErrTransport = errors.New("upstream request failed")
	// ErrBodyRead matches any FetchError caused by reading the response body.
	ErrBodyRead = errors.New("failed to read upstream response")
)

type FailureKind int

const (
	TransportFailure FailureKind = iota + 1
	BodyReadFailure
)

func (k FailureKind) String() string {
	switch k {
	case TransportFailure:
		return "transport"
	case BodyReadFailure:
		return "body_read"
	default:
		return "unknown"
	}
}

// FetchError wraps the cause of a failed fetch together with its kind.
type FetchError struct {
	Kind FailureKind
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the ErrTransport / ErrBodyRead sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == TransportFailure
	case ErrBodyRead:
		return e.Kind == BodyReadFailure
	}
	return false
}
