package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrFallbackFailed is returned when the callback transport cannot
	// deliver a payload. Primary failures never surface on their own.
	ErrFallbackFailed = errors.New("fallback transport failed")

	// ErrCallbackNotInvoked means the fallback script loaded but never
	// called the registered callback.
	ErrCallbackNotInvoked = errors.New("callback not invoked")

	// ErrUnknownCallback is returned by Registry.Invoke for names that are
	// not registered, or no longer are.
	ErrUnknownCallback = errors.New("unknown callback")

	// ErrMalformedScript is returned when a fallback script is not a
	// sequence of callback invocations.
	ErrMalformedScript = errors.New("malformed callback script")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}
