package aggregate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"

	"painel/internal/core"
)

const (
	ContentTypeJSON   = "application/json; charset=utf-8"
	ContentTypeScript = "application/javascript; charset=utf-8"
)

var (
	callbackPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$.]*$`)

	ErrInvalidCallback = errors.New("invalid callback name")
)

// ValidCallback reports whether name is safe to echo as a JSONP callback.
func ValidCallback(name string) bool {
	return len(name) <= 128 && callbackPattern.MatchString(name)
}

// Encode writes d as JSON, or as a JSONP script calling callback when it is
// non-empty. It returns the content type to send.
func Encode(w io.Writer, d core.Dashboard, callback string) (string, error) {
	if callback != "" && !ValidCallback(callback) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCallback, callback)
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal dashboard: %w", err)
	}
	if callback == "" {
		_, err = w.Write(b)
		return ContentTypeJSON, err
	}
	// The comment prefix guards against content sniffing of the callback name.
	_, err = fmt.Fprintf(w, "/**/%s(%s);", callback, b)
	return ContentTypeScript, err
}
