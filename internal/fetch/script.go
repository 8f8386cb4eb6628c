package fetch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	identPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$.]*`)
	// typeof cb === 'function' && cb(...)
	guardPattern = regexp.MustCompile(`^typeof\s+([A-Za-z_$][A-Za-z0-9_$.]*)\s*===?\s*['"]function['"]\s*&&\s*`)
)

// call is one callback invocation found in a fallback script.
type call struct {
	name string
	arg  json.RawMessage
}

// parseScript reads a JSONP body as a sequence of `name(<json>)` statements.
// Accepted decorations are the `/**/` prefix, a `typeof name === 'function' &&`
// guard and `;` separators.
func parseScript(src []byte) ([]call, error) {
	s := strings.TrimSpace(string(bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))))
	var calls []call
	for {
		s = strings.TrimLeft(s, " \t\r\n;")
		s = strings.TrimPrefix(s, "/**/")
		s = strings.TrimLeft(s, " \t\r\n;")
		if s == "" {
			return calls, nil
		}

		guarded := ""
		if m := guardPattern.FindStringSubmatch(s); m != nil {
			guarded = m[1]
			s = s[len(m[0]):]
		}

		name := identPattern.FindString(s)
		if name == "" {
			return nil, fmt.Errorf("%w: expected callback name at %q", ErrMalformedScript, preview(s))
		}
		if guarded != "" && guarded != name {
			return nil, fmt.Errorf("%w: guard for %q calls %q", ErrMalformedScript, guarded, name)
		}
		s = strings.TrimLeft(s[len(name):], " \t\r\n")
		if !strings.HasPrefix(s, "(") {
			return nil, fmt.Errorf("%w: expected '(' after %s", ErrMalformedScript, name)
		}
		s = s[1:]

		dec := json.NewDecoder(strings.NewReader(s))
		var arg json.RawMessage
		if err := dec.Decode(&arg); err != nil {
			return nil, fmt.Errorf("%w: argument of %s: %v", ErrMalformedScript, name, err)
		}
		s = strings.TrimLeft(s[dec.InputOffset():], " \t\r\n")
		if !strings.HasPrefix(s, ")") {
			return nil, fmt.Errorf("%w: expected ')' closing %s", ErrMalformedScript, name)
		}
		s = s[1:]
		calls = append(calls, call{name: name, arg: arg})
	}
}

func preview(s string) string {
	if len(s) > 32 {
		return s[:32] + "..."
	}
	return s
}
