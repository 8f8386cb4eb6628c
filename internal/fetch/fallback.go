package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"painel/internal/core"
	applog "painel/internal/log"
)

// fetchFallback retrieves the payload as a callback script. The callback
// entry and the script load are released on every return path.
func (c *Client) fetchFallback(ctx context.Context, u *url.URL) (core.Dashboard, error) {
	entry, release := c.registry.Register()
	defer release()

	ctx, cancel := context.WithTimeout(ctx, c.fallbackTimeout)
	defer cancel()

	su := *u
	v := su.Query()
	v.Set(ParamCallback, entry.Name())
	su.RawQuery = v.Encode()

	script, err := c.loadScript(ctx, &su)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("%w: %w", ErrFallbackFailed, err)
	}
	if err := c.runScript(ctx, script); err != nil {
		return core.Dashboard{}, fmt.Errorf("%w: %w", ErrFallbackFailed, err)
	}

	select {
	case <-entry.Done():
	default:
		return core.Dashboard{}, fmt.Errorf("%w: %w", ErrFallbackFailed, ErrCallbackNotInvoked)
	}

	var d core.Dashboard
	if err := json.Unmarshal(entry.Payload(), &d); err != nil {
		return core.Dashboard{}, fmt.Errorf("%w: decode payload: %w", ErrFallbackFailed, err)
	}
	return d, nil
}

// loadScript downloads the callback script. A transport error or a non-2xx
// status is a load failure.
func (c *Client) loadScript(ctx context.Context, u *url.URL) ([]byte, error) {
	c.scripts.Add(1)
	defer c.scripts.Add(-1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/javascript, text/javascript, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("load script: %w", &StatusError{Code: resp.StatusCode})
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return body, nil
}

// runScript dispatches every callback invocation in script through the
// registry. Invocations of names this process never registered are skipped.
func (c *Client) runScript(ctx context.Context, script []byte) error {
	calls, err := parseScript(script)
	if err != nil {
		return err
	}
	for _, call := range calls {
		if err := c.registry.Invoke(call.name, call.arg); err != nil {
			if errors.Is(err, ErrUnknownCallback) {
				c.logger.DebugContext(ctx, "Ignoring unknown callback", applog.FieldCallback, call.name)
				continue
			}
			return err
		}
	}
	return nil
}
