package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"painel/internal/core"
)

// fetchPrimary performs the direct JSON request. Any error it returns
// triggers the fallback: a transport error, a non-2xx status or a body that
// is not JSON. The payload's shape is not checked.
func (c *Client) fetchPrimary(ctx context.Context, u *url.URL) (core.Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, c.primaryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("primary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return core.Dashboard{}, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return core.Dashboard{}, fmt.Errorf("read payload: %w", err)
	}
	var d core.Dashboard
	if err := json.Unmarshal(body, &d); err != nil {
		return core.Dashboard{}, fmt.Errorf("decode payload: %w", err)
	}
	return d, nil
}
