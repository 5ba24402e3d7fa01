package xmlrpc

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// Call posts a method call to the given endpoint and parses the response
// value. Transport and HTTP-level failures are returned as wrapped errors;
// an XML-RPC fault is returned as a *Fault.
func Call(ctx context.Context, httpClient *http.Client, endpoint, userAgent, method string, args ...Value) (Value, error) {
	body, err := Marshal(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "text/xml")
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s call returned HTTP %d", method, resp.StatusCode)
	}

	value, err := ParseResponse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", method, err)
	}
	return value, nil
}
