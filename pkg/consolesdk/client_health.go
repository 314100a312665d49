package consolesdk

import (
	"context"
	"net/http"
)

// Ping probes backend liveness, bounded by PingTimeout. It bypasses the
// pipeline: probes carry no credentials and never renew or log out.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.PingTimeout)
	defer cancel()

	resp, err := c.doRequest(ctx, http.MethodGet, PathPing)
	if err != nil {
		return err
	}

	return decodeJSON(resp, nil)
}
