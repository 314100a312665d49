package consolesdk

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Stage is one named step of the request pipeline. Request hooks run in
// pipeline order before the request is sent; Response hooks run in
// pipeline order after a response arrived and before the caller sees it.
type Stage struct {
	Name     string
	Request  func(req *http.Request)
	Response func(req *http.Request, resp *http.Response)
}

// Stages returns the names of the pipeline stages in execution order.
func (c *Client) Stages() []string {
	names := make([]string, 0, len(c.pipeline))
	for _, s := range c.pipeline {
		names = append(names, s.Name)
	}
	return names
}

// attachAuth sets the bearer credential when a token is present.
func attachAuth(sessions SessionStore) Stage {
	return Stage{
		Name: "attachAuth",
		Request: func(req *http.Request) {
			if token := sessions.Token(); token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
		},
	}
}

// renewOnSuccess schedules a sliding renewal after every 2xx response
// except the renewal's own.
func renewOnSuccess(r *Renewer) Stage {
	return Stage{
		Name: "renewOnSuccess",
		Response: func(req *http.Request, resp *http.Response) {
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return
			}
			if isRenewPath(req.URL.Path) {
				return
			}
			r.Trigger()
		},
	}
}

// logoutOn401 destroys the session and navigates to login on any 401.
func logoutOn401(sessions SessionStore, nav Navigator, logger *slog.Logger) Stage {
	return Stage{
		Name: "logoutOn401",
		Response: func(req *http.Request, resp *http.Response) {
			if resp.StatusCode != http.StatusUnauthorized {
				return
			}
			logger.Info("session rejected by server, logging out", "path", req.URL.Path)
			sessions.Expire(context.WithoutCancel(req.Context()))
			if nav != nil {
				nav.NavigateToLogin()
			}
		},
	}
}

func isRenewPath(path string) bool {
	return strings.HasSuffix(strings.TrimSuffix(path, "/"), PathRenew)
}
