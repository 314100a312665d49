package consolesdk

import (
	"context"
	"fmt"
	"net/http"
)

// Login authenticates with email and password and stores the returned
// token in the session.
func (c *Client) Login(ctx context.Context, req LoginRequest) error {
	resp, err := c.do(ctx, http.MethodPost, PathLogin, req)
	if err != nil {
		return err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp); err != nil {
		return err
	}
	if tokenResp.Token == "" {
		return ErrEmptyToken
	}

	if err := c.sessions.Replace(ctx, tokenResp.Token); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// Renew exchanges the currently attached token for a fresh one. It does
// not touch the session; the Renewer decides what to do with the result.
func (c *Client) Renew(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, PathRenew, nil)
	if err != nil {
		return "", err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp); err != nil {
		return "", err
	}
	if tokenResp.Token == "" {
		return "", ErrEmptyToken
	}

	return tokenResp.Token, nil
}

// RequestPasswordReset asks the backend to mail a reset link. The backend
// answers 2xx whether or not the address exists, so a nil error only means
// the request was delivered.
func (c *Client) RequestPasswordReset(ctx context.Context, req ResetRequest) error {
	resp, err := c.do(ctx, http.MethodPost, PathRequestReset, req)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}

// ResetPassword sets a new password using the token from the reset link.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	resp, err := c.do(ctx, http.MethodPost, PathResetPassword, req)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}
