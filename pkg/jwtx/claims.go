package jwtx

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the "role" claim.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Claims are the bearer-token claims the console cares about. They are
// decoded without signature verification and are only ever a UI hint, the
// backend re-validates the token on every request.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user
	Email string `json:"email,omitempty"`

	// DisplayName is optional, menus fall back to Email when empty
	DisplayName string `json:"displayName,omitempty"`

	// Role is "admin" or "user"
	Role string `json:"role,omitempty"`
}

// segmentParser only exists for its base64url segment decoder; it never
// parses or verifies a full token.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode extracts the claims from the payload segment of a three-segment
// token. Anything that does not yield a complete claims record (segment
// count, base64, JSON, missing role or exp) is reported as ErrMalformed.
func Decode(raw string) (Claims, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Claims{}, ErrMalformed
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return Claims{}, ErrMalformed
	}

	var c Claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return Claims{}, ErrMalformed
	}

	if c.Role == "" || c.ExpiresAt == nil {
		return Claims{}, ErrMalformed
	}

	return c, nil
}

// ExpiresAtMillis is exp converted to milliseconds since epoch. All expiry
// comparisons use this unit.
func (c *Claims) ExpiresAtMillis() int64 {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Unix() * 1000
}

// TimeLeft is the remaining lifetime relative to now. It is negative once
// the token has expired.
func (c *Claims) TimeLeft(now time.Time) time.Duration {
	return time.Duration(c.ExpiresAtMillis()-now.UnixMilli()) * time.Millisecond
}

// IsAdmin reports whether the role claim is "admin".
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Name is the display name, or the email when no display name is set.
func (c *Claims) Name() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Email
}

// Initial returns the upper-cased first letter of Name, used as avatar.
func (c *Claims) Initial() string {
	r, _ := utf8.DecodeRuneInString(c.Name())
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}
