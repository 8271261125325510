package auth

import (
	"net/http"
	"strings"
)

// ExtractBearerTokenFromHeader returns the token of a "Bearer <token>"
// Authorization value, or "" when there is none.
func ExtractBearerTokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// TokenFromRequest prefers the session cookie and falls back to the
// Authorization header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if r == nil {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return ExtractBearerTokenFromHeader(r.Header.Get("Authorization"))
}
