package middleware

// identity.go defines helper functions shared across middleware files. It
// provides claim extraction for the session middleware and a user identifier
// for rate-limit keys. When no session is present, "guest" is returned.

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// claimInt reads an integer claim that JWT decoding may have produced as a
// float64, a string or a number.
func claimInt(claims jwt.MapClaims, key string) int {
	switch v := claims[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// userID extracts a user identifier for rate-limit keys from the session in
// context. It returns "guest" when no user is authenticated.
func userID(c echo.Context) string {
	if sess, ok := CurrentSession(c); ok && sess.UserID > 0 {
		return strconv.Itoa(sess.UserID)
	}
	return "guest"
}
