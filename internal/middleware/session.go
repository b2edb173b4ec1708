package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"  // Echo framework used for defining middleware and handlers

	"github.com/glowpoint/salon-scheduler/internal/model"
)

// sessionKey is the context key the decoded session is stored under.
const sessionKey = "session"

// SessionAuth returns an Echo middleware that reads the session cookie, checks
// the JWT inside it and injects a model.Session into the request context. The
// raw cookie value is kept on the session so the API client can forward it;
// the remote API performs its own validation on every proxied call, this
// middleware only establishes who the browsing user is.
//
// Requests without a valid session are rejected with 401 so the surface can
// redirect to login.
func SessionAuth(secret, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(cookieName)
			if err != nil || ck.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing session"})
			}

			// Parse the token using the HS256 signing method and our secret.
			// Other signing methods are rejected outright.
			tok, err := jwt.Parse(ck.Value, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			sess := model.Session{
				UserID:  claimInt(claims, "sub"),
				SalonID: claimInt(claims, "salon"),
				Cookie:  ck.Value,
			}
			if !sess.Valid() {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session lacks salon identity"})
			}
			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}

// CurrentSession returns the session injected by SessionAuth.
func CurrentSession(c echo.Context) (model.Session, bool) {
	sess, ok := c.Get(sessionKey).(model.Session)
	return sess, ok
}
