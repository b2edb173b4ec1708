package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The service owns no database; the only mandatory
// remote is the salon REST API every request is proxied to.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	APIBaseURL    string // base URL of the remote salon API
	SessionCookie string // name of the session cookie forwarded to the API
	JWTSecret     string // secret used to verify the session JWT's signature
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:           must("APP_ENV"),                       // environment (dev/test/prod)
		Port:          must("APP_PORT"),                      // port to bind the HTTP server
		APIBaseURL:    must("API_BASE_URL"),                  // remote salon API root
		SessionCookie: getenv("SESSION_COOKIE", "sessionid"), // cookie carrying the session token
		JWTSecret:     must("JWT_SECRET"),                    // secret for verifying session tokens
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
