// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for EventHub.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// framework-level settings (ports, TLS, log level); AppConfig is
// everything specific to this application.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // secret for signing session cookies
	SessionName   string // cookie name
	SessionDomain string // cookie domain (blank means current host)

	// Base URL of this deployment, used to build the Google OAuth
	// callback URL.
	BaseURL string

	// Google OAuth configuration. Both blank disables the Google
	// sign-in button.
	GoogleClientID     string
	GoogleClientSecret string

	// Shared secret for the admin bootstrap API (X-Admin-Secret).
	// Blank disables the endpoint.
	AdminSecret string

	// Origins allowed to call the public JSON API cross-origin.
	// Empty means any origin.
	CORSAllowedOrigins []string

	// Capacity of the in-memory request performance ring buffer.
	PerfLogCapacity int
}
