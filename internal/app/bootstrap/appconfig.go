// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level, request limits); AppConfig is everything specific to
// StaffHub. Add fields here as the application grows -- the struct is
// passed to most lifecycle hooks.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Token auth configuration
	JWTSecret string        // Secret for signing bearer tokens (must be strong in production)
	TokenTTL  time.Duration // Lifetime of issued tokens

	// Bootstrap manager account. When set, the user with this email is
	// promoted to manager on startup so a fresh deployment has someone
	// who can create projects and assignments.
	BootstrapManagerEmail string
}
