package endpoints

import (
	"github.com/jackzampolin/docparse/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	// MaxUploadBytes bounds a single side's upload (0 = DefaultMaxUploadBytes).
	MaxUploadBytes int64
	// SwaggerHost is reported as the host in /swagger.json.
	SwaggerHost string
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},

		// Document workflow endpoints
		&StateEndpoint{},
		&SelectEndpoint{MaxUploadBytes: cfg.MaxUploadBytes},
		&ParseEndpoint{},
		&SaveEndpoint{},
		&ResetEndpoint{},

		// OCR call history
		&ListOCRCallsEndpoint{},
		&GetOCRCallEndpoint{},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{Host: cfg.SwaggerHost},
		&SwaggerUIEndpoint{},

		// Static files (catch-all, must be last)
		&StaticEndpoint{},
	}
}
