// Package api pairs each HTTP route with the CLI command that calls it, and
// holds the client and output helpers those commands share.
package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Endpoint is one server operation, exposed as a route and usually as a
// `docparse api` subcommand.
type Endpoint interface {
	// Route returns the method, ServeMux path pattern and handler.
	Route() (method, path string, handler http.HandlerFunc)

	// RequiresInit reports whether the handler must wait until the saved
	// record has been restored.
	RequiresInit() bool

	// Command builds the CLI command, or returns nil when the endpoint has
	// none. serverURL is resolved when the command runs, after flags parse.
	Command(serverURL func() string) *cobra.Command
}

// Middleware wraps a handler.
type Middleware func(http.HandlerFunc) http.HandlerFunc
