package api

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// Registry is an ordered set of endpoints with unique routes.
type Registry struct {
	endpoints []Endpoint
	routes    map[string]struct{}
}

// NewRegistry registers eps in order. It fails when two endpoints claim the
// same method and path, which ServeMux would otherwise reject with a panic.
func NewRegistry(eps ...Endpoint) (*Registry, error) {
	r := &Registry{routes: make(map[string]struct{}, len(eps))}
	for _, ep := range eps {
		if err := r.Register(ep); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for package init, where the endpoint list
// is fixed at compile time.
func MustNewRegistry(eps ...Endpoint) *Registry {
	r, err := NewRegistry(eps...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register appends ep.
func (r *Registry) Register(ep Endpoint) error {
	method, path, _ := ep.Route()
	key := method + " " + path
	if _, dup := r.routes[key]; dup {
		return fmt.Errorf("duplicate route %q", key)
	}
	r.routes[key] = struct{}{}
	r.endpoints = append(r.endpoints, ep)
	return nil
}

// RegisterRoutes mounts every endpoint on mux. Endpoints that require init
// are wrapped with requireInit.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, requireInit Middleware) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		if ep.RequiresInit() && requireInit != nil {
			handler = requireInit(handler)
		}
		mux.HandleFunc(method+" "+path, handler)
	}
}

// BuildCommands returns the `api` command with one subcommand per endpoint
// that has one.
func (r *Registry) BuildCommands(serverURL func() string) *cobra.Command {
	apiCmd := &cobra.Command{
		Use:   "api",
		Short: "Commands that call the running server",
		Long: `API commands call a running docparse server over HTTP.

Start one with "docparse serve" and point at it with --server.

Examples:
  docparse api state                    # Show the current workflow
  docparse api select front front.jpg   # Choose the front image
  docparse api select back back.jpg     # Choose the back image
  docparse api parse                    # Send both sides for OCR
  docparse api save                     # Persist the parsed record
  docparse api ocrcalls --failed        # Inspect failed OCR requests`,
	}

	for _, ep := range r.endpoints {
		if cmd := ep.Command(serverURL); cmd != nil {
			apiCmd.AddCommand(cmd)
		}
	}
	return apiCmd
}

// Endpoints returns the registered endpoints in order.
func (r *Registry) Endpoints() []Endpoint {
	return r.endpoints
}

// Routes returns "METHOD path" for every endpoint, in registration order.
func (r *Registry) Routes() []string {
	routes := make([]string, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		method, path, _ := ep.Route()
		routes = append(routes, method+" "+path)
	}
	return routes
}
