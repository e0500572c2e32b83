package endpoints

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docparse/internal/api"
	"github.com/jackzampolin/docparse/web"
)

// StaticEndpoint serves the embedded web page and its assets.
// Unknown non-API paths get index.html; unknown /api/ paths get a JSON 404.
type StaticEndpoint struct{}

var _ api.Endpoint = (*StaticEndpoint)(nil)

func (e *StaticEndpoint) Route() (string, string, http.HandlerFunc) {
	// Go 1.22 wildcard pattern catches all unmatched GET requests
	return "GET", "/{path...}", e.handler
}

func (e *StaticEndpoint) RequiresInit() bool {
	return false
}

func (e *StaticEndpoint) Command(_ func() string) *cobra.Command {
	return nil // No CLI command for static files
}

func (e *StaticEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "no such endpoint: "+r.URL.Path)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/")
	if name != web.IndexFile && web.Has(name) {
		assets, err := web.Assets()
		if err != nil {
			http.Error(w, "Frontend not available", http.StatusInternalServerError)
			return
		}
		http.FileServer(http.FS(assets)).ServeHTTP(w, r)
		return
	}

	index, err := web.Index()
	if err != nil {
		http.Error(w, "Frontend not available", http.StatusInternalServerError)
		return
	}

	// The page polls /api/state; never serve a stale copy.
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(index)
}
