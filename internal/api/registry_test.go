package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
)

type fakeEndpoint struct {
	method, path string
	init         bool
	cmd          string
}

func (e *fakeEndpoint) Route() (string, string, http.HandlerFunc) {
	return e.method, e.path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (e *fakeEndpoint) RequiresInit() bool { return e.init }

func (e *fakeEndpoint) Command(serverURL func() string) *cobra.Command {
	if e.cmd == "" {
		return nil
	}
	return &cobra.Command{Use: e.cmd, RunE: func(*cobra.Command, []string) error { return nil }}
}

func TestNewRegistry_DuplicateRoute(t *testing.T) {
	_, err := NewRegistry(
		&fakeEndpoint{method: "GET", path: "/a"},
		&fakeEndpoint{method: "POST", path: "/a"},
		&fakeEndpoint{method: "GET", path: "/a"},
	)
	if err == nil {
		t.Fatal("NewRegistry() error = nil, want duplicate route error")
	}
}

func TestMustNewRegistry_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNewRegistry() did not panic on duplicate route")
		}
	}()
	MustNewRegistry(&fakeEndpoint{method: "GET", path: "/a"}, &fakeEndpoint{method: "GET", path: "/a"})
}

func TestRegistry_RegisterRoutes(t *testing.T) {
	reg := MustNewRegistry(
		&fakeEndpoint{method: "GET", path: "/open"},
		&fakeEndpoint{method: "GET", path: "/guarded", init: true},
	)

	var wrapped int
	mux := http.NewServeMux()
	reg.RegisterRoutes(mux, func(next http.HandlerFunc) http.HandlerFunc {
		wrapped++
		return func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})
	if wrapped != 1 {
		t.Fatalf("middleware applied %d times, want 1", wrapped)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/open", http.StatusNoContent},
		{"/guarded", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestRegistry_BuildCommands(t *testing.T) {
	reg := MustNewRegistry(
		&fakeEndpoint{method: "GET", path: "/state", cmd: "state"},
		&fakeEndpoint{method: "GET", path: "/{path...}"},
		&fakeEndpoint{method: "POST", path: "/parse", cmd: "parse"},
	)

	root := reg.BuildCommands(func() string { return "http://example.invalid" })
	if root.Use != "api" {
		t.Errorf("Use = %q, want api", root.Use)
	}
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	if len(names) != 2 || names[0] != "parse" || names[1] != "state" {
		t.Errorf("commands = %v, want [parse state]", names)
	}

	routes := reg.Routes()
	want := []string{"GET /state", "GET /{path...}", "POST /parse"}
	if len(routes) != len(want) {
		t.Fatalf("Routes() = %v, want %v", routes, want)
	}
	for i := range want {
		if routes[i] != want[i] {
			t.Errorf("Routes()[%d] = %q, want %q", i, routes[i], want[i])
		}
	}
	if len(reg.Endpoints()) != 3 {
		t.Errorf("Endpoints() len = %d, want 3", len(reg.Endpoints()))
	}
}
