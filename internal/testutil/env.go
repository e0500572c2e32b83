package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"
)

// Minimal headers that http.DetectContentType recognises as images.
var (
	PNG  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")
	JPEG = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01")
)

// Logger returns a logger that discards output unless testing.Verbose().
func Logger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FakeOCR is an httptest server standing in for the OCR service.
type FakeOCR struct {
	*httptest.Server

	mu       sync.Mutex
	status   int
	body     string
	requests int
	parts    []string
}

// NewFakeOCR starts a fake OCR service answering POST /api/submit with
// status and body. It is closed when the test ends.
func NewFakeOCR(t *testing.T, status int, body string) *FakeOCR {
	t.Helper()
	f := &FakeOCR{status: status, body: body}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

// Respond changes the canned response.
func (f *FakeOCR) Respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.body = body
}

// Requests returns how many submissions were received.
func (f *FakeOCR) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// Parts returns the multipart part names of the last submission.
func (f *FakeOCR) Parts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.parts...)
}

func (f *FakeOCR) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/api/submit" {
		http.NotFound(w, r)
		return
	}

	var parts []string
	if err := r.ParseMultipartForm(32 << 20); err == nil {
		for _, name := range []string{"front", "back"} {
			if _, ok := r.MultipartForm.File[name]; ok {
				parts = append(parts, name)
			}
		}
	}

	f.mu.Lock()
	f.requests++
	f.parts = parts
	status, body := f.status, f.body
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// SuccessBody is a well-formed OCR success response.
const SuccessBody = `{"details":{"name":"Asha Rao","dateOfBirth":"01/02/1990","gender":"Female","address":"12 MG Road, Pune","pincode":"411001"},"message":"Document parsed successfully"}`

// WaitForServer polls url+"/health" until it answers 200.
func WaitForServer(url string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url + "/health")
		if err == nil {
			var health struct {
				Status string `json:"status"`
			}
			decodeErr := json.NewDecoder(resp.Body).Decode(&health)
			resp.Body.Close()
			if decodeErr == nil && resp.StatusCode == http.StatusOK && health.Status == "ok" {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server not ready after %v", timeout)
}

// WaitForShutdown waits for a channel to receive a value or timeout.
func WaitForShutdown(done <-chan error, timeout time.Duration) error {
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for shutdown")
	}
}

// FindFreePort finds an available TCP port and returns it as a string.
func FindFreePort() (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer listener.Close()
	return fmt.Sprintf("%d", listener.Addr().(*net.TCPAddr).Port), nil
}

// StartServer is a helper type for managing server lifecycle in tests.
// Usage:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	done := make(chan error, 1)
//	go func() { done <- srv.Start(ctx) }()
//	starter := testutil.StartServer{Cancel: cancel, Done: done}
//	t.Cleanup(starter.Stop)
type StartServer struct {
	Cancel context.CancelFunc
	Done   <-chan error
}

// Stop cancels the server context and waits for shutdown.
func (s *StartServer) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
	if s.Done != nil {
		<-s.Done
	}
}
