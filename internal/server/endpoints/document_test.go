package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/docparse/internal/api"
	"github.com/jackzampolin/docparse/internal/ocrcall"
	"github.com/jackzampolin/docparse/internal/store"
	"github.com/jackzampolin/docparse/internal/submit"
	"github.com/jackzampolin/docparse/internal/svcctx"
	"github.com/jackzampolin/docparse/internal/testutil"
	"github.com/jackzampolin/docparse/internal/workflow"
)

// stubSubmitter answers Submit with a fixed response, optionally holding
// until release is closed.
type stubSubmitter struct {
	resp    *submit.Response
	err     error
	started chan struct{}
	release chan struct{}
}

func (s *stubSubmitter) Submit(ctx context.Context, parts ...submit.Part) (*submit.Response, error) {
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.resp, s.err
}

func okResponse() *submit.Response {
	return &submit.Response{
		Details: &submit.Details{
			Name:        "Asha Rao",
			DateOfBirth: "01/02/1990",
			Gender:      "Female",
			Address:     "12 MG Road, Pune",
			Pincode:     "411001",
		},
		Message:    "Document parsed successfully",
		StatusCode: http.StatusOK,
	}
}

type testEnv struct {
	handler  http.Handler
	workflow *workflow.Workflow
	store    *store.MemoryStore
	calls    *ocrcall.Log
}

func newTestEnv(t *testing.T, sub workflow.Submitter, cfg Config) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	calls := ocrcall.NewLog(10)
	recorder := ocrcall.NewRecorder(sub, calls, testutil.Logger())
	wf := workflow.New(workflow.Config{Submitter: recorder, Store: st, Logger: testutil.Logger()})
	if err := wf.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	reg := api.MustNewRegistry(All(cfg)...)
	mux := http.NewServeMux()
	reg.RegisterRoutes(mux, func(h http.HandlerFunc) http.HandlerFunc { return h })

	services := &svcctx.Services{Workflow: wf, Store: st, OCRCalls: calls, Logger: testutil.Logger()}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(svcctx.WithServices(r.Context(), services)))
	})
	return &testEnv{handler: handler, workflow: wf, store: st, calls: calls}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) post(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, httptest.NewRequest(http.MethodPost, path, nil))
}

func (e *testEnv) upload(t *testing.T, side, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, uploadRequest(t, "/api/sides/"+side, filename, contentType, data))
}

func uploadRequest(t *testing.T, path, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("part.Write() error = %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("mw.Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) workflow.Snapshot {
	t.Helper()
	var snap workflow.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v (body %q)", err, rec.Body.String())
	}
	return snap
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

func TestStateEndpoint(t *testing.T) {
	env := newTestEnv(t, &stubSubmitter{resp: okResponse()}, Config{})

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	snap := decodeSnapshot(t, rec)
	if snap.Status != workflow.StatusIdle {
		t.Errorf("Status = %q, want %q", snap.Status, workflow.StatusIdle)
	}
	if snap.CanParse {
		t.Error("CanParse = true, want false")
	}
	if snap.Front.State != workflow.SlotEmpty || snap.Back.State != workflow.SlotEmpty {
		t.Errorf("slots = %q/%q, want empty", snap.Front.State, snap.Back.State)
	}
	if snap.Record != nil {
		t.Errorf("Record = %+v, want nil", snap.Record)
	}
}

func TestSelectEndpoint(t *testing.T) {
	t.Run("stores preview", func(t *testing.T) {
		env := newTestEnv(t, &stubSubmitter{resp: okResponse()}, Config{})

		rec := env.upload(t, "front", "front.png", "image/png", testutil.PNG)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		snap := decodeSnapshot(t, rec)
		if snap.Front.State != workflow.SlotSelected {
			t.Errorf("Front.State = %q, want selected", snap.Front.State)
		}
		if snap.Front.Filename != "front.png" {
			t.Errorf("Front.Filename = %q, want front.png", snap.Front.Filename)
		}
		if !strings.HasPrefix(snap.Front.Preview, "data:image/png;base64,") {
			t.Errorf("Front.Preview = %q, want png data URL", snap.Front.Preview)
		}
		if snap.CanParse {
			t.Error("CanParse = true with one side selected")
		}
	})

	t.Run("side is case insensitive", func(t *testing.T) {
		env := newTestEnv(t, &stubSubmitter{resp: okResponse()}, Config{})
		rec := env.upload(t, "BACK", "back.jpg", "image/jpeg", testutil.JPEG)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if snap := decodeSnapshot(t, rec); snap.Back.State != workflow.SlotSelected {
			t.Errorf("Back.State = %q, want selected", snap.Back.State)
		}
	})

	t.Run("previews=false omits data URLs", func(t *testing.T) {
		env := newTestEnv(t, &stubSubmitter{resp: okResponse()}, Config{})
		req := uploadRequest(t, "/api/sides/front?previews=false", "front.png", "image/png", testutil.PNG)
		rec := env.do(t, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		snap := decodeSnapshot(t, rec)
		if snap.Front.Preview != "" {
			t.Errorf("Front.Preview = %q, want empty", snap.Front.Preview)
		}
		if snap.Front.Size != len(testutil.PNG) {
			t.Errorf("Front.Size = %d, want %d", snap.Front.Size, len(testutil.PNG))
		}
	})

	tests := []struct {
		name        string
		side        string
		contentType string
		data        []byte
		wantStatus  int
	}{
		{"unknown side", "middle", "image/png", testutil.PNG, http.StatusBadRequest},
		{"not an image", "front", "text/plain", []byte("hello, world"), http.StatusUnsupportedMediaType},
		{"empty file", "front", "image/png", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &stubSubmitter{resp: okResponse()}, Config{})
			rec := env.upload(t, tt.side, "file", tt.contentType, tt.data)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if resp := decodeError(t, rec); resp.Error == "" {
				t.Error("Error is empty")
			}
			if env.workflow.State().Front.State != workflow.SlotEmpty {
				t.Error("front slot changed after rejected upload")
			}
		})
	}

	t.Run("missing file field", func(t *testing.T) {
		env := newTestEnv(t, &stubSubmitter{resp: okResponse()}, Config{})
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		_ = mw.WriteField("other", "value")
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/api/sides/front", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		if rec := env.do(t, req); rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("too large", func(t *testing.T) {
		env := newTestEnv(t, &stubSubmitter{resp: okResponse()}, Config{MaxUploadBytes: 256})
		big := append(append([]byte{}, testutil.PNG...), make([]byte, 4096)...)
		rec := env.upload(t, "front", "big.png", "image/png", big)
		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
		}
	})
}

func selectBoth(t *testing.T, env *testEnv) {
	t.Helper()
	if rec := env.upload(t, "front", "front.png", "image/png", testutil.PNG); rec.Code != http.StatusOK {
		t.Fatalf("select front status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := env.upload(t, "back", "back.jpg", "image/jpeg", testutil.JPEG); rec.Code != http.StatusOK {
		t.Fatalf("select back status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestParseEndpoint(t *testing.T) {
	t.Run("not ready", func(t *testing.T) {
		env := newTestEnv(t, &stubSubmitter{resp: okResponse()}, Config{})
		rec := env.post(t, "/api/parse")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		resp := decodeError(t, rec)
		if resp.State == nil {
			t.Fatal("State is nil, want snapshot")
		}
		if resp.State.Status != workflow.StatusIdle {
			t.Errorf("State.Status = %q, want idle prompt", resp.State.Status)
		}
	})

	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t, &stubSubmitter{resp: okResponse()}, Config{})
		selectBoth(t, env)

		rec := env.post(t, "/api/parse")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		snap := decodeSnapshot(t, rec)
		if snap.Phase != workflow.PhaseSuccess {
			t.Errorf("Phase = %q, want success", snap.Phase)
		}
		if snap.Status != "Document parsed successfully" {
			t.Errorf("Status = %q", snap.Status)
		}
		if len(snap.Fields) != 5 {
			t.Fatalf("len(Fields) = %d, want 5", len(snap.Fields))
		}
		if snap.Fields[0].Label != "Name" || snap.Fields[0].Value != "Asha Rao" {
			t.Errorf("Fields[0] = %+v", snap.Fields[0])
		}
		if env.store.WriteCount() != 0 {
			t.Error("parse wrote to the store")
		}
	})

	t.Run("service failure is a 200 with failure status", func(t *testing.T) {
		sub := &stubSubmitter{resp: &submit.Response{Message: "Image too blurry", StatusCode: http.StatusUnprocessableEntity}}
		env := newTestEnv(t, sub, Config{})
		selectBoth(t, env)

		rec := env.post(t, "/api/parse")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		snap := decodeSnapshot(t, rec)
		if snap.Status != workflow.FailurePrefix+"Image too blurry" {
			t.Errorf("Status = %q", snap.Status)
		}
		if snap.Phase != workflow.PhaseFailed {
			t.Errorf("Phase = %q, want failed", snap.Phase)
		}
	})

	t.Run("transport error", func(t *testing.T) {
		env := newTestEnv(t, &stubSubmitter{err: submit.ErrTransport}, Config{})
		selectBoth(t, env)

		rec := env.post(t, "/api/parse")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if snap := decodeSnapshot(t, rec); snap.Status != workflow.StatusError {
			t.Errorf("Status = %q, want %q", snap.Status, workflow.StatusError)
		}
	})

	t.Run("in flight", func(t *testing.T) {
		sub := &stubSubmitter{
			resp:    okResponse(),
			started: make(chan struct{}),
			release: make(chan struct{}),
		}
		env := newTestEnv(t, sub, Config{})
		selectBoth(t, env)

		first := make(chan *httptest.ResponseRecorder, 1)
		go func() {
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/parse", nil))
			first <- rec
		}()

		select {
		case <-sub.started:
		case <-time.After(5 * time.Second):
			t.Fatal("first parse never reached the submitter")
		}

		rec := env.post(t, "/api/parse")
		if rec.Code != http.StatusConflict {
			t.Errorf("second parse status = %d, want %d", rec.Code, http.StatusConflict)
		}

		state := decodeSnapshot(t, env.do(t, httptest.NewRequest(http.MethodGet, "/api/state", nil)))
		if state.Status != workflow.StatusProcessing {
			t.Errorf("Status during parse = %q, want %q", state.Status, workflow.StatusProcessing)
		}
		if state.CanParse {
			t.Error("CanParse = true during parse")
		}

		close(sub.release)
		select {
		case rec := <-first:
			if rec.Code != http.StatusOK {
				t.Errorf("first parse status = %d, want %d", rec.Code, http.StatusOK)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("first parse did not finish")
		}
	})
}

func TestSaveResetEndpoints(t *testing.T) {
	t.Run("nothing to save", func(t *testing.T) {
		env := newTestEnv(t, &stubSubmitter{resp: okResponse()}, Config{})
		rec := env.post(t, "/api/save")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if snap := decodeSnapshot(t, rec); snap.Status != workflow.StatusNothingToSave {
			t.Errorf("Status = %q, want %q", snap.Status, workflow.StatusNothingToSave)
		}
		if env.store.WriteCount() != 0 {
			t.Error("empty save wrote to the store")
		}
	})

	t.Run("save then reset", func(t *testing.T) {
		env := newTestEnv(t, &stubSubmitter{resp: okResponse()}, Config{})
		selectBoth(t, env)
		env.post(t, "/api/parse")

		rec := env.post(t, "/api/save")
		if rec.Code != http.StatusOK {
			t.Fatalf("save status = %d", rec.Code)
		}
		if snap := decodeSnapshot(t, rec); snap.Status != workflow.StatusSaved {
			t.Errorf("Status = %q, want %q", snap.Status, workflow.StatusSaved)
		}
		if !env.store.Has(workflow.DefaultKey) {
			t.Fatal("record not persisted")
		}

		rec = env.post(t, "/api/reset")
		if rec.Code != http.StatusOK {
			t.Fatalf("reset status = %d", rec.Code)
		}
		snap := decodeSnapshot(t, rec)
		if snap.Status != workflow.StatusCleared {
			t.Errorf("Status = %q, want %q", snap.Status, workflow.StatusCleared)
		}
		if snap.Record != nil || len(snap.Fields) != 0 {
			t.Errorf("record still present after reset: %+v", snap.Record)
		}
		if env.store.Has(workflow.DefaultKey) {
			t.Error("record still stored after reset")
		}
		// Selections survive a reset.
		if !snap.CanParse {
			t.Error("CanParse = false after reset, want true")
		}
	})

	t.Run("store failure", func(t *testing.T) {
		env := newTestEnv(t, &stubSubmitter{resp: okResponse()}, Config{})
		selectBoth(t, env)
		env.post(t, "/api/parse")
		env.store.SetErr = errors.New("disk full")

		rec := env.post(t, "/api/save")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
		}
		resp := decodeError(t, rec)
		if resp.State == nil || resp.State.Status != workflow.StatusSaveFailed {
			t.Errorf("State = %+v, want status %q", resp.State, workflow.StatusSaveFailed)
		}
	})
}

func TestWriteWorkflowError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{workflow.ErrParseInFlight, http.StatusConflict},
		{workflow.ErrNotReady, http.StatusBadRequest},
		{workflow.ErrInvalidSide, http.StatusBadRequest},
		{workflow.ErrEmptyUpload, http.StatusBadRequest},
		{workflow.ErrNotImage, http.StatusUnsupportedMediaType},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	wf := workflow.New(workflow.Config{Store: store.NewMemoryStore(), Logger: testutil.Logger()})
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeWorkflowError(rec, httptest.NewRequest(http.MethodGet, "/", nil), wf, tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestWorkflowMissing(t *testing.T) {
	rec := httptest.NewRecorder()
	(&StateEndpoint{}).handler(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
