package endpoints

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docparse/internal/api"
	"github.com/jackzampolin/docparse/internal/svcctx"
	"github.com/jackzampolin/docparse/internal/workflow"
)

// DefaultMaxUploadBytes caps a single side's upload.
const DefaultMaxUploadBytes = 20 << 20

// withoutPreviews reports whether the caller asked to omit preview data URLs.
func withoutPreviews(r *http.Request) bool {
	return r.URL.Query().Get("previews") == "false"
}

func writeSnapshot(w http.ResponseWriter, r *http.Request, status int, snap workflow.Snapshot) {
	if withoutPreviews(r) {
		snap = snap.WithoutPreviews()
	}
	writeJSON(w, status, snap)
}

// writeWorkflowError maps workflow errors to HTTP status codes. The current
// snapshot rides along so clients can render the status text.
func writeWorkflowError(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, workflow.ErrParseInFlight):
		status = http.StatusConflict
	case errors.Is(err, workflow.ErrNotReady),
		errors.Is(err, workflow.ErrInvalidSide),
		errors.Is(err, workflow.ErrEmptyUpload):
		status = http.StatusBadRequest
	case errors.Is(err, workflow.ErrNotImage):
		status = http.StatusUnsupportedMediaType
	}

	snap := wf.Snapshot()
	if withoutPreviews(r) {
		snap = snap.WithoutPreviews()
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error(), State: &snap})
}

// workflowFrom fetches the workflow or writes a 503.
func workflowFrom(w http.ResponseWriter, r *http.Request) *workflow.Workflow {
	wf := svcctx.WorkflowFrom(r.Context())
	if wf == nil {
		writeError(w, http.StatusServiceUnavailable, "workflow not initialized")
	}
	return wf
}

// snapshotPath appends ?previews=false for CLI calls, which never render images.
func snapshotPath(path string, previews bool) string {
	if previews {
		return path
	}
	return path + "?previews=false"
}

// postSnapshotCommand builds a CLI command that POSTs to path and prints the snapshot.
func postSnapshotCommand(use, short, path string, getServerURL func() string) *cobra.Command {
	var previews bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var snap workflow.Snapshot
			if err := client.Post(cmd.Context(), snapshotPath(path, previews), nil, &snap); err != nil {
				return err
			}
			return api.Output(snap)
		},
	}
	cmd.Flags().BoolVar(&previews, "previews", false, "Include preview data URLs in the output")
	return cmd
}

// StateEndpoint handles GET /api/state.
type StateEndpoint struct{}

var _ api.Endpoint = (*StateEndpoint)(nil)

func (e *StateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/state", e.handler
}

func (e *StateEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get workflow state
//	@Description	Returns both side selections, the parsed record and the status message
//	@Tags			document
//	@Produce		json
//	@Param			previews	query		bool	false	"Set to false to omit preview data URLs"
//	@Success		200			{object}	workflow.Snapshot
//	@Failure		503			{object}	ErrorResponse
//	@Router			/api/state [get]
func (e *StateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	wf := workflowFrom(w, r)
	if wf == nil {
		return
	}
	writeSnapshot(w, r, http.StatusOK, wf.Snapshot())
}

func (e *StateEndpoint) Command(getServerURL func() string) *cobra.Command {
	var previews bool
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the current workflow state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var snap workflow.Snapshot
			if err := client.Get(cmd.Context(), snapshotPath("/api/state", previews), &snap); err != nil {
				return err
			}
			return api.Output(snap)
		},
	}
	cmd.Flags().BoolVar(&previews, "previews", false, "Include preview data URLs in the output")
	return cmd
}

// SelectEndpoint handles POST /api/sides/{side}.
type SelectEndpoint struct {
	// MaxUploadBytes bounds the request body. Zero uses DefaultMaxUploadBytes.
	MaxUploadBytes int64
}

var _ api.Endpoint = (*SelectEndpoint)(nil)

func (e *SelectEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sides/{side}", e.handler
}

func (e *SelectEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Select a document side
//	@Description	Uploads the image for one side, replacing any previous selection
//	@Tags			document
//	@Accept			mpfd
//	@Produce		json
//	@Param			side		path		string	true	"Document side"	Enums(front, back)
//	@Param			file		formData	file	true	"Image file"
//	@Param			previews	query		bool	false	"Set to false to omit preview data URLs"
//	@Success		200			{object}	workflow.Snapshot
//	@Failure		400			{object}	ErrorResponse
//	@Failure		415			{object}	ErrorResponse
//	@Failure		503			{object}	ErrorResponse
//	@Router			/api/sides/{side} [post]
func (e *SelectEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	wf := workflowFrom(w, r)
	if wf == nil {
		return
	}

	side, err := workflow.ParseSide(r.PathValue("side"))
	if err != nil {
		writeWorkflowError(w, r, wf, err)
		return
	}

	maxBytes := e.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", maxBytes))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing form file \"file\"")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read upload: %v", err))
		return
	}

	up := workflow.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	if err := wf.Select(side, up); err != nil {
		writeWorkflowError(w, r, wf, err)
		return
	}
	writeSnapshot(w, r, http.StatusOK, wf.Snapshot())
}

func (e *SelectEndpoint) Command(getServerURL func() string) *cobra.Command {
	var previews bool
	cmd := &cobra.Command{
		Use:   "select <front|back> <image>",
		Short: "Choose the image for one side of the document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			side, err := workflow.ParseSide(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer f.Close()

			client := api.NewClient(getServerURL())
			var snap workflow.Snapshot
			path := snapshotPath("/api/sides/"+string(side), previews)
			if err := client.PostFile(cmd.Context(), path, "file", filepath.Base(args[1]), f, &snap); err != nil {
				return err
			}
			return api.Output(snap)
		},
	}
	cmd.Flags().BoolVar(&previews, "previews", false, "Include preview data URLs in the output")
	return cmd
}

// ParseEndpoint handles POST /api/parse.
type ParseEndpoint struct{}

var _ api.Endpoint = (*ParseEndpoint)(nil)

func (e *ParseEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/parse", e.handler
}

func (e *ParseEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Parse the document
//	@Description	Submits both sides to the OCR service and waits for the result. OCR failures are reported in the status text.
//	@Tags			document
//	@Produce		json
//	@Param			previews	query		bool	false	"Set to false to omit preview data URLs"
//	@Success		200			{object}	workflow.Snapshot
//	@Failure		400			{object}	ErrorResponse	"Both sides are not selected"
//	@Failure		409			{object}	ErrorResponse	"A parse is already running"
//	@Failure		503			{object}	ErrorResponse
//	@Router			/api/parse [post]
func (e *ParseEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	wf := workflowFrom(w, r)
	if wf == nil {
		return
	}
	if err := wf.Parse(r.Context()); err != nil {
		writeWorkflowError(w, r, wf, err)
		return
	}
	writeSnapshot(w, r, http.StatusOK, wf.Snapshot())
}

func (e *ParseEndpoint) Command(getServerURL func() string) *cobra.Command {
	return postSnapshotCommand("parse", "Send both sides to the OCR service", "/api/parse", getServerURL)
}

// SaveEndpoint handles POST /api/save.
type SaveEndpoint struct{}

var _ api.Endpoint = (*SaveEndpoint)(nil)

func (e *SaveEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/save", e.handler
}

func (e *SaveEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Save the parsed record
//	@Description	Persists the current record. Without a record the status reports there is nothing to save.
//	@Tags			document
//	@Produce		json
//	@Param			previews	query		bool	false	"Set to false to omit preview data URLs"
//	@Success		200			{object}	workflow.Snapshot
//	@Failure		500			{object}	ErrorResponse
//	@Failure		503			{object}	ErrorResponse
//	@Router			/api/save [post]
func (e *SaveEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	wf := workflowFrom(w, r)
	if wf == nil {
		return
	}
	if err := wf.Save(r.Context()); err != nil {
		writeWorkflowError(w, r, wf, err)
		return
	}
	writeSnapshot(w, r, http.StatusOK, wf.Snapshot())
}

func (e *SaveEndpoint) Command(getServerURL func() string) *cobra.Command {
	return postSnapshotCommand("save", "Persist the parsed record", "/api/save", getServerURL)
}

// ResetEndpoint handles POST /api/reset.
type ResetEndpoint struct{}

var _ api.Endpoint = (*ResetEndpoint)(nil)

func (e *ResetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/reset", e.handler
}

func (e *ResetEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Clear the parsed record
//	@Description	Removes the record from memory and from the store. Safe to repeat.
//	@Tags			document
//	@Produce		json
//	@Param			previews	query		bool	false	"Set to false to omit preview data URLs"
//	@Success		200			{object}	workflow.Snapshot
//	@Failure		500			{object}	ErrorResponse
//	@Failure		503			{object}	ErrorResponse
//	@Router			/api/reset [post]
func (e *ResetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	wf := workflowFrom(w, r)
	if wf == nil {
		return
	}
	if err := wf.Reset(r.Context()); err != nil {
		writeWorkflowError(w, r, wf, err)
		return
	}
	writeSnapshot(w, r, http.StatusOK, wf.Snapshot())
}

func (e *ResetEndpoint) Command(getServerURL func() string) *cobra.Command {
	return postSnapshotCommand("reset", "Clear the parsed record", "/api/reset", getServerURL)
}
