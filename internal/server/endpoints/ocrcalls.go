package endpoints

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/docparse/internal/api"
	"github.com/jackzampolin/docparse/internal/ocrcall"
	"github.com/jackzampolin/docparse/internal/svcctx"
)

// OCRCallsResponse contains a list of OCR calls.
type OCRCallsResponse struct {
	Calls []ocrcall.Call `json:"calls"`
	Total int            `json:"total"`
}

// OCRCallResponse contains a single OCR call.
type OCRCallResponse struct {
	Call *ocrcall.Call `json:"call,omitempty"`
}

// ListOCRCallsEndpoint handles GET /api/ocrcalls.
type ListOCRCallsEndpoint struct{}

var _ api.Endpoint = (*ListOCRCallsEndpoint)(nil)

func (e *ListOCRCallsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/ocrcalls", e.handler
}

func (e *ListOCRCallsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List OCR calls
//	@Description	Recent submissions to the OCR service, newest first
//	@Tags			ocrcalls
//	@Produce		json
//	@Param			success	query		bool	false	"Filter by success status (true or false)"
//	@Param			limit	query		int		false	"Max results (default 100)"
//	@Param			offset	query		int		false	"Result offset"
//	@Param			after	query		string	false	"Filter calls after this RFC3339 timestamp"
//	@Param			before	query		string	false	"Filter calls before this RFC3339 timestamp"
//	@Success		200		{object}	OCRCallsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/ocrcalls [get]
func (e *ListOCRCallsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	log := svcctx.OCRCallsFrom(r.Context())
	if log == nil {
		writeError(w, http.StatusInternalServerError, "OCR call log not available")
		return
	}

	q := r.URL.Query()
	var filter ocrcall.QueryFilter

	if v := q.Get("success"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid success filter: %q must be true or false", v))
			return
		}
		filter.Success = &b
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit: %q must be an integer", v))
			return
		}
		filter.Limit = limit
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}

	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid offset: %q must be an integer", v))
			return
		}
		filter.Offset = offset
	}

	if v := q.Get("after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid after time: %q must be RFC3339 format (e.g., 2024-01-15T00:00:00Z)", v))
			return
		}
		filter.After = &t
	}
	if v := q.Get("before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid before time: %q must be RFC3339 format (e.g., 2024-01-15T00:00:00Z)", v))
			return
		}
		filter.Before = &t
	}

	calls := log.List(filter)
	writeJSON(w, http.StatusOK, OCRCallsResponse{
		Calls: calls,
		Total: len(calls),
	})
}

func (e *ListOCRCallsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var limit, offset int
	var successOnly, failedOnly bool

	cmd := &cobra.Command{
		Use:   "ocrcalls",
		Short: "List recent OCR calls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())

			params := url.Values{}
			if successOnly {
				params.Set("success", "true")
			}
			if failedOnly {
				params.Set("success", "false")
			}
			if limit > 0 {
				params.Set("limit", strconv.Itoa(limit))
			}
			if offset > 0 {
				params.Set("offset", strconv.Itoa(offset))
			}

			path := "/api/ocrcalls"
			if len(params) > 0 {
				path += "?" + params.Encode()
			}

			var resp OCRCallsResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVar(&successOnly, "success", false, "Only show successful calls")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed calls")
	cmd.MarkFlagsMutuallyExclusive("success", "failed")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Result offset")
	return cmd
}

// GetOCRCallEndpoint handles GET /api/ocrcalls/{id}.
type GetOCRCallEndpoint struct{}

var _ api.Endpoint = (*GetOCRCallEndpoint)(nil)

func (e *GetOCRCallEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/ocrcalls/{id}", e.handler
}

func (e *GetOCRCallEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get an OCR call
//	@Description	Get a single OCR call by its request ID
//	@Tags			ocrcalls
//	@Produce		json
//	@Param			id	path		string	true	"Request ID"
//	@Success		200	{object}	OCRCallResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/ocrcalls/{id} [get]
func (e *GetOCRCallEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id required")
		return
	}

	log := svcctx.OCRCallsFrom(r.Context())
	if log == nil {
		writeError(w, http.StatusInternalServerError, "OCR call log not available")
		return
	}

	call := log.Get(id)
	if call == nil {
		writeError(w, http.StatusNotFound, "OCR call not found")
		return
	}

	writeJSON(w, http.StatusOK, OCRCallResponse{Call: call})
}

func (e *GetOCRCallEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "ocrcall <id>",
		Short: "Get an OCR call by request ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp OCRCallResponse
			if err := client.Get(cmd.Context(), "/api/ocrcalls/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp.Call)
		},
	}
}
