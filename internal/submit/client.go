// Package submit sends document images to the remote OCR service.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SubmitPath is the endpoint path appended to the configured base URL.
const SubmitPath = "/api/submit"

// RequestIDHeader carries the id used to correlate diagnostic logs.
const RequestIDHeader = "X-Request-ID"

// ErrTransport wraps failures that prevented any HTTP response from arriving.
var ErrTransport = errors.New("ocr request failed")

// TransportError is returned when no response arrived. It carries the
// request ID that was sent so the failure can be matched to logs.
type TransportError struct {
	RequestID string
	Err       error
}

func (e *TransportError) Error() string {
	return ErrTransport.Error() + ": " + e.Err.Error()
}

// Unwrap matches both ErrTransport and the underlying cause.
func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// ErrUnknownPart is returned for part names other than front and back.
var ErrUnknownPart = errors.New("unknown part name")

// Config holds configuration for the submission client.
type Config struct {
	// BaseURL is the OCR service root, e.g. http://localhost:4000.
	// An empty value is accepted; requests then fail at the transport.
	BaseURL string
	// Timeout bounds each request; zero keeps the transport default
	Timeout time.Duration
	// HTTPClient overrides the client used for requests
	HTTPClient *http.Client
	// Logger receives raw responses and errors
	Logger *slog.Logger
}

// Client posts document images to the OCR service.
// No retries and no authentication.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a new submission client.
func NewClient(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  httpClient,
		logger:  cfg.Logger,
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Submit sends the given parts as multipart/form-data to <base>/api/submit.
//
// A response is returned whenever the server answered, successful or not.
// An error is returned only when no response arrived (wrapping ErrTransport)
// or the payload could not be built.
func (c *Client) Submit(ctx context.Context, parts ...Part) (*Response, error) {
	body, contentType, err := buildMultipart(parts)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logger := c.logger.With("request_id", requestID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SubmitPath, body)
	if err != nil {
		logger.Warn("failed to create ocr request", "error", err)
		return nil, &TransportError{RequestID: requestID, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		logger.Warn("ocr request failed", "url", req.URL.String(), "error", err)
		return nil, &TransportError{RequestID: requestID, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("failed to read ocr response", "status", resp.StatusCode, "error", err)
		return nil, &TransportError{RequestID: requestID, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	logger.Debug("ocr response",
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"body", string(raw))

	out := &Response{StatusCode: resp.StatusCode, RequestID: requestID}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		out.Message = messageOf(raw)
		logger.Warn("ocr service returned an error", "status", resp.StatusCode, "message", out.Message)
		return out, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		logger.Warn("failed to decode ocr response", "status", resp.StatusCode, "error", err)
		// Mistyped details still leave the service's message usable.
		return &Response{
			StatusCode: resp.StatusCode,
			RequestID:  requestID,
			Message:    messageOf(raw),
		}, nil
	}
	return out, nil
}

// messageOf extracts a top-level "message" string, or "" when there is none.
func messageOf(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return body.Message
}

func buildMultipart(parts []Part) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range parts {
		if p.Name != PartFront && p.Name != PartBack {
			return nil, "", fmt.Errorf("%w: %q", ErrUnknownPart, p.Name)
		}

		filename := p.Filename
		if filename == "" {
			filename = p.Name
		}
		contentType := p.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(p.Name), escapeQuotes(filename)))
		h.Set("Content-Type", contentType)

		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part %s: %w", p.Name, err)
		}
		if _, err := pw.Write(p.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write part %s: %w", p.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
