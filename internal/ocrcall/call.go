// Package ocrcall records OCR submissions for traceability.
// Every call to the OCR service is kept with its request ID, outcome and latency.
package ocrcall

import (
	"time"

	"github.com/jackzampolin/docparse/internal/submit"
)

// Call represents a recorded OCR submission.
type Call struct {
	// ID is the request ID sent as X-Request-ID, or a fresh one on transport failure
	ID string `json:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp"`
	LatencyMs int       `json:"latency_ms"`

	// Request
	Parts []string `json:"parts"`
	Bytes int      `json:"bytes"`

	// Response
	StatusCode int    `json:"status_code,omitempty"`
	Message    string `json:"message,omitempty"`

	// Status
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// FromResult builds a Call from one Submit outcome.
func FromResult(id string, started time.Time, latency time.Duration, parts []submit.Part, resp *submit.Response, err error) *Call {
	call := &Call{
		ID:        id,
		Timestamp: started,
		LatencyMs: int(latency.Milliseconds()),
		Parts:     make([]string, 0, len(parts)),
	}
	for _, p := range parts {
		call.Parts = append(call.Parts, p.Name)
		call.Bytes += len(p.Data)
	}

	if err != nil {
		call.Error = err.Error()
		return call
	}
	if resp != nil {
		if resp.RequestID != "" {
			call.ID = resp.RequestID
		}
		call.StatusCode = resp.StatusCode
		call.Message = resp.Message
		call.Success = resp.OK()
	}
	return call
}
