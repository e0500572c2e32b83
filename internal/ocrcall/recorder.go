package ocrcall

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/docparse/internal/submit"
)

// Submitter sends document images to the OCR service.
type Submitter interface {
	Submit(ctx context.Context, parts ...submit.Part) (*submit.Response, error)
}

// Recorder wraps a Submitter and logs every call it makes.
// Recording never changes the outcome seen by the caller.
type Recorder struct {
	next   Submitter
	log    *Log
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder wraps next, recording into log.
func NewRecorder(next Submitter, log *Log, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{next: next, log: log, logger: logger, now: time.Now}
}

// Submit forwards to the wrapped Submitter and records the outcome.
func (r *Recorder) Submit(ctx context.Context, parts ...submit.Part) (*submit.Response, error) {
	started := r.now()
	resp, err := r.next.Submit(ctx, parts...)
	latency := r.now().Sub(started)

	call := FromResult(requestIDOf(err), started, latency, parts, resp, err)
	if r.log != nil {
		r.log.Add(*call)
	}
	r.logger.Debug("ocr call recorded",
		"id", call.ID,
		"success", call.Success,
		"status_code", call.StatusCode,
		"latency_ms", call.LatencyMs)

	return resp, err
}

// requestIDOf returns the request ID a transport failure was sent with, or a
// fresh one when the request was never built.
func requestIDOf(err error) string {
	var te *submit.TransportError
	if errors.As(err, &te) && te.RequestID != "" {
		return te.RequestID
	}
	return uuid.NewString()
}

// Log returns the log calls are recorded into.
func (r *Recorder) Log() *Log {
	return r.log
}
