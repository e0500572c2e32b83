package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackzampolin/docparse/internal/store"
	"github.com/jackzampolin/docparse/internal/submit"
)

var (
	// ErrNotReady is returned by Parse until both sides are selected.
	ErrNotReady = errors.New("both front and back must be selected before parsing")
	// ErrParseInFlight is returned by Parse while a submission is running.
	ErrParseInFlight = errors.New("a parse is already in progress")
)

// Submitter sends document images to the OCR service.
// *submit.Client satisfies it.
type Submitter interface {
	Submit(ctx context.Context, parts ...submit.Part) (*submit.Response, error)
}

// Config configures a Workflow.
type Config struct {
	Submitter Submitter
	Store     store.Store
	// Key is the store key for the saved record. Defaults to DefaultKey.
	Key    string
	Logger *slog.Logger
}

// Workflow owns the state machine and runs its effects.
// It is safe for concurrent use; transitions are serialised.
type Workflow struct {
	mu    sync.Mutex
	state State

	submitter Submitter
	store     store.Store
	key       string
	logger    *slog.Logger
}

// New creates a workflow in the initial state. Call Init to load any saved record.
func New(cfg Config) *Workflow {
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		state:     InitialState(),
		submitter: cfg.Submitter,
		store:     cfg.Store,
		key:       key,
		logger:    logger.With("component", "workflow"),
	}
}

// Init loads the saved record, if any. A missing or malformed record leaves
// the idle prompt in place; only store read failures are returned.
func (w *Workflow) Init(ctx context.Context) error {
	return w.run(ctx, w.dispatch(Initialized{}))
}

// Select records the upload for side and derives its preview.
func (w *Workflow) Select(side Side, up Upload) error {
	if side != Front && side != Back {
		return fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	ct, err := DetectImageType(up.Data, up.ContentType)
	if err != nil {
		return err
	}
	up.ContentType = ct
	w.dispatch(FileSelected{Side: side, Upload: up, Preview: PreviewURL(ct, up.Data)})
	w.logger.Debug("file selected", "side", side, "filename", up.Filename, "bytes", len(up.Data))
	return nil
}

// Parse submits both sides to the OCR service and records the outcome.
// Service failures are reported through the status text, not the error.
func (w *Workflow) Parse(ctx context.Context) error {
	w.mu.Lock()
	if w.state.Phase == PhaseProcessing {
		w.mu.Unlock()
		return ErrParseInFlight
	}
	if !w.state.BothSelected() {
		w.mu.Unlock()
		return ErrNotReady
	}
	next, effects := Transition(w.state, ParseRequested{})
	w.state = next
	w.mu.Unlock()

	return w.run(ctx, effects)
}

// Save persists the current record. With no record the status says so and
// nothing is written.
func (w *Workflow) Save(ctx context.Context) error {
	return w.run(ctx, w.dispatch(SaveRequested{}))
}

// Reset clears the record from memory and the store. Safe to repeat.
func (w *Workflow) Reset(ctx context.Context) error {
	return w.run(ctx, w.dispatch(ResetRequested{}))
}

// State returns a copy of the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Workflow) dispatch(e Event) []Effect {
	w.mu.Lock()
	defer w.mu.Unlock()
	next, effects := Transition(w.state, e)
	w.state = next
	return effects
}

// run executes effects in order. Each effect may produce a follow-up event,
// whose effects are queued behind the remaining ones.
func (w *Workflow) run(ctx context.Context, effects []Effect) error {
	var errs []error
	for len(effects) > 0 {
		eff := effects[0]
		effects = effects[1:]

		ev, err := w.execute(ctx, eff)
		if err != nil {
			errs = append(errs, err)
		}
		if ev != nil {
			effects = append(effects, w.dispatch(ev)...)
		}
	}
	return errors.Join(errs...)
}

func (w *Workflow) execute(ctx context.Context, eff Effect) (Event, error) {
	switch e := eff.(type) {
	case LoadRecord:
		return w.loadRecord(ctx)

	case StoreRecord:
		data, err := json.Marshal(e.Record)
		if err != nil {
			return SaveFailed{Err: err}, fmt.Errorf("encode record: %w", err)
		}
		if err := w.store.Set(ctx, w.key, data); err != nil {
			w.logger.Error("failed to save record", "key", w.key, "error", err)
			return SaveFailed{Err: err}, fmt.Errorf("save record: %w", err)
		}
		w.logger.Info("record saved", "key", w.key)
		return nil, nil

	case DeleteRecord:
		if err := w.store.Delete(ctx, w.key); err != nil {
			w.logger.Error("failed to clear record", "key", w.key, "error", err)
			return ResetFailed{Err: err}, fmt.Errorf("clear record: %w", err)
		}
		w.logger.Info("record cleared", "key", w.key)
		return nil, nil

	case SubmitFiles:
		resp, err := w.submitter.Submit(ctx, partFor(submit.PartFront, e.Front), partFor(submit.PartBack, e.Back))
		if err != nil {
			w.logger.Warn("ocr submission failed", "error", err)
			return ParseErrored{Err: err}, nil
		}
		if resp.OK() {
			w.logger.Info("document parsed", "request_id", resp.RequestID)
		} else {
			w.logger.Warn("document not parsed",
				"request_id", resp.RequestID,
				"status", resp.StatusCode,
				"message", resp.Message)
		}
		return ParseCompleted{Response: resp}, nil
	}
	return nil, fmt.Errorf("unknown effect %T", eff)
}

func (w *Workflow) loadRecord(ctx context.Context) (Event, error) {
	data, err := w.store.Get(ctx, w.key)
	if errors.Is(err, store.ErrNotFound) {
		return RecordMissing{}, nil
	}
	if errors.Is(err, store.ErrCorrupt) {
		w.logger.Warn("discarding unreadable store data", "key", w.key, "error", err)
		return RecordMalformed{Err: err}, nil
	}
	if err != nil {
		w.logger.Error("failed to read saved record", "key", w.key, "error", err)
		return RecordMissing{}, fmt.Errorf("load record: %w", err)
	}

	if err := store.ValidateRecord(data); err != nil {
		w.logger.Warn("discarding malformed saved record", "key", w.key, "error", err)
		return RecordMalformed{Err: err}, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		w.logger.Warn("discarding malformed saved record", "key", w.key, "error", err)
		return RecordMalformed{Err: err}, nil
	}
	w.logger.Info("loaded saved record", "key", w.key)
	return RecordLoaded{Record: rec}, nil
}

func partFor(name string, up Upload) submit.Part {
	return submit.Part{
		Name:        name,
		Filename:    up.Filename,
		ContentType: up.ContentType,
		Data:        up.Data,
	}
}
