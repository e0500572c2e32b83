package workflow

import "github.com/jackzampolin/docparse/internal/submit"

// Event is an input to the state machine.
type Event interface{ isEvent() }

// Initialized is sent once when the workflow starts.
type Initialized struct{}

// RecordLoaded carries a valid record read from the store.
type RecordLoaded struct{ Record Record }

// RecordMissing means nothing was stored (or the store could not be read).
type RecordMissing struct{}

// RecordMalformed means the stored value could not be decoded.
type RecordMalformed struct{ Err error }

// FileSelected sets the upload and preview for one side.
type FileSelected struct {
	Side    Side
	Upload  Upload
	Preview string
}

// ParseRequested starts a submission when both sides are selected.
type ParseRequested struct{}

// ParseCompleted carries the OCR service response.
type ParseCompleted struct{ Response *submit.Response }

// ParseErrored means no response arrived.
type ParseErrored struct{ Err error }

// SaveRequested persists the current record.
type SaveRequested struct{}

// SaveFailed reports a store write failure.
type SaveFailed struct{ Err error }

// ResetRequested clears the record from memory and the store.
type ResetRequested struct{}

// ResetFailed reports a store delete failure.
type ResetFailed struct{ Err error }

func (Initialized) isEvent()     {}
func (RecordLoaded) isEvent()    {}
func (RecordMissing) isEvent()   {}
func (RecordMalformed) isEvent() {}
func (FileSelected) isEvent()    {}
func (ParseRequested) isEvent()  {}
func (ParseCompleted) isEvent()  {}
func (ParseErrored) isEvent()    {}
func (SaveRequested) isEvent()   {}
func (SaveFailed) isEvent()      {}
func (ResetRequested) isEvent()  {}
func (ResetFailed) isEvent()     {}

// Effect is work the runner performs on behalf of a transition.
type Effect interface{ isEffect() }

// LoadRecord reads the saved record from the store.
type LoadRecord struct{}

// StoreRecord writes Record to the store.
type StoreRecord struct{ Record Record }

// DeleteRecord removes the saved record from the store.
type DeleteRecord struct{}

// SubmitFiles sends both uploads to the OCR service.
type SubmitFiles struct {
	Front Upload
	Back  Upload
}

func (LoadRecord) isEffect()   {}
func (StoreRecord) isEffect()  {}
func (DeleteRecord) isEffect() {}
func (SubmitFiles) isEffect()  {}

// Transition computes the next state for an event. It performs no I/O.
// Events that do not apply to the current state leave it unchanged.
func Transition(s State, e Event) (State, []Effect) {
	switch ev := e.(type) {
	case Initialized:
		return s, []Effect{LoadRecord{}}

	case RecordLoaded:
		rec := ev.Record
		s.Record = &rec
		s.Status = StatusLoaded
		return s, nil

	case RecordMissing:
		return s, nil

	case RecordMalformed:
		// Ignore the stored value and clear it so the next start is clean.
		return s, []Effect{DeleteRecord{}}

	case FileSelected:
		up := ev.Upload
		slot := Slot{State: SlotSelected, Upload: &up, Preview: ev.Preview}
		switch ev.Side {
		case Front:
			s.Front = slot
		case Back:
			s.Back = slot
		}
		return s, nil

	case ParseRequested:
		if !s.CanParse() {
			return s, nil
		}
		s.Phase = PhaseProcessing
		s.Status = StatusProcessing
		return s, []Effect{SubmitFiles{Front: *s.Front.Upload, Back: *s.Back.Upload}}

	case ParseCompleted:
		if s.Phase != PhaseProcessing {
			return s, nil
		}
		if ev.Response.OK() {
			rec := recordFromDetails(ev.Response.Details)
			s.Record = &rec
			s.Phase = PhaseSuccess
			s.Status = ev.Response.Message
			if s.Status == "" {
				s.Status = SuccessFallback
			}
			return s, nil
		}
		msg := FailureFallback
		if ev.Response != nil && ev.Response.Message != "" {
			msg = ev.Response.Message
		}
		s.Phase = PhaseFailed
		s.Status = FailurePrefix + msg
		return s, nil

	case ParseErrored:
		if s.Phase != PhaseProcessing {
			return s, nil
		}
		s.Phase = PhaseFailed
		s.Status = StatusError
		return s, nil

	case SaveRequested:
		if s.Record == nil {
			s.Status = StatusNothingToSave
			return s, nil
		}
		s.Status = StatusSaved
		return s, []Effect{StoreRecord{Record: *s.Record}}

	case SaveFailed:
		s.Status = StatusSaveFailed
		return s, nil

	case ResetRequested:
		s.Record = nil
		if s.Phase == PhaseSuccess || s.Phase == PhaseFailed {
			s.Phase = PhaseIdle
		}
		s.Status = StatusCleared
		return s, []Effect{DeleteRecord{}}

	case ResetFailed:
		s.Status = StatusClearFailed
		return s, nil
	}

	return s, nil
}

func recordFromDetails(d *submit.Details) Record {
	return Record{
		Name:        d.Name,
		DateOfBirth: d.DateOfBirth,
		Gender:      d.Gender,
		Address:     d.Address,
		Pincode:     d.Pincode,
	}
}
