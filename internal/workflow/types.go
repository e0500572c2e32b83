// Package workflow implements the upload/parse/persist workflow for a
// two-sided identity document.
//
// The workflow is an explicit state machine: Transition is a pure function
// of (state, event) returning the next state and the effects to perform.
// Workflow runs effects (OCR submission, store reads and writes) and feeds
// their outcomes back as events.
package workflow

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Side is one face of the identity document.
type Side string

const (
	Front Side = "front"
	Back  Side = "back"
)

// Sides lists both sides in display order.
var Sides = []Side{Front, Back}

// ErrInvalidSide is returned when parsing an unknown side name.
var ErrInvalidSide = errors.New("invalid side")

// ParseSide converts "front" or "back" (case-insensitive) to a Side.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Front:
		return Front, nil
	case Back:
		return Back, nil
	default:
		return "", fmt.Errorf("%w: %q (want front or back)", ErrInvalidSide, s)
	}
}

// SlotState is the per-side selection state.
type SlotState string

const (
	SlotEmpty    SlotState = "empty"
	SlotSelected SlotState = "selected"
)

// Phase is the state of the parse result.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseProcessing Phase = "processing"
	PhaseSuccess    Phase = "success"
	PhaseFailed     Phase = "failed"
)

// Status messages shown to the user.
const (
	StatusIdle          = "Start Performing OCR by inputting your document front and back"
	StatusProcessing    = "Processing your documents..."
	StatusError         = "Error: OCR processing failed."
	StatusSaved         = "Data saved successfully!"
	StatusNothingToSave = "No data to save."
	StatusCleared       = "Data cleared."
	StatusLoaded        = "Loaded saved data from local storage."
	StatusSaveFailed    = "Error: could not save data."
	StatusClearFailed   = "Error: could not clear data."

	// FailurePrefix starts the status of an unsuccessful parse.
	FailurePrefix = "Parsing Failed: "
	// FailureFallback replaces the server message when none was returned.
	FailureFallback = "no message returned"
	// SuccessFallback is used when a successful response carries no message.
	SuccessFallback = "Document parsed."
)

// DefaultKey is the store key holding the saved record.
const DefaultKey = "parsedData"

// Upload is a file selected for one side.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Slot holds the selection for one side. At most one upload and one preview.
type Slot struct {
	State   SlotState
	Upload  *Upload
	Preview string
}

// Record is the parsed document: five named string fields.
type Record struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	Pincode     string `json:"pincode"`
}

// Field is one record value with its display label.
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Fields returns the record's values in display order.
func (r Record) Fields() []Field {
	pairs := []struct{ key, value string }{
		{"name", r.Name},
		{"dateOfBirth", r.DateOfBirth},
		{"gender", r.Gender},
		{"address", r.Address},
		{"pincode", r.Pincode},
	}
	fields := make([]Field, len(pairs))
	for i, p := range pairs {
		fields[i] = Field{Key: p.key, Label: Label(p.key), Value: p.value}
	}
	return fields
}

// Label capitalizes the first character of a field key ("dateOfBirth" -> "DateOfBirth").
func Label(key string) string {
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return key
	}
	return string(unicode.ToUpper(r)) + key[size:]
}

// State is the complete workflow state.
type State struct {
	Front  Slot
	Back   Slot
	Phase  Phase
	Record *Record
	Status string
}

// InitialState returns the state shown before anything happens.
func InitialState() State {
	return State{
		Front:  Slot{State: SlotEmpty},
		Back:   Slot{State: SlotEmpty},
		Phase:  PhaseIdle,
		Status: StatusIdle,
	}
}

// Slot returns the slot for side.
func (s State) Slot(side Side) Slot {
	if side == Back {
		return s.Back
	}
	return s.Front
}

// BothSelected reports whether both sides have a file.
func (s State) BothSelected() bool {
	return s.Front.State == SlotSelected && s.Back.State == SlotSelected
}

// CanParse reports whether the parse action is enabled.
func (s State) CanParse() bool {
	return s.BothSelected() && s.Phase != PhaseProcessing
}
