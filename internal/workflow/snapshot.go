package workflow

// SideView is the rendered state of one side.
type SideView struct {
	Side        Side      `json:"side"`
	State       SlotState `json:"state"`
	Filename    string    `json:"filename,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	Size        int       `json:"size,omitempty"`
	Preview     string    `json:"preview,omitempty"`
}

// Snapshot is an immutable view of the workflow for rendering.
type Snapshot struct {
	Front    SideView `json:"front"`
	Back     SideView `json:"back"`
	CanParse bool     `json:"canParse"`
	Phase    Phase    `json:"phase"`
	Record   *Record  `json:"record"`
	Fields   []Field  `json:"fields"`
	Status   string   `json:"status"`
}

// Snapshot returns the current view.
func (w *Workflow) Snapshot() Snapshot {
	return NewSnapshot(w.State())
}

// NewSnapshot builds the view of s.
func NewSnapshot(s State) Snapshot {
	snap := Snapshot{
		Front:    sideView(Front, s.Front),
		Back:     sideView(Back, s.Back),
		CanParse: s.CanParse(),
		Phase:    s.Phase,
		Fields:   []Field{},
		Status:   s.Status,
	}
	if s.Record != nil {
		rec := *s.Record
		snap.Record = &rec
		snap.Fields = rec.Fields()
	}
	return snap
}

// WithoutPreviews drops the preview data URLs, which can be large.
func (s Snapshot) WithoutPreviews() Snapshot {
	s.Front.Preview = ""
	s.Back.Preview = ""
	return s
}

func sideView(side Side, slot Slot) SideView {
	v := SideView{Side: side, State: slot.State}
	if v.State == "" {
		v.State = SlotEmpty
	}
	if slot.Upload != nil {
		v.Filename = slot.Upload.Filename
		v.ContentType = slot.Upload.ContentType
		v.Size = len(slot.Upload.Data)
		v.Preview = slot.Preview
	}
	return v
}
