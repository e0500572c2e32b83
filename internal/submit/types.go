package submit

// Part names accepted by the OCR endpoint.
const (
	PartFront = "front"
	PartBack  = "back"
)

// Part is one file in the multipart submission.
type Part struct {
	Name        string // "front" or "back"
	Filename    string
	ContentType string
	Data        []byte
}

// Details are the parsed document fields returned by the OCR service.
type Details struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	Pincode     string `json:"pincode"`
}

// Response is the decoded OCR response.
//
// Details is nil for any unsuccessful outcome (non-2xx status, empty or
// undecodable body); callers must treat that as a failed parse. Message is
// whatever the service said, and may be empty.
type Response struct {
	Details    *Details `json:"details,omitempty"`
	Message    string   `json:"message,omitempty"`
	StatusCode int      `json:"-"`
	RequestID  string   `json:"-"`
}

// OK reports whether the response carries parsed details.
func (r *Response) OK() bool {
	return r != nil && r.Details != nil
}
