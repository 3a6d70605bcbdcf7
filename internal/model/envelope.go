package model

// EnvelopeKind classifies job lifecycle events
type EnvelopeKind string

const (
	EnvelopeStart     EnvelopeKind = "start"
	EnvelopeProgress  EnvelopeKind = "progress"
	EnvelopeComplete  EnvelopeKind = "complete"
	EnvelopeError     EnvelopeKind = "error"
	EnvelopeCancelled EnvelopeKind = "cancelled"
)

// Envelope is the single message shape flowing from an execution unit
// back to the submitter. For a given JobID at most one Complete, Error
// or Cancelled is ever delivered; Progress events precede it.
type Envelope struct {
	Kind     EnvelopeKind `json:"kind"`
	JobID    string       `json:"jobId"`
	Payload  interface{}  `json:"payload,omitempty"`
	Progress float64      `json:"progress,omitempty"` // 0..1
	Error    string       `json:"error,omitempty"`
}

// Terminal reports whether the envelope ends the job's event stream.
func (e Envelope) Terminal() bool {
	return e.Kind == EnvelopeComplete || e.Kind == EnvelopeError || e.Kind == EnvelopeCancelled
}
