package batch

import "github.com/kailas-cloud/pagex/internal/domain/extraction"

// ItemStatus is the processing outcome of a single document in a batch.
type ItemStatus string

// Batch item status values.
const (
	StatusOK      ItemStatus = "ok"
	StatusSkipped ItemStatus = "skipped"
	StatusFailed  ItemStatus = "failed"
)

// Outcome is the result of processing one document in a batch run.
type Outcome struct {
	index  int
	name   string
	status ItemStatus
	pages  int
	err    error
}

// NewOK creates a successful outcome.
func NewOK(index int, name string, pages int) Outcome {
	return Outcome{index: index, name: name, status: StatusOK, pages: pages}
}

// NewSkipped creates an outcome for a failed document the run continued past.
func NewSkipped(index int, name string, err error) Outcome {
	return Outcome{index: index, name: name, status: StatusSkipped, err: err}
}

// NewFailed creates an outcome for the document that aborted the run.
func NewFailed(index int, name string, err error) Outcome {
	return Outcome{index: index, name: name, status: StatusFailed, err: err}
}

// Index returns the document position in the input.
func (o Outcome) Index() int { return o.index }

// Name returns the document name.
func (o Outcome) Name() string { return o.name }

// Status returns the processing outcome.
func (o Outcome) Status() ItemStatus { return o.status }

// Pages returns the number of extracted pages (0 unless ok).
func (o Outcome) Pages() int { return o.pages }

// Err returns the cause, if any.
func (o Outcome) Err() error { return o.err }

// Result is the ordered set of document results of one batch run.
type Result struct {
	documents []*extraction.DocumentResult
	outcomes  []Outcome
}

// Append records a finished document.
func (r *Result) Append(index int, doc *extraction.DocumentResult) {
	r.documents = append(r.documents, doc)
	r.outcomes = append(r.outcomes, NewOK(index, doc.Name(), doc.Len()))
}

// Record adds a non-ok outcome without a document.
func (r *Result) Record(o Outcome) {
	r.outcomes = append(r.outcomes, o)
}

// Documents returns finished documents in processing order.
func (r *Result) Documents() []*extraction.DocumentResult {
	out := make([]*extraction.DocumentResult, len(r.documents))
	copy(out, r.documents)
	return out
}

// Outcomes returns every attempted document in processing order.
func (r *Result) Outcomes() []Outcome {
	out := make([]Outcome, len(r.outcomes))
	copy(out, r.outcomes)
	return out
}

// Failures returns the skipped and failed outcomes.
func (r *Result) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.outcomes {
		if o.status != StatusOK {
			out = append(out, o)
		}
	}
	return out
}

// Len returns the number of finished documents.
func (r *Result) Len() int { return len(r.documents) }

// Pages returns the total number of extracted pages.
func (r *Result) Pages() int {
	n := 0
	for _, d := range r.documents {
		n += d.Len()
	}
	return n
}
