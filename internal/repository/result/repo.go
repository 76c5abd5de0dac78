// Package result persists finished documents and run summaries to the result store.
package result

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/pagex/internal/domain"
	dombatch "github.com/kailas-cloud/pagex/internal/domain/batch"
	"github.com/kailas-cloud/pagex/internal/domain/extraction"
)

// store is the consumer interface for result persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	Set(ctx context.Context, key string, value []byte) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Repo writes one run's results under <prefix>run:<run_id>:.
type Repo struct {
	store  store
	prefix string
	runID  string
	ttl    time.Duration
	now    func() time.Time
}

// New creates a result repository for a single run. ttl <= 0 keeps keys forever.
func New(s store, prefix, runID string, ttl time.Duration) *Repo {
	return &Repo{store: s, prefix: prefix, runID: runID, ttl: ttl, now: time.Now}
}

// RunID returns the run the repository writes under.
func (r *Repo) RunID() string { return r.runID }

type documentJSON struct {
	Name      string                     `json:"name"`
	Pages     *extraction.DocumentResult `json:"pages"`
	RunID     string                     `json:"run_id"`
	CreatedAt time.Time                  `json:"created_at"`
}

// Save stores a finished document with JSON.SET. It satisfies the batch sink contract.
func (r *Repo) Save(ctx context.Context, index int, doc *extraction.DocumentResult) error {
	key := r.DocumentKey(index)
	data, err := extraction.MarshalValue(documentJSON{
		Name:      doc.Name(),
		Pages:     doc,
		RunID:     r.runID,
		CreatedAt: r.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s: %w: %w", key, domain.ErrResultStore, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w: %w", key, domain.ErrResultStore, err)
	}
	return r.expire(ctx, key)
}

type failureJSON struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

type summaryJSON struct {
	RunID     string        `json:"run_id"`
	Documents int           `json:"documents"`
	Pages     int           `json:"pages"`
	Failures  []failureJSON `json:"failures"`
	CreatedAt time.Time     `json:"created_at"`
}

// SaveSummary stores the run counts and failures with SET.
func (r *Repo) SaveSummary(ctx context.Context, res *dombatch.Result) error {
	key := r.SummaryKey()
	sum := summaryJSON{
		RunID:     r.runID,
		Documents: res.Len(),
		Pages:     res.Pages(),
		Failures:  []failureJSON{},
		CreatedAt: r.now().UTC(),
	}
	for _, o := range res.Failures() {
		f := failureJSON{Index: o.Index(), Name: o.Name(), Status: string(o.Status())}
		if o.Err() != nil {
			f.Error = o.Err().Error()
		}
		sum.Failures = append(sum.Failures, f)
	}

	data, err := extraction.MarshalValue(sum)
	if err != nil {
		return fmt.Errorf("marshal %s: %w: %w", key, domain.ErrResultStore, err)
	}
	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set %s: %w: %w", key, domain.ErrResultStore, err)
	}
	return r.expire(ctx, key)
}

// DocumentKey returns the key of the index-th document of this run.
func (r *Repo) DocumentKey(index int) string {
	return r.prefix + "run:" + r.runID + ":doc:" + strconv.Itoa(index)
}

// SummaryKey returns the key of this run's summary.
func (r *Repo) SummaryKey() string {
	return r.prefix + "run:" + r.runID + ":summary"
}

func (r *Repo) expire(ctx context.Context, key string) error {
	if r.ttl <= 0 {
		return nil
	}
	if err := r.store.Expire(ctx, key, r.ttl); err != nil {
		return fmt.Errorf("expire %s: %w: %w", key, domain.ErrResultStore, err)
	}
	return nil
}
