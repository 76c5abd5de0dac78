package extraction

import "fmt"

// Entry is one page of a DocumentResult.
type Entry struct {
	Record PageRecord
	Result Result
}

// DocumentResult is a document name plus its page key → Result mapping in page order.
type DocumentResult struct {
	name    string
	entries []Entry
	byKey   map[string]int
}

// NewDocumentResult starts an empty result for the named document.
func NewDocumentResult(name string, pages int) *DocumentResult {
	if pages < 0 {
		pages = 0
	}
	return &DocumentResult{
		name:    name,
		entries: make([]Entry, 0, pages),
		byKey:   make(map[string]int, pages),
	}
}

// Add appends a page. Keys must be unique within the document.
func (d *DocumentResult) Add(rec PageRecord, res Result) error {
	key := rec.Key()
	if _, dup := d.byKey[key]; dup {
		return fmt.Errorf("page key %q already present in %q", key, d.name)
	}
	d.byKey[key] = len(d.entries)
	d.entries = append(d.entries, Entry{Record: rec, Result: res})
	return nil
}

// Name returns the document name.
func (d *DocumentResult) Name() string { return d.name }

// Len returns the number of pages added.
func (d *DocumentResult) Len() int { return len(d.entries) }

// Entries returns the pages in order.
func (d *DocumentResult) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Keys returns page keys in order.
func (d *DocumentResult) Keys() []string {
	keys := make([]string, len(d.entries))
	for i, e := range d.entries {
		keys[i] = e.Record.Key()
	}
	return keys
}

// Get returns the result stored under key.
func (d *DocumentResult) Get(key string) (Result, bool) {
	i, ok := d.byKey[key]
	if !ok {
		return Result{}, false
	}
	return d.entries[i].Result, true
}

// MarshalJSON writes the page mapping as an object in page order.
func (d *DocumentResult) MarshalJSON() ([]byte, error) {
	return MarshalObject(d.Keys(), func(k string) any {
		r, _ := d.Get(k)
		return r
	})
}
