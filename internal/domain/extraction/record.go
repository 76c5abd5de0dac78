package extraction

import "strconv"

// PageRecord pairs a page index with its derived title.
type PageRecord struct {
	index int
	title string
}

// NewPageRecord creates a record for the 0-based page index.
func NewPageRecord(index int, title string) PageRecord {
	return PageRecord{index: index, title: title}
}

// Index returns the 0-based page index.
func (p PageRecord) Index() int { return p.index }

// Title returns the derived page title.
func (p PageRecord) Title() string { return p.title }

// Key returns "{index} - {title}". Unique within a document because the index is.
func (p PageRecord) Key() string {
	return strconv.Itoa(p.index) + " - " + p.title
}
