package domain

import "errors"

var (
	// ErrDocumentUnreadable signals a source that cannot be opened or rendered into pages.
	ErrDocumentUnreadable = errors.New("document unreadable")
	// ErrEncoding signals a page image that cannot be encoded.
	ErrEncoding = errors.New("page encoding failed")
	// ErrInference signals a failed inference service call.
	ErrInference = errors.New("inference failed")
	// ErrInvalidDocument signals a document reference without a name or location.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrResultStore signals a failure to persist a finished result.
	ErrResultStore = errors.New("result store failed")
)
