package memory

import "errors"

// Sentinel errors for store and update operations.
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrLoadFailed  = errors.New("load failed")
	ErrSaveFailed  = errors.New("save failed")
	// ErrEmptyResult means the summarizer returned nothing; the artifact is kept.
	ErrEmptyResult = errors.New("summarizer returned an empty result")
)
