package paging

import (
	"errors"
	"fmt"
)

// ErrNilSource is returned by NewCoordinator when no source is given.
var ErrNilSource = errors.New("paging: source must not be nil")

// FetchError wraps a source failure with the page request that caused
// it. It is recorded on the coordinator state and returned from
// LoadMore; pagination is not terminated by it.
type FetchError struct {
	Page      int
	BatchSize int
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %d (batch size %d): %v", e.Page, e.BatchSize, e.Err)
}

// Unwrap returns the underlying source error.
func (e *FetchError) Unwrap() error {
	return e.Err
}
