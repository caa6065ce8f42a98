package paging

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFetchError(t *testing.T) {
	base := errors.New("connection refused")
	err := &FetchError{Page: 3, BatchSize: 20, Err: base}

	msg := err.Error()
	if !strings.Contains(msg, "page 3") || !strings.Contains(msg, "connection refused") {
		t.Errorf("Error() = %q, want page number and cause", msg)
	}

	if !errors.Is(err, base) {
		t.Error("errors.Is() does not see the wrapped cause")
	}

	wrapped := fmt.Errorf("loading feed: %w", err)
	var ferr *FetchError
	if !errors.As(wrapped, &ferr) {
		t.Fatal("errors.As() cannot recover *FetchError from a wrapped chain")
	}
	if ferr.Page != 3 {
		t.Errorf("recovered Page = %d, want 3", ferr.Page)
	}
}
