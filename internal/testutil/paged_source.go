// Package testutil provides testing utilities for feedkit.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/feedkit/feedkit/pkg/paging"
)

// Item is a minimal content item for exercising the paging stack.
type Item struct {
	ID    string
	Title string
}

// PagedSource is a scripted paging.Source backed by a fixed number of
// generated items. Tests can inject per-page failures, hold fetches
// open to exercise in-flight behavior, and inspect call counts.
type PagedSource struct {
	mu        sync.Mutex
	total     int
	calls     int
	pageCalls []int
	failures  map[int]error

	hold    bool
	gate    chan struct{}
	started chan struct{}
}

var _ paging.Source[Item] = (*PagedSource)(nil)

// NewPagedSource creates a source holding total generated items.
func NewPagedSource(total int) *PagedSource {
	return &PagedSource{
		total:    total,
		failures: make(map[int]error),
		gate:     make(chan struct{}),
		started:  make(chan struct{}, 16),
	}
}

// FetchPage returns the requested slice of the generated items. HasMore
// reports whether items remain beyond this page.
func (s *PagedSource) FetchPage(ctx context.Context, page, batchSize int) (paging.Page[Item], error) {
	s.mu.Lock()
	s.calls++
	s.pageCalls = append(s.pageCalls, page)
	hold := s.hold
	gate := s.gate
	err := s.failures[page]
	total := s.total
	s.mu.Unlock()

	select {
	case s.started <- struct{}{}:
	default:
	}

	if hold {
		select {
		case <-gate:
		case <-ctx.Done():
			return paging.Page[Item]{}, ctx.Err()
		}
	}

	if err != nil {
		return paging.Page[Item]{}, err
	}

	start := (page - 1) * batchSize
	if start < 0 || start >= total {
		return paging.Page[Item]{HasMore: false}, nil
	}
	end := start + batchSize
	if end > total {
		end = total
	}
	items := make([]Item, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, Item{
			ID:    fmt.Sprintf("item-%04d", i),
			Title: fmt.Sprintf("Item %d", i),
		})
	}
	return paging.Page[Item]{Items: items, HasMore: end < total}, nil
}

// FailPage makes fetches of the given page return err until cleared
// with FailPage(page, nil).
func (s *PagedSource) FailPage(page int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, page)
		return
	}
	s.failures[page] = err
}

// Hold makes subsequent fetches block until Release is called once per
// blocked fetch (or the fetch context is cancelled).
func (s *PagedSource) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hold = true
}

// Release unblocks one held fetch.
func (s *PagedSource) Release() {
	s.gate <- struct{}{}
}

// Started yields one token per FetchPage call as it begins, letting
// tests wait for a fetch to be in flight without polling.
func (s *PagedSource) Started() <-chan struct{} {
	return s.started
}

// Calls returns the number of FetchPage invocations.
func (s *PagedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Pages returns the page numbers requested so far, in call order.
func (s *PagedSource) Pages() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.pageCalls...)
}

// SetTotal changes how many items the source holds.
func (s *PagedSource) SetTotal(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = total
}
