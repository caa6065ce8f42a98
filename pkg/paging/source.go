package paging

import "context"

// Page is one batch of items returned by a Source. HasMore is
// authoritative: the coordinator stops fetching as soon as a page
// reports false, regardless of how many items it carried.
type Page[T any] struct {
	Items   []T
	HasMore bool
}

// Source delivers pages of content. Pages are numbered from 1; the
// coordinator never requests page 0. Implementations may block and
// should honor ctx cancellation.
type Source[T any] interface {
	FetchPage(ctx context.Context, page, batchSize int) (Page[T], error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc[T any] func(ctx context.Context, page, batchSize int) (Page[T], error)

// FetchPage calls f.
func (f SourceFunc[T]) FetchPage(ctx context.Context, page, batchSize int) (Page[T], error) {
	return f(ctx, page, batchSize)
}
