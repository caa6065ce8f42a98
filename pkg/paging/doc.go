// Package paging provides single-flight, page-based content retrieval
// for progressively loaded lists.
//
// A Coordinator owns the full paged-list state (items, current page,
// loading flags, continuation flag, last error) and is the only thing
// that mutates it. Scroll triggers, refresh gestures and restore paths
// all go through its methods, and any presentation layer observes the
// state through Subscribe.
//
// # Basic Usage
//
//	source := paging.SourceFunc[Item](func(ctx context.Context, page, batchSize int) (paging.Page[Item], error) {
//		return api.FetchItems(ctx, page, batchSize)
//	})
//
//	coord, err := paging.NewCoordinator(source, paging.DefaultConfig(), logger)
//	if err != nil {
//		return err
//	}
//
//	unsub := coord.Subscribe(func(s paging.State[Item]) {
//		render(s.Items, s.LoadingMore)
//	})
//	defer unsub()
//
//	if err := coord.LoadMore(ctx); err != nil {
//		// Recorded on the state as well; call LoadMore again to retry.
//	}
//
// The coordinator guarantees:
//
//   - At most one page request is outstanding per instance; LoadMore
//     during an in-flight fetch is a no-op.
//   - Once the source reports no further pages, LoadMore performs no
//     fetches until Reset.
//   - A fetch superseded by Reset or Refresh is never aborted; its
//     result is discarded when it arrives (request-id comparison).
//   - A failed fetch records the error and leaves items and the
//     continuation flag untouched; it never ends pagination.
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - feedkit_fetches_total{status} - Page fetches by outcome
//   - feedkit_fetch_duration_seconds - Source fetch latency
//   - feedkit_stale_results_total - Superseded results discarded
//   - feedkit_items_loaded_total - Items appended from the source
package paging
