// Package scroll holds the viewport-side pieces of progressive
// loading: the proximity trigger that requests the next page, the
// debounced visible-range estimator, and the anchor stabilizer that
// keeps the viewport still when content is appended near the bottom.
//
// None of these touch a real viewport. The application's visibility
// service feeds measurements in (SentinelEntered, NoteScroll) and gets
// decisions back as values; applying a scroll correction or moving the
// sentinel marker stays the presentation layer's job.
//
// Typical wiring:
//
//	trigger, _ := scroll.NewTrigger(scroll.TriggerConfig{}, func() {
//		go coord.LoadMore(ctx)
//	}, logger)
//
//	// visibility service callback:
//	onSentinelVisible := trigger.SentinelEntered
//
//	// after a successful append, once the sentinel has moved:
//	trigger.Rearm()
//
// The visible range is advisory, for preload heuristics and soft
// virtualization; correctness never depends on it.
package scroll
