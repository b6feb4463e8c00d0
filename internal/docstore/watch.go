package docstore

import (
	"context"
	"sync"
)

// fetchFunc reads the complete ordered document set.
type fetchFunc func(ctx context.Context) ([]RawDocument, error)

// watcher is the Subscription for backends that signal "something changed"
// and re-query on every signal (SQLite hub, Postgres NOTIFY).
type watcher struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// startWatch emits an initial snapshot, then one snapshot per signal on
// changed, until ctx is cancelled, a fetch fails or changed is closed.
// stop runs after the last sink call.
func startWatch(ctx context.Context, fetch fetchFunc, changed <-chan struct{}, sink func(Event), stop func()) *watcher {
	ctx, cancel := context.WithCancel(ctx)
	w := &watcher{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(w.done)
		if stop != nil {
			defer stop()
		}

		emit := func() bool {
			docs, err := fetch(ctx)
			if ctx.Err() != nil {
				return false
			}
			if err != nil {
				sink(Event{Err: err})
				return false
			}
			sink(Event{Batch: &Batch{Documents: docs}})
			return true
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changed:
				if !ok {
					if ctx.Err() == nil {
						sink(Event{Err: ErrStreamEnded})
					}
					return
				}
				if !emit() {
					return
				}
			}
		}
	}()

	return w
}

// Close stops the watch and waits for the goroutine to exit.
func (w *watcher) Close() error {
	w.once.Do(w.cancel)
	<-w.done
	return nil
}
