package feed

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/roach88/spearfished/internal/docstore"
	"github.com/roach88/spearfished/internal/post"
)

// Observer receives feed snapshots. Observers run on the loop goroutine,
// one at a time, and must return promptly. An observer may call the cancel
// func returned by Observe, but must not call Observe or Close.
type Observer func(Snapshot)

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReconnect sets the reconnection policy. nil disables reconnection:
// after a subscription error the feed stays in LiveWithError.
func WithReconnect(p *ReconnectPolicy) Option {
	return func(s *Synchronizer) {
		if p == nil {
			s.newBackOff = nil
			return
		}
		policy := *p
		s.newBackOff = policy.BackOff
	}
}

// WithBackOff sets the reconnect backoff factory directly.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(s *Synchronizer) { s.newBackOff = f }
}

type observerEntry struct {
	fn     Observer
	active atomic.Bool
}

// Synchronizer maintains the live post feed.
//
// Thread-safety model:
//   - Start, Close, Observe, Current: safe from any goroutine
//   - all feed state is written only by the loop goroutine
type Synchronizer struct {
	src        docstore.Subscriber
	logger     *slog.Logger
	newBackOff func() backoff.BackOff
	versions   versionClock
	queue      *eventQueue

	mu        sync.Mutex // guards current, observers, started, closed, cancel
	current   Snapshot
	observers map[int]*observerEntry
	nextObs   int
	started   bool
	closed    bool
	cancel    context.CancelFunc
	done      chan struct{}

	// deliverMu serializes snapshot delivery so every observer sees
	// versions in increasing order.
	deliverMu sync.Mutex

	// Loop-owned.
	sub      docstore.Subscription
	gen      uint64
	bo       backoff.BackOff
	retry    *time.Timer
	failures int
}

// New creates a synchronizer over src. It does nothing until Start.
func New(src docstore.Subscriber, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		src:        src,
		logger:     slog.Default(),
		newBackOff: DefaultReconnectPolicy.BackOff,
		queue:      newEventQueue(),
		observers:  make(map[int]*observerEntry),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current = Snapshot{State: StateIdle, Posts: []post.Post{}}
	return s
}

// Start subscribes and begins delivering snapshots. The subscription lives
// until Close or until ctx is cancelled. Cancelling ctx closes the feed: a
// final Closed snapshot carrying ctx.Err() and the last posts is delivered.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	if s.newBackOff != nil {
		s.bo = s.newBackOff()
	}

	s.publish(Snapshot{State: StateSubscribing, Posts: []post.Post{}})
	go s.run(ctx)
	return nil
}

// Close stops the subscription and all deliveries. When Close returns no
// observer will be called again. Idempotent.
func (s *Synchronizer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.doneIfStarted()
		return nil
	}
	s.closed = true
	started := s.started
	cancel := s.cancel
	s.mu.Unlock()

	s.queue.Close()
	if started {
		// Interrupts a Subscribe still waiting on the store.
		cancel()
		<-s.done
	}

	s.mu.Lock()
	s.current.State = StateClosed
	s.current.Version = s.versions.Next()
	s.observers = map[int]*observerEntry{}
	s.mu.Unlock()
	return nil
}

func (s *Synchronizer) doneIfStarted() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return s.done
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Current returns the latest snapshot.
func (s *Synchronizer) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

// Observe registers fn and immediately delivers the current snapshot to it.
// The returned func unregisters fn; it is idempotent and may be called from
// inside fn.
func (s *Synchronizer) Observe(fn Observer) (cancel func()) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	entry := &observerEntry{fn: fn}
	entry.active.Store(true)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() {}
	}
	id := s.nextObs
	s.nextObs++
	s.observers[id] = entry
	snap := s.current.clone()
	s.mu.Unlock()

	fn(snap)

	return func() {
		entry.active.Store(false)
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// publish stamps snap with the next version, stores it and delivers it.
func (s *Synchronizer) publish(snap Snapshot) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if s.closed && s.queue.Closed() && snap.State != StateClosed {
		// Shutting down; Close owns the final state.
		s.mu.Unlock()
		return
	}
	snap.Version = s.versions.Next()
	if snap.Posts == nil {
		snap.Posts = []post.Post{}
	}
	s.current = snap
	entries := make([]*observerEntry, 0, len(s.observers))
	for _, e := range s.observers {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	for _, e := range entries {
		if e.active.Load() {
			e.fn(snap.clone())
		}
	}
}

// run is the single-writer loop.
func (s *Synchronizer) run(ctx context.Context) {
	defer close(s.done)
	defer s.shutdown()

	s.subscribe(ctx)

	for {
		if ev, ok := s.queue.TryDequeue(); ok {
			s.process(ctx, ev)
			continue
		}

		select {
		case <-ctx.Done():
			s.logger.Debug("feed stopping: context cancelled")
			s.stop(ctx.Err())
			return
		case <-s.queue.Wait():
			if s.queue.Closed() {
				s.logger.Debug("feed stopping: closed")
				return
			}
		}
	}
}

func (s *Synchronizer) process(ctx context.Context, ev event) {
	if ev.gen != s.gen {
		s.logger.Debug("discarding stale feed event", "gen", ev.gen, "current", s.gen)
		return
	}

	switch ev.kind {
	case eventBatch:
		s.applyBatch(ev.batch)
	case eventError:
		s.applyError(ev.err)
	case eventReconnect:
		s.logger.Info("feed resubscribing", "attempt", s.failures)
		s.subscribe(ctx)
	}
}

// subscribe opens a new subscription generation. Events from older
// generations are discarded by process.
func (s *Synchronizer) subscribe(ctx context.Context) {
	s.closeSubscription()
	s.gen++
	gen := s.gen

	sub, err := s.src.Subscribe(ctx, func(e docstore.Event) {
		if e.Err != nil {
			s.queue.Enqueue(event{kind: eventError, gen: gen, err: e.Err})
			return
		}
		s.queue.Enqueue(event{kind: eventBatch, gen: gen, batch: e.Batch})
	})
	if err != nil {
		s.applyError(err)
		return
	}
	s.sub = sub
}

func (s *Synchronizer) applyBatch(batch *docstore.Batch) {
	var docs []docstore.RawDocument
	if batch != nil {
		docs = batch.Documents
	}

	posts := make([]post.Post, 0, len(docs))
	dropped := 0
	for _, d := range docs {
		p, err := post.Decode(d.ID, d.Data)
		if err != nil {
			dropped++
			s.logger.Warn("dropping malformed post", "id", d.ID, "error", err)
			continue
		}
		posts = append(posts, p)
	}

	s.failures = 0
	if s.bo != nil {
		s.bo.Reset()
	}

	s.publish(Snapshot{State: StateLive, Posts: posts, Dropped: dropped})
}

func (s *Synchronizer) applyError(err error) {
	s.closeSubscription()
	s.gen++ // nothing from the failed subscription is applied after this
	s.failures++

	serr := &SubscriptionError{Attempt: s.failures, Err: err}
	s.logger.Warn("feed subscription failed", "attempt", s.failures, "error", err)

	prev := s.Current()
	s.publish(Snapshot{
		State:   StateLiveWithError,
		Posts:   prev.Posts,
		Err:     serr,
		Dropped: prev.Dropped,
	})

	s.scheduleReconnect()
}

func (s *Synchronizer) scheduleReconnect() {
	if s.bo == nil {
		return
	}
	d := s.bo.NextBackOff()
	if d == backoff.Stop {
		s.logger.Error("feed giving up on reconnect", "attempts", s.failures)
		return
	}

	gen := s.gen
	s.logger.Debug("feed reconnect scheduled", "in", d)
	s.retry = time.AfterFunc(d, func() {
		s.queue.Enqueue(event{kind: eventReconnect, gen: gen})
	})
}

func (s *Synchronizer) closeSubscription() {
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
	if s.sub != nil {
		if err := s.sub.Close(); err != nil {
			s.logger.Warn("closing feed subscription", "error", err)
		}
		s.sub = nil
	}
}

// stop closes the feed from the loop after its context ends.
func (s *Synchronizer) stop(err error) {
	s.closeSubscription()

	s.mu.Lock()
	byClose := s.closed
	s.closed = true
	s.mu.Unlock()
	if byClose {
		// Close owns the final state.
		return
	}
	s.queue.Close()

	prev := s.Current()
	s.publish(Snapshot{
		State:   StateClosed,
		Posts:   prev.Posts,
		Err:     err,
		Dropped: prev.Dropped,
	})
}

func (s *Synchronizer) shutdown() {
	s.closeSubscription()
	s.queue.Close()
}
