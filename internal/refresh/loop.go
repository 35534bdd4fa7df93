package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/espdash/internal/deviceapi"
	"github.com/muurk/espdash/internal/logging"
	"github.com/muurk/espdash/internal/render"
)

// DefaultInterval is the firmware web UI's refresh period
const DefaultInterval = 5 * time.Second

// Node is one addressable display node
type Node interface {
	// SetInnerHTML replaces the node's children with markup
	SetInnerHTML(markup string)
	// SetText replaces the node's content with plain text
	SetText(text string)
}

// Document resolves display nodes by their stable id
type Document interface {
	Lookup(id string) (Node, bool)
}

// Source fetches snapshots from the device
type Source interface {
	GetOverview(ctx context.Context) (*deviceapi.DeviceOverview, error)
	GetStatus(ctx context.Context) (*deviceapi.StatusSnapshot, error)
}

// PollErrorHook observes a swallowed tick failure
type PollErrorHook func(generation uint64, consecutive int, err error)

// Stats counts tick outcomes since the loop was created
type Stats struct {
	Ticks               uint64 // ticks started
	Applied             uint64 // responses written to the live field
	Stale               uint64 // responses discarded because a later tick was already applied
	Failures            uint64 // ticks that failed (transport, parse or structure)
	ConsecutiveFailures int
	LastError           error
	LastSuccess         time.Time
}

// Option configures a Loop
type Option func(*Loop)

// WithInterval sets the refresh period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithPollErrorHook replaces the default logging hook
func WithPollErrorHook(hook PollErrorHook) Option {
	return func(l *Loop) {
		if hook != nil {
			l.onPollError = hook
		}
	}
}

// Loop owns the initial load and the periodic refresh of one Document
type Loop struct {
	source      Source
	builder     *render.Builder
	doc         Document
	interval    time.Duration
	onPollError PollErrorHook

	generation atomic.Uint64

	// mu serializes document writes and guards applied, the newest
	// generation reflected on screen
	mu      sync.Mutex
	applied uint64

	// statsMu is never held across a document write, so Stats stays
	// callable from code that a document write is waiting on
	statsMu sync.Mutex
	stats   Stats
}

// New creates a Loop. Nothing is fetched until InitialLoad or
// StartPeriodicRefresh is called.
func New(source Source, builder *render.Builder, doc Document, opts ...Option) *Loop {
	l := &Loop{
		source:      source,
		builder:     builder,
		doc:         doc,
		interval:    DefaultInterval,
		onPollError: logging.LogPollFailure,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the refresh period
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// InitialLoad fetches the overview, renders it into the container node and
// then starts the periodic refresh. On failure the container shows an error
// block instead and the returned error is the same failure; the refresh is
// started either way.
func (l *Loop) InitialLoad(ctx context.Context) (*Handle, error) {
	err := l.Load(ctx)
	return l.StartPeriodicRefresh(ctx), err
}

// Load performs the overview fetch and container write of InitialLoad
// without starting the refresh.
func (l *Loop) Load(ctx context.Context) error {
	markup, err := l.buildOverview(ctx)
	if err != nil {
		logging.Warn("Initial overview load failed", zap.Error(err))
		markup = l.builder.ErrorBlock(err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// Ticks started before this render carry an older uptime
	l.applied = l.generation.Load()
	if node, ok := l.doc.Lookup(render.ContainerID); ok {
		node.SetInnerHTML(markup)
	} else {
		logging.Debug("Overview container not present, skipping render")
	}
	return err
}

func (l *Loop) buildOverview(ctx context.Context) (string, error) {
	overview, err := l.source.GetOverview(ctx)
	if err != nil {
		return "", err
	}
	return l.builder.BuildOverview(overview)
}

// StartPeriodicRefresh begins ticking every interval until ctx is done or
// the returned handle is stopped.
func (l *Loop) StartPeriodicRefresh(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.wg.Add(1)
				go func() {
					defer h.wg.Done()
					l.tick(ctx)
				}()
			}
		}
	}()

	go func() {
		h.wg.Wait()
		close(h.done)
	}()

	logging.Debug("Periodic refresh started", zap.Duration("interval", l.interval))
	return h
}

// tick fetches one status snapshot and patches the live field
func (l *Loop) tick(ctx context.Context) {
	gen := l.generation.Add(1)

	l.statsMu.Lock()
	l.stats.Ticks++
	l.statsMu.Unlock()

	tickCtx, cancel := context.WithTimeout(ctx, l.interval)
	status, err := l.source.GetStatus(tickCtx)
	cancel()

	// Teardown in progress, nothing to report
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		l.statsMu.Lock()
		l.stats.Failures++
		l.stats.ConsecutiveFailures++
		l.stats.LastError = err
		consecutive := l.stats.ConsecutiveFailures
		l.statsMu.Unlock()

		// The hook may call back into Stats
		l.onPollError(gen, consecutive, err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	stale := gen <= l.applied
	l.statsMu.Lock()
	l.stats.ConsecutiveFailures = 0
	l.stats.LastSuccess = time.Now()
	if stale {
		l.stats.Stale++
	} else {
		l.stats.Applied++
	}
	l.statsMu.Unlock()

	if stale {
		logging.Debug("Discarding stale status response",
			zap.Uint64("generation", gen),
			zap.Uint64("applied", l.applied),
		)
		return
	}
	l.applied = gen

	if node, ok := l.doc.Lookup(render.UptimeID); ok {
		node.SetText(render.FormatUptime(status.UptimeMillis()))
	}
}

// Stats returns a snapshot of the tick counters
func (l *Loop) Stats() Stats {
	l.statsMu.Lock()
	defer l.statsMu.Unlock()
	return l.stats
}

// Handle controls a running periodic refresh
type Handle struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the refresh and waits for in-flight ticks to return.
// It is safe to call more than once.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.cancel()
		<-h.done
	})
}

// Done is closed once the refresh has fully stopped
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
