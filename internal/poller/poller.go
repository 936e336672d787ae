// Package poller keeps the fleet snapshot store near-real-time: it runs
// one recurring fetch-and-merge cycle against the platform backend, owns
// the in-flight dedup and the sticky last-error, and is the store's only
// writer.
package poller

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/sublymus/sublyadmin/internal/fleet"
)

// DefaultInterval matches the console's historical 2-minute cadence:
// cheap on the backend, eventually consistent for the operator.
const DefaultInterval = 2 * time.Minute

// ErrInFlight is returned by FetchOnce when another cycle is still
// running; the call is skipped, never queued.
var ErrInFlight = errors.New("poll already in flight")

// Fetcher obtains a fleet snapshot. *backend.Client satisfies it.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (fleet.Snapshot, error)
}

// HostProber supplies local host status when the backend omits the host
// section. Optional; nil means a bare-list response leaves host data absent.
type HostProber interface {
	HostStatus() (*fleet.HostStatus, error)
}

// Poller drives the store. Create with New, then either Start/Stop the
// recurring loop or call FetchOnce directly for one-shot use.
type Poller struct {
	store    *fleet.Store
	fetch    Fetcher
	probe    HostProber
	interval time.Duration

	// fetchMu serializes fetch-and-merge cycles; TryLock implements the
	// skip-if-in-flight policy.
	fetchMu sync.Mutex

	mu       sync.Mutex
	lastErr  error
	lastPoll time.Time
	cancel   context.CancelFunc
	done     chan struct{}
	kick     chan struct{}
}

// New creates a poller feeding store from fetch every interval.
// probe may be nil.
func New(store *fleet.Store, fetch Fetcher, probe HostProber, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		store:    store,
		fetch:    fetch,
		probe:    probe,
		interval: interval,
		kick:     make(chan struct{}, 1),
	}
}

// Start begins the recurring cycle, fetching immediately and then on
// every interval tick or Kick. Calling Start on a running poller is a no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

// Stop cancels the recurring cycle and waits for it to wind down. A cycle
// already in flight completes and its result is still merged. Safe to
// call repeatedly.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Kick requests an immediate out-of-cadence cycle from the running loop,
// e.g. after a dispatched action. Non-blocking; coalesces with a pending
// kick. Without a running loop it is a no-op.
func (p *Poller) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// FetchOnce performs one fetch-and-merge cycle. On failure the store is
// left untouched and the error becomes the sticky LastErr; on success
// LastErr clears. Returns ErrInFlight when another cycle is running.
func (p *Poller) FetchOnce(ctx context.Context) error {
	if !p.fetchMu.TryLock() {
		return ErrInFlight
	}
	defer p.fetchMu.Unlock()

	snap, err := p.fetch.FetchSnapshot(ctx)
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		return err
	}

	if snap.Host == nil && p.probe != nil {
		if host, perr := p.probe.HostStatus(); perr == nil {
			snap.Host = host
		} else {
			log.Printf("[poller] local host probe failed: %v", perr)
		}
	}

	p.store.Merge(snap)
	p.mu.Lock()
	p.lastErr = nil
	p.lastPoll = time.Now()
	p.mu.Unlock()
	return nil
}

// LastErr returns the sticky error from the most recent failed cycle,
// or nil after a successful one.
func (p *Poller) LastErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// LastPoll returns the completion time of the last successful cycle.
func (p *Poller) LastPoll() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPoll
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	cycle := func() {
		// Fetches run on context.Background so teardown never drops a
		// merge for a response already on the wire; the HTTP client's
		// own timeout bounds the cycle.
		if err := p.FetchOnce(context.Background()); err != nil && !errors.Is(err, ErrInFlight) {
			log.Printf("[poller] cycle failed: %v", err)
		}
		// Drop any tick or kick that fired while the cycle was running.
		select {
		case <-ticker.C:
		default:
		}
		select {
		case <-p.kick:
		default:
		}
	}

	cycle()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cycle()
		case <-p.kick:
			cycle()
		}
	}
}
