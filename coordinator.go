package euronet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the time between two poll cycles.
const DefaultInterval = 10 * time.Second

// Fetcher does a single request to the panel.
type Fetcher interface {
	Fetch(ctx context.Context, cmd Command) (string, error)
}

// Listener is called after every poll cycle with the latest good snapshot
// and the cycle error, which is nil on success.
// The snapshot might be nil if no cycle succeeded yet.
type Listener func(snap *Snapshot, err error)

// Coordinator polls the panel and publishes immutable snapshots.
//
// Cycles never overlap. A failed cycle keeps the previous snapshot around,
// marking it as stale until the next successful cycle.
type Coordinator struct {
	fetcher  Fetcher
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time

	cycle    sync.Mutex
	snapshot atomic.Pointer[Snapshot]

	mu        sync.RWMutex
	lastErr   error
	listeners []Listener
}

func NewCoordinator(fetcher Fetcher, interval, timeout time.Duration) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Coordinator{
		fetcher:  fetcher,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Subscribe adds a listener. Listeners must not call Refresh.
func (c *Coordinator) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Snapshot returns the latest good snapshot, nil before the first success.
func (c *Coordinator) Snapshot() *Snapshot {
	return c.snapshot.Load()
}

// LastError returns the error of the last cycle.
func (c *Coordinator) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Stale reports whether the last cycle failed.
func (c *Coordinator) Stale() bool {
	return c.LastError() != nil
}

// Run polls on every interval until the context is done.
func (c *Coordinator) Run(ctx context.Context) {
	tick := time.NewTicker(c.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			_ = c.Refresh(ctx)
		}
	}
}

// Refresh runs one poll cycle right away.
// Errors match ErrUpdateFailed.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.cycle.Lock()
	defer c.cycle.Unlock()

	snap, err := c.poll(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrUpdateFailed, err)
		log.Warn("could not update, keeping previous data", "err", err)
		c.setErr(err)
		c.notify(c.snapshot.Load(), err)
		return err
	}

	c.snapshot.Store(snap)
	c.setErr(nil)
	c.notify(snap, nil)
	return nil
}

func (c *Coordinator) poll(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status, err := c.fetch(ctx, CommandStatus)
	if err != nil {
		return nil, err
	}
	zones, err := c.fetch(ctx, CommandZones)
	if err != nil {
		return nil, err
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, ErrCycleTimeout
	}

	return &Snapshot{
		System:    DecodeSystem(status),
		GState:    DecodeGState(status),
		Ingressi:  DecodeIngressi(zones),
		UpdatedAt: c.now(),
	}, nil
}

func (c *Coordinator) fetch(ctx context.Context, cmd Command) (string, error) {
	body, err := c.fetcher.Fetch(ctx, cmd)
	if err == nil {
		return body, nil
	}
	var terr *TransportError
	if !errors.As(err, &terr) {
		err = &TransportError{Command: cmd, Err: err}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: %w", ErrCycleTimeout, err)
	}
	return "", err
}

func (c *Coordinator) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
}

func (c *Coordinator) notify(snap *Snapshot, err error) {
	c.mu.RLock()
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.RUnlock()
	for _, l := range listeners {
		l(snap, err)
	}
}
