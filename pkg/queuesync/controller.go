package queuesync

import (
	"context"
	"log"
	"sync"
	"time"
)

// ChannelHealth is the controller's assessment of the push channel.
type ChannelHealth int

const (
	// Connected: subscribed and heard from the server within the health
	// timeout (or freshly subscribed). Polling is a slow safety net.
	Connected ChannelHealth = iota
	// Degraded: subscribed but silent past the health timeout. Polling
	// runs at the fast cadence.
	Degraded
	// Disconnected: no push transport; fast polling only.
	Disconnected
	// Offline: no network at all; polling is suspended until restored.
	Offline
)

// ViewerState is the logical situation of the viewer, which scales how
// eagerly it polls.
type ViewerState int

const (
	ViewerIdle ViewerState = iota
	ViewerWaiting
	ViewerNearFront
	ViewerConsultation
	ViewerBackground
)

// NearFrontPosition is the queue position at or under which a waiting
// viewer is considered near the front.
const NearFrontPosition = 3

// ViewerStateFor derives the viewer state for one devotee from a snapshot.
// Callers feed the result to SetViewerState after each applied snapshot;
// background/foreground is the caller's to report via SetVisible.
func ViewerStateFor(snap *Snapshot, userID uint) ViewerState {
	if snap == nil {
		return ViewerIdle
	}
	for _, e := range snap.Entries {
		if e.UserID != userID {
			continue
		}
		switch e.Status {
		case "in_progress":
			return ViewerConsultation
		case "waiting":
			if e.Position > 0 && e.Position <= NearFrontPosition {
				return ViewerNearFront
			}
			return ViewerWaiting
		}
	}
	return ViewerIdle
}

// PollIntervals holds the cadence pair for one viewer state.
type PollIntervals struct {
	Healthy  time.Duration
	Fallback time.Duration
}

// DefaultPollTable keeps healthy-push polling 2-8x slower than fallback
// polling for the same viewer state: push is the primary freshness signal,
// polling only reconciles.
var DefaultPollTable = map[ViewerState]PollIntervals{
	ViewerIdle:         {Healthy: 60 * time.Second, Fallback: 15 * time.Second},
	ViewerWaiting:      {Healthy: 30 * time.Second, Fallback: 10 * time.Second},
	ViewerNearFront:    {Healthy: 10 * time.Second, Fallback: 5 * time.Second},
	ViewerConsultation: {Healthy: 30 * time.Second, Fallback: 10 * time.Second},
	ViewerBackground:   {Healthy: 240 * time.Second, Fallback: 60 * time.Second},
}

const defaultHealthTimeout = 60 * time.Second

// maxFetchRetries bounds the backoff loop for one refresh; after that the
// stale snapshot simply stays visible until the next cycle.
const maxFetchRetries = 5

// Controller keeps one viewer in sync. It owns its push subscription, its
// polling timer, and its cache key; Stop releases all of them and any
// in-flight fetch result is discarded, never applied.
type Controller struct {
	dialer  Dialer
	fetcher Fetcher
	cache   *QueryCache
	key     SnapshotKey

	// HealthTimeout demotes Connected to Degraded when no push message
	// arrives for this long.
	HealthTimeout time.Duration
	PollTable     map[ViewerState]PollIntervals

	// OnSnapshot, when set, observes every applied snapshot.
	OnSnapshot func(*Snapshot)
	// OnEvent, when set, observes every push event after bookkeeping.
	OnEvent func(Event)

	mu       sync.Mutex
	health   ChannelHealth
	viewer   ViewerState
	lastPush time.Time
	inflight bool
	stopped  bool
	gen      uint64

	channel   PushChannel
	pollTimer *time.Timer
	runCtx    context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewController(dialer Dialer, fetcher Fetcher, cache *QueryCache, key SnapshotKey) *Controller {
	return &Controller{
		dialer:        dialer,
		fetcher:       fetcher,
		cache:         cache,
		key:           key,
		HealthTimeout: defaultHealthTimeout,
		PollTable:     DefaultPollTable,
		health:        Disconnected,
		viewer:        ViewerIdle,
	}
}

// ======================================================
// Lifecycle
// ======================================================

// Start subscribes to the push channel and begins the polling loop. A
// failed dial is not fatal: the controller runs disconnected on fast
// polling and keeps trying to subscribe in the background.
func (c *Controller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.runCtx = ctx
	c.cancel = cancel
	c.stopped = false
	c.mu.Unlock()

	c.wg.Add(1)
	go c.subscribeLoop(ctx)

	c.wg.Add(1)
	go c.healthLoop(ctx)

	c.schedulePoll()
	c.Refresh(ctx)
}

// Stop tears the controller down: the subscription closes, timers are
// cancelled, and any fetch still in flight is discarded on completion.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.gen++
	if c.pollTimer != nil {
		c.pollTimer.Stop()
		c.pollTimer = nil
	}
	channel := c.channel
	c.channel = nil
	cancel := c.cancel
	c.mu.Unlock()

	if channel != nil {
		channel.Close()
	}
	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

// ======================================================
// Push channel
// ======================================================

func (c *Controller) subscribeLoop(ctx context.Context) {
	defer c.wg.Done()

	backoff := NewBackoff()
	for {
		if ctx.Err() != nil {
			return
		}

		ch, err := c.dialer.Dial(ctx)
		if err != nil {
			c.setHealth(Disconnected)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff.Next()):
				continue
			}
		}
		backoff.Reset()

		c.mu.Lock()
		if c.stopped {
			c.mu.Unlock()
			ch.Close()
			return
		}
		c.channel = ch
		c.lastPush = time.Now()
		c.mu.Unlock()

		// A fresh subscription counts as healthy until proven silent.
		c.setHealth(Connected)

		for ev := range ch.Events() {
			c.onPush(ctx, ev)
		}

		// Transport dropped; redial.
		c.setHealth(Disconnected)
	}
}

// onPush treats the event as a freshness hint: it feeds the health timer,
// invalidates the viewer's snapshot, and triggers a reconciling refetch.
func (c *Controller) onPush(ctx context.Context, ev Event) {
	c.mu.Lock()
	c.lastPush = time.Now()
	if c.health == Degraded {
		c.health = Connected
	}
	stopped := c.stopped
	c.mu.Unlock()

	if stopped {
		return
	}

	c.cache.Invalidate(c.key)
	c.Refresh(ctx)

	if c.OnEvent != nil {
		c.OnEvent(ev)
	}
}

func (c *Controller) healthLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.HealthTimeout / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.health == Connected && time.Since(c.lastPush) > c.HealthTimeout {
				c.health = Degraded
				c.mu.Unlock()
				// The next scheduled poll must use the fast cadence.
				c.schedulePoll()
				continue
			}
			c.mu.Unlock()
		}
	}
}

// ======================================================
// Health / viewer state
// ======================================================

func (c *Controller) Health() ChannelHealth {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.health
}

func (c *Controller) setHealth(h ChannelHealth) {
	c.mu.Lock()
	if c.stopped || c.health == h || c.health == Offline {
		c.mu.Unlock()
		return
	}
	c.health = h
	c.mu.Unlock()
	c.schedulePoll()
}

// SetViewerState reports the viewer's logical situation so the polling
// cadence can adapt. Position-driven callers should pass ViewerNearFront
// when their position is at or under NearFrontPosition.
func (c *Controller) SetViewerState(v ViewerState) {
	c.mu.Lock()
	changed := c.viewer != v
	c.viewer = v
	c.mu.Unlock()
	if changed {
		c.schedulePoll()
	}
}

// SetVisible maps tab visibility onto the viewer state and forces a
// synchronous refresh on return to the foreground.
func (c *Controller) SetVisible(ctx context.Context, visible bool) {
	if !visible {
		c.SetViewerState(ViewerBackground)
		return
	}
	c.SetViewerState(ViewerWaiting)
	c.cache.Invalidate(c.key)
	c.Refresh(ctx)
}

// SetOnline suspends all polling while offline and forces one immediate
// resync when the network returns.
func (c *Controller) SetOnline(ctx context.Context, online bool) {
	c.mu.Lock()
	if !online {
		c.health = Offline
		if c.pollTimer != nil {
			c.pollTimer.Stop()
			c.pollTimer = nil
		}
		c.mu.Unlock()
		return
	}
	if c.health == Offline {
		c.health = Disconnected
	}
	c.mu.Unlock()

	c.cache.Invalidate(c.key)
	c.Refresh(ctx)
	c.schedulePoll()
}

// PollInterval exposes the cadence the next scheduled poll will use.
func (c *Controller) PollInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pollIntervalLocked()
}

func (c *Controller) pollIntervalLocked() time.Duration {
	table := c.PollTable
	if table == nil {
		table = DefaultPollTable
	}
	iv, ok := table[c.viewer]
	if !ok {
		iv = table[ViewerIdle]
	}
	if c.health == Connected {
		return iv.Healthy
	}
	return iv.Fallback
}

// ======================================================
// Polling
// ======================================================

func (c *Controller) schedulePoll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped || c.health == Offline {
		return
	}
	if c.pollTimer != nil {
		c.pollTimer.Stop()
	}

	interval := c.pollIntervalLocked()
	ctx := c.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	c.pollTimer = time.AfterFunc(interval, func() {
		c.Refresh(ctx)
		c.schedulePoll()
	})
}

// Refresh pulls a fresh snapshot unless one fetch for this key is already
// in flight; the losing caller is satisfied by the winner's result. Results
// arriving after Stop (or after a newer generation superseded them) are
// discarded, never applied.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	if c.stopped || c.health == Offline || c.inflight {
		c.mu.Unlock()
		return
	}
	c.inflight = true
	gen := c.gen
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		snap, err := c.fetchWithBackoff(ctx)

		c.mu.Lock()
		c.inflight = false
		discard := c.stopped || gen != c.gen
		c.mu.Unlock()

		if err != nil || snap == nil || discard {
			// Stale-but-present data stays visible.
			return
		}

		c.cache.Set(c.key, snap)
		if c.OnSnapshot != nil {
			c.OnSnapshot(snap)
		}
	}()
}

func (c *Controller) fetchWithBackoff(ctx context.Context) (*Snapshot, error) {
	backoff := NewBackoff()
	var lastErr error

	for attempt := 0; attempt < maxFetchRetries; attempt++ {
		if c.Health() == Offline {
			break
		}

		snap, err := c.fetcher.FetchQueue(ctx, c.key)
		if err == nil {
			return snap, nil
		}
		lastErr = err

		// Authorization failures never resolve by retrying.
		if IsAuthError(err) {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff.Next()):
		}
	}

	if lastErr != nil {
		log.Println("queuesync: fetch failed, keeping stale snapshot:", lastErr)
	}
	return nil, lastErr
}
