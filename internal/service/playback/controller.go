package playback

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// DefaultMaxRing is how long a tone rings when nobody stops it.
const DefaultMaxRing = 300 * time.Second

// Resolver maps a tone to a playable path.
type Resolver interface {
	Resolve(tone string) (string, error)
}

// Player is the audio capability: it starts looping the file at path and
// returns a handle whose Close stops playback and releases the resource.
type Player interface {
	Play(path string) (io.Closer, error)
}

// Observer is told about state changes; metrics implement it.
type Observer interface {
	SetRinging(ringing bool)
	IncPlaybackFailure()
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxRing overrides DefaultMaxRing.
func WithMaxRing(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.maxRing = d
		}
	}
}

// WithClock sets the clock the ring bound is measured with.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithObserver registers an observer of ringing state.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observer = o
	}
}

// Controller starts and stops tones.
type Controller struct {
	resolver Resolver
	player   Player
	clock    clockwork.Clock
	maxRing  time.Duration
	observer Observer

	// starting serializes Start calls so at most one tone is being opened.
	starting sync.Mutex
	// mu guards current and generation.
	mu sync.Mutex
	// current is the ringing session, nil when silent.
	current *session
	// generation grows on every explicit stop; a Start that sees it change
	// while opening discards its tone.
	generation uint64
	// watchers tracks one goroutine per started session.
	watchers sync.WaitGroup
}

// session is one ringing tone.
type session struct {
	tone   string
	handle io.Closer
	// done is closed when the session ends for any reason.
	done chan struct{}
}

// NewController creates a silent controller.
func NewController(resolver Resolver, player Player, opts ...Option) *Controller {
	c := &Controller{
		resolver: resolver,
		player:   player,
		clock:    clockwork.NewRealClock(),
		maxRing:  DefaultMaxRing,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start rings tone, first silencing whatever rings now. It returns once
// playback has begun; the tone then rings until Stop, until the ring bound
// elapses, or until ctx is cancelled. On failure nothing rings.
//
// Opening the tone happens without holding the state lock, so Stop, IsActive
// and Tone answer while a file is being decoded. A Stop that lands during
// that window wins: the freshly opened tone is released at once.
func (c *Controller) Start(ctx context.Context, tone string) error {
	path, err := c.resolver.Resolve(tone)
	if err != nil {
		return err
	}

	c.starting.Lock()
	defer c.starting.Unlock()

	c.mu.Lock()
	c.stopLocked(ctx)
	generation := c.generation
	c.mu.Unlock()

	handle, err := c.player.Play(path)
	if err != nil {
		if c.observer != nil {
			c.observer.IncPlaybackFailure()
		}

		return &domain.PlaybackError{Tone: tone, Reason: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation || ctx.Err() != nil {
		logger.DebugKV(ctx, "Tone stopped while opening", "tone", tone)
		c.release(ctx, tone, handle)

		return nil
	}

	s := &session{
		tone:   tone,
		handle: handle,
		done:   make(chan struct{}),
	}
	c.current = s

	if c.observer != nil {
		c.observer.SetRinging(true)
	}

	timer := c.clock.NewTimer(c.maxRing)

	c.watchers.Go(func() {
		defer timer.Stop()

		select {
		case <-s.done:
			return
		case <-timer.Chan():
			logger.InfoKV(ctx, "Tone rang for the maximum duration, stopping", "tone", s.tone, "max_ring", c.maxRing)
		case <-ctx.Done():
		}

		c.end(ctx, s)
	})

	logger.InfoKV(ctx, "Tone started", "tone", tone, "path", path)

	return nil
}

// Stop silences the ringing tone, if any. It is idempotent and safe to call
// from any goroutine, including while Start is opening a tone.
func (c *Controller) Stop() {
	c.StopIfRinging()
}

// StopIfRinging silences the ringing tone and returns it. The check and the
// stop happen under one lock, so the returned tone is the one silenced.
func (c *Controller) StopIfRinging() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++

	if c.current == nil {
		return "", false
	}

	tone := c.current.tone
	c.stopLocked(context.Background())

	return tone, true
}

// IsActive reports whether a tone is ringing.
func (c *Controller) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current != nil
}

// Tone returns the ringing tone.
func (c *Controller) Tone() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return "", false
	}

	return c.current.tone, true
}

// Close stops playback and waits for every session watcher to exit.
func (c *Controller) Close() {
	c.Stop()
	c.watchers.Wait()
}

// end stops s if it is still the ringing session.
func (c *Controller) end(ctx context.Context, s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == s {
		c.stopLocked(ctx)
	}
}

// stopLocked must be called with mu held.
func (c *Controller) stopLocked(ctx context.Context) {
	s := c.current
	if s == nil {
		return
	}

	c.current = nil
	close(s.done)
	c.release(ctx, s.tone, s.handle)

	if c.observer != nil {
		c.observer.SetRinging(false)
	}

	logger.DebugKV(ctx, "Tone stopped", "tone", s.tone)
}

// release closes an audio handle.
func (c *Controller) release(ctx context.Context, tone string, handle io.Closer) {
	if err := handle.Close(); err != nil {
		logger.WarnKV(ctx, "Failed to release audio resource", "tone", tone, "error", err)
	}
}
