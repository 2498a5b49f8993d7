package bridge

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/scenebridge/internal/dispatch"
	"github.com/muurk/scenebridge/internal/logging"
	"github.com/muurk/scenebridge/internal/queue"
	"github.com/muurk/scenebridge/internal/scene"
	"github.com/muurk/scenebridge/internal/server"
)

// Poll delays returned by Step
const (
	DefaultBusyDelay = time.Second / 60
	DefaultIdleDelay = 50 * time.Millisecond
)

// Config holds the bridge configuration
type Config struct {
	Server    server.Config
	BusyDelay time.Duration // delay after a step that drained anything
	IdleDelay time.Duration // delay after an empty step
	Camera    string        // object rotated by focus_on
}

// DefaultConfig returns the bridge defaults.
func DefaultConfig() Config {
	return Config{
		Server:    server.DefaultConfig(),
		BusyDelay: DefaultBusyDelay,
		IdleDelay: DefaultIdleDelay,
		Camera:    scene.DefaultCameraName,
	}
}

// Stats counts messages handled since the bridge was created.
type Stats struct {
	Received uint64 // inbound messages dispatched
	Applied  uint64 // outcomes with OK set
	Failed   uint64 // outcomes with OK unset
	Sent     uint64 // outbound messages written to a client
	Dropped  uint64 // outbound messages discarded with no client attached
}

// Bridge connects the listener goroutine to the host loop through two
// queues. The queues live as long as the bridge and survive reconnects.
type Bridge struct {
	server     *server.Server
	inbound    *queue.Queue
	outbound   *queue.Queue
	dispatcher *dispatch.Dispatcher

	running   atomic.Bool
	busyDelay atomic.Int64
	idleDelay atomic.Int64

	received atomic.Uint64
	applied  atomic.Uint64
	failed   atomic.Uint64
	sent     atomic.Uint64
	dropped  atomic.Uint64

	mu        sync.Mutex
	onOutcome func(dispatch.Outcome)
}

// New creates a bridge that applies commands to sc.
func New(config Config, sc scene.Scene) *Bridge {
	b := &Bridge{
		inbound:  queue.New(),
		outbound: queue.New(),
	}

	var opts []dispatch.Option
	if config.Camera != "" {
		opts = append(opts, dispatch.WithCamera(config.Camera))
	}
	b.dispatcher = dispatch.New(sc, b.outbound, opts...)
	b.server = server.New(config.Server, b.inbound)
	b.SetPollDelays(config.BusyDelay, config.IdleDelay)
	return b
}

// Start binds the listener. Step reports running from here until Stop.
func (b *Bridge) Start() error {
	if err := b.server.Start(); err != nil {
		return err
	}
	b.running.Store(true)
	return nil
}

// Stop tells Step to stop rescheduling and shuts the listener down.
func (b *Bridge) Stop(timeout time.Duration) error {
	if !b.running.Swap(false) {
		return nil
	}
	err := b.server.Stop(timeout)
	if errors.Is(err, server.ErrStopTimeout) {
		logging.Warn("Listener did not stop in time", zap.Duration("timeout", timeout))
	}
	return err
}

// Running reports whether the bridge is started.
func (b *Bridge) Running() bool {
	return b.running.Load()
}

// Step is one tick of the host loop. It dispatches the inbound messages
// queued at entry, then writes every outbound message to the client or
// discards it when none is attached. It never blocks on the network.
//
// The returned delay is the busy delay when inbound messages were drained
// and the idle delay otherwise. Outbound traffic alone does not count. running is false once the bridge is stopped.
func (b *Bridge) Step() (delay time.Duration, running bool) {
	if !b.running.Load() {
		return 0, false
	}

	inbound := b.inbound.Drain()
	for _, msg := range inbound {
		b.received.Add(1)
		outcome := b.dispatcher.Dispatch(msg)
		if outcome.OK {
			b.applied.Add(1)
		} else {
			b.failed.Add(1)
		}
		b.notify(outcome)
	}

	outbound := b.outbound.Drain()
	for _, msg := range outbound {
		if err := b.server.Send(msg); err != nil {
			b.dropped.Add(1)
			logging.Debug("Discarding outbound message", zap.Error(err), zap.Int("length", len(msg)))
			continue
		}
		b.sent.Add(1)
	}

	if len(inbound) > 0 {
		return time.Duration(b.busyDelay.Load()), true
	}
	return time.Duration(b.idleDelay.Load()), true
}

// SetPollDelays changes the delays returned by Step. Zero or negative values
// select the defaults. Safe to call while the scheduler runs.
func (b *Bridge) SetPollDelays(busy, idle time.Duration) {
	if busy <= 0 {
		busy = DefaultBusyDelay
	}
	if idle <= 0 {
		idle = DefaultIdleDelay
	}
	b.busyDelay.Store(int64(busy))
	b.idleDelay.Store(int64(idle))
}

// PollDelays returns the current busy and idle delays.
func (b *Bridge) PollDelays() (busy, idle time.Duration) {
	return time.Duration(b.busyDelay.Load()), time.Duration(b.idleDelay.Load())
}

// OnOutcome registers a hook called on the host goroutine after each
// dispatched message.
func (b *Bridge) OnOutcome(fn func(dispatch.Outcome)) {
	b.mu.Lock()
	b.onOutcome = fn
	b.mu.Unlock()
}

func (b *Bridge) notify(outcome dispatch.Outcome) {
	b.mu.Lock()
	fn := b.onOutcome
	b.mu.Unlock()
	if fn != nil {
		fn(outcome)
	}
}

// Stats returns the message counters.
func (b *Bridge) Stats() Stats {
	return Stats{
		Received: b.received.Load(),
		Applied:  b.applied.Load(),
		Failed:   b.failed.Load(),
		Sent:     b.sent.Load(),
		Dropped:  b.dropped.Load(),
	}
}

// Server returns the listener.
func (b *Bridge) Server() *server.Server { return b.server }

// Inbound returns the controller-to-host queue.
func (b *Bridge) Inbound() *queue.Queue { return b.inbound }

// Outbound returns the host-to-controller queue.
func (b *Bridge) Outbound() *queue.Queue { return b.outbound }
