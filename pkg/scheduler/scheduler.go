// Package scheduler runs diagram events one at a time on a single goroutine.
// Gesture, window and socket producers post events from any goroutine; the
// controller only ever sees them in posting order, each run to completion.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"cdr.dev/slog"

	logs "github.com/recera/netviz/pkg/debug"
	"github.com/recera/netviz/pkg/netgraph"
)

// ErrStopped is returned when posting to a scheduler that is no longer running.
var ErrStopped = errors.New("scheduler stopped")

// Dispatcher consumes events. *netgraph.Controller implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev netgraph.Event) error
}

// call runs a function on the loop goroutine.
type call struct {
	fn   func()
	done chan struct{}
}

func (call) Kind() string { return "call" }

// Scheduler serializes events onto one goroutine.
type Scheduler struct {
	target  Dispatcher
	queue   chan netgraph.Event
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	running atomic.Bool

	processed atomic.Uint64
	failed    atomic.Uint64
}

// NewScheduler creates a scheduler with room for buffer queued events.
func NewScheduler(target Dispatcher, buffer int) *Scheduler {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Scheduler{
		target: target,
		queue:  make(chan netgraph.Event, buffer),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins the loop in a new goroutine. It stops when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		logs.Debug(ctx, "scheduler already running")
		return
	}
	go s.loop(ctx)
}

// Stop ends the loop and waits for the in-flight event to finish.
func (s *Scheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	if s.running.Load() {
		<-s.done
	}
}

// IsRunning reports whether the loop goroutine is alive.
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

// Post queues ev. It blocks while the queue is full.
func (s *Scheduler) Post(ctx context.Context, ev netgraph.Event) error {
	if ev == nil {
		return errors.New("nil event")
	}
	select {
	case <-s.stop:
		return ErrStopped
	default:
	}
	select {
	case s.queue <- ev:
		return nil
	case <-s.stop:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop goroutine after every event posted before it,
// and waits for it. Use it to read controller state consistently.
func (s *Scheduler) Do(ctx context.Context, fn func()) error {
	c := call{fn: fn, done: make(chan struct{})}
	if err := s.Post(ctx, c); err != nil {
		return err
	}
	select {
	case <-c.done:
		return nil
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Processed returns how many events were handled.
func (s *Scheduler) Processed() uint64 { return s.processed.Load() }

// Failed returns how many events were rejected or panicked.
func (s *Scheduler) Failed() uint64 { return s.failed.Load() }

func (s *Scheduler) loop(ctx context.Context) {
	defer func() {
		s.running.Store(false)
		close(s.done)
	}()
	ctx = logs.Named(ctx, "scheduler")
	logs.Debug(ctx, "loop started")
	for {
		select {
		case ev := <-s.queue:
			s.process(ctx, ev)
		case <-s.stop:
			logs.Debug(ctx, "loop stopped")
			return
		case <-ctx.Done():
			logs.Debug(ctx, "loop cancelled", slog.Error(ctx.Err()))
			return
		}
	}
}

// process handles a single event. A panic in the target is logged and the loop continues.
func (s *Scheduler) process(ctx context.Context, ev netgraph.Event) {
	defer func() {
		if r := recover(); r != nil {
			s.failed.Add(1)
			logs.Error(ctx, "event panicked",
				slog.F("event", ev.Kind()),
				slog.F("panic", fmt.Sprint(r)),
				slog.F("stack", string(debug.Stack())))
		}
	}()

	if c, ok := ev.(call); ok {
		defer close(c.done)
		c.fn()
		return
	}

	s.processed.Add(1)
	if err := s.target.Dispatch(ctx, ev); err != nil {
		s.failed.Add(1)
	}
}

// Dispatch queues ev, so a Scheduler can stand in for a controller as an event sink.
func (s *Scheduler) Dispatch(ctx context.Context, ev netgraph.Event) error {
	return s.Post(ctx, ev)
}
