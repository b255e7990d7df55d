package rotor

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultFrameInterval is one frame at 60 Hz.
	DefaultFrameInterval = time.Second / 60
	// MaxFrameDelta caps the time fed into a single Tick so a stalled loop
	// does not jump the ring forward.
	MaxFrameDelta = 250 * time.Millisecond

	eventBuffer = 64
)

// EventKind names an input delivered to a running rotor.
type EventKind string

const (
	EventPointerDown  EventKind = "pointerdown"
	EventPointerMove  EventKind = "pointermove"
	EventPointerUp    EventKind = "pointerup"
	EventPointerLeave EventKind = "pointerleave"
	EventPointerEnter EventKind = "pointerenter"
	EventItems        EventKind = "items"
)

// Event is one input for the state machine.
type Event struct {
	Kind   EventKind
	X, Y   float64
	OnLink bool
	Items  []Item
}

// Apply feeds ev into the state machine. Unknown kinds are ignored.
func (r *Rotor) Apply(ev Event) {
	switch ev.Kind {
	case EventPointerDown:
		r.PointerDown(ev.X, ev.Y, ev.OnLink)
	case EventPointerMove:
		r.PointerMove(ev.X, ev.Y)
	case EventPointerUp:
		r.PointerUp()
	case EventPointerLeave:
		r.PointerLeave()
	case EventPointerEnter:
		r.SetHover(true)
	case EventItems:
		r.SetItems(ev.Items)
	}
}

// Runner is the handle of a running frame loop. The loop goroutine is the only
// writer of its Rotor; everything else reaches it through Send.
type Runner struct {
	events   chan Event
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Start runs r on its own goroutine, ticking every interval and calling emit
// with a fresh Frame after every tick and every applied event. emit runs on
// the loop goroutine and must not block.
//
// The loop ends when ctx is cancelled or Stop is called.
func Start(ctx context.Context, r *Rotor, interval time.Duration, emit func(Frame)) *Runner {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	h := &Runner{
		events: make(chan Event, eventBuffer),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go h.loop(ctx, r, interval, emit)
	return h
}

func (h *Runner) loop(ctx context.Context, r *Rotor, interval time.Duration, emit func(Frame)) {
	defer close(h.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	emit(r.Frame())

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stop:
			return
		case now := <-ticker.C:
			r.Tick(tickMillis(now.Sub(last)))
			last = now
			emit(r.Frame())
		case ev := <-h.events:
			r.Apply(ev)
			emit(r.Frame())
		}
	}
}

// tickMillis converts the wall time since the last tick into the Tick delta,
// capped at MaxFrameDelta.
func tickMillis(dt time.Duration) float64 {
	if dt > MaxFrameDelta {
		dt = MaxFrameDelta
	}
	return float64(dt) / float64(time.Millisecond)
}

// Send queues ev for the loop. It reports false once the loop has exited.
func (h *Runner) Send(ev Event) bool {
	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.events <- ev:
		return true
	case <-h.done:
		return false
	}
}

// Stop ends the loop and waits for it to exit. Safe to call more than once.
func (h *Runner) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	<-h.done
}

// Done is closed once the loop has exited.
func (h *Runner) Done() <-chan struct{} {
	return h.done
}
