// Package frame provides the per-frame callback scheduling the chart uses
// for animation. Callbacks always run on the goroutine that drives the
// scheduler; nothing here starts goroutines of its own.
package frame

import (
	"context"
	"sort"
	"time"
)

// Handle identifies a requested frame. The zero Handle is never issued.
type Handle uint64

// Callback receives the frame timestamp.
type Callback func(now time.Time)

// Scheduler hands out one-shot frame callbacks. Now reads the same clock
// the frame timestamps come from.
type Scheduler interface {
	RequestFrame(cb Callback) Handle
	Cancel(h Handle)
	Now() time.Time
}

// queue is the bookkeeping shared by the schedulers below.
type queue struct {
	next    Handle
	pending map[Handle]Callback
}

func (q *queue) request(cb Callback) Handle {
	if q.pending == nil {
		q.pending = make(map[Handle]Callback)
	}
	q.next++
	q.pending[q.next] = cb
	return q.next
}

func (q *queue) cancel(h Handle) { delete(q.pending, h) }

// flush runs the callbacks pending at call time, oldest first. Callbacks
// requested while flushing wait for the next frame.
func (q *queue) flush(now time.Time) int {
	if len(q.pending) == 0 {
		return 0
	}
	handles := make([]Handle, 0, len(q.pending))
	for h := range q.pending {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	n := 0
	for _, h := range handles {
		cb, ok := q.pending[h]
		if !ok {
			// cancelled by an earlier callback in this frame
			continue
		}
		delete(q.pending, h)
		cb(now)
		n++
	}
	return n
}

// Manual is a deterministic Scheduler driven by an explicit clock.
type Manual struct {
	q   queue
	now time.Time
}

// NewManual returns a scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) RequestFrame(cb Callback) Handle { return m.q.request(cb) }
func (m *Manual) Cancel(h Handle)                 { m.q.cancel(h) }

// Now returns the scheduler clock.
func (m *Manual) Now() time.Time { return m.now }

// Pending reports how many frames are waiting.
func (m *Manual) Pending() int { return len(m.q.pending) }

// Advance moves the clock by d and runs one frame. It returns the number of
// callbacks fired.
func (m *Manual) Advance(d time.Duration) int {
	m.now = m.now.Add(d)
	return m.q.flush(m.now)
}

// RunFor advances in steps of step until total has elapsed or no frame is
// pending, returning the number of frames run.
func (m *Manual) RunFor(total, step time.Duration) int {
	frames := 0
	for elapsed := time.Duration(0); elapsed < total && m.Pending() > 0; elapsed += step {
		m.Advance(step)
		frames++
	}
	return frames
}

// Loop is a real-time Scheduler for hosts without their own frame clock.
// Run drives it on the calling goroutine.
type Loop struct {
	q        queue
	interval time.Duration
}

// NewLoop returns a loop ticking every interval; 16ms when zero.
func NewLoop(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &Loop{interval: interval}
}

func (l *Loop) RequestFrame(cb Callback) Handle { return l.q.request(cb) }
func (l *Loop) Cancel(h Handle)                 { l.q.cancel(h) }

// Now is wall-clock time, the timebase of the ticker.
func (l *Loop) Now() time.Time { return time.Now() }

// Run fires pending frames on every tick until none are left or ctx is
// done.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for len(l.q.pending) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			l.q.flush(now)
		}
	}
	return nil
}
