package frame

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualRunsOncePerFrame(t *testing.T) {
	start := time.Unix(0, 0)
	m := NewManual(start)

	var got []time.Time
	var tick Callback
	tick = func(now time.Time) {
		got = append(got, now)
		if len(got) < 3 {
			m.RequestFrame(tick)
		}
	}
	m.RequestFrame(tick)

	assert.Equal(t, 1, m.Advance(10*time.Millisecond))
	assert.Equal(t, 1, m.Pending())
	assert.Equal(t, 2, m.RunFor(time.Second, 10*time.Millisecond))
	assert.Equal(t, 0, m.Pending())

	require.Len(t, got, 3)
	assert.Equal(t, start.Add(30*time.Millisecond), got[2])
}

func TestManualCancel(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	fired := 0
	h := m.RequestFrame(func(time.Time) { fired++ })
	assert.NotZero(t, h)

	m.Cancel(h)
	m.Cancel(h)
	assert.Equal(t, 0, m.Advance(time.Millisecond))
	assert.Equal(t, 0, fired)
}

func TestCancelDuringFlush(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	var second Handle
	fired := 0
	m.RequestFrame(func(time.Time) { m.Cancel(second) })
	second = m.RequestFrame(func(time.Time) { fired++ })

	assert.Equal(t, 1, m.Advance(time.Millisecond))
	assert.Equal(t, 0, fired)
}

func TestLoopRunsUntilIdle(t *testing.T) {
	l := NewLoop(time.Millisecond)
	frames := 0
	var tick Callback
	tick = func(time.Time) {
		frames++
		if frames < 3 {
			l.RequestFrame(tick)
		}
	}
	l.RequestFrame(tick)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Run(ctx))
	assert.Equal(t, 3, frames)
}

func TestLoopHonoursContext(t *testing.T) {
	l := NewLoop(time.Hour)
	l.RequestFrame(func(time.Time) {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
}

func TestSchedulersShareTheirFrameClock(t *testing.T) {
	var _ Scheduler = (*Manual)(nil)
	var _ Scheduler = (*Loop)(nil)

	m := NewManual(time.Unix(0, 0))
	var got time.Time
	m.RequestFrame(func(now time.Time) { got = now })
	m.Advance(16 * time.Millisecond)
	assert.Equal(t, m.Now(), got)

	l := NewLoop(time.Millisecond)
	before := l.Now()
	l.RequestFrame(func(now time.Time) { got = now })
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, l.Run(ctx))
	assert.False(t, got.Before(before))
	assert.False(t, l.Now().Before(got))
}
