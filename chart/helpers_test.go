package chart

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/chartkit/frame"
	"github.com/rustyeddy/chartkit/market"
	"github.com/rustyeddy/chartkit/surface"
)

const t0 = int64(1_700_000_040) // minute aligned

// genBars returns n one-minute bars drifting around 100.
func genBars(n int) []market.Bar {
	bars := make([]market.Bar, n)
	price := 100.0
	for i := range bars {
		open := price
		closePrice := open + math.Sin(float64(i)/3)*2
		bars[i] = market.Bar{
			Time:   t0 + int64(i)*60,
			Open:   open,
			High:   math.Max(open, closePrice) + 1,
			Low:    math.Min(open, closePrice) - 1,
			Close:  closePrice,
			Volume: 1000 + float64(i%7)*100,
		}
		price = closePrice
	}
	return bars
}

// recorders is a surface.Provider that keeps every recorder it hands out.
type recorders struct {
	list []*surface.Recorder
	fail bool
}

func (rs *recorders) provide(w, h int) (surface.Surface, error) {
	if rs.fail {
		return nil, surface.ErrNoSurface
	}
	rec := surface.NewRecorder(float64(w), float64(h))
	rs.list = append(rs.list, rec)
	return rec, nil
}

func (rs *recorders) last() *surface.Recorder { return rs.list[len(rs.list)-1] }

type harness struct {
	r     *Renderer
	sched *frame.Manual
	surfs *recorders
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	sched := frame.NewManual(time.Unix(1_000, 0))
	surfs := &recorders{}
	r, err := New(surfs.provide, sched, 800, 600, opts)
	require.NoError(t, err)
	return &harness{r: r, sched: sched, surfs: surfs}
}

// settle runs frames until the renderer is idle.
func (h *harness) settle() int {
	return h.sched.RunFor(10*time.Second, 16*time.Millisecond)
}
