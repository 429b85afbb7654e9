package chart

import (
	"fmt"

	"github.com/rustyeddy/chartkit/indicators"
	"github.com/rustyeddy/chartkit/market"
)

// drawMode is how one output line is painted.
type drawMode int

const (
	drawLine drawMode = iota
	drawHistogram
	drawBand // filled area between this line and the next one
)

// kindSpec is the closed table entry behind every indicator kind.
type kindSpec struct {
	calc    indicators.Calculator
	overlay bool
	// fixed pins the panel domain to 0..100
	fixed    bool
	modes    map[string]drawMode
	style    Style
	colorize func(out *indicators.Output, bars []market.Bar, p indicators.Params, st Style)
	height   float64
}

var kinds = map[indicators.Kind]kindSpec{
	indicators.KindSMA: {
		overlay: true,
		style:   Style{Colors: []string{"#2962ff"}, Width: 1.5},
	},
	indicators.KindEMA: {
		overlay: true,
		style:   Style{Colors: []string{"#ff6d00"}, Width: 1.5},
	},
	indicators.KindBollinger: {
		overlay: true,
		modes:   map[string]drawMode{"upper": drawBand},
		style:   Style{Colors: []string{"#2196f3", "#ff6d00", "#2196f3"}, Width: 1, Opacity: 0.08},
	},
	indicators.KindRSI: {
		fixed:    true,
		style:    Style{Colors: []string{"#7e57c2"}, Width: 1.5, UpColor: "#26a69a", DownColor: "#ef5350"},
		colorize: colorThresholds("rsi"),
		height:   100,
	},
	indicators.KindStochastic: {
		fixed:    true,
		style:    Style{Colors: []string{"#2962ff", "#ff6d00"}, Width: 1.5, UpColor: "#26a69a", DownColor: "#ef5350"},
		colorize: colorThresholds("k"),
		height:   100,
	},
	indicators.KindMACD: {
		modes:    map[string]drawMode{"histogram": drawHistogram},
		style:    Style{Colors: []string{"#26a69a", "#2962ff", "#ff6d00"}, Width: 1.5, UpColor: "#26a69a", DownColor: "#ef5350"},
		colorize: colorSign("histogram"),
		height:   120,
	},
	indicators.KindVolume: {
		modes:    map[string]drawMode{"volume": drawHistogram},
		style:    Style{Colors: []string{"#90a4ae"}, UpColor: "#26a69a", DownColor: "#ef5350", Opacity: 0.6},
		colorize: colorDirection("volume"),
		height:   80,
	},
	indicators.KindForce: {
		modes:    map[string]drawMode{"force": drawHistogram},
		style:    Style{Colors: []string{"#90a4ae"}, UpColor: "#26a69a", DownColor: "#ef5350"},
		colorize: colorSign("force"),
		height:   80,
	},
	indicators.KindATR: {
		style:  Style{Colors: []string{"#ab47bc"}, Width: 1.5},
		height: 80,
	},
	indicators.KindADX: {
		style:  Style{Colors: []string{"#ff6d00", "#26a69a", "#ef5350"}, Width: 1.5},
		height: 100,
	},
}

func init() {
	for k, spec := range kinds {
		calc, err := indicators.Lookup(k)
		if err != nil {
			panic(fmt.Sprintf("chart: no calculator for %s", k))
		}
		spec.calc = calc
		kinds[k] = spec
	}
}

func lookupKind(k indicators.Kind) (kindSpec, error) {
	spec, ok := kinds[k]
	if !ok {
		return kindSpec{}, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	return spec, nil
}

// IsOverlay reports whether kind draws on the price pane by default.
func IsOverlay(k indicators.Kind) bool {
	return kinds[k].overlay
}

func colorSign(name string) func(*indicators.Output, []market.Bar, indicators.Params, Style) {
	return func(out *indicators.Output, _ []market.Bar, _ indicators.Params, st Style) {
		vals := out.Line(name)
		for i := range vals {
			switch {
			case vals[i].Value > 0:
				vals[i].Color = st.UpColor
			case vals[i].Value < 0:
				vals[i].Color = st.DownColor
			default:
				vals[i].Color = ""
			}
		}
	}
}

func colorThresholds(name string) func(*indicators.Output, []market.Bar, indicators.Params, Style) {
	return func(out *indicators.Output, _ []market.Bar, p indicators.Params, st Style) {
		vals := out.Line(name)
		for i := range vals {
			switch {
			case p.Overbought != 0 && vals[i].Value >= p.Overbought:
				vals[i].Color = st.DownColor
			case p.Oversold != 0 && vals[i].Value <= p.Oversold:
				vals[i].Color = st.UpColor
			default:
				vals[i].Color = ""
			}
		}
	}
}

// colorDirection colors each value by the direction of the bar it belongs to.
func colorDirection(name string) func(*indicators.Output, []market.Bar, indicators.Params, Style) {
	return func(out *indicators.Output, bars []market.Bar, _ indicators.Params, st Style) {
		vals := out.Line(name)
		j := 0
		for i := range vals {
			for j < len(bars) && bars[j].Time < vals[i].Time {
				j++
			}
			if j == len(bars) {
				break
			}
			if bars[j].Up() {
				vals[i].Color = st.UpColor
			} else {
				vals[i].Color = st.DownColor
			}
		}
	}
}
