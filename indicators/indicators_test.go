package indicators

import (
	"testing"

	"github.com/rustyeddy/chartkit/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closes(cs ...float64) []market.Bar {
	out := make([]market.Bar, len(cs))
	for i, c := range cs {
		out[i] = market.Bar{Time: int64(i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100}
	}
	return out
}

func createTestBars() []market.Bar {
	return []market.Bar{
		{Time: 0, Open: 100, High: 105, Low: 99, Close: 102, Volume: 10},
		{Time: 1, Open: 102, High: 107, Low: 101, Close: 105, Volume: 12},
		{Time: 2, Open: 105, High: 108, Low: 104, Close: 106, Volume: 9},
		{Time: 3, Open: 106, High: 110, Low: 105, Close: 108, Volume: 14},
		{Time: 4, Open: 108, High: 112, Low: 107, Close: 110, Volume: 11},
		{Time: 5, Open: 110, High: 113, Low: 109, Close: 111, Volume: 8},
		{Time: 6, Open: 111, High: 115, Low: 110, Close: 113, Volume: 15},
		{Time: 7, Open: 113, High: 116, Low: 112, Close: 109, Volume: 20},
		{Time: 8, Open: 109, High: 118, Low: 108, Close: 116, Volume: 13},
		{Time: 9, Open: 116, High: 120, Low: 115, Close: 118, Volume: 10},
		{Time: 10, Open: 118, High: 119, Low: 112, Close: 113, Volume: 17},
		{Time: 11, Open: 113, High: 117, Low: 111, Close: 116, Volume: 9},
	}
}

func TestSMA(t *testing.T) {
	out := SMA(closes(8, 10, 12), 3, market.PriceClose)

	vals := out.Line("sma")
	require.Len(t, vals, 1)
	assert.Equal(t, int64(2), vals[0].Time)
	assert.InDelta(t, 10.0, vals[0].Value, 1e-12)
}

func TestSMAConstantSeries(t *testing.T) {
	bars := closes(42.5, 42.5, 42.5, 42.5, 42.5, 42.5, 42.5)
	for _, v := range SMA(bars, 4, market.PriceClose).Line("sma") {
		assert.Equal(t, 42.5, v.Value)
	}
	assert.Len(t, SMA(bars, 4, market.PriceClose).Line("sma"), 4)
}

func TestEMA(t *testing.T) {
	vals := EMA(closes(1, 2, 3, 4, 5), 3, market.PriceClose).Line("ema")
	require.Len(t, vals, 3)

	// seeded by SMA(1,2,3) = 2, then multiplier 0.5
	assert.InDelta(t, 2.0, vals[0].Value, 1e-12)
	assert.InDelta(t, 3.0, vals[1].Value, 1e-12)
	assert.InDelta(t, 4.0, vals[2].Value, 1e-12)
	assert.Equal(t, int64(2), vals[0].Time)
}

func TestRSI(t *testing.T) {
	t.Run("bounded", func(t *testing.T) {
		vals := RSI(createTestBars(), 3, market.PriceClose).Line("rsi")
		require.Len(t, vals, 9)
		assert.Equal(t, int64(3), vals[0].Time)
		for _, v := range vals {
			assert.GreaterOrEqual(t, v.Value, 0.0)
			assert.LessOrEqual(t, v.Value, 100.0)
		}
	})

	t.Run("no losses is 100", func(t *testing.T) {
		vals := RSI(closes(1, 2, 3, 4, 5, 6), 3, market.PriceClose).Line("rsi")
		require.NotEmpty(t, vals)
		for _, v := range vals {
			assert.Equal(t, 100.0, v.Value)
		}
	})

	t.Run("no gains is 0", func(t *testing.T) {
		vals := RSI(closes(6, 5, 4, 3, 2, 1), 3, market.PriceClose).Line("rsi")
		require.NotEmpty(t, vals)
		for _, v := range vals {
			assert.Equal(t, 0.0, v.Value)
		}
	})
}

func TestMACD(t *testing.T) {
	bars := createTestBars()
	out := MACD(bars, 3, 5, 2, market.PriceClose)

	m, s, h := out.Line("macd"), out.Line("signal"), out.Line("histogram")
	// first value on bar max(fast,slow)+signal-2
	require.Len(t, m, len(bars)-5)
	require.Len(t, s, len(m))
	require.Len(t, h, len(m))
	assert.Equal(t, int64(5), m[0].Time)

	for i := range m {
		assert.Equal(t, m[i].Time, s[i].Time)
		assert.Equal(t, m[i].Time, h[i].Time)
		assert.Equal(t, m[i].Value-s[i].Value, h[i].Value)
	}

	assert.True(t, MACD(bars[:6], 3, 5, 2, market.PriceClose).Empty())
	assert.False(t, MACD(bars[:7], 3, 5, 2, market.PriceClose).Empty())
}

func TestBollinger(t *testing.T) {
	bars := createTestBars()

	t.Run("bands ordered", func(t *testing.T) {
		out := Bollinger(bars, 4, 2, market.PriceClose)
		u, m, l := out.Line("upper"), out.Line("middle"), out.Line("lower")
		require.Len(t, m, len(bars)-3)
		for i := range m {
			assert.GreaterOrEqual(t, u[i].Value, m[i].Value)
			assert.LessOrEqual(t, l[i].Value, m[i].Value)
			assert.InDelta(t, u[i].Value-m[i].Value, m[i].Value-l[i].Value, 1e-9)
		}
	})

	t.Run("zero k collapses", func(t *testing.T) {
		out := Bollinger(bars, 4, 0, market.PriceClose)
		u, m, l := out.Line("upper"), out.Line("middle"), out.Line("lower")
		for i := range m {
			assert.Equal(t, m[i].Value, u[i].Value)
			assert.Equal(t, m[i].Value, l[i].Value)
		}
	})

	t.Run("population deviation", func(t *testing.T) {
		// closes 2,4,4,4,5,5,7,9 have mean 5 and population sd 2
		out := Bollinger(closes(2, 4, 4, 4, 5, 5, 7, 9), 8, 1, market.PriceClose)
		require.Len(t, out.Line("middle"), 1)
		assert.InDelta(t, 5.0, out.Line("middle")[0].Value, 1e-12)
		assert.InDelta(t, 7.0, out.Line("upper")[0].Value, 1e-12)
		assert.InDelta(t, 3.0, out.Line("lower")[0].Value, 1e-12)
	})
}

func TestStochastic(t *testing.T) {
	t.Run("zero range is zero", func(t *testing.T) {
		bars := make([]market.Bar, 6)
		for i := range bars {
			bars[i] = market.Bar{Time: int64(i), Open: 5, High: 5, Low: 5, Close: 5}
		}
		out := Stochastic(bars, 3, 1, 2)
		require.NotEmpty(t, out.Line("k"))
		for _, v := range out.Line("k") {
			assert.Equal(t, 0.0, v.Value)
		}
	})

	t.Run("bounded and aligned", func(t *testing.T) {
		bars := createTestBars()
		out := Stochastic(bars, 4, 2, 3)
		k, d := out.Line("k"), out.Line("d")
		require.Len(t, k, len(bars)-4)
		require.Len(t, d, len(k)-2)
		assert.Equal(t, int64(4), k[0].Time)
		assert.Equal(t, int64(6), d[0].Time)
		for _, v := range append(k, d...) {
			assert.GreaterOrEqual(t, v.Value, 0.0)
			assert.LessOrEqual(t, v.Value, 100.0)
		}
	})
}

func TestVolumeAndForce(t *testing.T) {
	bars := closes(10, 11, 12)

	vol := Volume(bars).Line("volume")
	require.Len(t, vol, 3)
	assert.Equal(t, 100.0, vol[2].Value)

	// period 1 leaves the raw force unsmoothed
	force := ForceIndex(bars, 1).Line("force")
	require.Len(t, force, 2)
	assert.Equal(t, int64(1), force[0].Time)
	assert.InDelta(t, 100.0, force[0].Value, 1e-12)
	assert.InDelta(t, 100.0, force[1].Value, 1e-12)
}

func TestATR(t *testing.T) {
	bars := []market.Bar{
		{Time: 0, High: 10, Low: 8, Close: 9},
		{Time: 1, High: 11, Low: 9, Close: 10},
		{Time: 2, High: 12, Low: 10, Close: 11},
		{Time: 3, High: 11, Low: 9, Close: 10},
		{Time: 4, High: 12, Low: 10, Close: 11},
		{Time: 5, High: 13, Low: 11, Close: 12},
	}
	vals := ATR(bars, 3).Line("atr")
	require.Len(t, vals, 3)
	assert.Equal(t, int64(3), vals[0].Time)
	for _, v := range vals {
		assert.InDelta(t, 2.0, v.Value, 1e-12)
	}
}

func TestTrueRange(t *testing.T) {
	current := market.Bar{High: 110, Low: 100, Close: 105}
	previous := market.Bar{Close: 104}
	assert.Equal(t, 10.0, trueRange(current, previous))

	gap := market.Bar{High: 120, Low: 115, Close: 118}
	assert.Equal(t, 16.0, trueRange(gap, previous))
}

func TestADXTrending(t *testing.T) {
	bars := make([]market.Bar, 6)
	for i := range bars {
		f := float64(i)
		bars[i] = market.Bar{Time: int64(i), High: 10 + f, Low: 8 + f, Close: 9 + f}
	}
	out := ADX(bars, 2)

	adx := out.Line("adx")
	require.Len(t, adx, 3)
	assert.Equal(t, int64(3), adx[0].Time)
	for _, v := range adx {
		assert.InDelta(t, 100.0, v.Value, 1e-9)
	}
	for _, v := range out.Line("plus_di") {
		assert.InDelta(t, 50.0, v.Value, 1e-9)
	}
	for _, v := range out.Line("minus_di") {
		assert.Equal(t, 0.0, v.Value)
	}
}

func TestInsufficientBars(t *testing.T) {
	bars := closes(1, 2, 3)
	for _, k := range Kinds() {
		if k == KindVolume {
			continue
		}
		calc, err := Lookup(k)
		require.NoError(t, err)
		assert.True(t, calc(bars, DefaultParams(k)).Empty(), "%s on 3 bars", k)
	}

	assert.True(t, Volume(nil).Empty())
	assert.True(t, SMA(nil, 3, market.PriceClose).Empty())
	assert.True(t, SMA(bars, 0, market.PriceClose).Empty())
}

func TestLookupUnknownKind(t *testing.T) {
	_, err := Lookup("ichimoku")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ichimoku"`)
	assert.Contains(t, err.Error(), "adx, atr, bollinger")

	assert.Len(t, Kinds(), 10)
}

func TestParams(t *testing.T) {
	t.Run("defaults fill zero fields", func(t *testing.T) {
		p := Params{Period: 7}.WithDefaults(KindRSI)
		assert.Equal(t, 7, p.Period)
		assert.Equal(t, market.PriceClose, p.Source)
		assert.Equal(t, 70.0, p.Overbought)

		b := Params{}.WithDefaults(KindBollinger)
		assert.Equal(t, 20, b.Period)
		assert.Equal(t, 0.0, b.K)
	})

	tests := []struct {
		name    string
		kind    Kind
		p       Params
		wantErr bool
	}{
		{"sma ok", KindSMA, Params{Period: 5}, false},
		{"sma zero period", KindSMA, Params{}, true},
		{"macd ok", KindMACD, DefaultParams(KindMACD), false},
		{"macd missing signal", KindMACD, Params{Fast: 12, Slow: 26}, true},
		{"bollinger negative k", KindBollinger, Params{Period: 20, K: -1}, true},
		{"bollinger zero k", KindBollinger, Params{Period: 20}, false},
		{"stochastic ok", KindStochastic, DefaultParams(KindStochastic), false},
		{"thresholds inverted", KindRSI, Params{Period: 14, Overbought: 30, Oversold: 70}, true},
		{"bad source", KindEMA, Params{Period: 5, Source: "median"}, true},
		{"unknown kind", "ichimoku", Params{Period: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate(tt.kind)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Equal(t, "MACD(12,26,9)", DefaultParams(KindMACD).String(KindMACD))
	assert.Equal(t, "SMA(20)", DefaultParams(KindSMA).String(KindSMA))
	assert.Equal(t, "BB(20,2)", DefaultParams(KindBollinger).String(KindBollinger))
}

func TestSMATwoBarScenario(t *testing.T) {
	bars := []market.Bar{
		{Time: 1, Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
		{Time: 2, Open: 11, High: 11, Low: 8, Close: 9, Volume: 100},
	}
	vals := SMA(bars, 2, market.PriceClose).Line("sma")
	require.Len(t, vals, 1)
	assert.Equal(t, Value{Time: 2, Value: 10}, vals[0])

	out := Bollinger(bars, 2, 0, market.PriceClose)
	require.Len(t, out.Line("upper"), 1)
	assert.Equal(t, out.Line("middle")[0], out.Line("upper")[0])
	assert.Equal(t, out.Line("middle")[0], out.Line("lower")[0])
}
