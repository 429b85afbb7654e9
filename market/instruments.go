package market

import (
	"math"
	"strings"
)

// Instrument describes a symbol's quote precision.
type Instrument struct {
	Name          string
	BaseCurrency  string
	QuoteCurrency string
	PipLocation   int // pip = 10^PipLocation
}

// Instruments is keyed by the compact symbol form, e.g. "EURUSD".
var Instruments = map[string]Instrument{
	"EURUSD": {Name: "EURUSD", BaseCurrency: "EUR", QuoteCurrency: "USD", PipLocation: -4},
	"GBPUSD": {Name: "GBPUSD", BaseCurrency: "GBP", QuoteCurrency: "USD", PipLocation: -4},
	"AUDUSD": {Name: "AUDUSD", BaseCurrency: "AUD", QuoteCurrency: "USD", PipLocation: -4},
	"NZDUSD": {Name: "NZDUSD", BaseCurrency: "NZD", QuoteCurrency: "USD", PipLocation: -4},
	"USDCAD": {Name: "USDCAD", BaseCurrency: "USD", QuoteCurrency: "CAD", PipLocation: -4},
	"USDCHF": {Name: "USDCHF", BaseCurrency: "USD", QuoteCurrency: "CHF", PipLocation: -4},
	"EURGBP": {Name: "EURGBP", BaseCurrency: "EUR", QuoteCurrency: "GBP", PipLocation: -4},
	"USDJPY": {Name: "USDJPY", BaseCurrency: "USD", QuoteCurrency: "JPY", PipLocation: -2},
	"EURJPY": {Name: "EURJPY", BaseCurrency: "EUR", QuoteCurrency: "JPY", PipLocation: -2},
	"GBPJPY": {Name: "GBPJPY", BaseCurrency: "GBP", QuoteCurrency: "JPY", PipLocation: -2},
	"XAUUSD": {Name: "XAUUSD", BaseCurrency: "XAU", QuoteCurrency: "USD", PipLocation: -2},
}

// LookupInstrument accepts "EURUSD", "EUR_USD" or "eur/usd".
func LookupInstrument(symbol string) (Instrument, bool) {
	s := strings.ToUpper(symbol)
	s = strings.NewReplacer("_", "", "/", "", "-", "").Replace(s)
	in, ok := Instruments[s]
	return in, ok
}

// Point is the smallest quoted increment, one tenth of a pip.
func (in Instrument) Point() float64 {
	return math.Pow10(in.PipLocation - 1)
}

// Decimals is the number of decimals a quote carries.
func (in Instrument) Decimals() int {
	return 1 - in.PipLocation
}
