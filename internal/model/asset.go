package model

import "time"

const (
	// AssetsPerPage is the number of instrument slots on each display page.
	AssetsPerPage = 4
	// SparklineMaxPoints is the candlestick resolution of the sparkline
	// area; every price series is downsampled to at most this many candles.
	SparklineMaxPoints = 20
)

// OHLC is one open/high/low/close candle.
type OHLC struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// AssetRecord holds one financial instrument's fetched data. DisplaySymbol
// and Name are set from configuration before any fetch attempt so a failed
// slot still renders with its label; Valid is true only when a plausible
// positive price was obtained.
type AssetRecord struct {
	Symbol        string
	DisplaySymbol string
	Name          string
	Price         float64
	PreviousClose float64
	ChangeDay     float64
	ChangeWeek    float64
	ChangeMonth   float64
	ChangeYTD     float64 // 1y for the aggregator source, ~30d for chart symbols
	PriceCAD      float64
	Valid         bool
	Candles       []OHLC
}

// PageData is one display page: exactly four asset slots. Valid is true
// iff at least one slot is valid.
type PageData struct {
	Assets      [AssetsPerPage]AssetRecord
	LastUpdated int64
	Valid       bool
}

// Frame is everything one refresh cycle hands to the renderer. Value
// records only; nothing is retained across cycles.
type Frame struct {
	Weather       WeatherSnapshot
	WeatherStatus int
	Air           AirQualitySnapshot
	AirStatus     int
	Crypto        PageData
	CryptoStatus  int
	Indices       PageData
	Commodities   PageData
	Forex         PageData
	FetchedAt     time.Time
}

// WeatherValid reports whether the one-call fetch succeeded this cycle.
func (f *Frame) WeatherValid() bool { return f.WeatherStatus == 200 }

// AirValid reports whether the air-pollution fetch succeeded this cycle.
func (f *Frame) AirValid() bool { return f.AirStatus == 200 }

// Degraded reports whether any source failed this cycle.
func (f *Frame) Degraded() bool {
	return !f.WeatherValid() || !f.AirValid() ||
		!f.Crypto.Valid || !f.Indices.Valid || !f.Commodities.Valid || !f.Forex.Valid
}
