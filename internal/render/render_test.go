package render

import (
	"strings"
	"testing"
	"time"

	"paperdash/internal/model"
)

func testFrame() *model.Frame {
	frame := &model.Frame{
		WeatherStatus: 200,
		AirStatus:     200,
		FetchedAt:     time.Unix(1700000000, 0),
	}
	frame.Weather.Current.Temp = 268.15
	frame.Weather.Current.Weather.Description = "light snow"
	frame.Air.Records = []model.PollutionRecord{{AQI: 2, PM25: 5.5}}

	frame.Crypto.Valid = true
	frame.Crypto.Assets[0] = model.AssetRecord{
		DisplaySymbol: "BTC", Name: "Bitcoin",
		Price: 50000, PriceCAD: 70000, Valid: true,
		Candles: []model.OHLC{{Open: 1, Close: 2}, {Open: 2, Close: 1}, {Open: 1, Close: 1}},
	}
	frame.Crypto.Assets[1] = model.AssetRecord{DisplaySymbol: "ETH", Name: "Ethereum"}

	frame.Indices.Valid = true
	frame.Indices.Assets[0] = model.AssetRecord{
		DisplaySymbol: "S&P500", Name: "S&P 500", Price: 5000, Valid: true,
	}
	return frame
}

func TestTextRenderer(t *testing.T) {
	var out strings.Builder
	if err := NewTextRenderer(&out).Render(testFrame()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()

	for _, want := range []string{
		"light snow",
		"AQI 2",
		"BTC",
		"C$70000.00",
		"/\\-", // up, down, flat candles
		"S&P500",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	// The invalid ETH slot keeps its label but shows no price.
	if !strings.Contains(got, "ETH") {
		t.Errorf("invalid slot lost its label:\n%s", got)
	}
	if strings.Contains(got, "0.00  +0.00% d") {
		t.Errorf("invalid slot must not render zeroed values:\n%s", got)
	}
}

func TestTextRenderer_UnavailableSources(t *testing.T) {
	frame := testFrame()
	frame.WeatherStatus = -514
	frame.AirStatus = -257

	var out strings.Builder
	if err := NewTextRenderer(&out).Render(frame); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Weather: unavailable (-514)") {
		t.Errorf("missing weather failure line:\n%s", got)
	}
	if !strings.Contains(got, "Air quality: unavailable (-257)") {
		t.Errorf("missing air failure line:\n%s", got)
	}
}
