package collector

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"paperdash/internal/decode"
	"paperdash/internal/model"
)

// chartJSON builds a chart API response body from parallel arrays.
// Zero values are emitted as JSON null, the way the API marks holidays.
func chartJSON(price, prevClose float64, opens, highs, lows, closes []float64) string {
	arr := func(vs []float64) string {
		parts := make([]string, len(vs))
		for i, v := range vs {
			if v == 0 {
				parts[i] = "null"
			} else {
				parts[i] = fmt.Sprintf("%g", v)
			}
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return fmt.Sprintf(`{"chart":{"result":[{
		"meta":{"regularMarketPrice":%g,"chartPreviousClose":%g,"currency":"USD"},
		"indicators":{"quote":[{"open":%s,"high":%s,"low":%s,"close":%s}]}
	}],"error":null}}`, price, prevClose, arr(opens), arr(highs), arr(lows), arr(closes))
}

func decodeChart(t *testing.T, body string) *yahooChart {
	t.Helper()
	var chart yahooChart
	if err := decode.Filtered(strings.NewReader(body), yahooDecodeLimit, &chart); err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	return &chart
}

func flatSeries(n int, base float64) []float64 {
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = base + float64(i)
	}
	return vs
}

func TestMapChart_DayChangeFromLastTwoCloses(t *testing.T) {
	closes := []float64{100, 102, 0, 104, 0} // trailing nulls after the last session
	series := []float64{100, 102, 0, 104, 0}
	chart := decodeChart(t, chartJSON(104, 102, series, series, series, closes))

	var asset model.AssetRecord
	if !mapChart(chart, &asset) {
		t.Fatal("expected successful mapping")
	}
	want := (104.0 - 102.0) / 102.0 * 100
	if math.Abs(asset.ChangeDay-want) > 1e-9 {
		t.Errorf("day change: expected %f, got %f", want, asset.ChangeDay)
	}
	// 30d change walks from the first non-zero close.
	want = (104.0 - 100.0) / 100.0 * 100
	if math.Abs(asset.ChangeYTD-want) > 1e-9 {
		t.Errorf("30d change: expected %f, got %f", want, asset.ChangeYTD)
	}
}

func TestMapChart_FortyDaysToTwentyCandles(t *testing.T) {
	series := flatSeries(40, 100)
	chart := decodeChart(t, chartJSON(139, 138, series, series, series, series))

	var asset model.AssetRecord
	if !mapChart(chart, &asset) {
		t.Fatal("expected successful mapping")
	}
	if len(asset.Candles) != model.SparklineMaxPoints {
		t.Fatalf("expected %d candles, got %d", model.SparklineMaxPoints, len(asset.Candles))
	}
	// Stride 2 over 40 entries samples index 38 last.
	if got := asset.Candles[len(asset.Candles)-1].Close; got != series[38] {
		t.Errorf("last candle close: expected %f, got %f", series[38], got)
	}
}

func TestMapChart_LookbackChanges(t *testing.T) {
	series := flatSeries(10, 100) // 10 candles, no downsampling
	chart := decodeChart(t, chartJSON(109, 108, series, series, series, series))

	var asset model.AssetRecord
	if !mapChart(chart, &asset) {
		t.Fatal("expected successful mapping")
	}
	newest := series[9]
	// Week look-back: 5 candles from the end.
	wantWeek := (newest - series[5]) / series[5] * 100
	if math.Abs(asset.ChangeWeek-wantWeek) > 1e-9 {
		t.Errorf("week change: expected %f, got %f", wantWeek, asset.ChangeWeek)
	}
	// Month look-back overruns a 10-candle series and clamps to the first.
	wantMonth := (newest - series[0]) / series[0] * 100
	if math.Abs(asset.ChangeMonth-wantMonth) > 1e-9 {
		t.Errorf("month change: expected %f, got %f", wantMonth, asset.ChangeMonth)
	}
}

func TestMapChart_InvalidWithoutPrice(t *testing.T) {
	series := flatSeries(5, 100)
	chart := decodeChart(t, chartJSON(0, 0, series, series, series, series))

	asset := model.AssetRecord{DisplaySymbol: "S&P500", Name: "S&P 500"}
	if mapChart(chart, &asset) {
		t.Fatal("expected mapping failure for zero market price")
	}
	if asset.Valid {
		t.Error("asset must not be valid without a positive price")
	}
	if asset.DisplaySymbol != "S&P500" || asset.Name != "S&P 500" {
		t.Error("display identity must survive a failed mapping")
	}
}

func TestMapChart_EmptyResult(t *testing.T) {
	chart := decodeChart(t, `{"chart":{"result":[],"error":{"code":"Not Found"}}}`)
	var asset model.AssetRecord
	if mapChart(chart, &asset) {
		t.Error("expected mapping failure for empty result")
	}
}

func TestMapChart_HolidayCarryForward(t *testing.T) {
	opens := []float64{10, 0, 12}
	highs := []float64{11, 0, 13}
	lows := []float64{9, 0, 11}
	closes := []float64{10.5, 0, 12.5}
	chart := decodeChart(t, chartJSON(12.5, 10.5, opens, highs, lows, closes))

	var asset model.AssetRecord
	if !mapChart(chart, &asset) {
		t.Fatal("expected successful mapping")
	}
	if len(asset.Candles) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(asset.Candles))
	}
	if asset.Candles[1] != asset.Candles[0] {
		t.Errorf("holiday entry should carry forward, got %+v", asset.Candles[1])
	}
}
