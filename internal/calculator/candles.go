package calculator

import "paperdash/internal/model"

// CandlesFromPrices groups a raw price series into at most maxPoints OHLC
// candles. Each candle covers a contiguous group of max(1, N/maxPoints)
// points: open is the group's first price, close its last, high/low the
// true extrema within the group. A trailing remainder shorter than a full
// group still becomes one candle. Order follows the input series.
func CandlesFromPrices(prices []float64, maxPoints int) []model.OHLC {
	total := len(prices)
	if total == 0 || maxPoints < 1 {
		return nil
	}

	groupSize := total / maxPoints
	if groupSize < 1 {
		groupSize = 1
	}

	candles := make([]model.OHLC, 0, maxPoints)
	for c := 0; c < maxPoints && c*groupSize < total; c++ {
		start := c * groupSize
		end := start + groupSize
		if end > total {
			end = total
		}

		candle := model.OHLC{
			Open:  prices[start],
			Close: prices[end-1],
			High:  prices[start],
			Low:   prices[start],
		}
		for i := start; i < end; i++ {
			if prices[i] > candle.High {
				candle.High = prices[i]
			}
			if prices[i] < candle.Low {
				candle.Low = prices[i]
			}
		}
		candles = append(candles, candle)
	}
	return candles
}

// CandlesFromSeries downsamples parallel open/high/low/close arrays to at
// most maxPoints candles by striding through the series with step
// N/maxPoints. Chart APIs return zero-filled entries for market holidays;
// an index whose four values are not all positive carries the last
// structurally valid candle forward instead of emitting zeros.
func CandlesFromSeries(opens, highs, lows, closes []float64, maxPoints int) []model.OHLC {
	total := len(closes)
	if total == 0 || maxPoints < 1 {
		return nil
	}

	step := 1
	if total > maxPoints {
		step = total / maxPoints
	}

	var lastValid model.OHLC
	candles := make([]model.OHLC, 0, maxPoints)
	for i := 0; i < total && len(candles) < maxPoints; i += step {
		o, h, l, c := opens[i], highs[i], lows[i], closes[i]
		if o > 0 && h > 0 && l > 0 && c > 0 {
			lastValid = model.OHLC{Open: o, High: h, Low: l, Close: c}
		}
		candles = append(candles, lastValid)
	}
	return candles
}
