package collector

import (
	"fmt"
	"io"
	"net/url"
	"time"

	"paperdash/internal/calculator"
	"paperdash/internal/decode"
	"paperdash/internal/model"
)

const yahooDecodeLimit = 96 << 10

// Week/month change look-backs in candles. These assume the chart request's
// daily granularity (5 and 22 trading days); if the range/interval query
// changes, these offsets change meaning with it.
const (
	weekLookback  = 5
	monthLookback = 22
)

// ChartFetcher fetches one instrument's chart data into an asset record.
// The page fan-out treats any implementation identically; tests substitute
// a mock.
type ChartFetcher interface {
	FetchAsset(symbol string, asset *model.AssetRecord) int
	Name() string
}

// YahooClient implements ChartFetcher using the Yahoo Finance chart API.
type YahooClient struct {
	sc *sourceClient
}

// NewYahooClient creates a new Yahoo Finance chart client.
func NewYahooClient(timeout time.Duration, proxyURL string) *YahooClient {
	return &YahooClient{sc: newSourceClient("yahoo", timeout, proxyURL)}
}

func (c *YahooClient) Name() string { return "yahoo" }

// yahooChart is the filtered response structure from the chart API. The
// quote arrays decode as []interface{} because entries can be JSON null on
// market holidays.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				Currency           string  `json:"currency"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Open  []interface{} `json:"open"`
					High  []interface{} `json:"high"`
					Low   []interface{} `json:"low"`
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func toFloats(vs []interface{}) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = toFloat(v)
	}
	return out
}

// FetchAsset fetches ~30 days of daily chart data for one symbol and maps
// it into the asset record. Two attempts; the symbol is percent-encoded
// before insertion into the path. Returns the layered status code.
func (c *YahooClient) FetchAsset(symbol string, asset *model.AssetRecord) int {
	uri := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?range=1mo&interval=1d",
		url.PathEscape(symbol))

	header := map[string]string{"User-Agent": "Mozilla/5.0"}
	return c.sc.getJSON(uri, header, 2, func(r io.Reader) error {
		var chart yahooChart
		if err := decode.Filtered(r, yahooDecodeLimit, &chart); err != nil {
			return err
		}
		if !mapChart(&chart, asset) {
			return decode.Missing("chart.result")
		}
		return nil
	})
}

// mapChart maps one filtered chart document into an asset record: current
// price and previous close from meta, day change from the last two
// non-zero closes, ~30d change from the first non-zero close, candles
// downsampled with carry-forward, and week/month changes from candle
// closes at fixed look-backs. Returns the record's validity.
func mapChart(chart *yahooChart, asset *model.AssetRecord) bool {
	if len(chart.Chart.Result) == 0 {
		return false
	}
	result := chart.Chart.Result[0]

	asset.Price = result.Meta.RegularMarketPrice
	asset.PreviousClose = result.Meta.ChartPreviousClose

	var opens, highs, lows, closes []float64
	if len(result.Indicators.Quote) > 0 {
		quote := result.Indicators.Quote[0]
		opens = toFloats(quote.Open)
		highs = toFloats(quote.High)
		lows = toFloats(quote.Low)
		closes = toFloats(quote.Close)
	}
	n := len(closes)
	if len(opens) < n {
		n = len(opens)
	}
	if len(highs) < n {
		n = len(highs)
	}
	if len(lows) < n {
		n = len(lows)
	}
	opens, highs, lows, closes = opens[:n], highs[:n], lows[:n], closes[:n]

	// Scan for the first non-zero close and the last two non-zero closes.
	var firstClose, latestClose, prevDayClose float64
	for i := 0; i < n; i++ {
		if closes[i] > 0 {
			firstClose = closes[i]
			break
		}
	}
	for i := n - 1; i >= 0; i-- {
		if closes[i] > 0 {
			if latestClose == 0 {
				latestClose = closes[i]
			} else {
				prevDayClose = closes[i]
				break
			}
		}
	}

	if prevDayClose > 0 {
		asset.ChangeDay = (latestClose - prevDayClose) / prevDayClose * 100
	}
	if firstClose > 0 && latestClose > 0 {
		asset.ChangeYTD = (latestClose - firstClose) / firstClose * 100
	}

	asset.Candles = calculator.CandlesFromSeries(opens, highs, lows, closes, model.SparklineMaxPoints)

	if len(asset.Candles) >= 2 {
		newest := asset.Candles[len(asset.Candles)-1].Close

		weekIdx := len(asset.Candles) - weekLookback
		if weekIdx < 0 {
			weekIdx = 0
		}
		if weekPrice := asset.Candles[weekIdx].Close; weekPrice > 0 {
			asset.ChangeWeek = (newest - weekPrice) / weekPrice * 100
		}

		monthIdx := len(asset.Candles) - monthLookback
		if monthIdx < 0 {
			monthIdx = 0
		}
		if monthPrice := asset.Candles[monthIdx].Close; monthPrice > 0 {
			asset.ChangeMonth = (newest - monthPrice) / monthPrice * 100
		}
	}

	asset.Valid = asset.Price > 0
	return asset.Valid
}
