package collector

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"paperdash/internal/calculator"
	"paperdash/internal/config"
	"paperdash/internal/decode"
	"paperdash/internal/model"
)

// The markets response with sparklines for four coins runs to tens of
// kilobytes; anything past this limit is a decode failure.
const coinGeckoDecodeLimit = 256 << 10

// CoinGeckoClient fetches the /coins/markets batch endpoint and fills the
// crypto page in one call.
type CoinGeckoClient struct {
	apiKey     string
	vsCurrency string
	coins      []config.CoinSpec
	sc         *sourceClient
	now        func() time.Time
}

// NewCoinGeckoClient creates a client from the configuration snapshot.
func NewCoinGeckoClient(cfg *config.Config, timeout time.Duration) *CoinGeckoClient {
	return &CoinGeckoClient{
		apiKey:     cfg.CoinGecko.APIKey,
		vsCurrency: cfg.CoinGecko.VsCurrency,
		coins:      cfg.CoinGecko.Coins,
		sc:         newSourceClient("coingecko", timeout, cfg.Proxy),
		now:        time.Now,
	}
}

// coinMarket is the filtered shape of one /coins/markets entry. Missing or
// null fields decode to zero values; the mapper never fails on them.
type coinMarket struct {
	ID           string  `json:"id"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
	ChangeDay    float64 `json:"price_change_percentage_24h"`
	ChangeWeek   float64 `json:"price_change_percentage_7d_in_currency"`
	ChangeMonth  float64 `json:"price_change_percentage_30d_in_currency"`
	ChangeYear   float64 `json:"price_change_percentage_1y_in_currency"`
	Sparkline    struct {
		Price []float64 `json:"price"`
	} `json:"sparkline_in_7d"`
}

// FetchMarkets fills the crypto page from one batch call. Display identity
// for all four slots is set before the request so a failed fetch still
// renders labeled slots. Returns the layered status code.
func (c *CoinGeckoClient) FetchMarkets(page *model.PageData) int {
	page.Valid = false
	for i := range page.Assets {
		page.Assets[i] = model.AssetRecord{}
		if i < len(c.coins) {
			page.Assets[i].Symbol = c.coins[i].ID
			page.Assets[i].DisplaySymbol = c.coins[i].Symbol
			page.Assets[i].Name = c.coins[i].Name
		}
	}

	ids := make([]string, len(c.coins))
	for i, coin := range c.coins {
		ids[i] = coin.ID
	}
	uri := fmt.Sprintf("https://api.coingecko.com/api/v3/coins/markets"+
		"?vs_currency=%s&ids=%s&sparkline=true&price_change_percentage=24h,7d,30d,1y",
		c.vsCurrency, strings.Join(ids, ","))
	if c.apiKey != "" {
		uri += "&x_cg_demo_api_key=" + c.apiKey
	}

	log.Printf("[INFO] GET %s", redactKey(uri, c.apiKey))
	status := c.sc.getJSON(uri, nil, 3, func(r io.Reader) error {
		var markets []coinMarket
		if err := decode.Filtered(r, coinGeckoDecodeLimit, &markets); err != nil {
			return err
		}
		if found := mapCoinMarkets(markets, c.coins, page); found == 0 {
			return decode.Missing("expected coin ids")
		}
		return nil
	})
	page.LastUpdated = c.now().Unix()
	return status
}

// mapCoinMarkets places response entries into the page's fixed slots by
// matching coin ids against the configured list; response order does not
// matter. Unmatched entries are ignored and unmatched slots stay invalid,
// as is a matched entry without a positive price. Returns the number of
// valid slots.
func mapCoinMarkets(markets []coinMarket, expected []config.CoinSpec, page *model.PageData) int {
	found := 0
	for _, coin := range markets {
		idx := -1
		for i, want := range expected {
			if i < model.AssetsPerPage && coin.ID == want.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}

		a := &page.Assets[idx]
		a.Symbol = coin.Symbol
		a.Name = coin.Name
		a.Price = coin.CurrentPrice
		a.ChangeDay = coin.ChangeDay
		a.ChangeWeek = coin.ChangeWeek
		a.ChangeMonth = coin.ChangeMonth
		a.ChangeYTD = coin.ChangeYear
		// The aggregator does not transmit previous close; derive it from
		// the day change so the renderer can treat all sources alike. A
		// -100% day change zeroes the denominator; leave 0 rather than Inf.
		if denom := 1 + a.ChangeDay/100; denom != 0 {
			a.PreviousClose = a.Price / denom
		}
		a.Candles = calculator.CandlesFromPrices(coin.Sparkline.Price, model.SparklineMaxPoints)
		a.Valid = a.Price > 0
		if a.Valid {
			found++
		}
	}
	page.Valid = found > 0
	return found
}
