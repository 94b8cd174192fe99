package collector

import (
	"log"
	"time"

	"paperdash/internal/calculator"
	"paperdash/internal/config"
	"paperdash/internal/model"
)

// Collector drives one full refresh cycle: weather, air quality, the
// crypto aggregator page, the three chart pages, then derived values.
type Collector struct {
	Weather *OpenWeatherClient
	Markets *CoinGeckoClient
	Charts  ChartFetcher

	Indices     []config.AssetSpec
	Commodities []config.AssetSpec
	Forex       []config.AssetSpec

	MaxConcurrent  int
	TaskTimeout    time.Duration
	FallbackUSDCAD float64
}

// NewCollector wires all source clients from the configuration snapshot.
func NewCollector(cfg *config.Config) *Collector {
	timeout := time.Duration(cfg.Fetch.HTTPTimeoutSec) * time.Second
	return &Collector{
		Weather:        NewOpenWeatherClient(cfg, timeout),
		Markets:        NewCoinGeckoClient(cfg, timeout),
		Charts:         NewYahooClient(timeout, cfg.Proxy),
		Indices:        cfg.Pages.Indices,
		Commodities:    cfg.Pages.Commodities,
		Forex:          cfg.Pages.Forex,
		MaxConcurrent:  cfg.Fetch.MaxConcurrent,
		TaskTimeout:    time.Duration(cfg.Fetch.TaskTimeoutSec) * time.Second,
		FallbackUSDCAD: cfg.FallbackUSDCAD,
	}
}

func validCount(page *model.PageData) int {
	n := 0
	for i := range page.Assets {
		if page.Assets[i].Valid {
			n++
		}
	}
	return n
}

// Collect fetches every source and assembles one frame. No source failure
// aborts the cycle; failures only clear the affected validity flags. The
// forex page is fetched before derived CAD prices are computed.
func (c *Collector) Collect() *model.Frame {
	frame := &model.Frame{FetchedAt: time.Now()}

	frame.WeatherStatus = timed("onecall", func() int {
		return c.Weather.FetchOneCall(&frame.Weather)
	})
	frame.AirStatus = timed("air_pollution", func() int {
		return c.Weather.FetchAirQuality(&frame.Air)
	})

	frame.CryptoStatus = timed("coingecko", func() int {
		st := c.Markets.FetchMarkets(&frame.Crypto)
		log.Printf("[INFO] crypto page: %d/%d assets valid", validCount(&frame.Crypto), model.AssetsPerPage)
		return st
	})

	pages := []struct {
		name  string
		specs []config.AssetSpec
		page  *model.PageData
	}{
		{"indices", c.Indices, &frame.Indices},
		{"commodities", c.Commodities, &frame.Commodities},
		{"forex", c.Forex, &frame.Forex},
	}
	for _, p := range pages {
		start := time.Now()
		FetchPage(c.Charts, p.specs, p.page, c.MaxConcurrent, c.TaskTimeout)
		log.Printf("[INFO] %s page: %d/%d assets valid (%.1fs)",
			p.name, validCount(p.page), model.AssetsPerPage, time.Since(start).Seconds())
	}

	calculator.ApplyCADPrices(&frame.Crypto, &frame.Forex, c.FallbackUSDCAD)
	return frame
}

func timed(name string, fn func() int) int {
	start := time.Now()
	status := fn()
	log.Printf("[INFO] %s: %d %s (%.1fs)", name, status, StatusText(status), time.Since(start).Seconds())
	return status
}
