package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"paperdash/internal/model"
)

// AssetSpec identifies one chart-API instrument slot.
type AssetSpec struct {
	Symbol  string `yaml:"symbol"`
	Display string `yaml:"display"`
	Name    string `yaml:"name"`
}

// CoinSpec identifies one aggregator-API coin slot.
type CoinSpec struct {
	ID     string `yaml:"id"`
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
}

// Config holds all application configuration. It is loaded once at startup
// and passed into constructors as an immutable snapshot.
type Config struct {
	Location struct {
		Lat  string `yaml:"lat"`
		Lon  string `yaml:"lon"`
		Lang string `yaml:"lang"`
	} `yaml:"location"`
	OpenWeather struct {
		Endpoint       string `yaml:"endpoint"`
		APIKey         string `yaml:"api_key"`
		OneCallVersion string `yaml:"onecall_version"`
		Units          string `yaml:"units"`
		DisplayAlerts  bool   `yaml:"display_alerts"`
	} `yaml:"openweather"`
	CoinGecko struct {
		APIKey     string     `yaml:"api_key"`
		VsCurrency string     `yaml:"vs_currency"`
		Coins      []CoinSpec `yaml:"coins"`
	} `yaml:"coingecko"`
	Pages struct {
		Indices     []AssetSpec `yaml:"indices"`
		Commodities []AssetSpec `yaml:"commodities"`
		Forex       []AssetSpec `yaml:"forex"`
	} `yaml:"pages"`
	Fetch struct {
		MaxConcurrent  int `yaml:"max_concurrent"`
		TaskTimeoutSec int `yaml:"task_timeout_sec"`
		HTTPTimeoutSec int `yaml:"http_timeout_sec"`
	} `yaml:"fetch"`
	FallbackUSDCAD float64 `yaml:"fallback_usd_cad"`
	Schedule       struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("OWM_API_KEY"); v != "" {
		cfg.OpenWeather.APIKey = v
	}
	if v := os.Getenv("COINGECKO_API_KEY"); v != "" {
		cfg.CoinGecko.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("LAT"); v != "" {
		cfg.Location.Lat = v
	}
	if v := os.Getenv("LON"); v != "" {
		cfg.Location.Lon = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Fetch.MaxConcurrent = n
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Location.Lat == "" {
		c.Location.Lat = "45.4215"
	}
	if c.Location.Lon == "" {
		c.Location.Lon = "-75.6972"
	}
	if c.Location.Lang == "" {
		c.Location.Lang = "en"
	}
	if c.OpenWeather.Endpoint == "" {
		c.OpenWeather.Endpoint = "api.openweathermap.org"
	}
	if c.OpenWeather.OneCallVersion == "" {
		c.OpenWeather.OneCallVersion = "3.0"
	}
	if c.OpenWeather.Units == "" {
		c.OpenWeather.Units = "standard"
	}
	if c.CoinGecko.VsCurrency == "" {
		c.CoinGecko.VsCurrency = "usd"
	}
	if len(c.CoinGecko.Coins) == 0 {
		c.CoinGecko.Coins = []CoinSpec{
			{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin"},
			{ID: "ethereum", Symbol: "ETH", Name: "Ethereum"},
			{ID: "solana", Symbol: "SOL", Name: "Solana"},
			{ID: "dogecoin", Symbol: "DOGE", Name: "Dogecoin"},
		}
	}
	if len(c.Pages.Indices) == 0 {
		c.Pages.Indices = []AssetSpec{
			{Symbol: "^GSPC", Display: "S&P500", Name: "S&P 500"},
			{Symbol: "^IXIC", Display: "NASDAQ", Name: "NASDAQ Composite"},
			{Symbol: "^DJI", Display: "DOW", Name: "Dow Jones"},
			{Symbol: "^GSPTSE", Display: "TSX", Name: "S&P/TSX Composite"},
		}
	}
	if len(c.Pages.Commodities) == 0 {
		c.Pages.Commodities = []AssetSpec{
			{Symbol: "GC=F", Display: "GOLD", Name: "Gold Futures"},
			{Symbol: "SI=F", Display: "SILVER", Name: "Silver Futures"},
			{Symbol: "CL=F", Display: "OIL", Name: "Crude Oil WTI"},
			{Symbol: "NG=F", Display: "NATGAS", Name: "Natural Gas"},
		}
	}
	if len(c.Pages.Forex) == 0 {
		// The first forex slot doubles as the USD/CAD conversion source
		// for crypto prices; keep USDCAD=X in position 0.
		c.Pages.Forex = []AssetSpec{
			{Symbol: "USDCAD=X", Display: "USD/CAD", Name: "US Dollar / CAD"},
			{Symbol: "EURUSD=X", Display: "EUR/USD", Name: "Euro / US Dollar"},
			{Symbol: "GBPUSD=X", Display: "GBP/USD", Name: "Pound / US Dollar"},
			{Symbol: "USDJPY=X", Display: "USD/JPY", Name: "US Dollar / Yen"},
		}
	}
	if c.Fetch.MaxConcurrent == 0 {
		// Hard ceiling inherited from the device build: each TLS session
		// costs tens of kilobytes of heap there.
		c.Fetch.MaxConcurrent = 2
	}
	if c.Fetch.TaskTimeoutSec == 0 {
		c.Fetch.TaskTimeoutSec = 15
	}
	if c.Fetch.HTTPTimeoutSec == 0 {
		c.Fetch.HTTPTimeoutSec = 10
	}
	if c.FallbackUSDCAD == 0 {
		c.FallbackUSDCAD = 1.37
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 */30 * * * *"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/paperdash.db"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.OpenWeather.APIKey == "" {
		return fmt.Errorf("openweather.api_key is required")
	}
	if len(c.CoinGecko.Coins) != model.AssetsPerPage {
		return fmt.Errorf("coingecko.coins must list exactly %d coins", model.AssetsPerPage)
	}
	for name, page := range map[string][]AssetSpec{
		"indices":     c.Pages.Indices,
		"commodities": c.Pages.Commodities,
		"forex":       c.Pages.Forex,
	} {
		if len(page) != model.AssetsPerPage {
			return fmt.Errorf("pages.%s must list exactly %d symbols", name, model.AssetsPerPage)
		}
	}
	if c.Pages.Forex[0].Symbol == "" {
		return fmt.Errorf("pages.forex[0] must name the USD/CAD conversion symbol")
	}
	if c.Fetch.MaxConcurrent < 1 {
		return fmt.Errorf("fetch.max_concurrent must be at least 1")
	}
	return nil
}
