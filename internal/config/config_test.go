package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such.yaml"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}

	if cfg.OpenWeather.Endpoint != "api.openweathermap.org" {
		t.Errorf("unexpected default endpoint: %s", cfg.OpenWeather.Endpoint)
	}
	if cfg.OpenWeather.OneCallVersion != "3.0" {
		t.Errorf("unexpected default onecall version: %s", cfg.OpenWeather.OneCallVersion)
	}
	if cfg.Fetch.MaxConcurrent != 2 || cfg.Fetch.TaskTimeoutSec != 15 || cfg.Fetch.HTTPTimeoutSec != 10 {
		t.Errorf("unexpected fetch defaults: %+v", cfg.Fetch)
	}
	if cfg.FallbackUSDCAD != 1.37 {
		t.Errorf("unexpected fallback rate: %v", cfg.FallbackUSDCAD)
	}
	if len(cfg.CoinGecko.Coins) != 4 || cfg.CoinGecko.Coins[0].ID != "bitcoin" {
		t.Errorf("unexpected default coins: %+v", cfg.CoinGecko.Coins)
	}
	if cfg.Pages.Forex[0].Symbol != "USDCAD=X" {
		t.Errorf("forex slot 0 must default to the conversion pair: %+v", cfg.Pages.Forex[0])
	}
	if cfg.Schedule.RefreshCron != "0 */30 * * * *" {
		t.Errorf("unexpected default cron: %s", cfg.Schedule.RefreshCron)
	}
}

func TestLoad_FileValuesOverrideDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
location:
  lat: "51.5072"
  lon: "-0.1276"
openweather:
  api_key: filekey
  units: metric
fetch:
  max_concurrent: 4
fallback_usd_cad: 1.42
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Location.Lat != "51.5072" || cfg.Location.Lon != "-0.1276" {
		t.Errorf("file location not applied: %+v", cfg.Location)
	}
	if cfg.OpenWeather.APIKey != "filekey" || cfg.OpenWeather.Units != "metric" {
		t.Errorf("file openweather values not applied: %+v", cfg.OpenWeather)
	}
	if cfg.Fetch.MaxConcurrent != 4 {
		t.Errorf("file max_concurrent not applied: %d", cfg.Fetch.MaxConcurrent)
	}
	if cfg.FallbackUSDCAD != 1.42 {
		t.Errorf("file fallback rate not applied: %v", cfg.FallbackUSDCAD)
	}
	// Untouched sections still get defaults.
	if cfg.Fetch.TaskTimeoutSec != 15 {
		t.Errorf("defaults missing for untouched fields: %+v", cfg.Fetch)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("openweather:\n  api_key: filekey\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OWM_API_KEY", "envkey")
	t.Setenv("MAX_CONCURRENT", "3")
	t.Setenv("REFRESH_CRON", "0 0 * * * *")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OpenWeather.APIKey != "envkey" {
		t.Errorf("env key must win over the file: %s", cfg.OpenWeather.APIKey)
	}
	if cfg.Fetch.MaxConcurrent != 3 {
		t.Errorf("MAX_CONCURRENT not applied: %d", cfg.Fetch.MaxConcurrent)
	}
	if cfg.Schedule.RefreshCron != "0 0 * * * *" {
		t.Errorf("REFRESH_CRON not applied: %s", cfg.Schedule.RefreshCron)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("openweather: [not a mapping"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		t.Helper()
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		cfg.OpenWeather.APIKey = "k"
		return cfg
	}

	t.Run("complete config passes", func(t *testing.T) {
		if err := valid(t).Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing api key", func(t *testing.T) {
		cfg := valid(t)
		cfg.OpenWeather.APIKey = ""
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "api_key") {
			t.Errorf("expected api_key error, got %v", err)
		}
	})

	t.Run("wrong coin count", func(t *testing.T) {
		cfg := valid(t)
		cfg.CoinGecko.Coins = cfg.CoinGecko.Coins[:3]
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "coins") {
			t.Errorf("expected coins error, got %v", err)
		}
	})

	t.Run("wrong page size", func(t *testing.T) {
		cfg := valid(t)
		cfg.Pages.Commodities = cfg.Pages.Commodities[:2]
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "commodities") {
			t.Errorf("expected commodities error, got %v", err)
		}
	})

	t.Run("empty conversion symbol", func(t *testing.T) {
		cfg := valid(t)
		cfg.Pages.Forex[0].Symbol = ""
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "forex[0]") {
			t.Errorf("expected forex[0] error, got %v", err)
		}
	})

	t.Run("zero concurrency", func(t *testing.T) {
		cfg := valid(t)
		cfg.Fetch.MaxConcurrent = 0
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "max_concurrent") {
			t.Errorf("expected max_concurrent error, got %v", err)
		}
	})
}
