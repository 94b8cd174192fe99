package collector

import (
	"fmt"
	"io"
	"log"
	"time"

	"paperdash/internal/config"
	"paperdash/internal/decode"
	"paperdash/internal/model"
)

// Decode limits per endpoint. One-call responses run large (48 hourly
// entries before truncation); the air-pollution history is small.
const (
	oneCallDecodeLimit    = 96 << 10
	airQualityDecodeLimit = 48 << 10
)

// OpenWeatherClient fetches the one-call and air-pollution endpoints.
type OpenWeatherClient struct {
	endpoint      string
	apiKey        string
	version       string
	lat           string
	lon           string
	lang          string
	units         string
	displayAlerts bool
	sc            *sourceClient
	now           func() time.Time
}

// NewOpenWeatherClient creates a client from the configuration snapshot.
func NewOpenWeatherClient(cfg *config.Config, timeout time.Duration) *OpenWeatherClient {
	return &OpenWeatherClient{
		endpoint:      cfg.OpenWeather.Endpoint,
		apiKey:        cfg.OpenWeather.APIKey,
		version:       cfg.OpenWeather.OneCallVersion,
		lat:           cfg.Location.Lat,
		lon:           cfg.Location.Lon,
		lang:          cfg.Location.Lang,
		units:         cfg.OpenWeather.Units,
		displayAlerts: cfg.OpenWeather.DisplayAlerts,
		sc:            newSourceClient("openweather", timeout, cfg.Proxy),
		now:           time.Now,
	}
}

// Payload shapes double as decode filters: fields not listed here are
// skipped during parse. Alert sender_name and description are deliberately
// absent; they can be kilobytes of free text.

type owmCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmPrecip struct {
	OneH float64 `json:"1h"`
}

type owmCurrent struct {
	Dt         int64          `json:"dt"`
	Sunrise    int64          `json:"sunrise"`
	Sunset     int64          `json:"sunset"`
	Temp       float64        `json:"temp"`
	FeelsLike  float64        `json:"feels_like"`
	Pressure   int            `json:"pressure"`
	Humidity   int            `json:"humidity"`
	DewPoint   float64        `json:"dew_point"`
	Clouds     int            `json:"clouds"`
	UVI        float64        `json:"uvi"`
	Visibility int            `json:"visibility"`
	WindSpeed  float64        `json:"wind_speed"`
	WindGust   float64        `json:"wind_gust"`
	WindDeg    int            `json:"wind_deg"`
	Rain       owmPrecip      `json:"rain"`
	Snow       owmPrecip      `json:"snow"`
	Weather    []owmCondition `json:"weather"`
}

type owmHourly struct {
	Dt         int64          `json:"dt"`
	Temp       float64        `json:"temp"`
	FeelsLike  float64        `json:"feels_like"`
	Pressure   int            `json:"pressure"`
	Humidity   int            `json:"humidity"`
	DewPoint   float64        `json:"dew_point"`
	Clouds     int            `json:"clouds"`
	UVI        float64        `json:"uvi"`
	Visibility int            `json:"visibility"`
	WindSpeed  float64        `json:"wind_speed"`
	WindGust   float64        `json:"wind_gust"`
	WindDeg    int            `json:"wind_deg"`
	POP        float64        `json:"pop"`
	Rain       owmPrecip      `json:"rain"`
	Snow       owmPrecip      `json:"snow"`
	Weather    []owmCondition `json:"weather"`
}

type owmDaily struct {
	Dt        int64   `json:"dt"`
	Sunrise   int64   `json:"sunrise"`
	Sunset    int64   `json:"sunset"`
	Moonrise  int64   `json:"moonrise"`
	Moonset   int64   `json:"moonset"`
	MoonPhase float64 `json:"moon_phase"`
	Temp      struct {
		Morn  float64 `json:"morn"`
		Day   float64 `json:"day"`
		Eve   float64 `json:"eve"`
		Night float64 `json:"night"`
		Min   float64 `json:"min"`
		Max   float64 `json:"max"`
	} `json:"temp"`
	FeelsLike struct {
		Morn  float64 `json:"morn"`
		Day   float64 `json:"day"`
		Eve   float64 `json:"eve"`
		Night float64 `json:"night"`
	} `json:"feels_like"`
	Pressure   int            `json:"pressure"`
	Humidity   int            `json:"humidity"`
	DewPoint   float64        `json:"dew_point"`
	Clouds     int            `json:"clouds"`
	UVI        float64        `json:"uvi"`
	Visibility int            `json:"visibility"`
	WindSpeed  float64        `json:"wind_speed"`
	WindGust   float64        `json:"wind_gust"`
	WindDeg    int            `json:"wind_deg"`
	POP        float64        `json:"pop"`
	Rain       float64        `json:"rain"`
	Snow       float64        `json:"snow"`
	Weather    []owmCondition `json:"weather"`
}

type owmAlert struct {
	Event string   `json:"event"`
	Start int64    `json:"start"`
	End   int64    `json:"end"`
	Tags  []string `json:"tags"`
}

type owmOneCall struct {
	Lat            float64     `json:"lat"`
	Lon            float64     `json:"lon"`
	Timezone       string      `json:"timezone"`
	TimezoneOffset int         `json:"timezone_offset"`
	Current        owmCurrent  `json:"current"`
	Hourly         []owmHourly `json:"hourly"`
	Daily          []owmDaily  `json:"daily"`
	Alerts         []owmAlert  `json:"alerts"`
}

type owmAirPollution struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components struct {
			CO   float64 `json:"co"`
			NO   float64 `json:"no"`
			NO2  float64 `json:"no2"`
			O3   float64 `json:"o3"`
			SO2  float64 `json:"so2"`
			PM25 float64 `json:"pm2_5"`
			PM10 float64 `json:"pm10"`
			NH3  float64 `json:"nh3"`
		} `json:"components"`
	} `json:"list"`
}

// FetchOneCall performs the one-call GET and maps the response into w.
// Returns the layered status code; w is only populated on 200.
func (c *OpenWeatherClient) FetchOneCall(w *model.WeatherSnapshot) int {
	exclude := "minutely"
	if !c.displayAlerts {
		exclude += ",alerts"
	}
	uri := fmt.Sprintf("https://%s/data/%s/onecall?lat=%s&lon=%s&lang=%s&units=%s&exclude=%s&appid=%s",
		c.endpoint, c.version, c.lat, c.lon, c.lang, c.units, exclude, c.apiKey)

	log.Printf("[INFO] GET %s", redactKey(uri, c.apiKey))
	return c.sc.getJSON(uri, nil, 3, func(r io.Reader) error {
		var payload owmOneCall
		if err := decode.Filtered(r, oneCallDecodeLimit, &payload); err != nil {
			return err
		}
		return mapOneCall(&payload, w)
	})
}

// FetchAirQuality performs the air-pollution history GET for the window
// covering the last NumAirPollution hours and maps the response into aq.
func (c *OpenWeatherClient) FetchAirQuality(aq *model.AirQualitySnapshot) int {
	start, end := airQualityWindow(c.now().Unix())
	uri := fmt.Sprintf("https://%s/data/2.5/air_pollution/history?lat=%s&lon=%s&start=%d&end=%d&appid=%s",
		c.endpoint, c.lat, c.lon, start, end, c.apiKey)

	log.Printf("[INFO] GET %s", redactKey(uri, c.apiKey))
	return c.sc.getJSON(uri, nil, 3, func(r io.Reader) error {
		var payload owmAirPollution
		if err := decode.Filtered(r, airQualityDecodeLimit, &payload); err != nil {
			return err
		}
		return mapAirQuality(&payload, aq)
	})
}

// airQualityWindow returns the Unix window covering exactly the last
// 3600*NumAirPollution - 1 seconds ending at now. The minus one matters:
// a full extra second would return one hour too many of history.
func airQualityWindow(now int64) (start, end int64) {
	end = now
	start = end - (3600*model.NumAirPollution - 1)
	return start, end
}

func firstCondition(items []owmCondition) model.Condition {
	if len(items) == 0 {
		return model.Condition{}
	}
	return model.Condition{
		ID:          items[0].ID,
		Main:        items[0].Main,
		Description: items[0].Description,
		Icon:        items[0].Icon,
	}
}

// mapOneCall copies the filtered one-call document into a snapshot,
// truncating each collection at its fixed capacity. A response without a
// current-reading timestamp is treated as a decode failure.
func mapOneCall(p *owmOneCall, w *model.WeatherSnapshot) error {
	if p.Current.Dt == 0 {
		return decode.Missing("current.dt")
	}

	w.Lat = p.Lat
	w.Lon = p.Lon
	w.Timezone = p.Timezone
	w.TimezoneOffset = p.TimezoneOffset

	cur := p.Current
	w.Current = model.CurrentWeather{
		Dt:         cur.Dt,
		Sunrise:    cur.Sunrise,
		Sunset:     cur.Sunset,
		Temp:       cur.Temp,
		FeelsLike:  cur.FeelsLike,
		Pressure:   cur.Pressure,
		Humidity:   cur.Humidity,
		DewPoint:   cur.DewPoint,
		Clouds:     cur.Clouds,
		UVI:        cur.UVI,
		Visibility: cur.Visibility,
		WindSpeed:  cur.WindSpeed,
		WindGust:   cur.WindGust,
		WindDeg:    cur.WindDeg,
		Rain1h:     cur.Rain.OneH,
		Snow1h:     cur.Snow.OneH,
		Weather:    firstCondition(cur.Weather),
	}

	w.Hourly = w.Hourly[:0]
	for i, h := range p.Hourly {
		if i == model.NumHourly {
			break
		}
		w.Hourly = append(w.Hourly, model.HourlyWeather{
			Dt:         h.Dt,
			Temp:       h.Temp,
			FeelsLike:  h.FeelsLike,
			Pressure:   h.Pressure,
			Humidity:   h.Humidity,
			DewPoint:   h.DewPoint,
			Clouds:     h.Clouds,
			UVI:        h.UVI,
			Visibility: h.Visibility,
			WindSpeed:  h.WindSpeed,
			WindGust:   h.WindGust,
			WindDeg:    h.WindDeg,
			POP:        h.POP,
			Rain1h:     h.Rain.OneH,
			Snow1h:     h.Snow.OneH,
			Weather:    firstCondition(h.Weather),
		})
	}

	w.Daily = w.Daily[:0]
	for i, d := range p.Daily {
		if i == model.NumDaily {
			break
		}
		w.Daily = append(w.Daily, model.DailyWeather{
			Dt:        d.Dt,
			Sunrise:   d.Sunrise,
			Sunset:    d.Sunset,
			Moonrise:  d.Moonrise,
			Moonset:   d.Moonset,
			MoonPhase: d.MoonPhase,
			Temp: model.DailyTemp{
				Morn:  d.Temp.Morn,
				Day:   d.Temp.Day,
				Eve:   d.Temp.Eve,
				Night: d.Temp.Night,
				Min:   d.Temp.Min,
				Max:   d.Temp.Max,
			},
			FeelsLike: model.DailyFeelsLike{
				Morn:  d.FeelsLike.Morn,
				Day:   d.FeelsLike.Day,
				Eve:   d.FeelsLike.Eve,
				Night: d.FeelsLike.Night,
			},
			Pressure:   d.Pressure,
			Humidity:   d.Humidity,
			DewPoint:   d.DewPoint,
			Clouds:     d.Clouds,
			UVI:        d.UVI,
			Visibility: d.Visibility,
			WindSpeed:  d.WindSpeed,
			WindGust:   d.WindGust,
			WindDeg:    d.WindDeg,
			POP:        d.POP,
			Rain:       d.Rain,
			Snow:       d.Snow,
			Weather:    firstCondition(d.Weather),
		})
	}

	w.Alerts = w.Alerts[:0]
	for i, a := range p.Alerts {
		if i == model.NumAlerts {
			break
		}
		alert := model.Alert{
			Event: a.Event,
			Start: a.Start,
			End:   a.End,
		}
		if len(a.Tags) > 0 {
			alert.Tag = a.Tags[0]
		}
		w.Alerts = append(w.Alerts, alert)
	}

	return nil
}

// mapAirQuality copies the pollution history into a snapshot, truncating
// at NumAirPollution records. An empty list is a decode failure.
func mapAirQuality(p *owmAirPollution, aq *model.AirQualitySnapshot) error {
	if len(p.List) == 0 {
		return decode.Missing("list")
	}

	aq.Lat = p.Coord.Lat
	aq.Lon = p.Coord.Lon
	aq.Records = aq.Records[:0]
	for i, rec := range p.List {
		if i == model.NumAirPollution {
			break
		}
		aq.Records = append(aq.Records, model.PollutionRecord{
			Dt:   rec.Dt,
			AQI:  rec.Main.AQI,
			CO:   rec.Components.CO,
			NO:   rec.Components.NO,
			NO2:  rec.Components.NO2,
			O3:   rec.Components.O3,
			SO2:  rec.Components.SO2,
			PM25: rec.Components.PM25,
			PM10: rec.Components.PM10,
			NH3:  rec.Components.NH3,
		})
	}
	return nil
}
