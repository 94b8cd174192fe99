package model

// Fixed record capacities. The e-paper layout renders at most this many
// entries per section, and the mappers truncate source arrays at these
// bounds rather than growing past them.
const (
	NumHourly       = 24
	NumDaily        = 8
	NumAlerts       = 8
	NumAirPollution = 24
)

// Condition describes one weather condition entry (code, category,
// human-readable description, icon key).
type Condition struct {
	ID          int
	Main        string
	Description string
	Icon        string
}

// CurrentWeather is the "current" block of a one-call response.
type CurrentWeather struct {
	Dt         int64
	Sunrise    int64
	Sunset     int64
	Temp       float64
	FeelsLike  float64
	Pressure   int
	Humidity   int
	DewPoint   float64
	Clouds     int
	UVI        float64
	Visibility int
	WindSpeed  float64
	WindGust   float64
	WindDeg    int
	Rain1h     float64
	Snow1h     float64
	Weather    Condition
}

// HourlyWeather is one hourly forecast record.
type HourlyWeather struct {
	Dt         int64
	Temp       float64
	FeelsLike  float64
	Pressure   int
	Humidity   int
	DewPoint   float64
	Clouds     int
	UVI        float64
	Visibility int
	WindSpeed  float64
	WindGust   float64
	WindDeg    int
	POP        float64
	Rain1h     float64
	Snow1h     float64
	Weather    Condition
}

// DailyTemp holds the per-day temperature family.
type DailyTemp struct {
	Morn  float64
	Day   float64
	Eve   float64
	Night float64
	Min   float64
	Max   float64
}

// DailyFeelsLike holds the per-day feels-like family.
type DailyFeelsLike struct {
	Morn  float64
	Day   float64
	Eve   float64
	Night float64
}

// DailyWeather is one daily forecast record.
type DailyWeather struct {
	Dt         int64
	Sunrise    int64
	Sunset     int64
	Moonrise   int64
	Moonset    int64
	MoonPhase  float64
	Temp       DailyTemp
	FeelsLike  DailyFeelsLike
	Pressure   int
	Humidity   int
	DewPoint   float64
	Clouds     int
	UVI        float64
	Visibility int
	WindSpeed  float64
	WindGust   float64
	WindDeg    int
	POP        float64
	Rain       float64
	Snow       float64
	Weather    Condition
}

// Alert is one government weather alert. Long free-text fields (sender,
// description) are filtered out during decode and never stored.
type Alert struct {
	Event string
	Start int64
	End   int64
	Tag   string
}

// WeatherSnapshot holds one cycle's one-call data. Hourly, Daily, and
// Alerts are ordered by ascending timestamp as received and hold at most
// NumHourly/NumDaily/NumAlerts entries.
type WeatherSnapshot struct {
	Lat            float64
	Lon            float64
	Timezone       string
	TimezoneOffset int
	Current        CurrentWeather
	Hourly         []HourlyWeather
	Daily          []DailyWeather
	Alerts         []Alert
}

// PollutionRecord is one hourly air-pollution reading: the integer AQI
// category plus the eight pollutant concentrations in μg/m³.
type PollutionRecord struct {
	Dt   int64
	AQI  int
	CO   float64
	NO   float64
	NO2  float64
	O3   float64
	SO2  float64
	PM25 float64
	PM10 float64
	NH3  float64
}

// AirQualitySnapshot holds one cycle's air-pollution history, at most
// NumAirPollution records in ascending time order.
type AirQualitySnapshot struct {
	Lat     float64
	Lon     float64
	Records []PollutionRecord
}
