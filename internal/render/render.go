// Package render defines the sink boundary that consumes assembled
// frames. The e-paper driver lives behind this interface on the device;
// the daemon ships a text renderer for terminals and log files.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"paperdash/internal/model"
)

// Renderer consumes one fully assembled frame. Implementations must treat
// records with a false validity flag as "no data", never as stale or
// zeroed values.
type Renderer interface {
	Render(frame *model.Frame) error
}

// TextRenderer writes a plain-text rendition of a frame.
type TextRenderer struct {
	Out io.Writer
}

// NewTextRenderer creates a renderer writing to out.
func NewTextRenderer(out io.Writer) *TextRenderer {
	return &TextRenderer{Out: out}
}

func (t *TextRenderer) Render(frame *model.Frame) error {
	var b strings.Builder

	fmt.Fprintf(&b, "=== paperdash %s ===\n", frame.FetchedAt.Format("2006-01-02 15:04:05"))

	if frame.WeatherValid() {
		cur := frame.Weather.Current
		fmt.Fprintf(&b, "Weather: %.1f° (feels %.1f°) %s | wind %.1f @ %d° | humidity %d%% | UV %.1f\n",
			cur.Temp, cur.FeelsLike, cur.Weather.Description,
			cur.WindSpeed, cur.WindDeg, cur.Humidity, cur.UVI)
		for _, alert := range frame.Weather.Alerts {
			fmt.Fprintf(&b, "ALERT: %s (%s - %s)\n", alert.Event,
				time.Unix(alert.Start, 0).Format("Jan 2 15:04"),
				time.Unix(alert.End, 0).Format("Jan 2 15:04"))
		}
	} else {
		fmt.Fprintf(&b, "Weather: unavailable (%d)\n", frame.WeatherStatus)
	}

	if frame.AirValid() && len(frame.Air.Records) > 0 {
		latest := frame.Air.Records[len(frame.Air.Records)-1]
		fmt.Fprintf(&b, "Air quality: AQI %d | PM2.5 %.1f | PM10 %.1f | O3 %.1f\n",
			latest.AQI, latest.PM25, latest.PM10, latest.O3)
	} else {
		fmt.Fprintf(&b, "Air quality: unavailable (%d)\n", frame.AirStatus)
	}

	writePage(&b, "Crypto", &frame.Crypto, true)
	writePage(&b, "Indices", &frame.Indices, false)
	writePage(&b, "Commodities", &frame.Commodities, false)
	writePage(&b, "Forex", &frame.Forex, false)

	_, err := io.WriteString(t.Out, b.String())
	return err
}

func writePage(b *strings.Builder, title string, page *model.PageData, showCAD bool) {
	fmt.Fprintf(b, "--- %s ---\n", title)
	for i := range page.Assets {
		a := &page.Assets[i]
		if !a.Valid {
			fmt.Fprintf(b, "%-8s %-20s --\n", a.DisplaySymbol, a.Name)
			continue
		}
		line := fmt.Sprintf("%-8s %-20s %12.2f  %+.2f%% d  %+.2f%% w  %+.2f%% m",
			a.DisplaySymbol, a.Name, a.Price, a.ChangeDay, a.ChangeWeek, a.ChangeMonth)
		if showCAD {
			line += fmt.Sprintf("  (C$%.2f)", a.PriceCAD)
		}
		fmt.Fprintf(b, "%s %s\n", line, sparkline(a.Candles))
	}
}

// sparkline renders candles as a coarse up/down strip so text output
// still conveys the trend shape.
func sparkline(candles []model.OHLC) string {
	if len(candles) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range candles {
		switch {
		case c.Close > c.Open:
			b.WriteByte('/')
		case c.Close < c.Open:
			b.WriteByte('\\')
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
