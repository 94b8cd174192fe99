package notifier

import (
	"fmt"
	"strings"
	"time"

	"paperdash/internal/collector"
	"paperdash/internal/model"
)

// FormatDegraded builds the message sent when a refresh cycle had source
// failures. Healthy sources are omitted.
func FormatDegraded(frame *model.Frame) string {
	var b strings.Builder
	b.WriteString("⚠️ <b>paperdash: degraded refresh</b>\n")

	if !frame.WeatherValid() {
		fmt.Fprintf(&b, "weather: %d %s\n", frame.WeatherStatus, collector.StatusText(frame.WeatherStatus))
	}
	if !frame.AirValid() {
		fmt.Fprintf(&b, "air quality: %d %s\n", frame.AirStatus, collector.StatusText(frame.AirStatus))
	}
	writePageStatus(&b, "crypto", &frame.Crypto)
	writePageStatus(&b, "indices", &frame.Indices)
	writePageStatus(&b, "commodities", &frame.Commodities)
	writePageStatus(&b, "forex", &frame.Forex)

	return b.String()
}

func writePageStatus(b *strings.Builder, name string, page *model.PageData) {
	var missing []string
	for i := range page.Assets {
		if !page.Assets[i].Valid {
			missing = append(missing, page.Assets[i].DisplaySymbol)
		}
	}
	if len(missing) == 0 {
		return
	}
	fmt.Fprintf(b, "%s: no data for %s\n", name, strings.Join(missing, ", "))
}

// FormatAlerts builds the message relaying active weather alerts, or an
// empty string when there are none.
func FormatAlerts(w *model.WeatherSnapshot) string {
	if len(w.Alerts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("🌩 <b>Weather alerts</b>\n")
	for _, a := range w.Alerts {
		fmt.Fprintf(&b, "%s: %s → %s\n", a.Event,
			time.Unix(a.Start, 0).Format("Jan 2 15:04"),
			time.Unix(a.End, 0).Format("Jan 2 15:04"))
	}
	return b.String()
}
