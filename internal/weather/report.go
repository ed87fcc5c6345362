package weather

import (
	"fmt"
	"sort"
)

// maxForecastSnapshots bounds how many forecast days a report carries.
const maxForecastSnapshots = 3

// BuildReport reduces a normalized row-set into a single report: the latest
// current-source row plus the newest forecast rows, sorted ascending by time.
func BuildReport(rows []Observation) (Report, error) {
	var current *Observation
	var forecasts []Observation

	for i := range rows {
		switch rows[i].Source {
		case SourceCurrent:
			current = &rows[i]
		case SourceForecast:
			forecasts = append(forecasts, rows[i])
		}
	}

	if current == nil {
		return Report{}, fmt.Errorf("%w: no current-conditions row", ErrMalformedPayload)
	}

	// Newest forecast days first, then keep up to the cap and restore
	// ascending order for display.
	sort.SliceStable(forecasts, func(i, j int) bool {
		return forecasts[i].Timestamp.After(forecasts[j].Timestamp)
	})
	if len(forecasts) > maxForecastSnapshots {
		forecasts = forecasts[:maxForecastSnapshots]
	}
	sort.SliceStable(forecasts, func(i, j int) bool {
		return forecasts[i].Timestamp.Before(forecasts[j].Timestamp)
	})

	snaps := make([]ForecastSnapshot, 0, len(forecasts))
	for _, fc := range forecasts {
		snaps = append(snaps, ForecastSnapshot{
			Timestamp:    fc.Timestamp,
			Description:  fc.Description,
			TemperatureC: fc.TemperatureC,
			TemperatureF: CToF(fc.TemperatureC),
			HumidityPct:  fc.HumidityPct,
		})
	}

	return Report{
		City:         current.City,
		Observed:     current.Timestamp,
		Description:  current.Description,
		TemperatureC: current.TemperatureC,
		FeelsLikeC:   current.FeelsLikeC,
		HumidityPct:  current.HumidityPct,
		WindKmph:     current.WindKmph,
		Forecasts:    snaps,
	}, nil
}

// Lines renders the report as plain text for the CLI.
func (r Report) Lines() []string {
	lines := []string{
		fmt.Sprintf("City: %s", r.City),
		fmt.Sprintf("Observed (UTC): %s", r.Observed.Format("2006-01-02 15:04")),
		fmt.Sprintf("Conditions: %s", r.Description),
		fmt.Sprintf("Temp / Feels Like (C): %.1f / %.1f", r.TemperatureC, r.FeelsLikeC),
		fmt.Sprintf("Humidity (%%): %.0f", r.HumidityPct),
		fmt.Sprintf("Wind (km/h): %.0f", r.WindKmph),
		"Forecast snapshots:",
	}
	for _, fc := range r.Forecasts {
		lines = append(lines, fmt.Sprintf("  %s - %s - Temp %.1fC (%.1fF), Humidity %.0f%%",
			fc.Timestamp.Format("2006-01-02"), fc.Description, fc.TemperatureC, fc.TemperatureF, fc.HumidityPct))
	}
	return lines
}
