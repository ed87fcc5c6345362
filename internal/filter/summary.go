package filter

import (
	"math"

	"github.com/montanaflynn/stats"

	"cityweather/internal/weather"
)

// Summary aggregates temperatures over a filtered history slice.
type Summary struct {
	Rows     int     `json:"rows"`
	MeanTemp float64 `json:"meanTempC"`
	MinTemp  float64 `json:"minTempC"`
	MaxTemp  float64 `json:"maxTempC"`
}

// Summarize computes the temperature summary. Rows whose temperature is
// unknown (NaN, from synthesized history columns) are skipped; ok is false
// when nothing measurable remains.
func Summarize(rows []weather.Observation) (Summary, bool) {
	temps := make(stats.Float64Data, 0, len(rows))
	for _, row := range rows {
		if math.IsNaN(row.TemperatureC) {
			continue
		}
		temps = append(temps, row.TemperatureC)
	}
	if len(temps) == 0 {
		return Summary{}, false
	}

	mean, err := temps.Mean()
	if err != nil {
		return Summary{}, false
	}
	min, err := temps.Min()
	if err != nil {
		return Summary{}, false
	}
	max, err := temps.Max()
	if err != nil {
		return Summary{}, false
	}

	return Summary{
		Rows:     len(rows),
		MeanTemp: mean,
		MinTemp:  min,
		MaxTemp:  max,
	}, true
}
