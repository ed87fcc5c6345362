package weather

import (
	"strings"
	"time"
)

// Source tells whether an observation was measured now or forecast ahead.
type Source string

const (
	SourceCurrent  Source = "current"
	SourceForecast Source = "forecast"
)

// Observation is one normalized weather row as it lives in the history log.
// Identity key is (CityKey(), Timestamp, Source); a later write with the same
// key replaces the earlier one.
type Observation struct {
	City         string    `json:"city"`
	Timestamp    time.Time `json:"timestampUtc"` // always UTC; zero means unknown
	Source       Source    `json:"source"`
	Description  string    `json:"description"`
	TemperatureC float64   `json:"temperatureC"`
	FeelsLikeC   float64   `json:"feelsLikeC"`
	HumidityPct  float64   `json:"humidityPct"`
	WindKmph     float64   `json:"windKmph"`
}

// CityKey returns the canonical key used for dedup and joins: the trimmed,
// case-folded city name.
func (o Observation) CityKey() string {
	return FoldCity(o.City)
}

// FoldCity canonicalizes a city name for keying purposes.
func FoldCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// ForecastSnapshot is one forecast day inside a Report. Derived, never persisted.
type ForecastSnapshot struct {
	Timestamp    time.Time `json:"timestampUtc"`
	Description  string    `json:"description"`
	TemperatureC float64   `json:"temperatureC"`
	TemperatureF float64   `json:"temperatureF"`
	HumidityPct  float64   `json:"humidityPct"`
}

// Report is the current-conditions-plus-forecast summary built from one
// freshly normalized row-set. Derived, never persisted; rebuilt on demand.
type Report struct {
	City         string             `json:"city"`
	Observed     time.Time          `json:"observedUtc"`
	Description  string             `json:"description"`
	TemperatureC float64            `json:"temperatureC"`
	FeelsLikeC   float64            `json:"feelsLikeC"`
	HumidityPct  float64            `json:"humidityPct"`
	WindKmph     float64            `json:"windKmph"`
	Forecasts    []ForecastSnapshot `json:"forecasts"`
}

// CToF converts Celsius to Fahrenheit.
func CToF(c float64) float64 {
	return c*9/5 + 32
}
