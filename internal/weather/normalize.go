package weather

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrMalformedPayload is returned when the provider response is missing
// expected fields or carries values that cannot be parsed. Normalization is
// all-or-nothing: no partial rows are produced.
var ErrMalformedPayload = errors.New("malformed weather payload")

// Normalize converts one provider payload into observation rows: exactly one
// current row plus one forecast row per forecast day. The forecast row is
// taken from the mid-day hourly block (index 4, falling back to index 0 when
// fewer than 5 blocks exist) and stamped at 12:00:00 UTC on the forecast date.
func Normalize(city string, payload Payload, now time.Time) ([]Observation, error) {
	if len(payload.CurrentCondition) == 0 {
		return nil, fmt.Errorf("%w: missing current_condition block", ErrMalformedPayload)
	}

	current := payload.CurrentCondition[0]
	desc, err := descValue(current.WeatherDesc)
	if err != nil {
		return nil, err
	}

	rows := make([]Observation, 0, 1+len(payload.Weather))

	obs := Observation{
		City:        city,
		Timestamp:   now.UTC().Truncate(time.Second),
		Source:      SourceCurrent,
		Description: desc,
	}
	if obs.TemperatureC, err = parseField("temp_C", current.TempC); err != nil {
		return nil, err
	}
	if obs.FeelsLikeC, err = parseField("FeelsLikeC", current.FeelsLikeC); err != nil {
		return nil, err
	}
	if obs.HumidityPct, err = parseField("humidity", current.Humidity); err != nil {
		return nil, err
	}
	if obs.WindKmph, err = parseField("windspeedKmph", current.WindspeedKmph); err != nil {
		return nil, err
	}
	rows = append(rows, obs)

	for _, day := range payload.Weather {
		if len(day.Hourly) == 0 {
			return nil, fmt.Errorf("%w: forecast day %q has no hourly blocks", ErrMalformedPayload, day.Date)
		}

		block := day.Hourly[0]
		if len(day.Hourly) >= 5 {
			block = day.Hourly[4]
		}

		when, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: bad forecast date %q", ErrMalformedPayload, day.Date)
		}

		desc, err := descValue(block.WeatherDesc)
		if err != nil {
			return nil, err
		}

		fc := Observation{
			City:        city,
			Timestamp:   when.Add(12 * time.Hour),
			Source:      SourceForecast,
			Description: desc,
		}
		if fc.TemperatureC, err = parseField("tempC", block.TempC); err != nil {
			return nil, err
		}
		if fc.FeelsLikeC, err = parseField("FeelsLikeC", block.FeelsLikeC); err != nil {
			return nil, err
		}
		if fc.HumidityPct, err = parseField("humidity", block.Humidity); err != nil {
			return nil, err
		}
		if fc.WindKmph, err = parseField("windspeedKmph", block.WindspeedKmph); err != nil {
			return nil, err
		}
		rows = append(rows, fc)
	}

	return rows, nil
}

func descValue(descs []WeatherDesc) (string, error) {
	if len(descs) == 0 {
		return "", fmt.Errorf("%w: missing weatherDesc value", ErrMalformedPayload)
	}
	return descs[0].Value, nil
}

func parseField(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: field %s=%q is not numeric", ErrMalformedPayload, name, raw)
	}
	return v, nil
}
