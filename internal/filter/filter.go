// Package filter joins weather history against city attributes and applies
// the compound predicates used by the presentation layer.
package filter

import (
	"sort"
	"strings"
	"time"

	"cityweather/internal/attributes"
	"cityweather/internal/weather"
)

// DefaultMinTemperatureC is the temperature floor the pipeline applies when
// the caller does not override it.
const DefaultMinTemperatureC = 15.0

// Criteria holds the attribute-level predicates. A nil MaxPrice means no
// price ceiling (every price passes). Continents are matched case-folded.
type Criteria struct {
	MaxPrice        *float64
	RequireBeach    bool
	RequireMountain bool
	Continents      []string
}

// ByAttributes keeps attribute rows within the price ceiling, with the
// required features, and on one of the requested continents. Feature and
// continent predicates only apply when the source file carried the column,
// per the availability flags. The result is sorted ascending by price.
func ByAttributes(rows []attributes.Row, avail attributes.Availability, c Criteria) []attributes.Row {
	maxPrice := c.MaxPrice
	if maxPrice == nil {
		// Absent ceiling means no filtering by price: default to the
		// table's own maximum.
		var top float64
		for _, row := range rows {
			if row.AvgHomePrice > top {
				top = row.AvgHomePrice
			}
		}
		maxPrice = &top
	}

	wanted := foldSet(c.Continents)

	var kept []attributes.Row
	for _, row := range rows {
		if row.AvgHomePrice > *maxPrice {
			continue
		}
		if avail.HasBeachData && c.RequireBeach && !row.HasBeach {
			continue
		}
		if avail.HasMountainData && c.RequireMountain && !row.HasMountain {
			continue
		}
		if avail.HasContinentData && len(wanted) > 0 {
			if !wanted[strings.ToLower(strings.TrimSpace(row.Continent))] {
				continue
			}
		}
		kept = append(kept, row)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].AvgHomePrice < kept[j].AvgHomePrice
	})
	return kept
}

// HistoryByCities inner-joins history rows to the given city set by
// case-folded name. An empty city set yields an empty result: no qualifying
// city means no qualifying history.
func HistoryByCities(history []weather.Observation, cities []string) []weather.Observation {
	keys := foldSet(cities)
	if len(keys) == 0 {
		return nil
	}

	var kept []weather.Observation
	for _, row := range history {
		if keys[row.CityKey()] {
			kept = append(kept, row)
		}
	}
	return kept
}

// ForWinterSnow keeps rows observed in a canonical winter month (December,
// January, February, by calendar month regardless of hemisphere) whose
// description mentions snow. Both conditions are required. Rows with unknown
// timestamps never match. Disabled, it passes the input through unchanged.
func ForWinterSnow(history []weather.Observation, enabled bool) []weather.Observation {
	if !enabled {
		return history
	}

	var kept []weather.Observation
	for _, row := range history {
		if row.Timestamp.IsZero() || !winterMonth(row.Timestamp.Month()) {
			continue
		}
		if !strings.Contains(strings.ToLower(row.Description), "snow") {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

func winterMonth(m time.Month) bool {
	return m == time.December || m == time.January || m == time.February
}

// Options parameterizes one pipeline run.
type Options struct {
	MinTemperatureC *float64 // nil means DefaultMinTemperatureC
	Criteria        Criteria
	WinterSnow      bool
}

// Result is the outcome of one pipeline run.
type Result struct {
	Cities  []attributes.Row      `json:"cities"`
	History []weather.Observation `json:"history"`
}

// Run applies the fixed composition the presentation layer depends on:
// temperature threshold, sort descending by temperature, attribute filter
// plus city join, then winter-snow. The order matters; winter-snow operates
// on the already-narrowed set.
func Run(history []weather.Observation, table attributes.Table, opts Options) Result {
	minTemp := DefaultMinTemperatureC
	if opts.MinTemperatureC != nil {
		minTemp = *opts.MinTemperatureC
	}

	var warm []weather.Observation
	for _, row := range history {
		if row.TemperatureC > minTemp {
			warm = append(warm, row)
		}
	}
	sort.SliceStable(warm, func(i, j int) bool {
		return warm[i].TemperatureC > warm[j].TemperatureC
	})

	cities := ByAttributes(table.Rows, table.Availability, opts.Criteria)

	names := make([]string, 0, len(cities))
	for _, c := range cities {
		names = append(names, c.City)
	}

	joined := HistoryByCities(warm, names)
	return Result{
		Cities:  cities,
		History: ForWinterSnow(joined, opts.WinterSnow),
	}
}

func foldSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = true
		}
	}
	return set
}
