// Package service orchestrates the fetch-normalize-merge-persist cycle and
// the filtered retrieval path over the two stores.
package service

import (
	"context"
	"time"

	"cityweather/internal/attributes"
	"cityweather/internal/continent"
	"cityweather/internal/filter"
	"cityweather/internal/history"
	"cityweather/internal/weather"
)

// Fetcher abstracts the remote weather provider.
type Fetcher interface {
	Fetch(ctx context.Context, city string) (weather.Payload, error)
}

// Service wires the provider client to the history and attributes stores.
// Single logical writer: the persist step rewrites the history file wholesale,
// so concurrent writers would need external locking.
type Service struct {
	fetcher        Fetcher
	history        *history.Store
	attributesPath string
}

// New creates a Service.
func New(fetcher Fetcher, historyStore *history.Store, attributesPath string) *Service {
	return &Service{
		fetcher:        fetcher,
		history:        historyStore,
		attributesPath: attributesPath,
	}
}

// Refresh runs one full cycle for a city: fetch, normalize, build the report,
// merge into history, persist. Returns the report and the merged history.
func (s *Service) Refresh(ctx context.Context, city string) (weather.Report, []weather.Observation, error) {
	payload, err := s.fetcher.Fetch(ctx, city)
	if err != nil {
		return weather.Report{}, nil, err
	}

	rows, err := weather.Normalize(city, payload, time.Now())
	if err != nil {
		return weather.Report{}, nil, err
	}

	report, err := weather.BuildReport(rows)
	if err != nil {
		return weather.Report{}, nil, err
	}

	merged, err := s.history.Append(rows)
	if err != nil {
		return weather.Report{}, nil, err
	}

	return report, merged, nil
}

// SavedHistory returns the persisted history without fetching.
func (s *Service) SavedHistory() []weather.Observation {
	return s.history.Load()
}

// CityMatch is one qualifying city with its resolved continent presentation.
type CityMatch struct {
	attributes.Row
	ContinentDisplay string `json:"continentDisplay,omitempty"`
	ContinentCode    string `json:"continentCode,omitempty"`
}

// FilterOutcome is the full answer to one filtering request.
type FilterOutcome struct {
	Cities  []CityMatch           `json:"cities"`
	History []weather.Observation `json:"history"`
	Summary *filter.Summary       `json:"summary,omitempty"`
}

// FilterCities loads the attributes table, runs the fixed filter pipeline
// over the saved history, and annotates each qualifying city with its
// canonical continent name and derived code. The continent lookup is rebuilt
// from the current table on every call.
func (s *Service) FilterCities(opts filter.Options) FilterOutcome {
	table := attributes.Load(s.attributesPath)
	result := filter.Run(s.history.Load(), table, opts)

	var values []string
	for _, row := range table.Rows {
		if row.Continent != "" {
			values = append(values, row.Continent)
		}
	}
	lookup := continent.Build(values)

	outcome := FilterOutcome{History: result.History}
	for _, row := range result.Cities {
		match := CityMatch{Row: row}
		if display, ok := lookup.Resolve(row.Continent); ok {
			match.ContinentDisplay = display
			if code, ok := lookup.CodeOf(display); ok {
				match.ContinentCode = code
			}
		}
		outcome.Cities = append(outcome.Cities, match)
	}

	if summary, ok := filter.Summarize(result.History); ok {
		outcome.Summary = &summary
	}
	return outcome
}
