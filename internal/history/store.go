// Package history persists the observation log as a CSV file. The store is
// permissive on read (corrupt or absent data degrades to empty history) and
// strict on write; row validity is the caller's responsibility.
package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"cityweather/internal/weather"
)

// ErrCorruptHistory marks a backing file that could not be parsed at all.
// It is recovered locally (empty history) and logged, never surfaced.
var ErrCorruptHistory = errors.New("corrupt history file")

// Columns is the canonical history schema, in persisted order.
var Columns = []string{
	"city",
	"timestamp_utc",
	"source",
	"description",
	"temperature_C",
	"feels_like_C",
	"humidity_pct",
	"wind_kmph",
}

const timestampLayout = "2006-01-02T15:04:05Z"

// timestampLayouts are tried in order when reading persisted rows. Values
// that match none of them (and are not unix seconds) become unknown rather
// than failing the load.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Store binds the history log to one file path.
type Store struct {
	Path string
}

// NewStore creates a Store for the given path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the persisted history. An absent file is an empty history. A
// file whose header lacks the timestamp column is treated as too corrupt to
// trust and also yields an empty history.
func (s *Store) Load() []weather.Observation {
	rows, err := Load(s.Path)
	if err != nil {
		log.Printf("history: recovering empty history for %s: %v", s.Path, err)
		return nil
	}
	return rows
}

// Append merges incoming rows into the persisted history and rewrites the
// file. Returns the merged history.
func (s *Store) Append(incoming []weather.Observation) ([]weather.Observation, error) {
	merged := Merge(s.Load(), incoming)
	if err := Persist(s.Path, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Load reads all observation rows from path. The returned error is always
// ErrCorruptHistory-wrapped; callers that want availability over strictness
// (everyone, in practice) substitute an empty history.
func Load(path string) ([]weather.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	idx := headerIndex(records[0])
	if _, ok := idx["timestamp_utc"]; !ok {
		return nil, fmt.Errorf("%w: header has no timestamp_utc column", ErrCorruptHistory)
	}

	rows := make([]weather.Observation, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, weather.Observation{
			City:         textCell(rec, idx, "city"),
			Timestamp:    parseTimestamp(cell(rec, idx, "timestamp_utc")),
			Source:       weather.Source(textCell(rec, idx, "source")),
			Description:  textCell(rec, idx, "description"),
			TemperatureC: numericCell(rec, idx, "temperature_C"),
			FeelsLikeC:   numericCell(rec, idx, "feels_like_C"),
			HumidityPct:  numericCell(rec, idx, "humidity_pct"),
			WindKmph:     numericCell(rec, idx, "wind_kmph"),
		})
	}
	return rows, nil
}

// Merge concatenates existing and incoming rows, deduplicates by
// (city, timestamp, source) keeping the last occurrence, and sorts ascending
// by timestamp. Incoming wins over existing on key collision.
func Merge(existing, incoming []weather.Observation) []weather.Observation {
	type key struct {
		city   string
		ts     time.Time
		source weather.Source
	}

	combined := make([]weather.Observation, 0, len(existing)+len(incoming))
	combined = append(combined, existing...)
	combined = append(combined, incoming...)

	seen := make(map[key]int, len(combined))
	merged := combined[:0]
	for _, row := range combined {
		k := key{city: row.CityKey(), ts: row.Timestamp, source: row.Source}
		if at, ok := seen[k]; ok {
			merged[at] = row
			continue
		}
		seen[k] = len(merged)
		merged = append(merged, row)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}

// Persist rewrites the whole file with the canonical schema. Idempotent for
// a given row sequence.
func Persist(path string, rows []weather.Observation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("persisting history: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("persisting history: %w", err)
	}

	for _, row := range rows {
		rec := []string{
			row.City,
			formatTimestamp(row.Timestamp),
			string(row.Source),
			row.Description,
			formatNumeric(row.TemperatureC),
			formatNumeric(row.FeelsLikeC),
			formatNumeric(row.HumidityPct),
			formatNumeric(row.WindKmph),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("persisting history: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("persisting history: %w", err)
	}
	return nil
}

// Tail returns the last n rows (the newest, given the ordering invariant).
func Tail(rows []weather.Observation, n int) []weather.Observation {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}

func cell(rec []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// textCell synthesizes "unknown" for text columns missing from the file.
func textCell(rec []string, idx map[string]int, col string) string {
	if _, ok := idx[col]; !ok {
		return "unknown"
	}
	return cell(rec, idx, col)
}

// numericCell yields NaN for missing columns and unparseable values.
func numericCell(rec []string, idx map[string]int, col string) float64 {
	v, err := strconv.ParseFloat(cell(rec, idx, col), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parseTimestamp is deliberately permissive: unparseable values become the
// zero time (unknown) rather than failing the whole load.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC()
	}
	return time.Time{}
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(timestampLayout)
}

func formatNumeric(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
