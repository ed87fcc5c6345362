package history

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"cityweather/internal/weather"
)

func obs(city string, ts time.Time, source weather.Source, temp float64) weather.Observation {
	return weather.Observation{
		City:         city,
		Timestamp:    ts,
		Source:       source,
		Description:  "Sunny",
		TemperatureC: temp,
		FeelsLikeC:   temp - 1,
		HumidityPct:  50,
		WindKmph:     10,
	}
}

func TestLoadAbsentFileIsEmptyHistory(t *testing.T) {
	rows, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty history, got %d rows", len(rows))
	}
}

func TestPersistThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	ts := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	in := []weather.Observation{
		obs("Lisbon", ts, weather.SourceCurrent, 20),
		obs("Oslo", ts.Add(time.Hour), weather.SourceForecast, -3),
	}
	if err := Persist(path, in); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in: %+v\nout: %+v", in, out)
	}
}

func TestLoadWithoutTimestampColumnIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	content := "city,source\nLisbon,current\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected corrupt-history error")
	}

	// The path-bound store recovers with an empty history instead.
	if rows := NewStore(path).Load(); len(rows) != 0 {
		t.Fatalf("expected recovery to empty history, got %d rows", len(rows))
	}
}

func TestLoadSynthesizesMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	content := "city,timestamp_utc\nLisbon,2024-01-15T09:00:00Z\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Description != "unknown" {
		t.Fatalf("expected synthesized description, got %q", rows[0].Description)
	}
	if !math.IsNaN(rows[0].TemperatureC) {
		t.Fatalf("expected NaN temperature, got %v", rows[0].TemperatureC)
	}
}

func TestLoadUnparseableTimestampBecomesUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	content := "city,timestamp_utc,source,description,temperature_C,feels_like_C,humidity_pct,wind_kmph\n" +
		"Lisbon,whenever,current,Sunny,20,19,55,12\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(rows) != 1 || !rows[0].Timestamp.IsZero() {
		t.Fatalf("expected unknown timestamp, got %+v", rows)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	ts := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	h := []weather.Observation{
		obs("Lisbon", ts, weather.SourceCurrent, 20),
		obs("Lisbon", ts.Add(time.Hour), weather.SourceForecast, 22),
	}

	if got := Merge(h, h); !reflect.DeepEqual(got, h) {
		t.Fatalf("merge(H, H) != H:\nwant %+v\n got %+v", h, got)
	}
}

func TestMergeLastWriteWins(t *testing.T) {
	ts := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	existing := []weather.Observation{obs("Lisbon", ts, weather.SourceCurrent, 20)}
	incoming := []weather.Observation{obs("Lisbon", ts, weather.SourceCurrent, 25)}

	merged := Merge(existing, incoming)
	if len(merged) != 1 {
		t.Fatalf("expected 1 row after dedup, got %d", len(merged))
	}
	if merged[0].TemperatureC != 25 {
		t.Fatalf("expected incoming row to win, got %+v", merged[0])
	}

	// City keys fold case: "LISBON" collides with "Lisbon".
	shouted := incoming[0]
	shouted.City = "LISBON"
	shouted.TemperatureC = 30
	merged = Merge(merged, []weather.Observation{shouted})
	if len(merged) != 1 || merged[0].TemperatureC != 30 {
		t.Fatalf("expected case-folded collision, got %+v", merged)
	}
}

func TestMergeSortsAscendingByTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	rows := []weather.Observation{
		obs("Oslo", ts.Add(2*time.Hour), weather.SourceForecast, 1),
		obs("Oslo", ts, weather.SourceCurrent, 2),
		obs("Oslo", ts.Add(time.Hour), weather.SourceForecast, 3),
	}

	merged := Merge(nil, rows)
	for i := 1; i < len(merged); i++ {
		if merged[i].Timestamp.Before(merged[i-1].Timestamp) {
			t.Fatalf("history not sorted ascending: %+v", merged)
		}
	}
}

func TestPersistIsAFullRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	ts := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

	if err := Persist(path, []weather.Observation{obs("Lisbon", ts, weather.SourceCurrent, 20)}); err != nil {
		t.Fatal(err)
	}
	if err := Persist(path, []weather.Observation{obs("Oslo", ts, weather.SourceCurrent, -3)}); err != nil {
		t.Fatal(err)
	}

	rows, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].City != "Oslo" {
		t.Fatalf("expected second persist to replace the file, got %+v", rows)
	}
}

func TestTail(t *testing.T) {
	ts := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	rows := []weather.Observation{
		obs("A", ts, weather.SourceCurrent, 1),
		obs("B", ts.Add(time.Hour), weather.SourceCurrent, 2),
		obs("C", ts.Add(2*time.Hour), weather.SourceCurrent, 3),
	}

	if got := Tail(rows, 2); len(got) != 2 || got[0].City != "B" {
		t.Fatalf("unexpected tail: %+v", got)
	}
	if got := Tail(rows, 0); len(got) != 3 {
		t.Fatalf("tail(0) should pass through, got %+v", got)
	}
	if got := Tail(rows, 10); len(got) != 3 {
		t.Fatalf("oversized tail should pass through, got %+v", got)
	}
}
