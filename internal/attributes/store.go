// Package attributes loads the externally curated city-attributes table:
// average home price, geographic feature flags, and continent. The dataset is
// read-only to this process; loading only cleans and indexes it.
package attributes

import (
	"encoding/csv"
	"log"
	"os"
	"strconv"
	"strings"

	"cityweather/internal/weather"
)

// Row is one cleaned city-attributes record.
type Row struct {
	City         string  `json:"city"`
	CityKey      string  `json:"-"`
	AvgHomePrice float64 `json:"avgHomePrice"`
	HasBeach     bool    `json:"hasBeach"`
	HasMountain  bool    `json:"hasMountain"`
	Continent    string  `json:"continent,omitempty"` // empty means unset
}

// Availability records which optional columns the source file carried.
// Filters consult these flags instead of probing the table's shape.
type Availability struct {
	HasBeachData     bool `json:"hasBeachData"`
	HasMountainData  bool `json:"hasMountainData"`
	HasContinentData bool `json:"hasContinentData"`
}

// Table is the cleaned attributes dataset plus its column availability.
type Table struct {
	Rows         []Row
	Availability Availability
}

// Candidate header spellings per logical field, tried in priority order.
var (
	cityColumns      = []string{"city", "city_name", "name", "town"}
	priceColumns     = []string{"avg_home_price", "average_home_price", "avg_price", "home_price", "price"}
	beachColumns     = []string{"has_beach", "beach", "is_beach", "coastal"}
	mountainColumns  = []string{"has_mountain", "mountain", "is_mountain", "mountains"}
	continentColumns = []string{"continent", "region", "continent_name"}
)

// truthyTokens is the fixed set accepted as true for feature columns.
// Anything else, including a missing value, is false.
var truthyTokens = map[string]bool{
	"true": true, "1": true, "yes": true, "y": true, "t": true, "on": true,
}

// Load reads and cleans the attributes file. Missing file, unreadable
// content, or absent mandatory columns (city, price) all yield an empty
// table rather than an error; the dataset is externally curated and this
// core only consumes what it can trust.
func Load(path string) Table {
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("attributes: cannot open %s: %v", path, err)
		}
		return Table{}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		log.Printf("attributes: cannot parse %s: %v", path, err)
		return Table{}
	}
	if len(records) == 0 {
		return Table{}
	}

	idx := headerIndex(records[0])
	cityCol, okCity := resolveColumn(idx, cityColumns)
	priceCol, okPrice := resolveColumn(idx, priceColumns)
	if !okCity || !okPrice {
		log.Printf("attributes: %s lacks mandatory city or price column", path)
		return Table{}
	}

	beachCol, hasBeach := resolveColumn(idx, beachColumns)
	mountainCol, hasMountain := resolveColumn(idx, mountainColumns)
	continentCol, hasContinent := resolveColumn(idx, continentColumns)

	table := Table{
		Availability: Availability{
			HasBeachData:     hasBeach,
			HasMountainData:  hasMountain,
			HasContinentData: hasContinent,
		},
	}

	position := make(map[string]int)
	for _, rec := range records[1:] {
		city := strings.TrimSpace(cellAt(rec, cityCol))
		if city == "" {
			continue
		}

		price, err := strconv.ParseFloat(strings.TrimSpace(cellAt(rec, priceCol)), 64)
		if err != nil || price < 0 {
			// Invalid price rows are dropped entirely, never defaulted.
			continue
		}

		row := Row{
			City:         city,
			CityKey:      weather.FoldCity(city),
			AvgHomePrice: price,
		}
		if hasBeach {
			row.HasBeach = truthy(cellAt(rec, beachCol))
		}
		if hasMountain {
			row.HasMountain = truthy(cellAt(rec, mountainCol))
		}
		if hasContinent {
			row.Continent = strings.TrimSpace(cellAt(rec, continentCol))
		}

		// Dedup by city key, last occurrence wins (mirrors the history
		// store's last-write-wins merge).
		if at, ok := position[row.CityKey]; ok {
			table.Rows[at] = row
			continue
		}
		position[row.CityKey] = len(table.Rows)
		table.Rows = append(table.Rows, row)
	}

	return table
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func resolveColumn(idx map[string]int, candidates []string) (int, bool) {
	for _, name := range candidates {
		if i, ok := idx[name]; ok {
			return i, true
		}
	}
	return 0, false
}

func cellAt(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return rec[i]
}

func truthy(raw string) bool {
	return truthyTokens[strings.ToLower(strings.TrimSpace(raw))]
}
