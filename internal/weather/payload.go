package weather

// Payload mirrors the wttr.in "?format=j1" JSON shape. All numeric values
// arrive as strings and are parsed during normalization.
type Payload struct {
	CurrentCondition []CurrentCondition `json:"current_condition"`
	Weather          []ForecastDay      `json:"weather"`
}

// CurrentCondition is the provider's current-conditions block.
type CurrentCondition struct {
	WeatherDesc   []WeatherDesc `json:"weatherDesc"`
	TempC         string        `json:"temp_C"`
	FeelsLikeC    string        `json:"FeelsLikeC"`
	Humidity      string        `json:"humidity"`
	WindspeedKmph string        `json:"windspeedKmph"`
}

// ForecastDay is one forecast day with its hourly blocks.
type ForecastDay struct {
	Date   string        `json:"date"`
	Hourly []HourlyBlock `json:"hourly"`
}

// HourlyBlock is one intra-day forecast slot. Note the provider spells the
// temperature field "tempC" here but "temp_C" in the current block.
type HourlyBlock struct {
	WeatherDesc   []WeatherDesc `json:"weatherDesc"`
	TempC         string        `json:"tempC"`
	FeelsLikeC    string        `json:"FeelsLikeC"`
	Humidity      string        `json:"humidity"`
	WindspeedKmph string        `json:"windspeedKmph"`
}

// WeatherDesc wraps the provider's nested description value.
type WeatherDesc struct {
	Value string `json:"value"`
}
