package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"cityweather/internal/filter"
	"cityweather/internal/history"
	"cityweather/internal/service"
	"cityweather/internal/weather"
	"cityweather/internal/weather/providers"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc *service.Service, defaultTail int) {
	v1 := app.Group("/api/v1")

	v1.Post("/weather/:city/refresh", func(c *fiber.Ctx) error {
		city := strings.TrimSpace(c.Params("city"))
		if city == "" {
			return fiber.NewError(fiber.StatusBadRequest, "city is required")
		}

		report, merged, err := svc.Refresh(c.Context(), city)
		if err != nil {
			// Fetch and payload failures are user-visible, tagged with
			// the city, and never fatal to the process.
			var fetchErr *providers.FetchError
			if errors.As(err, &fetchErr) {
				return fiber.NewError(fiber.StatusBadGateway, fetchErr.Error())
			}
			if errors.Is(err, weather.ErrMalformedPayload) {
				return fiber.NewError(fiber.StatusBadGateway,
					"could not fetch weather for "+city+": "+err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to update weather history")
		}

		return c.JSON(fiber.Map{
			"report": report,
			"tail":   history.Tail(merged, queryInt(c, "tail", defaultTail)),
		})
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		rows := svc.SavedHistory()
		if city := c.Query("city"); city != "" {
			rows = filter.HistoryByCities(rows, []string{city})
		}
		rows = history.Tail(rows, queryInt(c, "tail", 0))

		return c.JSON(fiber.Map{
			"count":   len(rows),
			"history": rows,
		})
	})

	v1.Get("/cities/filter", func(c *fiber.Ctx) error {
		var req filterQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(svc.FilterCities(req.toOptions()))
	})
}

// filterQuery holds query parameters for the filter endpoint.
type filterQuery struct {
	MaxPrice   *float64 `validate:"omitempty,gte=0"`
	MinTempC   *float64
	Beach      bool
	Mountain   bool
	Continents []string
	WinterSnow bool
}

func (q *filterQuery) bind(c *fiber.Ctx) error {
	if raw := c.Query("max_price"); raw != "" {
		// An unparseable ceiling means "no filtering by price", same as
		// an absent one.
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			q.MaxPrice = &v
		}
	}
	if raw := c.Query("min_temp_c"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.New("min_temp_c must be numeric")
		}
		q.MinTempC = &v
	}

	q.Beach = c.QueryBool("beach")
	q.Mountain = c.QueryBool("mountain")
	q.WinterSnow = c.QueryBool("winter_snow")

	if raw := c.Query("continents"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				q.Continents = append(q.Continents, name)
			}
		}
	}
	return nil
}

func (q filterQuery) toOptions() filter.Options {
	return filter.Options{
		MinTemperatureC: q.MinTempC,
		WinterSnow:      q.WinterSnow,
		Criteria: filter.Criteria{
			MaxPrice:        q.MaxPrice,
			RequireBeach:    q.Beach,
			RequireMountain: q.Mountain,
			Continents:      q.Continents,
		},
	}
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	if raw := c.Query(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return def
}
