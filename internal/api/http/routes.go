package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/aqi-forecast/internal/forecast"
	"github.com/i474232898/aqi-forecast/internal/mood"
)

var validate = validator.New()

// Forecaster serves horizon forecasts.
type Forecaster interface {
	Forecast(ctx context.Context, horizonDays int) (forecast.Response, error)
}

// Options configures optional route behaviour.
type Options struct {
	DefaultHorizonDays int

	// ForecastLimiter, when set, guards the forecast routes.
	ForecastLimiter fiber.Handler

	// Readiness reports what is being served and whether the sources are healthy.
	Readiness func(ctx context.Context) (interface{}, bool)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc Forecaster, companion *mood.Companion, opts Options) {
	if opts.DefaultHorizonDays < 1 {
		opts.DefaultHorizonDays = 7
	}
	limit := opts.ForecastLimiter
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "AQI Forecast API is running!!"})
	})

	app.Get("/ready", func(c *fiber.Ctx) error {
		if opts.Readiness == nil {
			return c.JSON(fiber.Map{"status": "ready"})
		}
		detail, ok := opts.Readiness(c.UserContext())
		if !ok {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unavailable",
				"detail": detail,
			})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
			"detail": detail,
		})
	})

	forecastFromBody := func(c *fiber.Ctx) error {
		days, err := parseForecastBody(c.Body(), opts.DefaultHorizonDays)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return serveForecast(c, svc, days)
	}

	app.Post("/forecast-model", limit, forecastFromBody)

	v1 := app.Group("/api/v1")

	v1.Post("/forecast", limit, forecastFromBody)

	v1.Get("/forecast", limit, func(c *fiber.Ctx) error {
		days, err := parseDaysQuery(c.Query("days"), opts.DefaultHorizonDays)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return serveForecast(c, svc, days)
	})

	v1.Post("/mood-impact", func(c *fiber.Ctx) error {
		var req moodRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(mood.Assess(req.toConditions()))
	})

	v1.Post("/chat", func(c *fiber.Ctx) error {
		var req chatRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
		}
		req.Message = strings.TrimSpace(req.Message)
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{
			"reply":     companion.Reply(req.Message),
			"timestamp": time.Now().UTC(),
		})
	})
}

func serveForecast(c *fiber.Ctx, svc Forecaster, days int) error {
	resp, err := svc.Forecast(c.UserContext(), days)
	if err != nil {
		return forecastError(err)
	}
	return c.JSON(resp)
}

// forecastError maps the forecast error taxonomy onto HTTP status codes.
func forecastError(err error) error {
	switch {
	case errors.Is(err, forecast.ErrInvalidRequest):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, forecast.ErrDataLoad):
		return fiber.NewError(fiber.StatusServiceUnavailable, "historical data unavailable")
	case errors.Is(err, forecast.ErrModelOutput):
		return fiber.NewError(fiber.StatusInternalServerError, "model output mismatch")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to compute forecast")
	}
}

// forecastRequest is the forecast body; days defaults when omitted.
type forecastRequest struct {
	Days *int `json:"days" validate:"omitempty,gte=1"`
}

func parseForecastBody(body []byte, def int) (int, error) {
	var req forecastRequest
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return 0, errors.New("days must be an integer")
		}
	}
	if err := validate.Struct(req); err != nil {
		return 0, errors.New("days must be >= 1")
	}
	if req.Days == nil {
		return def, nil
	}
	return *req.Days, nil
}

func parseDaysQuery(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("days must be an integer")
	}
	if err := validate.Var(days, "gte=1"); err != nil {
		return 0, errors.New("days must be >= 1")
	}
	return days, nil
}

// moodRequest holds the current readings for the mood-impact endpoint.
type moodRequest struct {
	AQI         *float64 `json:"aqi" validate:"required,gte=0,lte=1000"`
	Temperature *float64 `json:"temperature" validate:"required,gte=-60,lte=60"`
	Humidity    *float64 `json:"humidity" validate:"required,gte=0,lte=100"`
}

func (m moodRequest) toConditions() mood.Conditions {
	return mood.Conditions{
		AQI:         *m.AQI,
		Temperature: *m.Temperature,
		Humidity:    *m.Humidity,
	}
}

type chatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}
