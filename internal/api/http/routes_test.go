package httpapi

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/aqi-forecast/internal/forecast"
	"github.com/i474232898/aqi-forecast/internal/mood"
)

type stubHistory struct {
	last time.Time
	err  error
}

func (h stubHistory) LastObservedDate(ctx context.Context) (time.Time, error) {
	return h.last, h.err
}

type stubModel struct {
	trained int
	short   int
}

func (m stubModel) TrainedLength() int {
	return m.trained
}

func (m stubModel) Predict(start, end int) ([]float64, error) {
	var out []float64
	for i := start; i <= end-m.short; i++ {
		out = append(out, float64(i)+0.5)
	}
	return out, nil
}

func newTestApp(history forecast.HistoryStore, model forecast.Model, opts Options) *fiber.App {
	app := NewApp("test")
	svc := forecast.NewService(history, model, 30, nil)
	RegisterRoutes(app, svc, mood.NewCompanion(rand.New(rand.NewSource(1))), opts)
	return app
}

func defaultApp() *fiber.App {
	last, _ := time.Parse("2006-01-02", "2024-06-30")
	return newTestApp(stubHistory{last: last}, stubModel{trained: 500}, Options{DefaultHorizonDays: 7})
}

func do(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeForecast(t *testing.T, data []byte) forecast.Response {
	t.Helper()
	var out forecast.Response
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestRoot(t *testing.T) {
	resp, body := do(t, defaultApp(), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"AQI Forecast API is running!!"}`, string(body))
}

func TestForecastModelEndpoint(t *testing.T) {
	resp, body := do(t, defaultApp(), http.MethodPost, "/forecast-model/", `{"days":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	assert.JSONEq(t, `{"predictions":[
		{"date":"2024-07-01","predicted_pm25":500.5},
		{"date":"2024-07-02","predicted_pm25":501.5},
		{"date":"2024-07-03","predicted_pm25":502.5}
	]}`, string(body))
}

func TestForecastDefaultDays(t *testing.T) {
	testData := map[string]string{
		"omitted field": `{}`,
		"null days":     `{"days":null}`,
		"empty body":    ``,
	}

	for name, body := range testData {
		t.Run(name, func(t *testing.T) {
			resp, data := do(t, defaultApp(), http.MethodPost, "/api/v1/forecast", body)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
			assert.Len(t, decodeForecast(t, data).Predictions, 7)
		})
	}
}

// TestForecastDaysValidation verifies that the forecast endpoints reject days
// outside [1, max] and non-integer values.
func TestForecastDaysValidation(t *testing.T) {
	testData := map[string]struct {
		method string
		target string
		body   string
	}{
		"zero":           {method: http.MethodPost, target: "/forecast-model", body: `{"days":0}`},
		"negative":       {method: http.MethodPost, target: "/forecast-model", body: `{"days":-2}`},
		"fractional":     {method: http.MethodPost, target: "/forecast-model", body: `{"days":2.5}`},
		"string":         {method: http.MethodPost, target: "/forecast-model", body: `{"days":"three"}`},
		"malformed":      {method: http.MethodPost, target: "/api/v1/forecast", body: `{"days":`},
		"above max":      {method: http.MethodPost, target: "/api/v1/forecast", body: `{"days":31}`},
		"query zero":     {method: http.MethodGet, target: "/api/v1/forecast?days=0"},
		"query non-int":  {method: http.MethodGet, target: "/api/v1/forecast?days=abc"},
		"query too many": {method: http.MethodGet, target: "/api/v1/forecast?days=365"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			resp, body := do(t, defaultApp(), td.method, td.target, td.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
			assert.NotContains(t, string(body), "predictions")
		})
	}
}

func TestForecastQuery(t *testing.T) {
	resp, data := do(t, defaultApp(), http.MethodGet, "/api/v1/forecast?days=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []forecast.Point{{Date: "2024-07-01", PredictedPM25: 500.5}}, decodeForecast(t, data).Predictions)
}

func TestForecastServerErrors(t *testing.T) {
	last, _ := time.Parse("2006-01-02", "2024-06-30")

	testData := map[string]struct {
		history forecast.HistoryStore
		model   forecast.Model
		status  int
	}{
		"history unavailable": {
			history: stubHistory{err: errors.New("open dhaka_data_2.csv: no such file")},
			model:   stubModel{trained: 5},
			status:  http.StatusServiceUnavailable,
		},
		"short model output": {
			history: stubHistory{last: last},
			model:   stubModel{trained: 5, short: 1},
			status:  http.StatusInternalServerError,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			app := newTestApp(td.history, td.model, Options{})
			resp, body := do(t, app, http.MethodPost, "/forecast-model", `{"days":3}`)
			assert.Equal(t, td.status, resp.StatusCode)
			assert.NotContains(t, string(body), "predictions")
			assert.Contains(t, string(body), `"error":true`)
		})
	}
}

func TestForecastRateLimit(t *testing.T) {
	last, _ := time.Parse("2006-01-02", "2024-06-30")
	app := newTestApp(stubHistory{last: last}, stubModel{trained: 5}, Options{ForecastLimiter: RateLimit(0.001, 1)})

	resp, _ := do(t, app, http.MethodGet, "/api/v1/forecast?days=2", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/api/v1/forecast?days=2", "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMoodImpact(t *testing.T) {
	resp, body := do(t, defaultApp(), http.MethodPost, "/api/v1/mood-impact", `{"aqi":180,"temperature":33,"humidity":75}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var impact mood.Impact
	require.NoError(t, json.Unmarshal(body, &impact))
	assert.Equal(t, mood.Assess(mood.Conditions{AQI: 180, Temperature: 33, Humidity: 75}), impact)

	resp, _ = do(t, defaultApp(), http.MethodPost, "/api/v1/mood-impact", `{"aqi":180,"temperature":33}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, defaultApp(), http.MethodPost, "/api/v1/mood-impact", `{"aqi":-1,"temperature":20,"humidity":50}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChat(t *testing.T) {
	resp, body := do(t, defaultApp(), http.MethodPost, "/api/v1/chat", `{"message":"I feel tired"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out struct {
		Reply string `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Contains(t, mood.Replies, out.Reply)

	resp, _ = do(t, defaultApp(), http.MethodPost, "/api/v1/chat", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReady(t *testing.T) {
	last, _ := time.Parse("2006-01-02", "2024-06-30")

	healthy := newTestApp(stubHistory{last: last}, stubModel{trained: 5}, Options{
		Readiness: func(ctx context.Context) (interface{}, bool) { return fiber.Map{"model": "ok"}, true },
	})
	resp, _ := do(t, healthy, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	failing := newTestApp(stubHistory{last: last}, stubModel{trained: 5}, Options{
		Readiness: func(ctx context.Context) (interface{}, bool) { return "artifact missing", false },
	})
	resp, body := do(t, failing, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "artifact missing")
}

func TestCORSAllowsCredentials(t *testing.T) {
	testData := map[string]struct {
		origins     string
		origin      string
		credentials string
	}{
		"configured origin": {origins: "http://localhost:5173", origin: "http://localhost:5173", credentials: "true"},
		"wildcard":          {origins: "*", origin: "http://elsewhere.example", credentials: ""},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			app := NewApp("test")
			app.Use(CORS(td.origins))
			app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", td.origin)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, td.credentials, resp.Header.Get("Access-Control-Allow-Credentials"))
			assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
		})
	}
}
