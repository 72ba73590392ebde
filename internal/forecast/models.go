package forecast

import (
	"context"
	"time"
)

// DateLayout is the calendar format used in responses.
const DateLayout = "2006-01-02"

// Point is one forecast value for a calendar day.
type Point struct {
	Date          string  `json:"date"`
	PredictedPM25 float64 `json:"predicted_pm25"`
}

// Response is the ordered forecast; dates ascend one day at a time.
type Response struct {
	Predictions []Point `json:"predictions"`
}

// HistoryStore provides the last known observation date.
type HistoryStore interface {
	LastObservedDate(ctx context.Context) (time.Time, error)
}

// Model is a fitted model addressed by its own index space.
type Model interface {
	TrainedLength() int
	Predict(start, end int) ([]float64, error)
}
