package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/aqi-forecast/internal/metrics"
)

// Service serves forecasts from a fitted model and the historical series it was fitted on.
// It holds no mutable state; concurrent calls are independent.
type Service struct {
	history    HistoryStore
	model      Model
	maxHorizon int
	log        *zap.Logger
}

// HorizonCeiling bounds every horizon, whatever the configured or artifact limits.
const HorizonCeiling = 3650

// NewService creates a new Service. maxHorizon <= 0 or above HorizonCeiling falls back
// to HorizonCeiling.
func NewService(history HistoryStore, model Model, maxHorizon int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if maxHorizon <= 0 || maxHorizon > HorizonCeiling {
		maxHorizon = HorizonCeiling
	}
	return &Service{
		history:    history,
		model:      model,
		maxHorizon: maxHorizon,
		log:        log,
	}
}

// MaxHorizon is the largest accepted horizon.
func (s *Service) MaxHorizon() int {
	return s.maxHorizon
}

// Forecast predicts horizonDays days following the last observed date.
func (s *Service) Forecast(ctx context.Context, horizonDays int) (Response, error) {
	start := time.Now()
	resp, err := s.forecast(ctx, horizonDays)
	metrics.ObserveForecast(horizonDays, time.Since(start), statusOf(err))
	if err != nil {
		s.log.Debug("forecast failed", zap.Int("days", horizonDays), zap.Error(err))
		return Response{}, err
	}
	return resp, nil
}

func (s *Service) forecast(ctx context.Context, horizonDays int) (Response, error) {
	if horizonDays < 1 {
		return Response{}, fmt.Errorf("%w: days must be >= 1, got %d", ErrInvalidRequest, horizonDays)
	}
	if horizonDays > s.maxHorizon {
		return Response{}, fmt.Errorf("%w: days must be <= %d, got %d", ErrInvalidRequest, s.maxHorizon, horizonDays)
	}

	last, err := s.history.LastObservedDate(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrDataLoad, err)
	}

	plan, err := NewPlan(horizonDays, s.model.TrainedLength(), last)
	if err != nil {
		return Response{}, err
	}

	values, err := s.model.Predict(plan.StartIndex, plan.EndIndex)
	if err != nil {
		return Response{}, fmt.Errorf("%w: predict [%d, %d]: %w", ErrModelOutput, plan.StartIndex, plan.EndIndex, err)
	}
	if len(values) != horizonDays {
		return Response{}, fmt.Errorf("%w: expected %d values for [%d, %d], got %d",
			ErrModelOutput, horizonDays, plan.StartIndex, plan.EndIndex, len(values))
	}

	points := make([]Point, horizonDays)
	for i := range points {
		points[i] = Point{
			Date:          plan.Dates[i].Format(DateLayout),
			PredictedPM25: values[i],
		}
	}

	s.log.Debug("forecast served",
		zap.Int("days", horizonDays),
		zap.Int("start_index", plan.StartIndex),
		zap.Int("end_index", plan.EndIndex),
		zap.String("first_date", points[0].Date),
	)

	return Response{Predictions: points}, nil
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	case errors.Is(err, ErrDataLoad):
		return "data_unavailable"
	case errors.Is(err, ErrModelOutput):
		return "model_output"
	default:
		return "error"
	}
}
