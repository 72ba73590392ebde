// Package bootstrap loads the fitted model and the historical series and wires the
// forecast service. Loading either source is fatal: callers must not serve traffic
// when Load fails.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/i474232898/aqi-forecast/internal/config"
	"github.com/i474232898/aqi-forecast/internal/forecast"
	"github.com/i474232898/aqi-forecast/internal/model"
	"github.com/i474232898/aqi-forecast/internal/series"
)

// Components is everything the serving path needs, built once at startup.
type Components struct {
	Model   *model.Handle
	Series  *series.Series // as loaded at startup
	History series.Store
	Service *forecast.Service
}

// Summary describes what is being served.
type Summary struct {
	Model             model.Info `json:"model"`
	FirstObservedDate string     `json:"first_observed_date"`
	LastObservedDate  string     `json:"last_observed_date"`
	Observations      int        `json:"observations"`
	MaxHorizonDays    int        `json:"max_horizon_days"`
}

// Load fetches the model artifact and the historical series and builds the service.
func Load(ctx context.Context, cfg *config.AppConfig, fetcher series.Fetcher, log *zap.Logger) (*Components, error) {
	handle, err := LoadModel(ctx, cfg, fetcher)
	if err != nil {
		return nil, err
	}
	log.Info("model loaded",
		zap.String("location", cfg.ModelArtifact),
		zap.String("spec", handle.Info().Spec),
		zap.Int("trained_length", handle.TrainedLength()),
	)

	s, err := LoadSeries(ctx, cfg, fetcher)
	if err != nil {
		return nil, err
	}
	log.Info("historical series loaded",
		zap.String("location", cfg.HistorySource),
		zap.Int("observations", s.Len()),
		zap.Time("last_observed", s.LastObservedDate()),
		zap.String("mode", cfg.HistoryMode),
	)
	if s.Len() != handle.TrainedLength() {
		log.Warn("historical series length differs from model trained length",
			zap.Int("observations", s.Len()),
			zap.Int("trained_length", handle.TrainedLength()),
		)
	}

	var history series.Store
	switch cfg.HistoryMode {
	case config.HistoryModeReread:
		history = series.NewReloadingStore(fetcher, cfg.HistorySource, seriesOptions(cfg))
	default:
		history = series.NewMemoryStore(s)
	}

	maxHorizon := EffectiveMaxHorizon(cfg.MaxHorizonDays, handle.Info().MaxHorizon)
	svc := forecast.NewService(history, handle, maxHorizon, log.Named("forecast"))

	return &Components{
		Model:   handle,
		Series:  s,
		History: history,
		Service: svc,
	}, nil
}

// LoadModel fetches and decodes the model artifact, classifying failures as ErrModelLoad.
func LoadModel(ctx context.Context, cfg *config.AppConfig, fetcher model.Fetcher) (*model.Handle, error) {
	handle, err := model.Load(ctx, fetcher, cfg.ModelArtifact)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", forecast.ErrModelLoad, err)
	}
	return handle, nil
}

// LoadSeries fetches and parses the historical CSV, classifying failures as ErrDataLoad.
func LoadSeries(ctx context.Context, cfg *config.AppConfig, fetcher series.Fetcher) (*series.Series, error) {
	s, err := series.Load(ctx, fetcher, cfg.HistorySource, seriesOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", forecast.ErrDataLoad, err)
	}
	return s, nil
}

// Summary reports the model and the series a forecast request would see now.
func (c *Components) Summary(ctx context.Context) (Summary, error) {
	s, err := c.History.Snapshot(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %v", forecast.ErrDataLoad, err)
	}
	return Summary{
		Model:             c.Model.Info(),
		FirstObservedDate: s.FirstObservedDate().Format(forecast.DateLayout),
		LastObservedDate:  s.LastObservedDate().Format(forecast.DateLayout),
		Observations:      s.Len(),
		MaxHorizonDays:    c.Service.MaxHorizon(),
	}, nil
}

// EffectiveMaxHorizon combines the configured bound and the artifact's bound; 0 means
// neither sets one and the service ceiling applies.
func EffectiveMaxHorizon(configured, artifact int) int {
	switch {
	case configured <= 0:
		return artifact
	case artifact <= 0:
		return configured
	default:
		return min(configured, artifact)
	}
}

func seriesOptions(cfg *config.AppConfig) series.Options {
	return series.Options{
		DateColumn: cfg.HistoryDateColumn,
	}
}
