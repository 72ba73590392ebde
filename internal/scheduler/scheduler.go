package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/aqi-forecast/internal/bootstrap"
	"github.com/i474232898/aqi-forecast/internal/config"
	"github.com/i474232898/aqi-forecast/internal/metrics"
	"github.com/i474232898/aqi-forecast/internal/series"
)

// Status is the outcome of the most recent source audit.
type Status struct {
	OK      bool      `json:"ok"`
	Message string    `json:"message,omitempty"`
	LastRun time.Time `json:"last_run,omitempty"`
}

// Scheduler periodically re-checks the model artifact and historical source. Serving
// state is never replaced; drift is reported so operators can restart.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cfg       *config.AppConfig
	fetcher   series.Fetcher
	comps     *bootstrap.Components
	interval  time.Duration
	log       *zap.Logger

	mu     sync.RWMutex
	status Status
}

// New creates a new Scheduler. The initial status is healthy because startup already
// loaded both sources.
func New(cfg *config.AppConfig, fetcher series.Fetcher, comps *bootstrap.Components, log *zap.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		cfg:       cfg,
		fetcher:   fetcher,
		comps:     comps,
		interval:  cfg.AuditInterval,
		log:       log,
		status:    Status{OK: true, LastRun: time.Now().UTC()},
	}
}

// Start schedules the audit job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.log.Info("scheduler: source audit disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.RunAudit(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// Status returns the latest audit outcome.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// RunAudit re-fetches both sources and compares them with what is being served.
func (s *Scheduler) RunAudit(ctx context.Context) Status {
	s.log.Debug("scheduler: running source audit")

	status := Status{OK: true, LastRun: time.Now().UTC()}

	handle, err := bootstrap.LoadModel(ctx, s.cfg, s.fetcher)
	switch {
	case err != nil:
		metrics.ObserveAudit("model", "error")
		s.log.Error("scheduler: model artifact audit failed", zap.Error(err))
		status = Status{OK: false, Message: err.Error(), LastRun: status.LastRun}
	case handle.TrainedLength() != s.comps.Model.TrainedLength():
		metrics.ObserveAudit("model", "drift")
		s.log.Warn("scheduler: model artifact changed on source; restart to serve it",
			zap.Int("serving_trained_length", s.comps.Model.TrainedLength()),
			zap.Int("source_trained_length", handle.TrainedLength()),
		)
	default:
		metrics.ObserveAudit("model", "ok")
	}

	fresh, err := bootstrap.LoadSeries(ctx, s.cfg, s.fetcher)
	switch {
	case err != nil:
		metrics.ObserveAudit("history", "error")
		s.log.Error("scheduler: historical source audit failed", zap.Error(err))
		if status.OK {
			status = Status{OK: false, Message: err.Error(), LastRun: status.LastRun}
		}
	case !fresh.LastObservedDate().Equal(s.comps.Series.LastObservedDate()):
		metrics.ObserveAudit("history", "drift")
		s.log.Warn("scheduler: historical source changed on disk",
			zap.Time("serving_last_observed", s.comps.Series.LastObservedDate()),
			zap.Time("source_last_observed", fresh.LastObservedDate()),
			zap.String("mode", s.cfg.HistoryMode),
		)
	default:
		metrics.ObserveAudit("history", "ok")
	}

	s.mu.Lock()
	s.status = status
	s.mu.Unlock()

	s.log.Debug("scheduler: completed source audit", zap.Bool("ok", status.OK))
	return status
}
