package screening

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// Analyzer is the part of Service the watchlist needs.
type Analyzer interface {
	Analyze(ctx context.Context, req *AnalyzeRequest) (*Screening, error)
}

// WatchlistConfig lists the entities to re-screen and when.
type WatchlistConfig struct {
	Schedule string // six-field cron spec (with seconds) or a descriptor
	Mode     Mode
	Entities []string
	// Timeout bounds one whole sweep; zero means no bound.
	Timeout time.Duration
}

// WatchlistReport summarises one sweep.
type WatchlistReport struct {
	StartedAt time.Time        `json:"started_at"`
	Screened  int              `json:"screened"`
	Failed    int              `json:"failed"`
	Alerts    []WatchlistAlert `json:"alerts"`
}

// WatchlistAlert is a watched entity with adverse media.
type WatchlistAlert struct {
	ScreeningID string `json:"screening_id"`
	Entity      string `json:"entity"`
	RiskScore   int    `json:"risk_score"`
	Critical    bool   `json:"critical"`
}

// WatchlistMonitor periodically re-screens a fixed list of entities.
type WatchlistMonitor struct {
	analyzer Analyzer
	cfg      WatchlistConfig
	cron     *cron.Cron
	metrics  *prometheus.AppMetrics
	logger   logging.Logger

	mu   sync.Mutex
	last *WatchlistReport
}

// NewWatchlistMonitor validates the schedule and returns a stopped monitor.
// A tick that fires while the previous sweep is still running is skipped.
func NewWatchlistMonitor(analyzer Analyzer, cfg WatchlistConfig, metrics *prometheus.AppMetrics, log logging.Logger) (*WatchlistMonitor, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeLocal
	}
	m := &WatchlistMonitor{
		analyzer: analyzer,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		metrics:  metrics,
		logger:   log.Named("watchlist"),
	}
	if _, err := m.cron.AddFunc(cfg.Schedule, func() { m.RunOnce(context.Background()) }); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid watchlist schedule "+cfg.Schedule)
	}
	return m, nil
}

// Start begins scheduling.
func (m *WatchlistMonitor) Start() {
	m.cron.Start()
	m.logger.Info("watchlist monitor started",
		logging.String("schedule", m.cfg.Schedule),
		logging.Int("entities", len(m.cfg.Entities)))
}

// Stop waits for a running sweep or for ctx.
func (m *WatchlistMonitor) Stop(ctx context.Context) error {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
		m.logger.Info("watchlist monitor stopped")
		return nil
	case <-ctx.Done():
		m.logger.Warn("watchlist monitor stop timed out")
		return ctx.Err()
	}
}

// RunOnce screens every watched entity sequentially.
func (m *WatchlistMonitor) RunOnce(ctx context.Context) *WatchlistReport {
	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	report := &WatchlistReport{StartedAt: time.Now().UTC(), Alerts: []WatchlistAlert{}}
	for _, entity := range m.cfg.Entities {
		if ctx.Err() != nil {
			report.Failed += len(m.cfg.Entities) - report.Screened - report.Failed
			break
		}
		sc, err := m.analyzer.Analyze(ctx, &AnalyzeRequest{Entity: entity, Mode: string(m.cfg.Mode)})
		if err != nil {
			report.Failed++
			m.logger.Warn("watchlist screening failed", logging.String("entity", entity), logging.Err(err))
			continue
		}
		report.Screened++
		if sc.Result.RiskScore > 0 {
			report.Alerts = append(report.Alerts, WatchlistAlert{
				ScreeningID: sc.ID,
				Entity:      sc.Result.Entity,
				RiskScore:   sc.Result.RiskScore,
				Critical:    sc.Profile.Critical,
			})
		}
	}

	prometheus.RecordWatchlistRun(m.metrics, report.Failed == 0)
	m.logger.Info("watchlist sweep finished",
		logging.Int("screened", report.Screened),
		logging.Int("failed", report.Failed),
		logging.Int("alerts", len(report.Alerts)))

	m.mu.Lock()
	m.last = report
	m.mu.Unlock()
	return report
}

// LastReport returns the most recent sweep, or nil.
func (m *WatchlistMonitor) LastReport() *WatchlistReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

//Personal.AI order the ending
