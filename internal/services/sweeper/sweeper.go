package sweeper

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/PigeonPost/internal/logger"
	"go.uber.org/zap"
)

// Job выполняет один проход и возвращает число затронутых записей.
type Job func(ctx context.Context) (int64, error)

// Sweeper запускает Job по тикеру или по Trigger. Проходы не перекрываются.
type Sweeper struct {
	name     string
	job      Job
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger

	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalRuns           atomic.Int64
	totalAffected       atomic.Int64
	totalErrors         atomic.Int64
	running             atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

func New(name string, job Job, l *zap.Logger) *Sweeper {
	return &Sweeper{
		name:              name,
		job:               job,
		interval:          time.Hour,
		timeout:           time.Minute,
		log:               logger.OrNop(l).Named("sweeper").With(zap.String("job", name)),
		triggerCh:         make(chan struct{}, 1),
		startedAtUnixNano: time.Now().UTC().UnixNano(),
	}
}

func (s *Sweeper) WithSettings(interval, timeout time.Duration) *Sweeper {
	if interval > 0 {
		s.interval = interval
	}
	if timeout > 0 {
		s.timeout = timeout
	}
	return s
}

func (s *Sweeper) Name() string { return s.name }

func (s *Sweeper) Interval() time.Duration { return s.interval }

// Trigger просит внеочередной проход (неблокирующе; лишние запросы схлопываются).
func (s *Sweeper) Trigger() {
	s.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	Job           string     `json:"job"`
	Interval      string     `json:"interval"`
	StartedAt     time.Time  `json:"startedAt"`
	LastCycleAt   *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt *time.Time `json:"lastTriggerAt,omitempty"`
	TotalRuns     int64      `json:"totalRuns"`
	TotalAffected int64      `json:"totalAffected"`
	TotalErrors   int64      `json:"totalErrors"`
	Running       bool       `json:"running"`
	LastError     string     `json:"lastError,omitempty"`
}

func (s *Sweeper) Stats() Stats {
	st := Stats{
		Job:           s.name,
		Interval:      s.interval.String(),
		StartedAt:     time.Unix(0, s.startedAtUnixNano).UTC(),
		TotalRuns:     s.totalRuns.Load(),
		TotalAffected: s.totalAffected.Load(),
		TotalErrors:   s.totalErrors.Load(),
		Running:       s.running.Load() > 0,
	}
	if n := s.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := s.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	s.lastErrorMu.Lock()
	st.LastError = s.lastError
	s.lastErrorMu.Unlock()
	return st
}

func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	s.log.Info("sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.runOnce(ctx)
		case <-s.triggerCh:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	s.lastCycleUnixNano.Store(time.Now().UTC().UnixNano())
	s.running.Add(1)
	defer s.running.Add(-1)

	jobCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.job(jobCtx)
	s.totalRuns.Add(1)
	if err != nil {
		s.totalErrors.Add(1)
		s.lastErrorMu.Lock()
		s.lastError = err.Error()
		s.lastErrorMu.Unlock()
		s.log.Error("sweep failed", zap.Error(err))
		return
	}
	s.totalAffected.Add(n)
	if n > 0 {
		s.log.Info("sweep done", zap.Int64("affected", n))
	}
}
