package service

import (
	"context"
	"sync"
	"time"

	"github.com/bitminesocial/mining-service/internal/domain"
	"github.com/bitminesocial/mining-service/pkg/observability"
	"go.uber.org/zap"
)

// SimulatorConfig carries the progression simulator timing knobs
type SimulatorConfig struct {
	TickInterval time.Duration
	IdleTimeout  time.Duration
}

type minerState struct {
	amountUsd  int
	totalMined float64
	lastRead   time.Time
	ticking    bool
	stop       chan struct{}
}

// Simulator advances earnings for activated profiles on a fixed cadence.
// Only totalMined accumulates; every other dashboard figure is derived from
// the deposit amount at read time. A profile's ticker runs while its
// dashboard is being watched and stops after the idle timeout; restarting
// never replays missed ticks, accrual resumes from the last value.
type Simulator struct {
	cfg     SimulatorConfig
	metrics *observability.EngineMetrics
	logger  *zap.Logger

	mu     sync.Mutex
	miners map[string]*minerState
}

// NewSimulator creates the progression simulator
func NewSimulator(cfg SimulatorConfig, metrics *observability.EngineMetrics, logger *zap.Logger) *Simulator {
	return &Simulator{
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		miners:  make(map[string]*minerState),
	}
}

// Snapshot returns the current mining stats for an activated deposit and
// marks the profile's dashboard as watched, starting the ticker if needed
func (s *Simulator) Snapshot(profileID string, record domain.DepositRecord) (domain.MiningStats, error) {
	if !record.Confirmed {
		return domain.MiningStats{}, domain.ErrNotActivated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	miner, ok := s.miners[profileID]
	if !ok || miner.amountUsd != record.SelectedAmountUsd {
		miner = s.resetLocked(profileID, record.SelectedAmountUsd)
	}

	miner.lastRead = time.Now()
	if !miner.ticking {
		s.startLocked(profileID, miner)
	}

	return domain.StatsFor(miner.amountUsd, miner.totalMined, "active"), nil
}

// Reset re-bases a profile's accrual on a new deposit amount. Called after
// every activation or upgrade.
func (s *Simulator) Reset(profileID string, amountUsd int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(profileID, amountUsd)
}

func (s *Simulator) resetLocked(profileID string, amountUsd int) *minerState {
	if prev, ok := s.miners[profileID]; ok && prev.ticking {
		close(prev.stop)
	}

	miner := &minerState{
		amountUsd:  amountUsd,
		totalMined: domain.BaseTotalMinedFor(amountUsd),
		lastRead:   time.Now(),
	}
	s.miners[profileID] = miner
	return miner
}

// Stop cancels the ticker for one profile. The accrued value is kept so a
// later Snapshot resumes from it.
func (s *Simulator) Stop(profileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if miner, ok := s.miners[profileID]; ok && miner.ticking {
		close(miner.stop)
		miner.ticking = false
	}
}

// StopAll cancels every running ticker, for shutdown
func (s *Simulator) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, miner := range s.miners {
		if miner.ticking {
			close(miner.stop)
			miner.ticking = false
		}
	}
}

func (s *Simulator) startLocked(profileID string, miner *minerState) {
	miner.ticking = true
	miner.stop = make(chan struct{})
	go s.run(profileID, miner, miner.stop)
}

func (s *Simulator) run(profileID string, miner *minerState, stop chan struct{}) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if idle := s.tick(profileID, miner); idle {
				return
			}
		case <-stop:
			return
		}
	}
}

// tick advances the accrual once. Failures inside a tick are isolated so
// later ticks keep firing; the return value reports whether the dashboard
// went idle and the ticker should stop.
func (s *Simulator) tick(profileID string, miner *minerState) (idle bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("simulator tick failed",
				zap.String("profile_id", profileID),
				zap.Any("panic", r),
			)
			idle = false
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	// A Reset may have replaced this miner; the stale ticker stops itself
	if s.miners[profileID] != miner {
		return true
	}

	if time.Since(miner.lastRead) > s.cfg.IdleTimeout {
		miner.ticking = false
		return true
	}

	miner.totalMined += domain.TickIncrementBtc * domain.Scale(miner.amountUsd)
	s.metrics.SimulatorTicks.Add(context.Background(), 1)
	return false
}
