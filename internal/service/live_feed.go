package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/bitminesocial/mining-service/internal/dto"
	"github.com/bitminesocial/mining-service/pkg/observability"
	"go.uber.org/zap"
)

// LiveFeedConfig carries the decorative live-simulation bounds
type LiveFeedConfig struct {
	TickInterval      time.Duration
	StartBalanceUsd   float64
	CeilingBalanceUsd float64
	StartBalanceBtc   float64
	CeilingBalanceBtc float64
	BaseHashrateThs   float64
}

// blockNotifyInterval is the cadence of the "block mined" reward events
const blockNotifyInterval = 20 * time.Second

// liveState is one viewer's simulation state. Balances only grow toward
// their ceilings; the hashrate fluctuates in a small band around baseline.
type liveState struct {
	balanceUsd  float64
	balanceBtc  float64
	hashrateThs float64
}

// LiveFeed runs the decorative real-time mining visualization. Every viewer
// gets an independent simulation; nothing is persisted.
type LiveFeed struct {
	cfg     LiveFeedConfig
	metrics *observability.EngineMetrics
	logger  *zap.Logger
}

// NewLiveFeed creates the live visualization feed
func NewLiveFeed(cfg LiveFeedConfig, metrics *observability.EngineMetrics, logger *zap.Logger) *LiveFeed {
	return &LiveFeed{cfg: cfg, metrics: metrics, logger: logger}
}

func (f *LiveFeed) newState() liveState {
	return liveState{
		balanceUsd:  f.cfg.StartBalanceUsd,
		balanceBtc:  f.cfg.StartBalanceBtc,
		hashrateThs: f.cfg.BaseHashrateThs,
	}
}

// advance moves the simulation one tick. Balances are monotone
// non-decreasing and clamped at their ceilings.
func (f *LiveFeed) advance(st *liveState) {
	st.balanceUsd += rand.Float64() * 0.5
	if st.balanceUsd >= f.cfg.CeilingBalanceUsd {
		st.balanceUsd = f.cfg.CeilingBalanceUsd
	}

	st.balanceBtc += rand.Float64() * 0.0001
	if st.balanceBtc >= f.cfg.CeilingBalanceBtc {
		st.balanceBtc = f.cfg.CeilingBalanceBtc
	}

	st.hashrateThs = f.cfg.BaseHashrateThs + (rand.Float64()*10 - 5)
}

// Run streams simulation frames through send until the context is cancelled
// or send fails (viewer gone). Each frame is produced on the feed cadence;
// reward events fire occasionally on their own slower cadence.
func (f *LiveFeed) Run(ctx context.Context, send func(dto.LiveUpdate) error) {
	st := f.newState()

	if err := send(f.frame(st)); err != nil {
		return
	}

	ticker := time.NewTicker(f.cfg.TickInterval)
	defer ticker.Stop()
	rewards := time.NewTicker(blockNotifyInterval)
	defer rewards.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.advance(&st)
			f.metrics.LiveFeedTicks.Add(ctx, 1)
			if err := send(f.frame(st)); err != nil {
				return
			}
		case <-rewards.C:
			if rand.Float64() <= 0.7 {
				continue
			}
			update := dto.LiveUpdate{
				Type:      "block_mined",
				RewardBtc: rand.Float64() * 0.001,
				RewardUsd: rand.Intn(30) + 80,
			}
			if err := send(update); err != nil {
				return
			}
		}
	}
}

func (f *LiveFeed) frame(st liveState) dto.LiveUpdate {
	return dto.LiveUpdate{
		Type:        "stats",
		BalanceUsd:  st.balanceUsd,
		BalanceBtc:  st.balanceBtc,
		HashrateThs: st.hashrateThs,
	}
}
