package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bitminesocial/mining-service/internal/domain"
	"github.com/bitminesocial/mining-service/internal/repository"
	"github.com/bitminesocial/mining-service/internal/store"
	"github.com/bitminesocial/mining-service/pkg/observability"
	"go.uber.org/zap"
)

// DepositConfig carries the deposit machine constants
type DepositConfig struct {
	LicenseKey         string
	WalletAddress      string
	ExchangePartnerURL string
	ConfirmDelay       time.Duration
}

// DepositFlow is a read snapshot of one profile's position in the flow
type DepositFlow struct {
	State             domain.FlowState
	SelectedAmountUsd int
	Record            domain.DepositRecord
	LicenseError      string
}

type flowState struct {
	state          domain.FlowState
	selectedAmount int
	licenseError   string
}

// depositService implements DepositService. Each profile has one in-memory
// flow; the persisted record is the source of truth for activation status.
type depositService struct {
	profiles    store.ProfileStore
	sessions    SessionService
	activations repository.ActivationRepository
	metrics     *observability.EngineMetrics
	logger      *zap.Logger
	cfg         DepositConfig

	// onActivated is invoked after every confirmed activation or upgrade
	onActivated func(profileID string, amountUsd int)

	mu    sync.Mutex
	flows map[string]*flowState
}

// NewDepositService creates the deposit/activation state machine service
func NewDepositService(
	profiles store.ProfileStore,
	sessions SessionService,
	activations repository.ActivationRepository,
	metrics *observability.EngineMetrics,
	logger *zap.Logger,
	cfg DepositConfig,
) DepositService {
	return &depositService{
		profiles:    profiles,
		sessions:    sessions,
		activations: activations,
		metrics:     metrics,
		logger:      logger,
		cfg:         cfg,
		flows:       make(map[string]*flowState),
	}
}

// OnActivated registers the hook invoked after each confirmed activation
func (s *depositService) OnActivated(hook func(profileID string, amountUsd int)) {
	s.onActivated = hook
}

// Record reads the persisted deposit record for a profile. Missing or
// corrupt values degrade to the empty record; a confirmed amount is always
// at least the deposit floor.
func (s *depositService) Record(ctx context.Context, profileID string) (domain.DepositRecord, error) {
	values, err := s.profiles.Snapshot(ctx, profileID)
	if err != nil {
		return domain.DepositRecord{}, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return recordFromValues(values), nil
}

func recordFromValues(values map[string]string) domain.DepositRecord {
	record := domain.DepositRecord{}

	if values[store.KeyHasDeposited] != store.TrueValue {
		return record
	}

	record.Confirmed = true
	record.LicenseKey = values[store.KeyMiningLicense]

	amount, err := strconv.Atoi(values[store.KeyDepositAmount])
	if err != nil || amount < domain.MinDepositUsd {
		amount = domain.DefaultDepositUsd
	}
	record.SelectedAmountUsd = amount

	if t, err := time.Parse(time.RFC3339, values[store.KeyDepositDate]); err == nil {
		record.FirstActivatedAt = &t
	}
	if t, err := time.Parse(time.RFC3339, values[store.KeyDepositUpdatedAt]); err == nil {
		record.LastUpdatedAt = &t
	}

	return record
}

// Flow returns the current flow snapshot for a profile, creating the flow
// at SelectingAmount if the profile has not opened the deposit page yet
func (s *depositService) Flow(ctx context.Context, profileID string) (*DepositFlow, error) {
	record, err := s.Record(ctx, profileID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(s.flowLocked(profileID, record), record), nil
}

// flowLocked returns the in-memory flow for a profile, creating it from the
// persisted record when absent. An activated record opens in the Activated
// state; re-entering the flow from there is the upgrade variant.
func (s *depositService) flowLocked(profileID string, record domain.DepositRecord) *flowState {
	flow, ok := s.flows[profileID]
	if ok {
		return flow
	}

	flow = &flowState{
		state:          domain.StateSelectingAmount,
		selectedAmount: domain.DefaultDepositUsd,
	}
	if record.Confirmed {
		flow.state = domain.StateActivated
		flow.selectedAmount = record.SelectedAmountUsd
	}
	s.flows[profileID] = flow
	return flow
}

func (s *depositService) snapshotLocked(flow *flowState, record domain.DepositRecord) *DepositFlow {
	return &DepositFlow{
		State:             flow.state,
		SelectedAmountUsd: flow.selectedAmount,
		Record:            record,
		LicenseError:      flow.licenseError,
	}
}

// SelectAmount chooses the deposit tier. Amounts below the floor are clamped,
// never rejected. Selecting while Activated begins a fresh upgrade cycle.
func (s *depositService) SelectAmount(ctx context.Context, profileID string, amountUsd int) (*DepositFlow, error) {
	record, err := s.Record(ctx, profileID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flow := s.flowLocked(profileID, record)
	if flow.state == domain.StateConfirmingOnChain {
		return nil, fmt.Errorf("%w: confirmation in progress", domain.ErrNotInState)
	}
	if flow.state == domain.StateAwaitingLicense {
		return nil, fmt.Errorf("%w: license verification pending", domain.ErrNotInState)
	}

	flow.selectedAmount = domain.ClampAmount(amountUsd)
	flow.state = domain.StateAwaitingSentConfirmationClick
	flow.licenseError = ""

	return s.snapshotLocked(flow, record), nil
}

// ConfirmSent handles the explicit "I've sent it" action. It always opens
// the license gate; there is no path around it.
func (s *depositService) ConfirmSent(ctx context.Context, profileID string) (*DepositFlow, error) {
	record, err := s.Record(ctx, profileID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flow := s.flowLocked(profileID, record)
	switch flow.state {
	case domain.StateSelectingAmount, domain.StateAwaitingSentConfirmationClick, domain.StateActivated:
		flow.state = domain.StateAwaitingLicense
		flow.licenseError = ""
		return s.snapshotLocked(flow, record), nil
	default:
		return nil, fmt.Errorf("%w: cannot open license gate from %s", domain.ErrNotInState, flow.state)
	}
}

// VerifyLicense checks the submitted key against the configured mining
// license. A mismatch keeps the flow at AwaitingLicense with an error flag
// and no lockout. A match starts the irrevocable on-chain confirmation.
func (s *depositService) VerifyLicense(ctx context.Context, profileID, licenseKey string) (*DepositFlow, error) {
	session := s.sessions.Current(ctx, profileID)
	if !session.IsAuthenticated {
		return nil, fmt.Errorf("activation requires an authenticated session")
	}

	record, err := s.Record(ctx, profileID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flow := s.flowLocked(profileID, record)
	if flow.state != domain.StateAwaitingLicense {
		return nil, fmt.Errorf("%w: no license verification pending", domain.ErrNotInState)
	}

	if licenseKey != s.cfg.LicenseKey {
		flow.licenseError = "Invalid License. Please enter a valid mining license."
		s.metrics.LicenseFailures.Add(ctx, 1)
		s.logger.Info("mining license rejected", zap.String("profile_id", profileID))
		return s.snapshotLocked(flow, record), domain.ErrInvalidLicense
	}

	flow.state = domain.StateConfirmingOnChain
	flow.licenseError = ""

	// The confirmation is fire-and-forget against persisted storage: the
	// caller navigating away must not cancel it.
	go s.confirm(profileID, flow.selectedAmount, licenseKey)

	return s.snapshotLocked(flow, record), nil
}

// confirm models the on-chain confirmation latency and then commits the
// activation. It runs detached from any request context.
func (s *depositService) confirm(profileID string, amountUsd int, licenseKey string) {
	time.Sleep(s.cfg.ConfirmDelay)

	ctx := context.Background()
	now := time.Now().UTC()

	values := map[string]string{
		store.KeyHasDeposited:     store.TrueValue,
		store.KeyDepositAmount:    strconv.Itoa(amountUsd),
		store.KeyMiningLicense:    licenseKey,
		store.KeyDepositUpdatedAt: now.Format(time.RFC3339),
	}

	// The deposit date marks the first activation and survives upgrades
	existing, err := s.profiles.Get(ctx, profileID, store.KeyDepositDate)
	if err == nil && existing == "" {
		values[store.KeyDepositDate] = now.Format(time.RFC3339)
	}

	if err := s.profiles.SetAll(ctx, profileID, values); err != nil {
		s.logger.Error("failed to persist activation, flow returned to license gate",
			zap.String("profile_id", profileID),
			zap.Error(err),
		)
		s.mu.Lock()
		if flow, ok := s.flows[profileID]; ok && flow.state == domain.StateConfirmingOnChain {
			flow.state = domain.StateAwaitingLicense
			flow.licenseError = "Confirmation failed. Please try again."
		}
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	if flow, ok := s.flows[profileID]; ok {
		flow.state = domain.StateActivated
		flow.selectedAmount = amountUsd
	}
	s.mu.Unlock()

	if err := s.activations.Create(ctx, &domain.Activation{
		UserID:      profileID,
		AmountUsd:   amountUsd,
		LicenseKey:  licenseKey,
		ActivatedAt: now,
	}); err != nil {
		s.logger.Warn("failed to record activation", zap.Error(err))
	}

	s.metrics.Activations.Add(ctx, 1)
	s.logger.Info("mining account activated",
		zap.String("profile_id", profileID),
		zap.Int("amount_usd", amountUsd),
	)

	if s.onActivated != nil {
		s.onActivated(profileID, amountUsd)
	}
}

// Reset is the explicit exit action: it erases the deposit record and the
// in-memory flow
func (s *depositService) Reset(ctx context.Context, profileID string) error {
	err := s.profiles.Delete(ctx, profileID,
		store.KeyHasDeposited,
		store.KeyDepositAmount,
		store.KeyDepositDate,
		store.KeyDepositUpdatedAt,
		store.KeyMiningLicense,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	delete(s.flows, profileID)
	s.mu.Unlock()

	s.logger.Info("deposit record reset", zap.String("profile_id", profileID))
	return nil
}

var _ DepositService = (*depositService)(nil)
