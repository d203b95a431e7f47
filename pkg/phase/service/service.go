package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/phase-distributor/internal/metrics"
	"github.com/chainsafe/phase-distributor/pkg/allocation"
	apperrors "github.com/chainsafe/phase-distributor/pkg/app/errors"
	"github.com/chainsafe/phase-distributor/pkg/config"
	"github.com/chainsafe/phase-distributor/pkg/distribution"
	"github.com/chainsafe/phase-distributor/pkg/ledgerstore"
	"github.com/chainsafe/phase-distributor/pkg/phase"
)

// lifecycleLock serializes every operation that changes which phase is active.
const lifecycleLock = "phases:lifecycle"

var (
	ErrPhaseNotOpenable     = errors.New("phase cannot be opened")
	ErrPhaseNotMovable      = errors.New("phase cannot be moved")
	ErrNoNeighbor           = errors.New("phase has no neighbor in that direction")
	ErrPhaseNotSnapshotted  = errors.New("phase has no snapshot")
	ErrPhaseNotCompleted    = errors.New("phase is not completed")
	ErrPhaseFinalized       = errors.New("phase already finalized")
	ErrNoClaimSnapshots     = errors.New("phase has no claim snapshots")
	ErrReconcileMismatch    = errors.New("allocation and snapshot totals do not reconcile")
	ErrContributionLocked   = errors.New("contribution is frozen in a snapshot")
	ErrContributionNotSplit = errors.New("contribution cannot be split")
)

// Service defines the phase lifecycle, contribution bookkeeping and reconciliation operations.
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	CreatePhase(ctx context.Context, req *phase.CreateRequest) (*distribution.Phase, error)
	OpenPhase(ctx context.Context, id int64) (*distribution.Phase, error)
	ClosePhase(ctx context.Context, id int64) (*distribution.Phase, error)
	MovePhase(ctx context.Context, id int64, dir ledgerstore.Direction) (*phase.Listing, error)
	AdvancePhase(ctx context.Context) (*phase.AdvanceResult, error)
	ListPhasesWithVirtualAllocation(ctx context.Context) (*phase.Listing, error)

	SnapshotPhase(ctx context.Context, id int64) (*phase.SnapshotResult, error)
	FinalizePhase(ctx context.Context, id int64) (*phase.FinalizeResult, error)

	RecordContribution(ctx context.Context, req *phase.ContributionRequest) (*distribution.Contribution, error)
	AssignContributions(ctx context.Context, phaseID int64, contributionIDs []int64) (*phase.AssignResult, error)
	InvalidateContribution(ctx context.Context, id int64) (*distribution.Contribution, error)
	SplitContribution(ctx context.Context, id int64, usdAmount decimal.Decimal) (*phase.SplitResult, error)
}

type phaseService struct {
	store      ledgerstore.Store
	allocator  *allocation.Allocator
	tolerances config.Tolerances
	clock      clockwork.Clock
	logger     *zap.Logger
}

// NewService creates a new phase service
func NewService(
	store ledgerstore.Store,
	allocator *allocation.Allocator,
	tolerances config.Tolerances,
	clock clockwork.Clock,
	logger *zap.Logger,
) Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &phaseService{
		store:      store,
		allocator:  allocator,
		tolerances: tolerances,
		clock:      clock,
		logger:     logger,
	}
}

func (s *phaseService) now() time.Time {
	return s.clock.Now().UTC()
}

func validatePhaseID(id int64) error {
	if id <= 0 {
		return apperrors.BadRequestError(distribution.CodeBadPhaseID, nil, fmt.Sprintf("invalid phase id %d", id))
	}
	return nil
}

func phaseNotFound(id int64, err error) error {
	if errors.Is(err, ledgerstore.ErrNotFound) {
		return apperrors.ResourceNotFoundError(distribution.CodePhaseNotFound, err, fmt.Sprintf("phase %d not found", id))
	}
	return fmt.Errorf("failed to load phase %d: %w", id, err)
}

// CreatePhase inserts a planned phase at the end of the ordering.
func (s *phaseService) CreatePhase(ctx context.Context, req *phase.CreateRequest) (*distribution.Phase, error) {
	if req == nil || req.Name == "" {
		return nil, apperrors.BadRequestError(distribution.CodeInvalidPhaseParams, nil, "phase name is required")
	}
	if !req.PoolMEGY.IsPositive() {
		return nil, apperrors.BadRequestError(distribution.CodeInvalidPhaseParams, nil, "pool_megy must be positive")
	}
	if !req.RateUSDPerMEGY.IsPositive() {
		return nil, apperrors.BadRequestError(distribution.CodeInvalidPhaseParams, nil, "rate_usd_per_megy must be positive")
	}
	if req.TargetUSD.Valid && !req.TargetUSD.Decimal.IsPositive() {
		return nil, apperrors.BadRequestError(distribution.CodeInvalidPhaseParams, nil, "target_usd must be positive")
	}

	p := &distribution.Phase{
		Name:           req.Name,
		PoolMEGY:       req.PoolMEGY,
		RateUSDPerMEGY: req.RateUSDPerMEGY,
		TargetUSD:      req.TargetUSD,
		Status:         distribution.PhaseStatusPlanned,
		CreatedAt:      s.now(),
	}
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
		return tx.InsertPhase(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create phase: %w", err)
	}
	metrics.PhaseTransitionsTotal.WithLabelValues(string(distribution.PhaseStatusPlanned)).Inc()
	return p, nil
}

// OpenPhase makes the phase the single active phase, completing whichever phase was active.
// Opening the already active phase is a no-op.
func (s *phaseService) OpenPhase(ctx context.Context, id int64) (*distribution.Phase, error) {
	if err := validatePhaseID(id); err != nil {
		return nil, err
	}

	var opened *distribution.Phase
	err := s.store.WithLock(ctx, lifecycleLock, func(ctx context.Context) error {
		return s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
			p, err := tx.LockPhase(ctx, id)
			if err != nil {
				return phaseNotFound(id, err)
			}
			if p.Status == distribution.PhaseStatusActive {
				opened = p
				return nil
			}
			if p.Status != distribution.PhaseStatusPlanned {
				return apperrors.ConflictError(distribution.CodePhaseNotOpenable, ErrPhaseNotOpenable,
					fmt.Sprintf("phase %d is %s and cannot be opened", id, p.EffectiveStatus()))
			}

			if _, err := s.completeActive(ctx, tx); err != nil {
				return err
			}
			if err := s.activate(ctx, tx, p); err != nil {
				return err
			}
			opened = p
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return opened, nil
}

// completeActive moves every active phase to completed and returns them.
func (s *phaseService) completeActive(ctx context.Context, tx ledgerstore.Tx) ([]*distribution.Phase, error) {
	active, err := tx.LockActivePhases(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock active phases: %w", err)
	}
	for _, p := range active {
		if err := s.complete(ctx, tx, p); err != nil {
			return nil, err
		}
	}
	return active, nil
}

func (s *phaseService) complete(ctx context.Context, tx ledgerstore.Tx, p *distribution.Phase) error {
	p.Status = distribution.PhaseStatusCompleted
	if p.ClosedAt == nil {
		now := s.now()
		p.ClosedAt = &now
	}
	if err := tx.UpdatePhase(ctx, p); err != nil {
		return fmt.Errorf("failed to complete phase %d: %w", p.ID, err)
	}
	metrics.PhaseTransitionsTotal.WithLabelValues(string(distribution.PhaseStatusCompleted)).Inc()
	return nil
}

func (s *phaseService) activate(ctx context.Context, tx ledgerstore.Tx, p *distribution.Phase) error {
	p.Status = distribution.PhaseStatusActive
	if p.OpenedAt == nil {
		now := s.now()
		p.OpenedAt = &now
	}
	if err := tx.UpdatePhase(ctx, p); err != nil {
		return fmt.Errorf("failed to open phase %d: %w", p.ID, err)
	}
	metrics.PhaseTransitionsTotal.WithLabelValues(string(distribution.PhaseStatusActive)).Inc()
	return nil
}

// ClosePhase marks the phase completed. Closing a completed phase is a no-op.
func (s *phaseService) ClosePhase(ctx context.Context, id int64) (*distribution.Phase, error) {
	if err := validatePhaseID(id); err != nil {
		return nil, err
	}

	var closed *distribution.Phase
	err := s.store.WithLock(ctx, lifecycleLock, func(ctx context.Context) error {
		return s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
			p, err := tx.LockPhase(ctx, id)
			if err != nil {
				return phaseNotFound(id, err)
			}
			closed = p
			if p.Status == distribution.PhaseStatusCompleted {
				return nil
			}
			return s.complete(ctx, tx, p)
		})
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// MovePhase swaps a planned phase with its planned neighbor and returns the new ordering.
func (s *phaseService) MovePhase(ctx context.Context, id int64, dir ledgerstore.Direction) (*phase.Listing, error) {
	if err := validatePhaseID(id); err != nil {
		return nil, err
	}
	if !dir.Valid() {
		return nil, apperrors.BadRequestError(distribution.CodePhaseNotMovable, ErrPhaseNotMovable,
			fmt.Sprintf("unknown direction %q", dir))
	}

	var listing *phase.Listing
	err := s.store.WithLock(ctx, lifecycleLock, func(ctx context.Context) error {
		return s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
			p, err := tx.LockPhase(ctx, id)
			if err != nil {
				return phaseNotFound(id, err)
			}
			if p.Status != distribution.PhaseStatusPlanned {
				return apperrors.ConflictError(distribution.CodePhaseNotMovable, ErrPhaseNotMovable,
					fmt.Sprintf("phase %d is %s, only planned phases can be moved", id, p.EffectiveStatus()))
			}

			neighbor, err := tx.LockNeighbor(ctx, p.PhaseNo, dir)
			if errors.Is(err, ledgerstore.ErrNotFound) {
				return apperrors.ConflictError(distribution.CodeNoNeighbor, ErrNoNeighbor,
					fmt.Sprintf("phase %d has no neighbor %s", id, dir))
			}
			if err != nil {
				return fmt.Errorf("failed to lock neighbor of phase %d: %w", id, err)
			}
			if neighbor.Status != distribution.PhaseStatusPlanned {
				return apperrors.ConflictError(distribution.CodePhaseNotMovable, ErrPhaseNotMovable,
					fmt.Sprintf("neighbor phase %d is %s, only planned phases can be swapped", neighbor.ID, neighbor.EffectiveStatus()))
			}

			if err := tx.SwapPhaseNo(ctx, p, neighbor); err != nil {
				return fmt.Errorf("failed to swap phases %d and %d: %w", p.ID, neighbor.ID, err)
			}

			listing, err = s.listing(ctx, tx)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	s.observe(listing)
	return listing, nil
}

// AdvancePhase completes the active phase and opens the next planned one in phase_no order.
func (s *phaseService) AdvancePhase(ctx context.Context) (*phase.AdvanceResult, error) {
	var (
		completed []*distribution.Phase
		opened    *distribution.Phase
		listing   *phase.Listing
	)
	err := s.store.WithLock(ctx, lifecycleLock, func(ctx context.Context) error {
		return s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
			var err error
			completed, err = s.completeActive(ctx, tx)
			if err != nil {
				return err
			}

			phases, err := tx.ListPhases(ctx)
			if err != nil {
				return fmt.Errorf("failed to list phases: %w", err)
			}
			for _, p := range phases {
				if p.Status != distribution.PhaseStatusPlanned {
					continue
				}
				next, err := tx.LockPhase(ctx, p.ID)
				if err != nil {
					return phaseNotFound(p.ID, err)
				}
				if err := s.activate(ctx, tx, next); err != nil {
					return err
				}
				opened = next
				break
			}

			listing, err = s.listing(ctx, tx)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	s.observe(listing)

	result := &phase.AdvanceResult{Completed: []*phase.View{}, Listing: listing}
	for _, p := range completed {
		result.Completed = append(result.Completed, listing.Find(p.ID))
	}
	if opened != nil {
		result.Opened = listing.Find(opened.ID)
	}
	return result, nil
}

// ListPhasesWithVirtualAllocation returns all phases in phase_no order with their virtual fill.
func (s *phaseService) ListPhasesWithVirtualAllocation(ctx context.Context) (*phase.Listing, error) {
	var listing *phase.Listing
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
		var err error
		listing, err = s.listing(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.observe(listing)
	return listing, nil
}

// project runs the allocator over the current phases and contributions.
func (s *phaseService) project(ctx context.Context, tx ledgerstore.Tx) ([]*distribution.Phase, *allocation.Result, error) {
	phases, err := tx.ListPhases(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list phases: %w", err)
	}
	contributions, err := tx.ListContributions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	return phases, s.allocator.Allocate(phases, contributions), nil
}

func (s *phaseService) listing(ctx context.Context, tx ledgerstore.Tx) (*phase.Listing, error) {
	phases, res, err := s.project(ctx, tx)
	if err != nil {
		return nil, err
	}
	return newListing(phases, res), nil
}

func newListing(phases []*distribution.Phase, res *allocation.Result) *phase.Listing {
	listing := &phase.Listing{
		Phases:         make([]*phase.View, 0, len(phases)),
		TotalUSD:       res.TotalUSD,
		UnallocatedUSD: res.UnallocatedUSD,
	}
	for _, p := range allocation.SortPhases(phases) {
		var fill *allocation.PhaseFill
		if f, ok := res.Phase(p.ID); ok {
			fill = &f
		}
		listing.Phases = append(listing.Phases, phase.NewView(p, fill))
	}
	return listing
}

// observe publishes the virtual fill to the metrics gauges.
func (s *phaseService) observe(listing *phase.Listing) {
	if listing == nil {
		return
	}
	for _, v := range listing.Phases {
		ratio, _ := v.FillPct.Float64()
		metrics.PhaseFillRatio.WithLabelValues(metrics.PhaseLabel(v.PhaseNo)).Set(ratio)
	}
	unallocated, _ := listing.UnallocatedUSD.Float64()
	metrics.UnallocatedUSD.Set(unallocated)
}
