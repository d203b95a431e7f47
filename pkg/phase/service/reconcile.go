package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/phase-distributor/internal/metrics"
	"github.com/chainsafe/phase-distributor/pkg/allocation"
	apperrors "github.com/chainsafe/phase-distributor/pkg/app/errors"
	"github.com/chainsafe/phase-distributor/pkg/distribution"
	"github.com/chainsafe/phase-distributor/pkg/ledgerstore"
	"github.com/chainsafe/phase-distributor/pkg/phase"
)

// ratioPrecision is the scale of share ratios and derived reward amounts, matching numeric(38,18).
const ratioPrecision = 18

// SnapshotPhase rebuilds the phase's allocation rows from the virtual allocation and its
// claim snapshots from the contributions assigned to it. An active phase is closed first.
// Snapshot and finalize of the same phase never overlap.
func (s *phaseService) SnapshotPhase(ctx context.Context, id int64) (*phase.SnapshotResult, error) {
	if err := validatePhaseID(id); err != nil {
		return nil, err
	}

	var result *phase.SnapshotResult
	err := s.store.WithLock(ctx, ledgerstore.PhaseLockName(id), func(ctx context.Context) error {
		return s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
			p, err := tx.LockPhase(ctx, id)
			if err != nil {
				return phaseNotFound(id, err)
			}
			if p.IsFinalized() {
				return apperrors.ConflictError(distribution.CodePhaseAlreadyFinalized, ErrPhaseFinalized,
					fmt.Sprintf("phase %d is finalized, its snapshot is frozen", id))
			}
			switch p.Status {
			case distribution.PhaseStatusPlanned:
				return apperrors.ConflictError(distribution.CodePhaseNotCompleted, ErrPhaseNotCompleted,
					fmt.Sprintf("phase %d has not been opened", id))
			case distribution.PhaseStatusActive:
				if err := s.complete(ctx, tx, p); err != nil {
					return err
				}
			}

			_, res, err := s.project(ctx, tx)
			if err != nil {
				return err
			}
			now := s.now()

			allocations := allocationRows(p, res.SharesForPhase(p.ID))
			if err := tx.ReplacePhaseAllocations(ctx, p.ID, allocations); err != nil {
				return fmt.Errorf("failed to write allocations of phase %d: %w", p.ID, err)
			}

			assigned, err := tx.ListAssigned(ctx, p.ID)
			if err != nil {
				return fmt.Errorf("failed to list contributions of phase %d: %w", p.ID, err)
			}
			snapshots := snapshotRows(p, assigned, s.allocator.Network, now)
			if err := tx.ReplaceClaimSnapshots(ctx, p.ID, snapshots); err != nil {
				return fmt.Errorf("failed to write claim snapshots of phase %d: %w", p.ID, err)
			}

			p.SnapshotTakenAt = &now
			if err := tx.UpdatePhase(ctx, p); err != nil {
				return fmt.Errorf("failed to stamp snapshot of phase %d: %w", p.ID, err)
			}

			allocTotals, err := tx.AllocationTotals(ctx, p.ID)
			if err != nil {
				return fmt.Errorf("failed to total allocations of phase %d: %w", p.ID, err)
			}
			snapTotals, err := tx.SnapshotTotals(ctx, p.ID)
			if err != nil {
				return fmt.Errorf("failed to total snapshots of phase %d: %w", p.ID, err)
			}

			var fill *allocation.PhaseFill
			if f, ok := res.Phase(p.ID); ok {
				fill = &f
			}
			straddling := res.Straddling(p.ID)
			if straddling == nil {
				straddling = []int64{}
			}
			result = &phase.SnapshotResult{
				Phase:            phase.NewView(p, fill),
				AllocationTotals: allocTotals,
				SnapshotTotals:   snapTotals,
				Straddling:       straddling,
			}
			return nil
		})
	})
	if err != nil {
		metrics.SnapshotsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	metrics.SnapshotsTotal.WithLabelValues("ok").Inc()
	return result, nil
}

// allocationRows prices the virtual shares of a phase: megy = pool * usd / sum(usd).
func allocationRows(p *distribution.Phase, shares []allocation.Share) []*distribution.PhaseAllocation {
	total := decimal.Zero
	for _, sh := range shares {
		total = total.Add(sh.USD)
	}
	rows := make([]*distribution.PhaseAllocation, 0, len(shares))
	if !total.IsPositive() {
		return rows
	}
	for _, sh := range shares {
		rows = append(rows, &distribution.PhaseAllocation{
			PhaseID:        p.ID,
			ContributionID: sh.ContributionID,
			WalletAddress:  sh.WalletAddress,
			USDAllocated:   sh.USD,
			MEGYAllocated:  p.PoolMEGY.Mul(sh.USD).DivRound(total, ratioPrecision),
		})
	}
	return rows
}

// snapshotRows aggregates the assigned contributions per wallet and prices each wallet's share of the pool.
func snapshotRows(
	p *distribution.Phase,
	assigned []*distribution.Contribution,
	network string,
	now time.Time,
) []*distribution.ClaimSnapshot {
	perWallet := make(map[string]decimal.Decimal)
	total := decimal.Zero
	for _, c := range assigned {
		if !c.Eligible(network) {
			continue
		}
		perWallet[c.WalletAddress] = perWallet[c.WalletAddress].Add(c.USDValue)
		total = total.Add(c.USDValue)
	}

	rows := make([]*distribution.ClaimSnapshot, 0, len(perWallet))
	if !total.IsPositive() {
		return rows
	}
	wallets := make([]string, 0, len(perWallet))
	for w := range perWallet {
		wallets = append(wallets, w)
	}
	sort.Strings(wallets)

	for _, w := range wallets {
		usd := perWallet[w]
		rows = append(rows, &distribution.ClaimSnapshot{
			PhaseID:         p.ID,
			WalletAddress:   w,
			ContributionUSD: usd,
			MEGYAmount:      p.PoolMEGY.Mul(usd).DivRound(total, ratioPrecision),
			ShareRatio:      usd.DivRound(total, ratioPrecision),
			CreatedAt:       now,
		})
	}
	return rows
}

// FinalizePhase certifies the phase snapshot after reconciling it against the persisted
// allocation rows. Finalizing a finalized phase returns the original timestamp.
func (s *phaseService) FinalizePhase(ctx context.Context, id int64) (*phase.FinalizeResult, error) {
	if err := validatePhaseID(id); err != nil {
		return nil, err
	}

	var result *phase.FinalizeResult
	err := s.store.WithLock(ctx, ledgerstore.PhaseLockName(id), func(ctx context.Context) error {
		return s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
			p, err := tx.LockPhase(ctx, id)
			if err != nil {
				return phaseNotFound(id, err)
			}
			if p.SnapshotTakenAt == nil {
				return apperrors.ConflictError(distribution.CodePhaseNotSnapshotted, ErrPhaseNotSnapshotted,
					fmt.Sprintf("phase %d has no snapshot", id))
			}
			if p.Status != distribution.PhaseStatusCompleted {
				return apperrors.ConflictError(distribution.CodePhaseNotCompleted, ErrPhaseNotCompleted,
					fmt.Sprintf("phase %d is %s", id, p.EffectiveStatus()))
			}

			allocTotals, err := tx.AllocationTotals(ctx, p.ID)
			if err != nil {
				return fmt.Errorf("failed to total allocations of phase %d: %w", p.ID, err)
			}
			snapTotals, err := tx.SnapshotTotals(ctx, p.ID)
			if err != nil {
				return fmt.Errorf("failed to total snapshots of phase %d: %w", p.ID, err)
			}

			if p.IsFinalized() {
				result = &phase.FinalizeResult{
					Phase:            phase.NewView(p, nil),
					AlreadyFinalized: true,
					AllocationTotals: allocTotals,
					SnapshotTotals:   snapTotals,
				}
				return nil
			}

			if snapTotals.Rows == 0 {
				return apperrors.ConflictError(distribution.CodeNoClaimSnapshots, ErrNoClaimSnapshots,
					fmt.Sprintf("phase %d has no claim snapshots", id))
			}

			if mismatches := s.reconcile(allocTotals, snapTotals); len(mismatches) > 0 {
				_, res, err := s.project(ctx, tx)
				if err != nil {
					return err
				}
				straddling := res.Straddling(p.ID)
				if straddling == nil {
					straddling = []int64{}
				}
				s.logger.Warn("finalize blocked by reconciliation mismatch",
					zap.Int64("phase_id", p.ID),
					zap.Strings("mismatches", mismatches),
					zap.Int64s("straddling_contribution_ids", straddling),
				)
				return apperrors.ConflictError(distribution.CodeFinalizeBlockedMismatch, ErrReconcileMismatch,
					fmt.Sprintf("phase %d allocation and snapshot totals do not reconcile", id)).
					WithDetails(map[string]any{
						"allocation_totals":           allocTotals,
						"snapshot_totals":             snapTotals,
						"mismatches":                  mismatches,
						"straddling_contribution_ids": straddling,
					})
			}

			now := s.now()
			p.FinalizedAt = &now
			if err := tx.UpdatePhase(ctx, p); err != nil {
				return fmt.Errorf("failed to finalize phase %d: %w", p.ID, err)
			}
			result = &phase.FinalizeResult{
				Phase:            phase.NewView(p, nil),
				AllocationTotals: allocTotals,
				SnapshotTotals:   snapTotals,
			}
			return nil
		})
	})
	switch {
	case err != nil:
		metrics.FinalizeTotal.WithLabelValues(apperrors.CodeOf(err)).Inc()
		return nil, err
	case result.AlreadyFinalized:
		metrics.FinalizeTotal.WithLabelValues("already_finalized").Inc()
	default:
		metrics.FinalizeTotal.WithLabelValues("ok").Inc()
		metrics.PhaseTransitionsTotal.WithLabelValues(string(distribution.PhaseStatusFinalized)).Inc()
	}
	return result, nil
}

// reconcile compares the allocation and snapshot totals and names every failed check.
func (s *phaseService) reconcile(alloc, snap distribution.Totals) []string {
	var mismatches []string
	if alloc.USD.Sub(snap.USD).Abs().GreaterThan(s.tolerances.USD) {
		mismatches = append(mismatches, fmt.Sprintf("usd: allocation %s, snapshot %s", alloc.USD, snap.USD))
	}
	if alloc.MEGY.Sub(snap.MEGY).Abs().GreaterThan(s.tolerances.MEGY) {
		mismatches = append(mismatches, fmt.Sprintf("megy: allocation %s, snapshot %s", alloc.MEGY, snap.MEGY))
	}
	if alloc.Wallets != snap.Wallets {
		mismatches = append(mismatches, fmt.Sprintf("wallets: allocation %d, snapshot %d", alloc.Wallets, snap.Wallets))
	}
	if snap.ShareRatio.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(s.tolerances.Share) {
		mismatches = append(mismatches, fmt.Sprintf("share_ratio: snapshot sum %s", snap.ShareRatio))
	}
	return mismatches
}
