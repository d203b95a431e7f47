package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chainsafe/phase-distributor/pkg/allocation"
	apperrors "github.com/chainsafe/phase-distributor/pkg/app/errors"
	"github.com/chainsafe/phase-distributor/pkg/distribution"
	"github.com/chainsafe/phase-distributor/pkg/ledgerstore"
	"github.com/chainsafe/phase-distributor/pkg/phase"
)

func contributionNotFound(id int64, err error) error {
	if errors.Is(err, ledgerstore.ErrNotFound) {
		return apperrors.ResourceNotFoundError(distribution.CodeContributionNotFound, err,
			fmt.Sprintf("contribution %d not found", id))
	}
	return fmt.Errorf("failed to load contribution %d: %w", id, err)
}

// RecordContribution stores a priced deposit. Contributions on other networks are kept but never allocated.
func (s *phaseService) RecordContribution(
	ctx context.Context,
	req *phase.ContributionRequest,
) (*distribution.Contribution, error) {
	if req == nil || req.WalletAddress == "" {
		return nil, apperrors.BadRequestError(distribution.CodeInvalidAddress, nil, "wallet_address is required")
	}
	if req.USDValue.IsNegative() {
		return nil, apperrors.BadRequestError(distribution.CodeInvalidAmount, nil, "usd_value must not be negative")
	}

	network := req.Network
	if network == "" {
		network = s.allocator.Network
	}
	if network == s.allocator.Network {
		if err := distribution.ValidateAddress(req.WalletAddress); err != nil {
			return nil, apperrors.BadRequestError(distribution.CodeInvalidAddress, err, "invalid wallet_address")
		}
	}

	now := s.now()
	ts := req.Timestamp.UTC()
	if req.Timestamp.IsZero() {
		ts = now
	}
	c := &distribution.Contribution{
		WalletAddress: req.WalletAddress,
		USDValue:      req.USDValue,
		TokenContract: req.TokenContract,
		Network:       network,
		Timestamp:     ts,
		AllocStatus:   distribution.AllocStatusPending,
		CreatedAt:     now,
	}
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
		return tx.InsertContribution(ctx, c)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record contribution: %w", err)
	}
	return c, nil
}

// frozen reports whether the contribution belongs to a phase whose snapshot has been taken.
// The phase row is share-locked so the check waits for a snapshot of that phase in flight.
func frozen(ctx context.Context, tx ledgerstore.Tx, c *distribution.Contribution) (bool, error) {
	if c.PhaseID == nil || c.AllocStatus != distribution.AllocStatusAssigned {
		return false, nil
	}
	p, err := tx.SharePhase(ctx, *c.PhaseID)
	if errors.Is(err, ledgerstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load phase %d: %w", *c.PhaseID, err)
	}
	return p.SnapshotTakenAt != nil, nil
}

func lockedError(id int64) error {
	return apperrors.ConflictError(distribution.CodeContributionLocked, ErrContributionLocked,
		fmt.Sprintf("contribution %d is frozen in a phase snapshot", id))
}

// AssignContributions records the contributions as belonging to the phase. Without explicit ids it
// assigns every pending contribution whose virtual allocation lies wholly inside the phase.
func (s *phaseService) AssignContributions(
	ctx context.Context,
	phaseID int64,
	contributionIDs []int64,
) (*phase.AssignResult, error) {
	if err := validatePhaseID(phaseID); err != nil {
		return nil, err
	}

	result := &phase.AssignResult{PhaseID: phaseID, Assigned: []int64{}}
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
		p, err := tx.SharePhase(ctx, phaseID)
		if err != nil {
			return phaseNotFound(phaseID, err)
		}
		if p.IsFinalized() {
			return apperrors.ConflictError(distribution.CodePhaseAlreadyFinalized, ErrPhaseFinalized,
				fmt.Sprintf("phase %d is finalized", phaseID))
		}

		ids := contributionIDs
		if len(ids) == 0 {
			_, res, err := s.project(ctx, tx)
			if err != nil {
				return err
			}
			ids = whollyInside(res, phaseID)
		}

		for _, id := range ids {
			c, err := tx.LockContribution(ctx, id)
			if err != nil {
				return contributionNotFound(id, err)
			}
			if len(contributionIDs) == 0 && c.AllocStatus != distribution.AllocStatusPending {
				continue
			}
			if c.AllocStatus == distribution.AllocStatusInvalid {
				return apperrors.ConflictError(distribution.CodeContributionLocked, ErrContributionLocked,
					fmt.Sprintf("contribution %d is invalidated", id))
			}
			if c.PhaseID != nil && *c.PhaseID == phaseID && c.AllocStatus == distribution.AllocStatusAssigned {
				continue
			}
			isFrozen, err := frozen(ctx, tx, c)
			if err != nil {
				return err
			}
			if isFrozen {
				return lockedError(id)
			}

			pid := phaseID
			c.PhaseID = &pid
			c.AllocStatus = distribution.AllocStatusAssigned
			if err := tx.UpdateContribution(ctx, c); err != nil {
				return fmt.Errorf("failed to assign contribution %d: %w", id, err)
			}
			result.Assigned = append(result.Assigned, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// whollyInside returns the contributions with all of their USD inside the phase.
func whollyInside(res *allocation.Result, phaseID int64) []int64 {
	var ids []int64
	for _, sh := range res.SharesForPhase(phaseID) {
		if !sh.Partial {
			ids = append(ids, sh.ContributionID)
		}
	}
	return ids
}

// InvalidateContribution removes a contribution from allocation. Contributions frozen in a snapshot cannot change.
func (s *phaseService) InvalidateContribution(ctx context.Context, id int64) (*distribution.Contribution, error) {
	var invalidated *distribution.Contribution
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
		c, err := tx.LockContribution(ctx, id)
		if err != nil {
			return contributionNotFound(id, err)
		}
		invalidated = c
		if c.AllocStatus == distribution.AllocStatusInvalid {
			return nil
		}
		isFrozen, err := frozen(ctx, tx, c)
		if err != nil {
			return err
		}
		if isFrozen {
			return lockedError(id)
		}

		c.AllocStatus = distribution.AllocStatusInvalid
		c.PhaseID = nil
		if err := tx.UpdateContribution(ctx, c); err != nil {
			return fmt.Errorf("failed to invalidate contribution %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invalidated, nil
}

// SplitContribution cuts a contribution into two rows: the original keeps usdAmount and a new
// remainder row takes the rest. The remainder sorts right after the original so no USD moves
// between phase intervals. A zero usdAmount splits at the first phase boundary the contribution crosses.
// Only the last piece of a split chain can be split again.
func (s *phaseService) SplitContribution(
	ctx context.Context,
	id int64,
	usdAmount decimal.Decimal,
) (*phase.SplitResult, error) {
	if usdAmount.IsNegative() {
		return nil, apperrors.BadRequestError(distribution.CodeInvalidAmount, nil, "usd_amount must not be negative")
	}

	var result *phase.SplitResult
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
		c, err := tx.LockContribution(ctx, id)
		if err != nil {
			return contributionNotFound(id, err)
		}
		if c.AllocStatus == distribution.AllocStatusInvalid {
			return notSplittable("contribution is invalidated")
		}
		isFrozen, err := frozen(ctx, tx, c)
		if err != nil {
			return err
		}
		if isFrozen {
			return lockedError(id)
		}

		phases, err := tx.ListPhases(ctx)
		if err != nil {
			return fmt.Errorf("failed to list phases: %w", err)
		}
		contributions, err := tx.ListContributions(ctx)
		if err != nil {
			return fmt.Errorf("failed to list contributions: %w", err)
		}
		for _, other := range contributions {
			if other.OrderID() == c.OrderID() && other.ID > c.ID {
				return notSplittable(fmt.Sprintf("contribution %d is not the last piece of its split chain", id))
			}
		}

		amount := usdAmount
		if amount.IsZero() {
			amount = boundaryAmount(s.allocator.Allocate(phases, contributions), id)
			if amount.IsZero() {
				return notSplittable(fmt.Sprintf("contribution %d does not cross a phase boundary", id))
			}
		}
		if !amount.LessThan(c.USDValue) {
			return notSplittable(fmt.Sprintf("usd_amount must be below the contribution value %s", c.USDValue))
		}

		parent := c.OrderID()
		remainder := &distribution.Contribution{
			WalletAddress: c.WalletAddress,
			USDValue:      c.USDValue.Sub(amount),
			TokenContract: c.TokenContract,
			Network:       c.Network,
			Timestamp:     c.Timestamp,
			AllocStatus:   distribution.AllocStatusPending,
			ParentID:      &parent,
			CreatedAt:     s.now(),
		}
		c.USDValue = amount
		if err := tx.UpdateContribution(ctx, c); err != nil {
			return fmt.Errorf("failed to shrink contribution %d: %w", id, err)
		}
		if err := tx.InsertContribution(ctx, remainder); err != nil {
			return fmt.Errorf("failed to insert remainder of contribution %d: %w", id, err)
		}

		result = &phase.SplitResult{
			Original:  phase.NewContributionView(c),
			Remainder: phase.NewContributionView(remainder),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// boundaryAmount returns the USD the contribution places in the first phase it touches,
// or zero when the contribution lies inside a single phase.
func boundaryAmount(res *allocation.Result, contributionID int64) decimal.Decimal {
	for _, sh := range res.Shares {
		if sh.ContributionID == contributionID {
			if sh.Partial {
				return sh.USD
			}
			return decimal.Zero
		}
	}
	return decimal.Zero
}

func notSplittable(message string) error {
	return apperrors.BadRequestError(distribution.CodeContributionNotSplittable, ErrContributionNotSplit, message)
}
