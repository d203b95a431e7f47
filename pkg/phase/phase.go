// Package phase holds the request and response types of the phase lifecycle and
// reconciliation API.
package phase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/chainsafe/phase-distributor/pkg/allocation"
	"github.com/chainsafe/phase-distributor/pkg/distribution"
)

// CreateRequest creates a planned phase.
type CreateRequest struct {
	Name           string              `json:"name" validate:"required,max=255"`
	PoolMEGY       decimal.Decimal     `json:"pool_megy"`
	RateUSDPerMEGY decimal.Decimal     `json:"rate_usd_per_megy"`
	TargetUSD      decimal.NullDecimal `json:"target_usd"`
}

// MoveRequest swaps a planned phase with its neighbor.
type MoveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// ContributionRequest records a USD-valued deposit supplied by the pricing layer.
type ContributionRequest struct {
	WalletAddress string          `json:"wallet_address" validate:"required,max=64"`
	USDValue      decimal.Decimal `json:"usd_value"`
	TokenContract string          `json:"token_contract" validate:"max=128"`
	Network       string          `json:"network" validate:"max=32"`
	Timestamp     time.Time       `json:"timestamp"`
}

// AssignRequest assigns contributions to a phase. An empty list assigns every
// unassigned contribution whose virtual allocation lies entirely inside the phase.
type AssignRequest struct {
	ContributionIDs []int64 `json:"contribution_ids" validate:"dive,gt=0"`
}

// SplitRequest splits a contribution at USDAmount. A zero amount splits at the phase boundary.
type SplitRequest struct {
	USDAmount decimal.Decimal `json:"usd_amount"`
}

// View is a phase as exposed to callers, with its virtual allocation.
type View struct {
	ID              int64                    `json:"id"`
	PhaseNo         int64                    `json:"phase_no"`
	Name            string                   `json:"name"`
	PoolMEGY        decimal.Decimal          `json:"pool_megy"`
	RateUSDPerMEGY  decimal.Decimal          `json:"rate_usd_per_megy"`
	TargetUSD       *decimal.Decimal         `json:"target_usd"`
	Status          distribution.PhaseStatus `json:"status"`
	OpenedAt        *time.Time               `json:"opened_at,omitempty"`
	ClosedAt        *time.Time               `json:"closed_at,omitempty"`
	SnapshotTakenAt *time.Time               `json:"snapshot_taken_at,omitempty"`
	FinalizedAt     *time.Time               `json:"finalized_at,omitempty"`
	UsedUSD         decimal.Decimal          `json:"used_usd"`
	FillPct         decimal.Decimal          `json:"fill_pct"`
	Contributors    int                      `json:"contributors"`
}

// NewView converts a phase and its fill into a View.
func NewView(p *distribution.Phase, fill *allocation.PhaseFill) *View {
	v := &View{
		ID:              p.ID,
		PhaseNo:         p.PhaseNo,
		Name:            p.Name,
		PoolMEGY:        p.PoolMEGY,
		RateUSDPerMEGY:  p.RateUSDPerMEGY,
		Status:          p.EffectiveStatus(),
		OpenedAt:        p.OpenedAt,
		ClosedAt:        p.ClosedAt,
		SnapshotTakenAt: p.SnapshotTakenAt,
		FinalizedAt:     p.FinalizedAt,
		UsedUSD:         decimal.Zero,
		FillPct:         decimal.Zero,
	}
	if p.TargetUSD.Valid {
		target := p.TargetUSD.Decimal
		v.TargetUSD = &target
	}
	if fill != nil {
		v.UsedUSD = fill.UsedUSD
		v.FillPct = fill.FillPct
		v.Contributors = fill.Contributors
	}
	return v
}

// Listing is the ordered phase list with the virtual allocation applied.
type Listing struct {
	Phases         []*View         `json:"phases"`
	TotalUSD       decimal.Decimal `json:"total_usd"`
	UnallocatedUSD decimal.Decimal `json:"unallocated_usd"`
}

// Find returns the view of the phase with the given id, or nil.
func (l *Listing) Find(id int64) *View {
	for _, v := range l.Phases {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// AdvanceResult reports the phases touched by an advance.
type AdvanceResult struct {
	Completed []*View  `json:"completed"`
	Opened    *View    `json:"opened,omitempty"`
	Listing   *Listing `json:"listing"`
}

// SnapshotResult reports a rebuilt snapshot.
type SnapshotResult struct {
	Phase            *View               `json:"phase"`
	AllocationTotals distribution.Totals `json:"allocation_totals"`
	SnapshotTotals   distribution.Totals `json:"snapshot_totals"`
	// Straddling lists contributions whose virtual allocation crosses a boundary of the phase.
	Straddling []int64 `json:"straddling_contribution_ids"`
}

// FinalizeResult reports a finalized phase.
type FinalizeResult struct {
	Phase            *View               `json:"phase"`
	AlreadyFinalized bool                `json:"already_finalized"`
	AllocationTotals distribution.Totals `json:"allocation_totals"`
	SnapshotTotals   distribution.Totals `json:"snapshot_totals"`
}

// ContributionView is a contribution as exposed to callers.
type ContributionView struct {
	ID            int64                    `json:"id"`
	WalletAddress string                   `json:"wallet_address"`
	USDValue      decimal.Decimal          `json:"usd_value"`
	TokenContract string                   `json:"token_contract"`
	Network       string                   `json:"network"`
	Timestamp     time.Time                `json:"timestamp"`
	PhaseID       *int64                   `json:"phase_id"`
	AllocStatus   distribution.AllocStatus `json:"alloc_status"`
	ParentID      *int64                   `json:"parent_id,omitempty"`
}

// NewContributionView converts a contribution into a ContributionView.
func NewContributionView(c *distribution.Contribution) *ContributionView {
	if c == nil {
		return nil
	}
	return &ContributionView{
		ID:            c.ID,
		WalletAddress: c.WalletAddress,
		USDValue:      c.USDValue,
		TokenContract: c.TokenContract,
		Network:       c.Network,
		Timestamp:     c.Timestamp,
		PhaseID:       c.PhaseID,
		AllocStatus:   c.AllocStatus,
		ParentID:      c.ParentID,
	}
}

// AssignResult lists the contributions assigned to the phase.
type AssignResult struct {
	PhaseID  int64   `json:"phase_id"`
	Assigned []int64 `json:"assigned_contribution_ids"`
}

// SplitResult holds both pieces of a split contribution.
type SplitResult struct {
	Original  *ContributionView `json:"original"`
	Remainder *ContributionView `json:"remainder"`
}
