// Package distribution holds the domain model of the phase reward distribution:
// phases, contributions, frozen claim snapshots and the claim ledger records.
package distribution

import (
	"time"

	"github.com/shopspring/decimal"
)

// NetworkSolana is the canonical chain contributions must come from to be eligible.
const NetworkSolana = "solana"

// PhaseStatus is the lifecycle state of a phase.
type PhaseStatus string

const (
	PhaseStatusPlanned   PhaseStatus = "planned"
	PhaseStatusActive    PhaseStatus = "active"
	PhaseStatusCompleted PhaseStatus = "completed"
	// PhaseStatusFinalized is never stored. A completed phase with finalized_at set reports it.
	PhaseStatusFinalized PhaseStatus = "finalized"
)

// Phase is one bounded distribution round with a fixed reward pool and USD capacity.
type Phase struct {
	ID              int64
	PhaseNo         int64
	Name            string
	PoolMEGY        decimal.Decimal
	RateUSDPerMEGY  decimal.Decimal
	TargetUSD       decimal.NullDecimal
	Status          PhaseStatus
	OpenedAt        *time.Time
	ClosedAt        *time.Time
	SnapshotTakenAt *time.Time
	FinalizedAt     *time.Time
	CreatedAt       time.Time
}

// IsFinalized reports whether the phase snapshot has been certified.
func (p *Phase) IsFinalized() bool {
	return p.FinalizedAt != nil
}

// EffectiveStatus returns the externally visible status.
func (p *Phase) EffectiveStatus() PhaseStatus {
	if p.IsFinalized() {
		return PhaseStatusFinalized
	}
	return p.Status
}

// Capacity returns the USD the phase absorbs; phases without a target absorb nothing.
func (p *Phase) Capacity() decimal.Decimal {
	if !p.TargetUSD.Valid || p.TargetUSD.Decimal.IsNegative() {
		return decimal.Zero
	}
	return p.TargetUSD.Decimal
}

// AllocStatus is the allocation state of a contribution.
type AllocStatus string

const (
	AllocStatusPending  AllocStatus = "pending"
	AllocStatusAssigned AllocStatus = "assigned"
	AllocStatusInvalid  AllocStatus = "invalid"
)

// Contribution is a single USD-valued deposit event.
type Contribution struct {
	ID            int64
	WalletAddress string
	USDValue      decimal.Decimal
	TokenContract string
	Network       string
	Timestamp     time.Time
	PhaseID       *int64
	AllocStatus   AllocStatus
	// ParentID is set on the remainder row produced by splitting a contribution.
	ParentID  *int64
	CreatedAt time.Time
}

// Eligible reports whether the contribution takes part in allocation on the given network.
func (c *Contribution) Eligible(network string) bool {
	return c.USDValue.IsPositive() && c.Network == network && c.AllocStatus != AllocStatusInvalid
}

// OrderID is the secondary ordering key after the timestamp.
// Split remainders sort with their parent so splitting never moves USD between intervals.
func (c *Contribution) OrderID() int64 {
	if c.ParentID != nil {
		return *c.ParentID
	}
	return c.ID
}

// PhaseAllocation is the persisted share of one contribution inside one phase.
type PhaseAllocation struct {
	PhaseID        int64
	ContributionID int64
	WalletAddress  string
	USDAllocated   decimal.Decimal
	MEGYAllocated  decimal.Decimal
}

// ClaimSnapshot is the frozen per-wallet allocation of a phase.
type ClaimSnapshot struct {
	PhaseID         int64
	WalletAddress   string
	ContributionUSD decimal.Decimal
	MEGYAmount      decimal.Decimal
	ShareRatio      decimal.Decimal
	CreatedAt       time.Time
}

// Claim is a single settlement transaction.
type Claim struct {
	ID            int64
	PhaseID       int64
	WalletAddress string
	ClaimAmount   decimal.Decimal
	Destination   string
	TxSignature   string
	SessionID     string
	Timestamp     time.Time
}

// SessionStatus is the claim session state. open -> closed is the only transition.
type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "open"
	SessionStatusClosed SessionStatus = "closed"
)

// ClaimSession groups the claims a wallet executes in one flow.
type ClaimSession struct {
	ID                    string
	WalletAddress         string
	Destination           string
	Status                SessionStatus
	TotalClaimedInSession decimal.Decimal
	CreatedAt             time.Time
	ClosedAt              *time.Time
}

// Totals aggregates a phase's allocation or snapshot rows for reconciliation.
type Totals struct {
	USD        decimal.Decimal `json:"usd"`
	MEGY       decimal.Decimal `json:"megy"`
	Wallets    int             `json:"wallets"`
	ShareRatio decimal.Decimal `json:"share_ratio"`
	Rows       int             `json:"rows"`
}

// PhaseClaimable is a wallet's claim position inside one finalized phase.
type PhaseClaimable struct {
	PhaseID   int64           `json:"phase_id"`
	PhaseNo   int64           `json:"phase_no"`
	Allocated decimal.Decimal `json:"allocated"`
	Claimed   decimal.Decimal `json:"claimed"`
	Claimable decimal.Decimal `json:"claimable"`
}

// AmountScale is the number of fractional digits the ledger stores for token and USD amounts.
const AmountScale = 18

// FitsAmountScale reports whether d can be stored without rounding.
func FitsAmountScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale))
}

// Remaining returns max(0, allocated - claimed).
func Remaining(allocated, claimed decimal.Decimal) decimal.Decimal {
	r := allocated.Sub(claimed)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
