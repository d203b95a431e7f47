// Package ledgerstore persists phases, contributions, frozen claim snapshots and the claim ledger.
//
// Every mutation runs inside Store.RunInTx; any error returned by the callback rolls the whole
// transaction back. Row-level serialization is expressed by the Lock* methods, which map to
// SELECT ... FOR UPDATE on Postgres. Store.WithLock provides the store-wide named lock used to
// serialize snapshot and finalize of one phase across processes.
package ledgerstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chainsafe/phase-distributor/pkg/distribution"
)

var (
	// ErrNotFound is returned when a lookup finds no matching record.
	ErrNotFound = errors.New("record not found")
	// ErrTxSignatureUsed is returned when a claim reuses a settlement signature already in the ledger.
	ErrTxSignatureUsed = errors.New("tx signature already used")
	// ErrPhaseNoTaken is returned when a phase_no collides with an existing phase.
	ErrPhaseNoTaken = errors.New("phase number already taken")
	// ErrDuplicateSnapshot is returned when a phase snapshot holds two rows for one wallet.
	ErrDuplicateSnapshot = errors.New("duplicate claim snapshot")
	// ErrDuplicateSession is returned when a session id is reused.
	ErrDuplicateSession = errors.New("duplicate claim session")
)

// Direction selects the neighbor of a phase in phase_no order.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// PhaseLockName returns the store-wide lock name guarding snapshot and finalize of a phase.
func PhaseLockName(phaseID int64) string {
	return fmt.Sprintf("phase:%d", phaseID)
}

// Store is the transactional entry point of the ledger.
type Store interface {
	// RunInTx runs fn in a single transaction. The transaction commits only if fn returns nil.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithLock runs fn while holding the named store-wide lock. The lock is released on every exit path.
	WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// Tx groups all the operations available inside a transaction.
type Tx interface {
	PhaseStore
	ContributionStore
	SnapshotStore
	ClaimStore
	SessionStore
}

// PhaseStore defines phase persistence.
type PhaseStore interface {
	GetPhase(ctx context.Context, id int64) (*distribution.Phase, error)
	// LockPhase reads the phase and holds its row lock until the transaction ends.
	LockPhase(ctx context.Context, id int64) (*distribution.Phase, error)
	// SharePhase reads the phase under a shared row lock: it waits for a concurrent LockPhase
	// holder (a running snapshot) but not for other SharePhase readers.
	SharePhase(ctx context.Context, id int64) (*distribution.Phase, error)
	// ListPhases returns every phase ordered by phase_no ascending.
	ListPhases(ctx context.Context) ([]*distribution.Phase, error)
	LockActivePhases(ctx context.Context) ([]*distribution.Phase, error)
	// LockNeighbor locks the nearest phase above (lower phase_no) or below (higher phase_no) phaseNo.
	LockNeighbor(ctx context.Context, phaseNo int64, dir Direction) (*distribution.Phase, error)
	// InsertPhase assigns the next phase_no and the id to p.
	InsertPhase(ctx context.Context, p *distribution.Phase) error
	UpdatePhase(ctx context.Context, p *distribution.Phase) error
	// SwapPhaseNo exchanges the phase_no of a and b and updates both structs.
	SwapPhaseNo(ctx context.Context, a, b *distribution.Phase) error
}

// ContributionStore defines contribution persistence.
type ContributionStore interface {
	InsertContribution(ctx context.Context, c *distribution.Contribution) error
	GetContribution(ctx context.Context, id int64) (*distribution.Contribution, error)
	LockContribution(ctx context.Context, id int64) (*distribution.Contribution, error)
	UpdateContribution(ctx context.Context, c *distribution.Contribution) error
	// ListContributions returns every contribution ordered by (timestamp, id).
	ListContributions(ctx context.Context) ([]*distribution.Contribution, error)
	// ListAssigned returns the contributions assigned to the phase.
	ListAssigned(ctx context.Context, phaseID int64) ([]*distribution.Contribution, error)
}

// SnapshotStore defines persistence of the per-phase allocation rows and claim snapshots.
type SnapshotStore interface {
	// ReplacePhaseAllocations deletes the phase's allocation rows and inserts rows.
	ReplacePhaseAllocations(ctx context.Context, phaseID int64, rows []*distribution.PhaseAllocation) error
	AllocationTotals(ctx context.Context, phaseID int64) (distribution.Totals, error)
	// ReplaceClaimSnapshots deletes the phase's snapshot rows and inserts rows.
	ReplaceClaimSnapshots(ctx context.Context, phaseID int64, rows []*distribution.ClaimSnapshot) error
	SnapshotTotals(ctx context.Context, phaseID int64) (distribution.Totals, error)
	ListClaimSnapshots(ctx context.Context, phaseID int64) ([]*distribution.ClaimSnapshot, error)
	LockClaimSnapshot(ctx context.Context, phaseID int64, wallet string) (*distribution.ClaimSnapshot, error)
}

// ClaimStore defines persistence of the claim ledger.
type ClaimStore interface {
	TxSignatureExists(ctx context.Context, sig string) (bool, error)
	SumClaimed(ctx context.Context, phaseID int64, wallet string) (decimal.Decimal, error)
	// InsertClaim returns ErrTxSignatureUsed when the signature is already recorded.
	InsertClaim(ctx context.Context, c *distribution.Claim) error
	// ClaimPositions returns the wallet's allocated, claimed and claimable amounts per finalized phase.
	ClaimPositions(ctx context.Context, wallet string) ([]*distribution.PhaseClaimable, error)
}

// SessionStore defines claim session persistence.
type SessionStore interface {
	InsertSession(ctx context.Context, s *distribution.ClaimSession) error
	LockSession(ctx context.Context, id string) (*distribution.ClaimSession, error)
	FindOpenSession(ctx context.Context, wallet, destination string) (*distribution.ClaimSession, error)
	UpdateSession(ctx context.Context, s *distribution.ClaimSession) error
}

// TotalClaimable sums the claimable amount over the positions.
func TotalClaimable(positions []*distribution.PhaseClaimable) decimal.Decimal {
	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(p.Claimable)
	}
	return total
}
