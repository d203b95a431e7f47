package ledgerstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chainsafe/phase-distributor/pkg/distribution"
)

type memoryState struct {
	phases        map[int64]distribution.Phase
	contributions map[int64]distribution.Contribution
	allocations   map[int64][]distribution.PhaseAllocation
	snapshots     map[int64][]distribution.ClaimSnapshot
	claims        []distribution.Claim
	sessions      map[string]distribution.ClaimSession

	nextPhaseID        int64
	nextContributionID int64
	nextClaimID        int64
}

func newMemoryState() *memoryState {
	return &memoryState{
		phases:        make(map[int64]distribution.Phase),
		contributions: make(map[int64]distribution.Contribution),
		allocations:   make(map[int64][]distribution.PhaseAllocation),
		snapshots:     make(map[int64][]distribution.ClaimSnapshot),
		sessions:      make(map[string]distribution.ClaimSession),
	}
}

func (s *memoryState) clone() *memoryState {
	out := newMemoryState()
	for k, v := range s.phases {
		out.phases[k] = v
	}
	for k, v := range s.contributions {
		out.contributions[k] = v
	}
	for k, v := range s.allocations {
		out.allocations[k] = append([]distribution.PhaseAllocation(nil), v...)
	}
	for k, v := range s.snapshots {
		out.snapshots[k] = append([]distribution.ClaimSnapshot(nil), v...)
	}
	out.claims = append([]distribution.Claim(nil), s.claims...)
	for k, v := range s.sessions {
		out.sessions[k] = v
	}
	out.nextPhaseID = s.nextPhaseID
	out.nextContributionID = s.nextContributionID
	out.nextClaimID = s.nextClaimID
	return out
}

// MemoryStore is an in-memory Store.
// Transactions are serialized by a single mutex and work on a copy of the state that replaces
// the committed state only when the callback succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	now func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: newMemoryState(),
		locks: make(map[string]*sync.Mutex),
		now:   time.Now,
	}
}

func (m *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.state.clone()
	if err := fn(ctx, &memoryTx{state: work, now: m.now}); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *MemoryStore) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.locksMu.Lock()
	lock, ok := m.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[name] = lock
	}
	m.locksMu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}

type memoryTx struct {
	state *memoryState
	now   func() time.Time
}

func (t *memoryTx) GetPhase(_ context.Context, id int64) (*distribution.Phase, error) {
	p, ok := t.state.phases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (t *memoryTx) LockPhase(ctx context.Context, id int64) (*distribution.Phase, error) {
	return t.GetPhase(ctx, id)
}

func (t *memoryTx) SharePhase(ctx context.Context, id int64) (*distribution.Phase, error) {
	return t.GetPhase(ctx, id)
}

func (t *memoryTx) sortedPhases() []*distribution.Phase {
	out := make([]*distribution.Phase, 0, len(t.state.phases))
	for _, p := range t.state.phases {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PhaseNo < out[j].PhaseNo })
	return out
}

func (t *memoryTx) ListPhases(_ context.Context) ([]*distribution.Phase, error) {
	return t.sortedPhases(), nil
}

func (t *memoryTx) LockActivePhases(_ context.Context) ([]*distribution.Phase, error) {
	var out []*distribution.Phase
	for _, p := range t.sortedPhases() {
		if p.Status == distribution.PhaseStatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *memoryTx) LockNeighbor(_ context.Context, phaseNo int64, dir Direction) (*distribution.Phase, error) {
	var found *distribution.Phase
	for _, p := range t.sortedPhases() {
		if dir == DirectionUp && p.PhaseNo < phaseNo {
			found = p
		}
		if dir == DirectionDown && p.PhaseNo > phaseNo {
			return p, nil
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (t *memoryTx) InsertPhase(_ context.Context, p *distribution.Phase) error {
	var maxNo int64
	for _, existing := range t.state.phases {
		if existing.PhaseNo > maxNo {
			maxNo = existing.PhaseNo
		}
	}
	t.state.nextPhaseID++
	p.ID = t.state.nextPhaseID
	p.PhaseNo = maxNo + 1
	p.CreatedAt = t.now()
	t.state.phases[p.ID] = *p
	return nil
}

func (t *memoryTx) UpdatePhase(_ context.Context, p *distribution.Phase) error {
	stored, ok := t.state.phases[p.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Status = p.Status
	stored.OpenedAt = p.OpenedAt
	stored.ClosedAt = p.ClosedAt
	stored.SnapshotTakenAt = p.SnapshotTakenAt
	stored.FinalizedAt = p.FinalizedAt
	t.state.phases[p.ID] = stored
	return nil
}

func (t *memoryTx) SwapPhaseNo(_ context.Context, a, b *distribution.Phase) error {
	storedA, okA := t.state.phases[a.ID]
	storedB, okB := t.state.phases[b.ID]
	if !okA || !okB {
		return ErrNotFound
	}
	storedA.PhaseNo, storedB.PhaseNo = storedB.PhaseNo, storedA.PhaseNo
	t.state.phases[a.ID] = storedA
	t.state.phases[b.ID] = storedB
	a.PhaseNo, b.PhaseNo = storedA.PhaseNo, storedB.PhaseNo
	return nil
}

func (t *memoryTx) InsertContribution(_ context.Context, c *distribution.Contribution) error {
	t.state.nextContributionID++
	c.ID = t.state.nextContributionID
	c.CreatedAt = t.now()
	t.state.contributions[c.ID] = *c
	return nil
}

func (t *memoryTx) GetContribution(_ context.Context, id int64) (*distribution.Contribution, error) {
	c, ok := t.state.contributions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (t *memoryTx) LockContribution(ctx context.Context, id int64) (*distribution.Contribution, error) {
	return t.GetContribution(ctx, id)
}

func (t *memoryTx) UpdateContribution(_ context.Context, c *distribution.Contribution) error {
	stored, ok := t.state.contributions[c.ID]
	if !ok {
		return ErrNotFound
	}
	stored.USDValue = c.USDValue
	stored.PhaseID = c.PhaseID
	stored.AllocStatus = c.AllocStatus
	t.state.contributions[c.ID] = stored
	return nil
}

func (t *memoryTx) ListContributions(_ context.Context) ([]*distribution.Contribution, error) {
	return t.contributions(func(*distribution.Contribution) bool { return true }), nil
}

func (t *memoryTx) ListAssigned(_ context.Context, phaseID int64) ([]*distribution.Contribution, error) {
	return t.contributions(func(c *distribution.Contribution) bool {
		return c.PhaseID != nil && *c.PhaseID == phaseID && c.AllocStatus == distribution.AllocStatusAssigned
	}), nil
}

func (t *memoryTx) contributions(keep func(*distribution.Contribution) bool) []*distribution.Contribution {
	var out []*distribution.Contribution
	for _, c := range t.state.contributions {
		c := c
		if keep(&c) {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (t *memoryTx) ReplacePhaseAllocations(_ context.Context, phaseID int64, rows []*distribution.PhaseAllocation) error {
	replaced := make([]distribution.PhaseAllocation, 0, len(rows))
	for _, row := range rows {
		replaced = append(replaced, *row)
	}
	t.state.allocations[phaseID] = replaced
	return nil
}

func (t *memoryTx) AllocationTotals(_ context.Context, phaseID int64) (distribution.Totals, error) {
	totals := distribution.Totals{USD: decimal.Zero, MEGY: decimal.Zero, ShareRatio: decimal.Zero}
	wallets := make(map[string]struct{})
	for _, row := range t.state.allocations[phaseID] {
		totals.USD = totals.USD.Add(row.USDAllocated)
		totals.MEGY = totals.MEGY.Add(row.MEGYAllocated)
		wallets[row.WalletAddress] = struct{}{}
		totals.Rows++
	}
	totals.Wallets = len(wallets)
	return totals, nil
}

func (t *memoryTx) ReplaceClaimSnapshots(_ context.Context, phaseID int64, rows []*distribution.ClaimSnapshot) error {
	seen := make(map[string]struct{}, len(rows))
	replaced := make([]distribution.ClaimSnapshot, 0, len(rows))
	for _, row := range rows {
		if _, dup := seen[row.WalletAddress]; dup {
			return ErrDuplicateSnapshot
		}
		seen[row.WalletAddress] = struct{}{}
		snapshot := *row
		if snapshot.CreatedAt.IsZero() {
			snapshot.CreatedAt = t.now()
		}
		replaced = append(replaced, snapshot)
	}
	t.state.snapshots[phaseID] = replaced
	return nil
}

func (t *memoryTx) SnapshotTotals(_ context.Context, phaseID int64) (distribution.Totals, error) {
	totals := distribution.Totals{USD: decimal.Zero, MEGY: decimal.Zero, ShareRatio: decimal.Zero}
	for _, row := range t.state.snapshots[phaseID] {
		totals.USD = totals.USD.Add(row.ContributionUSD)
		totals.MEGY = totals.MEGY.Add(row.MEGYAmount)
		totals.ShareRatio = totals.ShareRatio.Add(row.ShareRatio)
		totals.Rows++
	}
	totals.Wallets = totals.Rows
	return totals, nil
}

func (t *memoryTx) ListClaimSnapshots(_ context.Context, phaseID int64) ([]*distribution.ClaimSnapshot, error) {
	rows := t.state.snapshots[phaseID]
	out := make([]*distribution.ClaimSnapshot, len(rows))
	for i := range rows {
		row := rows[i]
		out[i] = &row
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WalletAddress < out[j].WalletAddress })
	return out, nil
}

func (t *memoryTx) LockClaimSnapshot(_ context.Context, phaseID int64, wallet string) (*distribution.ClaimSnapshot, error) {
	for _, row := range t.state.snapshots[phaseID] {
		if row.WalletAddress == wallet {
			row := row
			return &row, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memoryTx) TxSignatureExists(_ context.Context, sig string) (bool, error) {
	for _, c := range t.state.claims {
		if c.TxSignature == sig {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) SumClaimed(_ context.Context, phaseID int64, wallet string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, c := range t.state.claims {
		if c.PhaseID == phaseID && c.WalletAddress == wallet {
			sum = sum.Add(c.ClaimAmount)
		}
	}
	return sum, nil
}

func (t *memoryTx) InsertClaim(ctx context.Context, c *distribution.Claim) error {
	if used, _ := t.TxSignatureExists(ctx, c.TxSignature); used {
		return ErrTxSignatureUsed
	}
	t.state.nextClaimID++
	c.ID = t.state.nextClaimID
	t.state.claims = append(t.state.claims, *c)
	return nil
}

func (t *memoryTx) ClaimPositions(ctx context.Context, wallet string) ([]*distribution.PhaseClaimable, error) {
	var out []*distribution.PhaseClaimable
	for _, p := range t.sortedPhases() {
		if !p.IsFinalized() {
			continue
		}
		snapshot, err := t.LockClaimSnapshot(ctx, p.ID, wallet)
		if err != nil {
			continue
		}
		claimed, _ := t.SumClaimed(ctx, p.ID, wallet)
		out = append(out, &distribution.PhaseClaimable{
			PhaseID:   p.ID,
			PhaseNo:   p.PhaseNo,
			Allocated: snapshot.MEGYAmount,
			Claimed:   claimed,
			Claimable: distribution.Remaining(snapshot.MEGYAmount, claimed),
		})
	}
	return out, nil
}

func (t *memoryTx) InsertSession(_ context.Context, s *distribution.ClaimSession) error {
	if _, exists := t.state.sessions[s.ID]; exists {
		return ErrDuplicateSession
	}
	t.state.sessions[s.ID] = *s
	return nil
}

func (t *memoryTx) LockSession(_ context.Context, id string) (*distribution.ClaimSession, error) {
	s, ok := t.state.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (t *memoryTx) FindOpenSession(_ context.Context, wallet, destination string) (*distribution.ClaimSession, error) {
	var found *distribution.ClaimSession
	for _, s := range t.state.sessions {
		s := s
		if s.WalletAddress != wallet || s.Destination != destination || s.Status != distribution.SessionStatusOpen {
			continue
		}
		if found == nil || s.CreatedAt.After(found.CreatedAt) {
			found = &s
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (t *memoryTx) UpdateSession(_ context.Context, s *distribution.ClaimSession) error {
	stored, ok := t.state.sessions[s.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Status = s.Status
	stored.TotalClaimedInSession = s.TotalClaimedInSession
	stored.ClosedAt = s.ClosedAt
	t.state.sessions[s.ID] = stored
	return nil
}
