package ledgerstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"github.com/chainsafe/phase-distributor/pkg/distribution"
)

const (
	uniqueViolation = "23505"
	phaseNoLockName = "phases:phase_no"
)

// lockConnKey carries the connection holding the caller's advisory lock.
type lockConnKey struct{}

// txStarter is implemented by *bun.DB and bun.Conn.
type txStarter interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (bun.Tx, error)
}

type pgStore struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewStore creates a new postgres implementation of the ledger store
func NewStore(db *bun.DB, logger *zap.Logger) *pgStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &pgStore{db: db, logger: logger}
}

// starter returns the locked connection of an enclosing WithLock, or the pool.
func (s *pgStore) starter(ctx context.Context) txStarter {
	if conn, ok := ctx.Value(lockConnKey{}).(bun.Conn); ok {
		return conn
	}
	return s.db
}

// RunInTx runs fn in one transaction. Inside WithLock the transaction runs on the locked
// connection, so a locked operation never needs a second pooled connection.
func (s *pgStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.starter(ctx).BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("failed to rollback transaction", zap.Error(rbErr))
		}
	}()

	if err = fn(ctx, &pgTx{db: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// WithLock holds a session-scoped advisory lock on a dedicated connection while fn runs.
// Transactions started by fn reuse that connection, and nested locks stack on it.
func (s *pgStore) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	conn, nested := ctx.Value(lockConnKey{}).(bun.Conn)
	if !nested {
		var err error
		conn, err = s.db.Conn(ctx)
		if err != nil {
			return fmt.Errorf("failed to get connection for lock %s: %w", name, err)
		}
		defer func() {
			_ = conn.Close()
		}()
	}

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock(hashtextextended(?, 0))", name); err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}
	defer func() {
		unlockCtx := context.WithoutCancel(ctx)
		if _, err := conn.ExecContext(unlockCtx, "SELECT pg_advisory_unlock(hashtextextended(?, 0))", name); err != nil {
			s.logger.Error("failed to release lock", zap.String("lock", name), zap.Error(err))
			// a connection still holding the lock must not go back to the pool
			_ = conn.Raw(func(any) error { return driver.ErrBadConn })
		}
	}()

	return fn(context.WithValue(ctx, lockConnKey{}, conn))
}

type pgTx struct {
	db bun.IDB
}

func (t *pgTx) GetPhase(ctx context.Context, id int64) (*distribution.Phase, error) {
	return t.selectPhase(ctx, id, "")
}

func (t *pgTx) LockPhase(ctx context.Context, id int64) (*distribution.Phase, error) {
	return t.selectPhase(ctx, id, "UPDATE")
}

func (t *pgTx) SharePhase(ctx context.Context, id int64) (*distribution.Phase, error) {
	return t.selectPhase(ctx, id, "SHARE")
}

func (t *pgTx) selectPhase(ctx context.Context, id int64, lockMode string) (*distribution.Phase, error) {
	dao := new(PhaseDao)
	query := t.db.NewSelect().Model(dao).Where("id = ?", id)
	if lockMode != "" {
		query = query.For(lockMode)
	}

	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get phase %d: %w", id, err)
	}
	return toPhase(dao), nil
}

func (t *pgTx) ListPhases(ctx context.Context) ([]*distribution.Phase, error) {
	var daos []PhaseDao
	if err := t.db.NewSelect().Model(&daos).Order("phase_no ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list phases: %w", err)
	}
	return toPhases(daos), nil
}

func (t *pgTx) LockActivePhases(ctx context.Context) ([]*distribution.Phase, error) {
	var daos []PhaseDao
	err := t.db.NewSelect().
		Model(&daos).
		Where("status = ?", string(distribution.PhaseStatusActive)).
		Order("phase_no ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock active phases: %w", err)
	}
	return toPhases(daos), nil
}

func (t *pgTx) LockNeighbor(ctx context.Context, phaseNo int64, dir Direction) (*distribution.Phase, error) {
	dao := new(PhaseDao)
	query := t.db.NewSelect().Model(dao)
	if dir == DirectionUp {
		query = query.Where("phase_no < ?", phaseNo).Order("phase_no DESC")
	} else {
		query = query.Where("phase_no > ?", phaseNo).Order("phase_no ASC")
	}

	if err := query.Limit(1).For("UPDATE").Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock neighbor of phase_no %d: %w", phaseNo, err)
	}
	return toPhase(dao), nil
}

func (t *pgTx) InsertPhase(ctx context.Context, p *distribution.Phase) error {
	// serializes concurrent creators on max(phase_no)
	if _, err := t.db.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", phaseNoLockName); err != nil {
		return fmt.Errorf("failed to lock phase numbering: %w", err)
	}

	var next int64
	err := t.db.NewSelect().
		Model((*PhaseDao)(nil)).
		ColumnExpr("COALESCE(MAX(phase_no), 0) + 1").
		Scan(ctx, &next)
	if err != nil {
		return fmt.Errorf("failed to compute next phase_no: %w", err)
	}
	p.PhaseNo = next

	dao := toPhaseDao(p)
	if _, err = t.db.NewInsert().Model(dao).Returning("id, created_at").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrPhaseNoTaken
		}
		return fmt.Errorf("failed to create phase: %w", err)
	}
	p.ID = dao.ID
	p.CreatedAt = dao.CreatedAt
	return nil
}

func (t *pgTx) UpdatePhase(ctx context.Context, p *distribution.Phase) error {
	_, err := t.db.NewUpdate().
		Model(toPhaseDao(p)).
		Column("status", "opened_at", "closed_at", "snapshot_taken_at", "finalized_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update phase %d: %w", p.ID, err)
	}
	return nil
}

func (t *pgTx) SwapPhaseNo(ctx context.Context, a, b *distribution.Phase) error {
	setPhaseNo := func(id, phaseNo int64) error {
		_, err := t.db.NewUpdate().
			Model((*PhaseDao)(nil)).
			Set("phase_no = ?", phaseNo).
			Where("id = ?", id).
			Exec(ctx)
		return err
	}

	aNo, bNo := a.PhaseNo, b.PhaseNo
	// phase_no is unique and not deferrable: park a on a negative slot first
	if err := setPhaseNo(a.ID, -aNo); err != nil {
		return fmt.Errorf("failed to park phase %d: %w", a.ID, err)
	}
	if err := setPhaseNo(b.ID, aNo); err != nil {
		return fmt.Errorf("failed to renumber phase %d: %w", b.ID, err)
	}
	if err := setPhaseNo(a.ID, bNo); err != nil {
		return fmt.Errorf("failed to renumber phase %d: %w", a.ID, err)
	}

	a.PhaseNo, b.PhaseNo = bNo, aNo
	return nil
}

func (t *pgTx) InsertContribution(ctx context.Context, c *distribution.Contribution) error {
	dao := toContributionDao(c)
	if _, err := t.db.NewInsert().Model(dao).Returning("id, created_at").Exec(ctx); err != nil {
		return fmt.Errorf("failed to create contribution: %w", err)
	}
	c.ID = dao.ID
	c.CreatedAt = dao.CreatedAt
	return nil
}

func (t *pgTx) GetContribution(ctx context.Context, id int64) (*distribution.Contribution, error) {
	return t.selectContribution(ctx, id, false)
}

func (t *pgTx) LockContribution(ctx context.Context, id int64) (*distribution.Contribution, error) {
	return t.selectContribution(ctx, id, true)
}

func (t *pgTx) selectContribution(ctx context.Context, id int64, lock bool) (*distribution.Contribution, error) {
	dao := new(ContributionDao)
	query := t.db.NewSelect().Model(dao).Where("id = ?", id)
	if lock {
		query = query.For("UPDATE")
	}

	if err := query.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contribution %d: %w", id, err)
	}
	return toContribution(dao), nil
}

func (t *pgTx) UpdateContribution(ctx context.Context, c *distribution.Contribution) error {
	_, err := t.db.NewUpdate().
		Model(toContributionDao(c)).
		Column("usd_value", "phase_id", "alloc_status").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update contribution %d: %w", c.ID, err)
	}
	return nil
}

func (t *pgTx) ListContributions(ctx context.Context) ([]*distribution.Contribution, error) {
	var daos []ContributionDao
	if err := t.db.NewSelect().Model(&daos).Order("timestamp ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	return toContributions(daos), nil
}

func (t *pgTx) ListAssigned(ctx context.Context, phaseID int64) ([]*distribution.Contribution, error) {
	var daos []ContributionDao
	err := t.db.NewSelect().
		Model(&daos).
		Where("phase_id = ?", phaseID).
		Where("alloc_status = ?", string(distribution.AllocStatusAssigned)).
		Order("timestamp ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contributions of phase %d: %w", phaseID, err)
	}
	return toContributions(daos), nil
}

func (t *pgTx) ReplacePhaseAllocations(ctx context.Context, phaseID int64, rows []*distribution.PhaseAllocation) error {
	_, err := t.db.NewDelete().
		Model((*PhaseAllocationDao)(nil)).
		Where("phase_id = ?", phaseID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear allocations of phase %d: %w", phaseID, err)
	}
	if len(rows) == 0 {
		return nil
	}

	daos := make([]*PhaseAllocationDao, len(rows))
	for i, row := range rows {
		daos[i] = toPhaseAllocationDao(row)
	}
	if _, err = t.db.NewInsert().Model(&daos).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert allocations of phase %d: %w", phaseID, err)
	}
	return nil
}

func (t *pgTx) AllocationTotals(ctx context.Context, phaseID int64) (distribution.Totals, error) {
	totals := distribution.Totals{ShareRatio: decimal.Zero}
	err := t.db.NewSelect().
		Model((*PhaseAllocationDao)(nil)).
		ColumnExpr("COALESCE(SUM(usd_allocated), 0)").
		ColumnExpr("COALESCE(SUM(megy_allocated), 0)").
		ColumnExpr("COUNT(DISTINCT wallet_address)").
		ColumnExpr("COUNT(*)").
		Where("phase_id = ?", phaseID).
		Scan(ctx, &totals.USD, &totals.MEGY, &totals.Wallets, &totals.Rows)
	if err != nil {
		return totals, fmt.Errorf("failed to sum allocations of phase %d: %w", phaseID, err)
	}
	return totals, nil
}

func (t *pgTx) ReplaceClaimSnapshots(ctx context.Context, phaseID int64, rows []*distribution.ClaimSnapshot) error {
	_, err := t.db.NewDelete().
		Model((*ClaimSnapshotDao)(nil)).
		Where("phase_id = ?", phaseID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear snapshots of phase %d: %w", phaseID, err)
	}
	if len(rows) == 0 {
		return nil
	}

	daos := make([]*ClaimSnapshotDao, len(rows))
	for i, row := range rows {
		daos[i] = toClaimSnapshotDao(row)
	}
	if _, err = t.db.NewInsert().Model(&daos).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSnapshot
		}
		return fmt.Errorf("failed to insert snapshots of phase %d: %w", phaseID, err)
	}
	return nil
}

func (t *pgTx) SnapshotTotals(ctx context.Context, phaseID int64) (distribution.Totals, error) {
	var totals distribution.Totals
	err := t.db.NewSelect().
		Model((*ClaimSnapshotDao)(nil)).
		ColumnExpr("COALESCE(SUM(contribution_usd), 0)").
		ColumnExpr("COALESCE(SUM(megy_amount), 0)").
		ColumnExpr("COUNT(DISTINCT wallet_address)").
		ColumnExpr("COALESCE(SUM(share_ratio), 0)").
		ColumnExpr("COUNT(*)").
		Where("phase_id = ?", phaseID).
		Scan(ctx, &totals.USD, &totals.MEGY, &totals.Wallets, &totals.ShareRatio, &totals.Rows)
	if err != nil {
		return totals, fmt.Errorf("failed to sum snapshots of phase %d: %w", phaseID, err)
	}
	return totals, nil
}

func (t *pgTx) ListClaimSnapshots(ctx context.Context, phaseID int64) ([]*distribution.ClaimSnapshot, error) {
	var daos []ClaimSnapshotDao
	err := t.db.NewSelect().
		Model(&daos).
		Where("phase_id = ?", phaseID).
		Order("wallet_address ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots of phase %d: %w", phaseID, err)
	}

	out := make([]*distribution.ClaimSnapshot, len(daos))
	for i := range daos {
		out[i] = toClaimSnapshot(&daos[i])
	}
	return out, nil
}

func (t *pgTx) LockClaimSnapshot(ctx context.Context, phaseID int64, wallet string) (*distribution.ClaimSnapshot, error) {
	dao := new(ClaimSnapshotDao)
	err := t.db.NewSelect().
		Model(dao).
		Where("phase_id = ?", phaseID).
		Where("wallet_address = ?", wallet).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock snapshot of %s in phase %d: %w", wallet, phaseID, err)
	}
	return toClaimSnapshot(dao), nil
}

func (t *pgTx) TxSignatureExists(ctx context.Context, sig string) (bool, error) {
	exists, err := t.db.NewSelect().
		Model((*ClaimDao)(nil)).
		Where("tx_signature = ?", sig).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check tx signature: %w", err)
	}
	return exists, nil
}

func (t *pgTx) SumClaimed(ctx context.Context, phaseID int64, wallet string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := t.db.NewSelect().
		Model((*ClaimDao)(nil)).
		ColumnExpr("COALESCE(SUM(claim_amount), 0)").
		Where("phase_id = ?", phaseID).
		Where("wallet_address = ?", wallet).
		Scan(ctx, &sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum claims of %s in phase %d: %w", wallet, phaseID, err)
	}
	return sum, nil
}

func (t *pgTx) InsertClaim(ctx context.Context, c *distribution.Claim) error {
	dao := toClaimDao(c)
	if _, err := t.db.NewInsert().Model(dao).Returning("id").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrTxSignatureUsed
		}
		return fmt.Errorf("failed to insert claim: %w", err)
	}
	c.ID = dao.ID
	return nil
}

type positionRow struct {
	PhaseID   int64           `bun:"phase_id"`
	PhaseNo   int64           `bun:"phase_no"`
	Allocated decimal.Decimal `bun:"allocated"`
	Claimed   decimal.Decimal `bun:"claimed"`
}

func (t *pgTx) ClaimPositions(ctx context.Context, wallet string) ([]*distribution.PhaseClaimable, error) {
	var rows []positionRow
	err := t.db.NewRaw(`
		SELECT cs.phase_id, p.phase_no, cs.megy_amount AS allocated,
		       COALESCE((
		           SELECT SUM(cl.claim_amount) FROM claims AS cl
		           WHERE cl.phase_id = cs.phase_id AND cl.wallet_address = cs.wallet_address
		       ), 0) AS claimed
		FROM claim_snapshots AS cs
		JOIN phases AS p ON p.id = cs.phase_id
		WHERE cs.wallet_address = ? AND p.finalized_at IS NOT NULL
		ORDER BY p.phase_no ASC`, wallet).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load claim positions of %s: %w", wallet, err)
	}

	out := make([]*distribution.PhaseClaimable, len(rows))
	for i, row := range rows {
		out[i] = &distribution.PhaseClaimable{
			PhaseID:   row.PhaseID,
			PhaseNo:   row.PhaseNo,
			Allocated: row.Allocated,
			Claimed:   row.Claimed,
			Claimable: distribution.Remaining(row.Allocated, row.Claimed),
		}
	}
	return out, nil
}

func (t *pgTx) InsertSession(ctx context.Context, s *distribution.ClaimSession) error {
	if _, err := t.db.NewInsert().Model(toClaimSessionDao(s)).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSession
		}
		return fmt.Errorf("failed to create claim session: %w", err)
	}
	return nil
}

func (t *pgTx) LockSession(ctx context.Context, id string) (*distribution.ClaimSession, error) {
	dao := new(ClaimSessionDao)
	if err := t.db.NewSelect().Model(dao).Where("id = ?", id).For("UPDATE").Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock claim session %s: %w", id, err)
	}
	return toClaimSession(dao), nil
}

func (t *pgTx) FindOpenSession(ctx context.Context, wallet, destination string) (*distribution.ClaimSession, error) {
	dao := new(ClaimSessionDao)
	err := t.db.NewSelect().
		Model(dao).
		Where("wallet_address = ?", wallet).
		Where("destination = ?", destination).
		Where("status = ?", string(distribution.SessionStatusOpen)).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find open claim session: %w", err)
	}
	return toClaimSession(dao), nil
}

func (t *pgTx) UpdateSession(ctx context.Context, s *distribution.ClaimSession) error {
	_, err := t.db.NewUpdate().
		Model(toClaimSessionDao(s)).
		Column("status", "total_claimed_in_session", "closed_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update claim session %s: %w", s.ID, err)
	}
	return nil
}

func toPhases(daos []PhaseDao) []*distribution.Phase {
	out := make([]*distribution.Phase, len(daos))
	for i := range daos {
		out[i] = toPhase(&daos[i])
	}
	return out
}

func toContributions(daos []ContributionDao) []*distribution.Contribution {
	out := make([]*distribution.Contribution, len(daos))
	for i := range daos {
		out[i] = toContribution(&daos[i])
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation
}
