package ledgerstore

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/chainsafe/phase-distributor/pkg/distribution"
)

// PhaseDao is a data access object that maps directly to the 'phases' table in PostgreSQL.
type PhaseDao struct {
	bun.BaseModel   `bun:"table:phases,alias:p"`
	ID              int64               `bun:"id,pk,autoincrement"`
	PhaseNo         int64               `bun:"phase_no,unique,notnull"`
	Name            string              `bun:"name,notnull,type:varchar(255)"`
	PoolMEGY        decimal.Decimal     `bun:"pool_megy,notnull,type:numeric(38,18)"`
	RateUSDPerMEGY  decimal.Decimal     `bun:"rate_usd_per_megy,notnull,type:numeric(38,18)"`
	TargetUSD       decimal.NullDecimal `bun:"target_usd,type:numeric(38,18)"`
	Status          string              `bun:"status,notnull,type:varchar(16)"`
	OpenedAt        *time.Time          `bun:"opened_at"`
	ClosedAt        *time.Time          `bun:"closed_at"`
	SnapshotTakenAt *time.Time          `bun:"snapshot_taken_at"`
	FinalizedAt     *time.Time          `bun:"finalized_at"`
	CreatedAt       time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// ContributionDao is a data access object that maps directly to the 'contributions' table in PostgreSQL.
type ContributionDao struct {
	bun.BaseModel `bun:"table:contributions,alias:c"`
	ID            int64           `bun:"id,pk,autoincrement"`
	WalletAddress string          `bun:"wallet_address,notnull,type:varchar(64)"`
	USDValue      decimal.Decimal `bun:"usd_value,notnull,type:numeric(38,18)"`
	TokenContract string          `bun:"token_contract,notnull,type:varchar(128)"`
	Network       string          `bun:"network,notnull,type:varchar(32)"`
	Timestamp     time.Time       `bun:"timestamp,notnull"`
	PhaseID       *int64          `bun:"phase_id"`
	AllocStatus   string          `bun:"alloc_status,notnull,type:varchar(16)"`
	ParentID      *int64          `bun:"parent_id"`
	CreatedAt     time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// PhaseAllocationDao is a data access object that maps directly to the 'phase_allocations' table in PostgreSQL.
type PhaseAllocationDao struct {
	bun.BaseModel  `bun:"table:phase_allocations,alias:pa"`
	PhaseID        int64           `bun:"phase_id,pk"`
	ContributionID int64           `bun:"contribution_id,pk"`
	WalletAddress  string          `bun:"wallet_address,notnull,type:varchar(64)"`
	USDAllocated   decimal.Decimal `bun:"usd_allocated,notnull,type:numeric(38,18)"`
	MEGYAllocated  decimal.Decimal `bun:"megy_allocated,notnull,type:numeric(38,18)"`
}

// ClaimSnapshotDao is a data access object that maps directly to the 'claim_snapshots' table in PostgreSQL.
type ClaimSnapshotDao struct {
	bun.BaseModel   `bun:"table:claim_snapshots,alias:cs"`
	PhaseID         int64           `bun:"phase_id,pk"`
	WalletAddress   string          `bun:"wallet_address,pk,type:varchar(64)"`
	ContributionUSD decimal.Decimal `bun:"contribution_usd,notnull,type:numeric(38,18)"`
	MEGYAmount      decimal.Decimal `bun:"megy_amount,notnull,type:numeric(38,18)"`
	ShareRatio      decimal.Decimal `bun:"share_ratio,notnull,type:numeric(38,18)"`
	CreatedAt       time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// ClaimDao is a data access object that maps directly to the 'claims' table in PostgreSQL.
type ClaimDao struct {
	bun.BaseModel `bun:"table:claims,alias:cl"`
	ID            int64           `bun:"id,pk,autoincrement"`
	PhaseID       int64           `bun:"phase_id,notnull"`
	WalletAddress string          `bun:"wallet_address,notnull,type:varchar(64)"`
	ClaimAmount   decimal.Decimal `bun:"claim_amount,notnull,type:numeric(38,18)"`
	Destination   string          `bun:"destination,notnull,type:varchar(64)"`
	TxSignature   string          `bun:"tx_signature,unique,notnull,type:varchar(128)"`
	SessionID     string          `bun:"session_id,notnull,type:uuid"`
	Timestamp     time.Time       `bun:"timestamp,notnull"`
}

// ClaimSessionDao is a data access object that maps directly to the 'claim_sessions' table in PostgreSQL.
type ClaimSessionDao struct {
	bun.BaseModel         `bun:"table:claim_sessions,alias:ss"`
	ID                    string          `bun:"id,pk,type:uuid"`
	WalletAddress         string          `bun:"wallet_address,notnull,type:varchar(64)"`
	Destination           string          `bun:"destination,notnull,type:varchar(64)"`
	Status                string          `bun:"status,notnull,type:varchar(16)"`
	TotalClaimedInSession decimal.Decimal `bun:"total_claimed_in_session,notnull,type:numeric(38,18)"`
	CreatedAt             time.Time       `bun:"created_at,notnull"`
	ClosedAt              *time.Time      `bun:"closed_at"`
}

func toPhaseDao(p *distribution.Phase) *PhaseDao {
	return &PhaseDao{
		ID:              p.ID,
		PhaseNo:         p.PhaseNo,
		Name:            p.Name,
		PoolMEGY:        p.PoolMEGY,
		RateUSDPerMEGY:  p.RateUSDPerMEGY,
		TargetUSD:       p.TargetUSD,
		Status:          string(p.Status),
		OpenedAt:        p.OpenedAt,
		ClosedAt:        p.ClosedAt,
		SnapshotTakenAt: p.SnapshotTakenAt,
		FinalizedAt:     p.FinalizedAt,
		CreatedAt:       p.CreatedAt,
	}
}

func toPhase(dao *PhaseDao) *distribution.Phase {
	return &distribution.Phase{
		ID:              dao.ID,
		PhaseNo:         dao.PhaseNo,
		Name:            dao.Name,
		PoolMEGY:        dao.PoolMEGY,
		RateUSDPerMEGY:  dao.RateUSDPerMEGY,
		TargetUSD:       dao.TargetUSD,
		Status:          distribution.PhaseStatus(dao.Status),
		OpenedAt:        dao.OpenedAt,
		ClosedAt:        dao.ClosedAt,
		SnapshotTakenAt: dao.SnapshotTakenAt,
		FinalizedAt:     dao.FinalizedAt,
		CreatedAt:       dao.CreatedAt,
	}
}

func toContributionDao(c *distribution.Contribution) *ContributionDao {
	return &ContributionDao{
		ID:            c.ID,
		WalletAddress: c.WalletAddress,
		USDValue:      c.USDValue,
		TokenContract: c.TokenContract,
		Network:       c.Network,
		Timestamp:     c.Timestamp,
		PhaseID:       c.PhaseID,
		AllocStatus:   string(c.AllocStatus),
		ParentID:      c.ParentID,
		CreatedAt:     c.CreatedAt,
	}
}

func toContribution(dao *ContributionDao) *distribution.Contribution {
	return &distribution.Contribution{
		ID:            dao.ID,
		WalletAddress: dao.WalletAddress,
		USDValue:      dao.USDValue,
		TokenContract: dao.TokenContract,
		Network:       dao.Network,
		Timestamp:     dao.Timestamp,
		PhaseID:       dao.PhaseID,
		AllocStatus:   distribution.AllocStatus(dao.AllocStatus),
		ParentID:      dao.ParentID,
		CreatedAt:     dao.CreatedAt,
	}
}

func toPhaseAllocationDao(a *distribution.PhaseAllocation) *PhaseAllocationDao {
	return &PhaseAllocationDao{
		PhaseID:        a.PhaseID,
		ContributionID: a.ContributionID,
		WalletAddress:  a.WalletAddress,
		USDAllocated:   a.USDAllocated,
		MEGYAllocated:  a.MEGYAllocated,
	}
}

func toClaimSnapshotDao(s *distribution.ClaimSnapshot) *ClaimSnapshotDao {
	return &ClaimSnapshotDao{
		PhaseID:         s.PhaseID,
		WalletAddress:   s.WalletAddress,
		ContributionUSD: s.ContributionUSD,
		MEGYAmount:      s.MEGYAmount,
		ShareRatio:      s.ShareRatio,
		CreatedAt:       s.CreatedAt,
	}
}

func toClaimSnapshot(dao *ClaimSnapshotDao) *distribution.ClaimSnapshot {
	return &distribution.ClaimSnapshot{
		PhaseID:         dao.PhaseID,
		WalletAddress:   dao.WalletAddress,
		ContributionUSD: dao.ContributionUSD,
		MEGYAmount:      dao.MEGYAmount,
		ShareRatio:      dao.ShareRatio,
		CreatedAt:       dao.CreatedAt,
	}
}

func toClaimDao(c *distribution.Claim) *ClaimDao {
	return &ClaimDao{
		ID:            c.ID,
		PhaseID:       c.PhaseID,
		WalletAddress: c.WalletAddress,
		ClaimAmount:   c.ClaimAmount,
		Destination:   c.Destination,
		TxSignature:   c.TxSignature,
		SessionID:     c.SessionID,
		Timestamp:     c.Timestamp,
	}
}

func toClaimSessionDao(s *distribution.ClaimSession) *ClaimSessionDao {
	return &ClaimSessionDao{
		ID:                    s.ID,
		WalletAddress:         s.WalletAddress,
		Destination:           s.Destination,
		Status:                string(s.Status),
		TotalClaimedInSession: s.TotalClaimedInSession,
		CreatedAt:             s.CreatedAt,
		ClosedAt:              s.ClosedAt,
	}
}

func toClaimSession(dao *ClaimSessionDao) *distribution.ClaimSession {
	return &distribution.ClaimSession{
		ID:                    dao.ID,
		WalletAddress:         dao.WalletAddress,
		Destination:           dao.Destination,
		Status:                distribution.SessionStatus(dao.Status),
		TotalClaimedInSession: dao.TotalClaimedInSession,
		CreatedAt:             dao.CreatedAt,
		ClosedAt:              dao.ClosedAt,
	}
}
