package service

import (
	"context"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/phase-distributor/pkg/allocation"
	apperrors "github.com/chainsafe/phase-distributor/pkg/app/errors"
	"github.com/chainsafe/phase-distributor/pkg/config"
	"github.com/chainsafe/phase-distributor/pkg/distribution"
	"github.com/chainsafe/phase-distributor/pkg/ledgerstore"
	"github.com/chainsafe/phase-distributor/pkg/phase"
)

var (
	testStart      = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testTolerances = config.Tolerances{
		USD:   decimal.RequireFromString("0.01"),
		MEGY:  decimal.RequireFromString("0.0001"),
		Share: decimal.RequireFromString("0.0001"),
	}
)

type fixture struct {
	svc   Service
	clock *clockwork.FakeClock
	store *ledgerstore.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := ledgerstore.NewMemoryStore()
	clock := clockwork.NewFakeClockAt(testStart)
	svc := NewService(store, allocation.New(distribution.NetworkSolana), testTolerances, clock, zap.NewNop())
	return &fixture{svc: NewLog(svc, zap.NewNop()), clock: clock, store: store}
}

func newWallet() string {
	return solana.NewWallet().PublicKey().String()
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, apperrors.CodeOf(err), "unexpected error: %v", err)
}

func (f *fixture) createPhase(t *testing.T, name, target string) *distribution.Phase {
	t.Helper()
	req := &phase.CreateRequest{
		Name:           name,
		PoolMEGY:       decimal.NewFromInt(1000),
		RateUSDPerMEGY: decimal.RequireFromString("0.5"),
	}
	if target != "" {
		req.TargetUSD = decimal.NewNullDecimal(decimal.RequireFromString(target))
	}
	p, err := f.svc.CreatePhase(context.Background(), req)
	require.NoError(t, err)
	return p
}

func (f *fixture) contribute(t *testing.T, wallet, usd string, minute int) *distribution.Contribution {
	t.Helper()
	c, err := f.svc.RecordContribution(context.Background(), &phase.ContributionRequest{
		WalletAddress: wallet,
		USDValue:      decimal.RequireFromString(usd),
		TokenContract: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Timestamp:     testStart.Add(time.Duration(minute) * time.Minute),
	})
	require.NoError(t, err)
	return c
}

func phaseOrder(l *phase.Listing) []int64 {
	ids := make([]int64, 0, len(l.Phases))
	for _, v := range l.Phases {
		ids = append(ids, v.ID)
	}
	return ids
}

func TestPhaseService_CreatePhase_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *phase.CreateRequest
	}{
		{"missing name", &phase.CreateRequest{PoolMEGY: decimal.NewFromInt(1), RateUSDPerMEGY: decimal.NewFromInt(1)}},
		{"zero pool", &phase.CreateRequest{Name: "p", RateUSDPerMEGY: decimal.NewFromInt(1)}},
		{"zero rate", &phase.CreateRequest{Name: "p", PoolMEGY: decimal.NewFromInt(1)}},
		{"negative target", &phase.CreateRequest{
			Name:           "p",
			PoolMEGY:       decimal.NewFromInt(1),
			RateUSDPerMEGY: decimal.NewFromInt(1),
			TargetUSD:      decimal.NewNullDecimal(decimal.NewFromInt(-5)),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreatePhase(ctx, tc.req)
			requireCode(t, err, distribution.CodeInvalidPhaseParams)
			require.True(t, apperrors.Is(err, apperrors.CategoryDataError))
		})
	}

	p1 := f.createPhase(t, "seed", "1000")
	p2 := f.createPhase(t, "public", "")
	require.Equal(t, distribution.PhaseStatusPlanned, p1.Status)
	require.Equal(t, p1.PhaseNo+1, p2.PhaseNo)
	require.False(t, p2.TargetUSD.Valid)
}

func TestPhaseService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.createPhase(t, "one", "1000")
	p2 := f.createPhase(t, "two", "1000")
	p3 := f.createPhase(t, "three", "1000")

	opened, err := f.svc.OpenPhase(ctx, p1.ID)
	require.NoError(t, err)
	require.Equal(t, distribution.PhaseStatusActive, opened.Status)
	require.NotNil(t, opened.OpenedAt)
	firstOpen := *opened.OpenedAt

	// opening the active phase again changes nothing
	f.clock.Advance(time.Minute)
	again, err := f.svc.OpenPhase(ctx, p1.ID)
	require.NoError(t, err)
	require.True(t, firstOpen.Equal(*again.OpenedAt))

	// opening p2 completes p1
	_, err = f.svc.OpenPhase(ctx, p2.ID)
	require.NoError(t, err)
	listing, err := f.svc.ListPhasesWithVirtualAllocation(ctx)
	require.NoError(t, err)
	require.Equal(t, distribution.PhaseStatusCompleted, listing.Find(p1.ID).Status)
	require.NotNil(t, listing.Find(p1.ID).ClosedAt)
	require.Equal(t, distribution.PhaseStatusActive, listing.Find(p2.ID).Status)

	_, err = f.svc.OpenPhase(ctx, p1.ID)
	requireCode(t, err, distribution.CodePhaseNotOpenable)
	require.True(t, apperrors.Is(err, apperrors.CategoryDataConflict))

	res, err := f.svc.AdvancePhase(ctx)
	require.NoError(t, err)
	require.Len(t, res.Completed, 1)
	require.Equal(t, p2.ID, res.Completed[0].ID)
	require.NotNil(t, res.Opened)
	require.Equal(t, p3.ID, res.Opened.ID)

	res, err = f.svc.AdvancePhase(ctx)
	require.NoError(t, err)
	require.Len(t, res.Completed, 1)
	require.Nil(t, res.Opened)

	closed, err := f.svc.ClosePhase(ctx, p3.ID)
	require.NoError(t, err)
	require.Equal(t, distribution.PhaseStatusCompleted, closed.Status)

	active := 0
	listing, err = f.svc.ListPhasesWithVirtualAllocation(ctx)
	require.NoError(t, err)
	for _, v := range listing.Phases {
		if v.Status == distribution.PhaseStatusActive {
			active++
		}
	}
	require.Zero(t, active)
}

func TestPhaseService_BadAndMissingPhase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.OpenPhase(ctx, 0)
	requireCode(t, err, distribution.CodeBadPhaseID)

	_, err = f.svc.FinalizePhase(ctx, -3)
	requireCode(t, err, distribution.CodeBadPhaseID)

	_, err = f.svc.SnapshotPhase(ctx, 42)
	requireCode(t, err, distribution.CodePhaseNotFound)
	require.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound))

	_, err = f.svc.ClosePhase(ctx, 42)
	requireCode(t, err, distribution.CodePhaseNotFound)
}

func TestPhaseService_MovePhase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.createPhase(t, "one", "1000")
	p2 := f.createPhase(t, "two", "500")
	p3 := f.createPhase(t, "three", "100")
	wallet := newWallet()
	f.contribute(t, wallet, "1200", 1)

	listing, err := f.svc.MovePhase(ctx, p2.ID, ledgerstore.DirectionUp)
	require.NoError(t, err)
	require.Equal(t, []int64{p2.ID, p1.ID, p3.ID}, phaseOrder(listing))

	// reordering changes the virtual allocation: p2 now fills first
	require.True(t, listing.Find(p2.ID).UsedUSD.Equal(decimal.NewFromInt(500)))
	require.True(t, listing.Find(p1.ID).UsedUSD.Equal(decimal.NewFromInt(700)))
	require.True(t, listing.Find(p3.ID).UsedUSD.IsZero())

	_, err = f.svc.MovePhase(ctx, p2.ID, ledgerstore.DirectionUp)
	requireCode(t, err, distribution.CodeNoNeighbor)

	_, err = f.svc.MovePhase(ctx, p3.ID, ledgerstore.DirectionDown)
	requireCode(t, err, distribution.CodeNoNeighbor)

	_, err = f.svc.MovePhase(ctx, p3.ID, ledgerstore.Direction("sideways"))
	requireCode(t, err, distribution.CodePhaseNotMovable)

	_, err = f.svc.OpenPhase(ctx, p1.ID)
	require.NoError(t, err)

	_, err = f.svc.MovePhase(ctx, p1.ID, ledgerstore.DirectionDown)
	requireCode(t, err, distribution.CodePhaseNotMovable)

	// a planned phase cannot jump over an active one
	_, err = f.svc.MovePhase(ctx, p3.ID, ledgerstore.DirectionUp)
	requireCode(t, err, distribution.CodePhaseNotMovable)

	listing, err = f.svc.ListPhasesWithVirtualAllocation(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{p2.ID, p1.ID, p3.ID}, phaseOrder(listing))
}

func TestPhaseService_ListPhasesWithVirtualAllocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.createPhase(t, "one", "1000")
	p2 := f.createPhase(t, "two", "1000")
	p3 := f.createPhase(t, "untargeted", "")
	alice, bob := newWallet(), newWallet()
	f.contribute(t, alice, "600", 1)
	f.contribute(t, bob, "700", 2)

	listing, err := f.svc.ListPhasesWithVirtualAllocation(ctx)
	require.NoError(t, err)

	v1, v2, v3 := listing.Find(p1.ID), listing.Find(p2.ID), listing.Find(p3.ID)
	require.True(t, v1.UsedUSD.Equal(decimal.NewFromInt(1000)))
	require.True(t, v1.FillPct.Equal(decimal.NewFromInt(1)))
	require.Equal(t, 2, v1.Contributors)
	require.True(t, v2.UsedUSD.Equal(decimal.NewFromInt(300)))
	require.True(t, v2.FillPct.Equal(decimal.RequireFromString("0.3")))
	require.Equal(t, 1, v2.Contributors)
	require.Nil(t, v3.TargetUSD)
	require.True(t, v3.UsedUSD.IsZero())
	require.True(t, listing.TotalUSD.Equal(decimal.NewFromInt(1300)))
	require.True(t, listing.UnallocatedUSD.IsZero())
}

func TestPhaseService_SnapshotAndFinalize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.createPhase(t, "one", "500")
	alice, bob := newWallet(), newWallet()
	f.contribute(t, alice, "300", 1)
	f.contribute(t, bob, "200", 2)

	_, err := f.svc.SnapshotPhase(ctx, p1.ID)
	requireCode(t, err, distribution.CodePhaseNotCompleted)

	_, err = f.svc.OpenPhase(ctx, p1.ID)
	require.NoError(t, err)

	_, err = f.svc.FinalizePhase(ctx, p1.ID)
	requireCode(t, err, distribution.CodePhaseNotSnapshotted)

	assigned, err := f.svc.AssignContributions(ctx, p1.ID, nil)
	require.NoError(t, err)
	require.Len(t, assigned.Assigned, 2)

	// snapshot closes the active phase first
	snap, err := f.svc.SnapshotPhase(ctx, p1.ID)
	require.NoError(t, err)
	require.Equal(t, distribution.PhaseStatusCompleted, snap.Phase.Status)
	require.NotNil(t, snap.Phase.SnapshotTakenAt)
	require.True(t, snap.AllocationTotals.USD.Equal(decimal.NewFromInt(500)))
	require.True(t, snap.SnapshotTotals.USD.Equal(decimal.NewFromInt(500)))
	require.Equal(t, 2, snap.SnapshotTotals.Wallets)
	require.Empty(t, snap.Straddling)

	f.clock.Advance(time.Hour)
	fin, err := f.svc.FinalizePhase(ctx, p1.ID)
	require.NoError(t, err)
	require.False(t, fin.AlreadyFinalized)
	require.Equal(t, distribution.PhaseStatusFinalized, fin.Phase.Status)
	finalizedAt := *fin.Phase.FinalizedAt
	require.True(t, finalizedAt.Equal(testStart.Add(time.Hour)))
	require.True(t, fin.SnapshotTotals.MEGY.Sub(decimal.NewFromInt(1000)).Abs().LessThanOrEqual(testTolerances.MEGY))

	f.clock.Advance(time.Hour)
	again, err := f.svc.FinalizePhase(ctx, p1.ID)
	require.NoError(t, err)
	require.True(t, again.AlreadyFinalized)
	require.True(t, finalizedAt.Equal(*again.Phase.FinalizedAt))

	_, err = f.svc.SnapshotPhase(ctx, p1.ID)
	requireCode(t, err, distribution.CodePhaseAlreadyFinalized)

	_, err = f.svc.AssignContributions(ctx, p1.ID, nil)
	requireCode(t, err, distribution.CodePhaseAlreadyFinalized)
}

func TestPhaseService_FinalizeBlockedOnMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.createPhase(t, "one", "500")
	p2 := f.createPhase(t, "two", "1000")
	a := f.contribute(t, newWallet(), "300", 1)
	b := f.contribute(t, newWallet(), "199.90", 2)
	c := f.contribute(t, newWallet(), "0.10", 3)

	_, err := f.svc.AssignContributions(ctx, p1.ID, []int64{a.ID, b.ID})
	require.NoError(t, err)
	_, err = f.svc.AssignContributions(ctx, p2.ID, []int64{c.ID})
	require.NoError(t, err)

	_, err = f.svc.ClosePhase(ctx, p1.ID)
	require.NoError(t, err)
	snap, err := f.svc.SnapshotPhase(ctx, p1.ID)
	require.NoError(t, err)
	require.True(t, snap.AllocationTotals.USD.Equal(decimal.NewFromInt(500)))
	require.True(t, snap.SnapshotTotals.USD.Equal(decimal.RequireFromString("499.90")))

	_, err = f.svc.FinalizePhase(ctx, p1.ID)
	requireCode(t, err, distribution.CodeFinalizeBlockedMismatch)
	var svcErr *apperrors.ServiceError
	require.ErrorAs(t, err, &svcErr)
	require.Contains(t, svcErr.Details, "allocation_totals")
	require.Contains(t, svcErr.Details, "snapshot_totals")
	require.NotEmpty(t, svcErr.Details["mismatches"])

	listing, err := f.svc.ListPhasesWithVirtualAllocation(ctx)
	require.NoError(t, err)
	require.Nil(t, listing.Find(p1.ID).FinalizedAt)

	// moving the stray contribution to p1 and snapshotting again reconciles
	_, err = f.svc.AssignContributions(ctx, p1.ID, []int64{c.ID})
	require.NoError(t, err)
	_, err = f.svc.SnapshotPhase(ctx, p1.ID)
	require.NoError(t, err)
	fin, err := f.svc.FinalizePhase(ctx, p1.ID)
	require.NoError(t, err)
	require.Equal(t, 3, fin.SnapshotTotals.Wallets)

	// contributions of a snapshotted phase are frozen
	_, err = f.svc.InvalidateContribution(ctx, a.ID)
	requireCode(t, err, distribution.CodeContributionLocked)
	_, err = f.svc.AssignContributions(ctx, p2.ID, []int64{a.ID})
	requireCode(t, err, distribution.CodeContributionLocked)
}

func TestPhaseService_FinalizeWithoutSnapshotRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.createPhase(t, "empty", "500")
	_, err := f.svc.ClosePhase(ctx, p1.ID)
	require.NoError(t, err)
	_, err = f.svc.SnapshotPhase(ctx, p1.ID)
	require.NoError(t, err)

	_, err = f.svc.FinalizePhase(ctx, p1.ID)
	requireCode(t, err, distribution.CodeNoClaimSnapshots)
}

func TestPhaseService_StraddleResolvedBySplit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.createPhase(t, "one", "1000")
	p2 := f.createPhase(t, "two", "1000")
	alice, bob := newWallet(), newWallet()
	a := f.contribute(t, alice, "600", 1)
	b := f.contribute(t, bob, "700", 2)

	assigned, err := f.svc.AssignContributions(ctx, p1.ID, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{a.ID}, assigned.Assigned)

	_, err = f.svc.ClosePhase(ctx, p1.ID)
	require.NoError(t, err)
	snap, err := f.svc.SnapshotPhase(ctx, p1.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{b.ID}, snap.Straddling)

	_, err = f.svc.FinalizePhase(ctx, p1.ID)
	requireCode(t, err, distribution.CodeFinalizeBlockedMismatch)

	split, err := f.svc.SplitContribution(ctx, b.ID, decimal.Zero)
	require.NoError(t, err)
	require.True(t, split.Original.USDValue.Equal(decimal.NewFromInt(400)))
	require.True(t, split.Remainder.USDValue.Equal(decimal.NewFromInt(300)))
	require.NotNil(t, split.Remainder.ParentID)
	require.Equal(t, b.ID, *split.Remainder.ParentID)

	// the split moves no USD between phases
	listing, err := f.svc.ListPhasesWithVirtualAllocation(ctx)
	require.NoError(t, err)
	require.True(t, listing.Find(p1.ID).UsedUSD.Equal(decimal.NewFromInt(1000)))
	require.True(t, listing.Find(p2.ID).UsedUSD.Equal(decimal.NewFromInt(300)))

	assigned, err = f.svc.AssignContributions(ctx, p1.ID, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{b.ID}, assigned.Assigned)

	snap, err = f.svc.SnapshotPhase(ctx, p1.ID)
	require.NoError(t, err)
	require.Empty(t, snap.Straddling)
	_, err = f.svc.FinalizePhase(ctx, p1.ID)
	require.NoError(t, err)

	assigned, err = f.svc.AssignContributions(ctx, p2.ID, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{split.Remainder.ID}, assigned.Assigned)
}

func TestPhaseService_SplitContribution_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createPhase(t, "one", "1000")
	wallet := newWallet()
	c := f.contribute(t, wallet, "500", 1)

	_, err := f.svc.SplitContribution(ctx, 999, decimal.NewFromInt(1))
	requireCode(t, err, distribution.CodeContributionNotFound)

	_, err = f.svc.SplitContribution(ctx, c.ID, decimal.NewFromInt(-1))
	requireCode(t, err, distribution.CodeInvalidAmount)

	_, err = f.svc.SplitContribution(ctx, c.ID, decimal.NewFromInt(500))
	requireCode(t, err, distribution.CodeContributionNotSplittable)

	// fully inside one phase, so there is no boundary to split at
	_, err = f.svc.SplitContribution(ctx, c.ID, decimal.Zero)
	requireCode(t, err, distribution.CodeContributionNotSplittable)

	split, err := f.svc.SplitContribution(ctx, c.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = f.svc.SplitContribution(ctx, c.ID, decimal.NewFromInt(50))
	requireCode(t, err, distribution.CodeContributionNotSplittable)

	_, err = f.svc.SplitContribution(ctx, split.Remainder.ID, decimal.NewFromInt(50))
	require.NoError(t, err)
}

func TestPhaseService_RecordAndInvalidateContribution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := f.createPhase(t, "one", "1000")

	_, err := f.svc.RecordContribution(ctx, &phase.ContributionRequest{
		WalletAddress: "not-a-solana-address",
		USDValue:      decimal.NewFromInt(10),
	})
	requireCode(t, err, distribution.CodeInvalidAddress)

	_, err = f.svc.RecordContribution(ctx, &phase.ContributionRequest{
		WalletAddress: newWallet(),
		USDValue:      decimal.NewFromInt(-10),
	})
	requireCode(t, err, distribution.CodeInvalidAmount)

	// other networks are recorded but never allocated
	other, err := f.svc.RecordContribution(ctx, &phase.ContributionRequest{
		WalletAddress: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		USDValue:      decimal.NewFromInt(250),
		Network:       "ethereum",
	})
	require.NoError(t, err)
	require.Equal(t, distribution.AllocStatusPending, other.AllocStatus)
	require.True(t, other.Timestamp.Equal(testStart))

	c := f.contribute(t, newWallet(), "400", 1)
	listing, err := f.svc.ListPhasesWithVirtualAllocation(ctx)
	require.NoError(t, err)
	require.True(t, listing.Find(p1.ID).UsedUSD.Equal(decimal.NewFromInt(400)))

	invalid, err := f.svc.InvalidateContribution(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, distribution.AllocStatusInvalid, invalid.AllocStatus)

	listing, err = f.svc.ListPhasesWithVirtualAllocation(ctx)
	require.NoError(t, err)
	require.True(t, listing.Find(p1.ID).UsedUSD.IsZero())

	_, err = f.svc.AssignContributions(ctx, p1.ID, []int64{c.ID})
	requireCode(t, err, distribution.CodeContributionLocked)

	_, err = f.svc.InvalidateContribution(ctx, 12345)
	requireCode(t, err, distribution.CodeContributionNotFound)
}
