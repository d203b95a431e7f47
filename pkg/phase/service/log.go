package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/phase-distributor/internal/metrics"
	apperrors "github.com/chainsafe/phase-distributor/pkg/app/errors"
	"github.com/chainsafe/phase-distributor/pkg/distribution"
	"github.com/chainsafe/phase-distributor/pkg/ledgerstore"
	"github.com/chainsafe/phase-distributor/pkg/phase"
)

const serviceName = "PhaseService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the phase Service.
// It logs method entry and exit with duration, and records the duration metric.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// begin logs the method entry and returns the function that logs its outcome.
// Rejections carrying a client error code are logged at warn level, everything else at error.
func (ls *logService) begin(method string, fields ...zap.Field) func(err error, result ...zap.Field) {
	start := time.Now()
	base := append([]zap.Field{
		zap.String("service", serviceName),
		zap.String("method", method),
	}, fields...)

	ls.logger.Debug(method+" started", base...)

	return func(err error, result ...zap.Field) {
		duration := time.Since(start)
		metrics.OperationDuration.WithLabelValues(method).Observe(duration.Seconds())

		out := append(append([]zap.Field{}, base...), zap.Duration("duration", duration))
		if err != nil {
			out = append(out, zap.String("error_code", apperrors.CodeOf(err)), zap.Error(err))
			if apperrors.IsInternalError(err) {
				ls.logger.Error(method+" failed", out...)
			} else {
				ls.logger.Warn(method+" rejected", out...)
			}
			return
		}
		ls.logger.Info(method+" completed", append(out, result...)...)
	}
}

// CreatePhase wraps the service method with logging
func (ls *logService) CreatePhase(ctx context.Context, req *phase.CreateRequest) (p *distribution.Phase, err error) {
	done := ls.begin("CreatePhase", zap.String("name", req.Name))
	defer func() {
		if err != nil {
			done(err)
			return
		}
		done(nil, zap.Int64("phase_id", p.ID), zap.Int64("phase_no", p.PhaseNo))
	}()
	return ls.svc.CreatePhase(ctx, req)
}

// OpenPhase wraps the service method with logging
func (ls *logService) OpenPhase(ctx context.Context, id int64) (p *distribution.Phase, err error) {
	done := ls.begin("OpenPhase", zap.Int64("phase_id", id))
	defer func() { done(err) }()
	return ls.svc.OpenPhase(ctx, id)
}

// ClosePhase wraps the service method with logging
func (ls *logService) ClosePhase(ctx context.Context, id int64) (p *distribution.Phase, err error) {
	done := ls.begin("ClosePhase", zap.Int64("phase_id", id))
	defer func() { done(err) }()
	return ls.svc.ClosePhase(ctx, id)
}

// MovePhase wraps the service method with logging
func (ls *logService) MovePhase(ctx context.Context, id int64, dir ledgerstore.Direction) (l *phase.Listing, err error) {
	done := ls.begin("MovePhase", zap.Int64("phase_id", id), zap.String("direction", string(dir)))
	defer func() { done(err) }()
	return ls.svc.MovePhase(ctx, id, dir)
}

// AdvancePhase wraps the service method with logging
func (ls *logService) AdvancePhase(ctx context.Context) (res *phase.AdvanceResult, err error) {
	done := ls.begin("AdvancePhase")
	defer func() {
		if err != nil {
			done(err)
			return
		}
		fields := []zap.Field{zap.Int("completed", len(res.Completed))}
		if res.Opened != nil {
			fields = append(fields, zap.Int64("opened_phase_id", res.Opened.ID))
		}
		done(nil, fields...)
	}()
	return ls.svc.AdvancePhase(ctx)
}

// ListPhasesWithVirtualAllocation wraps the service method with logging
func (ls *logService) ListPhasesWithVirtualAllocation(ctx context.Context) (l *phase.Listing, err error) {
	done := ls.begin("ListPhasesWithVirtualAllocation")
	defer func() { done(err) }()
	return ls.svc.ListPhasesWithVirtualAllocation(ctx)
}

// SnapshotPhase wraps the service method with logging
func (ls *logService) SnapshotPhase(ctx context.Context, id int64) (res *phase.SnapshotResult, err error) {
	done := ls.begin("SnapshotPhase", zap.Int64("phase_id", id))
	defer func() {
		if err != nil {
			done(err)
			return
		}
		done(nil,
			zap.String("allocation_usd", res.AllocationTotals.USD.String()),
			zap.String("snapshot_usd", res.SnapshotTotals.USD.String()),
			zap.Int("wallets", res.SnapshotTotals.Wallets),
			zap.Int("straddling", len(res.Straddling)),
		)
	}()
	return ls.svc.SnapshotPhase(ctx, id)
}

// FinalizePhase wraps the service method with logging
func (ls *logService) FinalizePhase(ctx context.Context, id int64) (res *phase.FinalizeResult, err error) {
	done := ls.begin("FinalizePhase", zap.Int64("phase_id", id))
	defer func() {
		if err != nil {
			done(err)
			return
		}
		done(nil, zap.Bool("already_finalized", res.AlreadyFinalized))
	}()
	return ls.svc.FinalizePhase(ctx, id)
}

// RecordContribution wraps the service method with logging
func (ls *logService) RecordContribution(
	ctx context.Context,
	req *phase.ContributionRequest,
) (c *distribution.Contribution, err error) {
	done := ls.begin("RecordContribution",
		zap.String("wallet_address", req.WalletAddress),
		zap.String("usd_value", req.USDValue.String()),
		zap.String("network", req.Network),
	)
	defer func() {
		if err != nil {
			done(err)
			return
		}
		done(nil, zap.Int64("contribution_id", c.ID))
	}()
	return ls.svc.RecordContribution(ctx, req)
}

// AssignContributions wraps the service method with logging
func (ls *logService) AssignContributions(
	ctx context.Context,
	phaseID int64,
	contributionIDs []int64,
) (res *phase.AssignResult, err error) {
	done := ls.begin("AssignContributions", zap.Int64("phase_id", phaseID), zap.Int("requested", len(contributionIDs)))
	defer func() {
		if err != nil {
			done(err)
			return
		}
		done(nil, zap.Int("assigned", len(res.Assigned)))
	}()
	return ls.svc.AssignContributions(ctx, phaseID, contributionIDs)
}

// InvalidateContribution wraps the service method with logging
func (ls *logService) InvalidateContribution(ctx context.Context, id int64) (c *distribution.Contribution, err error) {
	done := ls.begin("InvalidateContribution", zap.Int64("contribution_id", id))
	defer func() { done(err) }()
	return ls.svc.InvalidateContribution(ctx, id)
}

// SplitContribution wraps the service method with logging
func (ls *logService) SplitContribution(
	ctx context.Context,
	id int64,
	usdAmount decimal.Decimal,
) (res *phase.SplitResult, err error) {
	done := ls.begin("SplitContribution", zap.Int64("contribution_id", id), zap.String("usd_amount", usdAmount.String()))
	defer func() {
		if err != nil {
			done(err)
			return
		}
		done(nil, zap.Int64("remainder_id", res.Remainder.ID))
	}()
	return ls.svc.SplitContribution(ctx, id, usdAmount)
}
