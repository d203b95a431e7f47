package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/phase-distributor/internal/metrics"
	apperrors "github.com/chainsafe/phase-distributor/pkg/app/errors"
	"github.com/chainsafe/phase-distributor/pkg/claim"
	"github.com/chainsafe/phase-distributor/pkg/distribution"
)

const serviceName = "ClaimService"

const signatureDisplaySize = 16

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the claim Service.
// It logs method entry/exit, duration, errors, and redacted request data.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) finish(method string, start time.Time, err error, fields ...zap.Field) {
	duration := time.Since(start)
	metrics.OperationDuration.WithLabelValues(method).Observe(duration.Seconds())

	fields = append(fields,
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.Duration("duration", duration),
	)
	if err != nil {
		fields = append(fields, zap.String("error_code", apperrors.CodeOf(err)), zap.Error(err))
		if apperrors.IsInternalError(err) {
			ls.logger.Error(method+" failed", fields...)
		} else {
			ls.logger.Warn(method+" rejected", fields...)
		}
		return
	}
	ls.logger.Info(method+" completed", fields...)
}

// OpenSession wraps the service method with logging
func (ls *logService) OpenSession(
	ctx context.Context,
	req *claim.OpenSessionRequest,
) (session *distribution.ClaimSession, err error) {
	start := time.Now()

	ls.logger.Debug("OpenSession started",
		zap.String("service", serviceName),
		zap.String("method", "OpenSession"),
		zap.String("wallet_address", req.WalletAddress),
		zap.String("destination", req.Destination),
	)

	defer func() {
		fields := []zap.Field{zap.String("wallet_address", req.WalletAddress)}
		if err == nil {
			fields = append(fields, zap.String("session_id", session.ID))
		}
		ls.finish("OpenSession", start, err, fields...)
	}()

	return ls.svc.OpenSession(ctx, req)
}

// RecordClaim wraps the service method with logging
func (ls *logService) RecordClaim(ctx context.Context, req *claim.RecordRequest) (res *claim.RecordResult, err error) {
	start := time.Now()

	ls.logger.Debug("RecordClaim started",
		zap.String("service", serviceName),
		zap.String("method", "RecordClaim"),
		zap.String("session_id", req.SessionID),
		zap.String("wallet_address", req.WalletAddress),
		zap.Int64("phase_id", req.PhaseID),
		zap.String("amount", req.Amount.String()),
		zap.String("tx_signature", redactSignature(req.TxSignature)),
	)

	defer func() {
		fields := []zap.Field{
			zap.String("session_id", req.SessionID),
			zap.Int64("phase_id", req.PhaseID),
			zap.String("amount", req.Amount.String()),
		}
		if err == nil {
			fields = append(fields,
				zap.Bool("session_closed", res.SessionClosed),
				zap.String("total_claimable_remaining", res.TotalClaimableRemaining.String()),
			)
		}
		ls.finish("RecordClaim", start, err, fields...)
	}()

	return ls.svc.RecordClaim(ctx, req)
}

// GetClaimable wraps the service method with logging
func (ls *logService) GetClaimable(ctx context.Context, wallet string) (res *claim.Claimable, err error) {
	start := time.Now()
	defer func() {
		fields := []zap.Field{zap.String("wallet_address", wallet)}
		if err == nil {
			fields = append(fields, zap.Int("phases", len(res.Phases)))
		}
		ls.finish("GetClaimable", start, err, fields...)
	}()

	return ls.svc.GetClaimable(ctx, wallet)
}

// redactSignature shows only the edges of a tx signature
func redactSignature(sig string) string {
	if sig == "" {
		return "<empty>"
	}
	sigLen := len(sig)
	if sigLen > signatureDisplaySize {
		return fmt.Sprintf("%s...%s (%d chars)", sig[:8], sig[sigLen-4:], sigLen)
	}
	return fmt.Sprintf("<%d chars>", sigLen)
}
