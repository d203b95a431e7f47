package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/phase-distributor/internal/metrics"
	apperrors "github.com/chainsafe/phase-distributor/pkg/app/errors"
	"github.com/chainsafe/phase-distributor/pkg/claim"
	"github.com/chainsafe/phase-distributor/pkg/distribution"
	"github.com/chainsafe/phase-distributor/pkg/ledgerstore"
)

var (
	ErrSessionNotFound        = errors.New("claim session not found")
	ErrSessionMismatch        = errors.New("claim session belongs to another wallet or destination")
	ErrSessionNotOpen         = errors.New("claim session is closed")
	ErrAmountExceedsClaimable = errors.New("amount exceeds phase claimable")
	ErrPhaseNotFinalized      = errors.New("phase is not finalized")
)

// Service defines the claim ledger operations
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	OpenSession(ctx context.Context, req *claim.OpenSessionRequest) (*distribution.ClaimSession, error)
	RecordClaim(ctx context.Context, req *claim.RecordRequest) (*claim.RecordResult, error)
	GetClaimable(ctx context.Context, wallet string) (*claim.Claimable, error)
}

type claimService struct {
	store  ledgerstore.Store
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewService creates a new claim service
func NewService(store ledgerstore.Store, clock clockwork.Clock, logger *zap.Logger) Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &claimService{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

func (s *claimService) now() time.Time {
	return s.clock.Now().UTC()
}

func validateAddress(field, addr string) error {
	if err := distribution.ValidateAddress(addr); err != nil {
		return apperrors.BadRequestError(distribution.CodeInvalidAddress, err, "invalid "+field)
	}
	return nil
}

// sessionLockName guards session creation for one wallet and destination pair.
func sessionLockName(wallet, destination string) string {
	return "claim-session:" + wallet + ":" + destination
}

// OpenSession returns the open session of the wallet and destination pair, creating it when none exists.
func (s *claimService) OpenSession(
	ctx context.Context,
	req *claim.OpenSessionRequest,
) (*distribution.ClaimSession, error) {
	if err := validateAddress("wallet_address", req.WalletAddress); err != nil {
		return nil, err
	}
	if err := validateAddress("destination", req.Destination); err != nil {
		return nil, err
	}

	var session *distribution.ClaimSession
	err := s.store.WithLock(ctx, sessionLockName(req.WalletAddress, req.Destination), func(ctx context.Context) error {
		return s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
			existing, err := tx.FindOpenSession(ctx, req.WalletAddress, req.Destination)
			if err == nil {
				session = existing
				return nil
			}
			if !errors.Is(err, ledgerstore.ErrNotFound) {
				return fmt.Errorf("failed to look up open session: %w", err)
			}

			session = &distribution.ClaimSession{
				ID:                    uuid.NewString(),
				WalletAddress:         req.WalletAddress,
				Destination:           req.Destination,
				Status:                distribution.SessionStatusOpen,
				TotalClaimedInSession: decimal.Zero,
				CreatedAt:             s.now(),
			}
			if err := tx.InsertSession(ctx, session); err != nil {
				return fmt.Errorf("failed to create claim session: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *claimService) validateRecord(req *claim.RecordRequest) error {
	if _, err := uuid.Parse(req.SessionID); err != nil {
		return apperrors.ResourceNotFoundError(distribution.CodeSessionNotFound, ErrSessionNotFound,
			fmt.Sprintf("claim session %q not found", req.SessionID))
	}
	if err := validateAddress("wallet_address", req.WalletAddress); err != nil {
		return err
	}
	if err := validateAddress("destination", req.Destination); err != nil {
		return err
	}
	if err := distribution.ValidateTxSignature(req.TxSignature); err != nil {
		return apperrors.BadRequestError(distribution.CodeInvalidTxSignature, err, "invalid tx_signature")
	}
	if req.PhaseID <= 0 {
		return apperrors.BadRequestError(distribution.CodeBadPhaseID, nil, fmt.Sprintf("invalid phase id %d", req.PhaseID))
	}
	if !req.Amount.IsPositive() {
		return apperrors.BadRequestError(distribution.CodeInvalidAmount, nil, "amount must be positive")
	}
	if !distribution.FitsAmountScale(req.Amount) {
		return apperrors.BadRequestError(distribution.CodeInvalidAmount, nil,
			fmt.Sprintf("amount has more than %d decimal places", distribution.AmountScale))
	}
	return nil
}

// RecordClaim authorizes and records one settlement.
//
// Within a single transaction it:
//  1. Locks the session and checks its wallet, destination and status
//  2. Rejects a tx signature already present anywhere in the ledger
//  3. Locks the wallet's snapshot row of the phase and checks the amount against
//     snapshot megy minus prior claims
//  4. Inserts the claim and adds the amount to the session total
//  5. Closes the session once the wallet has nothing left to claim over all finalized phases
func (s *claimService) RecordClaim(ctx context.Context, req *claim.RecordRequest) (*claim.RecordResult, error) {
	if err := s.validateRecord(req); err != nil {
		metrics.ClaimsTotal.WithLabelValues(apperrors.CodeOf(err)).Inc()
		return nil, err
	}

	var result *claim.RecordResult
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
		session, err := tx.LockSession(ctx, req.SessionID)
		if errors.Is(err, ledgerstore.ErrNotFound) {
			return apperrors.ResourceNotFoundError(distribution.CodeSessionNotFound, ErrSessionNotFound,
				fmt.Sprintf("claim session %s not found", req.SessionID))
		}
		if err != nil {
			return fmt.Errorf("failed to lock claim session: %w", err)
		}
		if session.WalletAddress != req.WalletAddress {
			return apperrors.ForbiddenError(distribution.CodeSessionWalletMismatch, ErrSessionMismatch,
				"claim session belongs to another wallet")
		}
		if session.Destination != req.Destination {
			return apperrors.ForbiddenError(distribution.CodeSessionDestinationMismatch, ErrSessionMismatch,
				"claim session pays out to another destination")
		}
		if session.Status != distribution.SessionStatusOpen {
			return apperrors.ConflictError(distribution.CodeSessionNotOpen, ErrSessionNotOpen,
				fmt.Sprintf("claim session %s is %s", session.ID, session.Status))
		}

		used, err := tx.TxSignatureExists(ctx, req.TxSignature)
		if err != nil {
			return fmt.Errorf("failed to check tx signature: %w", err)
		}
		if used {
			return txSignatureUsed(req.TxSignature)
		}

		p, err := tx.GetPhase(ctx, req.PhaseID)
		if errors.Is(err, ledgerstore.ErrNotFound) {
			return apperrors.ResourceNotFoundError(distribution.CodePhaseNotFound, err,
				fmt.Sprintf("phase %d not found", req.PhaseID))
		}
		if err != nil {
			return fmt.Errorf("failed to load phase %d: %w", req.PhaseID, err)
		}
		if !p.IsFinalized() {
			return apperrors.ConflictError(distribution.CodePhaseNotFinalized, ErrPhaseNotFinalized,
				fmt.Sprintf("phase %d is not finalized", p.ID))
		}

		claimable, err := s.phaseClaimable(ctx, tx, p.ID, req.WalletAddress)
		if err != nil {
			return err
		}
		if req.Amount.GreaterThan(claimable) {
			return apperrors.ConflictError(distribution.CodeAmountExceedsClaimable, ErrAmountExceedsClaimable,
				fmt.Sprintf("amount %s exceeds claimable %s in phase %d", req.Amount, claimable, p.ID)).
				WithDetails(map[string]any{
					"phase_id":  p.ID,
					"requested": req.Amount,
					"claimable": claimable,
				})
		}

		c := &distribution.Claim{
			PhaseID:       p.ID,
			WalletAddress: req.WalletAddress,
			ClaimAmount:   req.Amount,
			Destination:   req.Destination,
			TxSignature:   req.TxSignature,
			SessionID:     session.ID,
			Timestamp:     s.now(),
		}
		if err := tx.InsertClaim(ctx, c); err != nil {
			if errors.Is(err, ledgerstore.ErrTxSignatureUsed) {
				return txSignatureUsed(req.TxSignature)
			}
			return &apperrors.ServiceError{
				Category: apperrors.CategoryGeneralError,
				Code:     distribution.CodeClaimInsertFailed,
				Message:  "failed to record claim",
				Err:      err,
			}
		}

		session.TotalClaimedInSession = session.TotalClaimedInSession.Add(req.Amount)

		positions, err := tx.ClaimPositions(ctx, req.WalletAddress)
		if err != nil {
			return fmt.Errorf("failed to compute claim positions: %w", err)
		}
		remaining := ledgerstore.TotalClaimable(positions)
		if !remaining.IsPositive() {
			now := s.now()
			session.Status = distribution.SessionStatusClosed
			session.ClosedAt = &now
		}
		if err := tx.UpdateSession(ctx, session); err != nil {
			return fmt.Errorf("failed to update claim session: %w", err)
		}

		result = &claim.RecordResult{
			SessionClosed:           session.Status == distribution.SessionStatusClosed,
			TotalClaimableRemaining: remaining,
			Claim:                   claim.NewView(c),
		}
		return nil
	})
	if err != nil {
		metrics.ClaimsTotal.WithLabelValues(apperrors.CodeOf(err)).Inc()
		return nil, err
	}

	metrics.ClaimsTotal.WithLabelValues("accepted").Inc()
	amount, _ := req.Amount.Float64()
	metrics.ClaimedMEGY.Add(amount)
	metrics.ClaimAmount.Observe(amount)
	if result.SessionClosed {
		metrics.SessionsClosedTotal.Inc()
	}
	return result, nil
}

// phaseClaimable locks the wallet's snapshot row and returns snapshot megy minus prior claims.
// A wallet without a snapshot row has nothing to claim.
func (s *claimService) phaseClaimable(ctx context.Context, tx ledgerstore.Tx, phaseID int64, wallet string) (decimal.Decimal, error) {
	snapshot, err := tx.LockClaimSnapshot(ctx, phaseID, wallet)
	if errors.Is(err, ledgerstore.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to lock claim snapshot: %w", err)
	}
	claimed, err := tx.SumClaimed(ctx, phaseID, wallet)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum prior claims: %w", err)
	}
	return distribution.Remaining(snapshot.MEGYAmount, claimed), nil
}

func txSignatureUsed(sig string) error {
	return apperrors.ConflictError(distribution.CodeTxSignatureAlreadyUsed, ledgerstore.ErrTxSignatureUsed,
		fmt.Sprintf("tx signature %s already recorded", sig))
}

// GetClaimable returns the wallet's allocated, claimed and claimable amounts per finalized phase.
func (s *claimService) GetClaimable(ctx context.Context, wallet string) (*claim.Claimable, error) {
	if err := validateAddress("wallet_address", wallet); err != nil {
		return nil, err
	}

	var positions []*distribution.PhaseClaimable
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx ledgerstore.Tx) error {
		var err error
		positions, err = tx.ClaimPositions(ctx, wallet)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute claim positions: %w", err)
	}
	if positions == nil {
		positions = []*distribution.PhaseClaimable{}
	}
	return &claim.Claimable{
		WalletAddress:  wallet,
		Phases:         positions,
		TotalClaimable: ledgerstore.TotalClaimable(positions),
	}, nil
}
