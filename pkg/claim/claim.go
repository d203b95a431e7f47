// Package claim holds the request and response types of the claim ledger API.
package claim

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/chainsafe/phase-distributor/pkg/distribution"
)

// OpenSessionRequest opens (or resumes) a claim session for a wallet and payout destination.
type OpenSessionRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,max=64"`
	Destination   string `json:"destination" validate:"required,max=64"`
}

// RecordRequest records one settlement transaction against a finalized phase.
type RecordRequest struct {
	SessionID     string          `json:"session_id" validate:"required"`
	WalletAddress string          `json:"wallet_address" validate:"required,max=64"`
	Destination   string          `json:"destination" validate:"required,max=64"`
	TxSignature   string          `json:"tx_signature" validate:"required,max=128"`
	PhaseID       int64           `json:"phase_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// SessionView is a claim session as exposed to callers.
type SessionView struct {
	ID                    string                     `json:"session_id"`
	WalletAddress         string                     `json:"wallet_address"`
	Destination           string                     `json:"destination"`
	Status                distribution.SessionStatus `json:"status"`
	TotalClaimedInSession decimal.Decimal            `json:"total_claimed_in_session"`
	CreatedAt             time.Time                  `json:"created_at"`
	ClosedAt              *time.Time                 `json:"closed_at,omitempty"`
}

// NewSessionView converts a session into a SessionView.
func NewSessionView(s *distribution.ClaimSession) *SessionView {
	if s == nil {
		return nil
	}
	return &SessionView{
		ID:                    s.ID,
		WalletAddress:         s.WalletAddress,
		Destination:           s.Destination,
		Status:                s.Status,
		TotalClaimedInSession: s.TotalClaimedInSession,
		CreatedAt:             s.CreatedAt,
		ClosedAt:              s.ClosedAt,
	}
}

// View is a recorded claim as exposed to callers.
type View struct {
	ID            int64           `json:"id"`
	PhaseID       int64           `json:"phase_id"`
	WalletAddress string          `json:"wallet_address"`
	ClaimAmount   decimal.Decimal `json:"claim_amount"`
	Destination   string          `json:"destination"`
	TxSignature   string          `json:"tx_signature"`
	SessionID     string          `json:"session_id"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewView converts a claim into a View.
func NewView(c *distribution.Claim) *View {
	if c == nil {
		return nil
	}
	return &View{
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

// RecordResult is the outcome of a recorded claim.
type RecordResult struct {
	SessionClosed           bool            `json:"session_closed"`
	TotalClaimableRemaining decimal.Decimal `json:"total_claimable_remaining"`
	Claim                   *View           `json:"claim"`
}

// Claimable lists a wallet's claim positions over the finalized phases.
type Claimable struct {
	WalletAddress  string                         `json:"wallet_address"`
	Phases         []*distribution.PhaseClaimable `json:"phases"`
	TotalClaimable decimal.Decimal                `json:"total_claimable"`
}
