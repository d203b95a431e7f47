package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/phase-distributor/pkg/app/errors"
	apphttp "github.com/chainsafe/phase-distributor/pkg/app/http"
	"github.com/chainsafe/phase-distributor/pkg/claim"
	"github.com/chainsafe/phase-distributor/pkg/claim/service/mocks"
	"github.com/chainsafe/phase-distributor/pkg/distribution"
)

const (
	testWallet      = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	testDestination = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"
	testSessionID   = "7c1a3c1e-3f5b-4d55-9d2e-3c8f1e0c2a11"
)

type errorBody struct {
	Success   bool           `json:"success"`
	Error     string         `json:"error"`
	Code      int            `json:"code"`
	ErrorCode string         `json:"error_code"`
	Details   map[string]any `json:"details"`
}

func newClaimTestServer(svc Service) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, svc, zap.NewNop())
	return r
}

func serve(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	envelope := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if !envelope.Success {
		t.Fatalf("expected success=true, got body %s", rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		t.Fatalf("failed to decode response data: %v", err)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var got errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.Success {
		t.Fatalf("expected success=false, got body %s", rec.Body.String())
	}
	return got
}

func TestClaimHTTP_OpenSession(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		OpenSession(mock.Anything, &claim.OpenSessionRequest{
			WalletAddress: testWallet,
			Destination:   testDestination,
		}).
		Return(&distribution.ClaimSession{
			ID:                    testSessionID,
			WalletAddress:         testWallet,
			Destination:           testDestination,
			Status:                distribution.SessionStatusOpen,
			TotalClaimedInSession: decimal.Zero,
			CreatedAt:             time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		}, nil).
		Once()

	body := fmt.Sprintf(`{"wallet_address":%q,"destination":%q}`, testWallet, testDestination)
	rec := serve(newClaimTestServer(svc), http.MethodPost, "/claims/sessions", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var got claim.SessionView
	decodeData(t, rec, &got)
	if got.ID != testSessionID {
		t.Fatalf("expected session_id %q, got %q", testSessionID, got.ID)
	}
	if got.Status != distribution.SessionStatusOpen {
		t.Fatalf("expected open session, got %q", got.Status)
	}
}

func TestClaimHTTP_OpenSession_MissingDestination(t *testing.T) {
	svc := mocks.NewService(t)

	body := fmt.Sprintf(`{"wallet_address":%q}`, testWallet)
	rec := serve(newClaimTestServer(svc), http.MethodPost, "/claims/sessions", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if got := decodeError(t, rec); got.ErrorCode != apphttp.CodeInvalidRequest {
		t.Fatalf("expected error_code %q, got %q", apphttp.CodeInvalidRequest, got.ErrorCode)
	}
}

func TestClaimHTTP_Record_ReturnsCreated(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		RecordClaim(mock.Anything, mock.MatchedBy(func(req *claim.RecordRequest) bool {
			return req.SessionID == testSessionID &&
				req.PhaseID == 2 &&
				req.Amount.Equal(decimal.RequireFromString("12.5"))
		})).
		Return(&claim.RecordResult{
			SessionClosed:           false,
			TotalClaimableRemaining: decimal.RequireFromString("87.5"),
			Claim: &claim.View{
				ID:          1,
				PhaseID:     2,
				ClaimAmount: decimal.RequireFromString("12.5"),
				SessionID:   testSessionID,
			},
		}, nil).
		Once()

	body := fmt.Sprintf(
		`{"session_id":%q,"wallet_address":%q,"destination":%q,"tx_signature":"sig","phase_id":2,"amount":"12.5"}`,
		testSessionID, testWallet, testDestination,
	)
	rec := serve(newClaimTestServer(svc), http.MethodPost, "/claims", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var got claim.RecordResult
	decodeData(t, rec, &got)
	if got.SessionClosed {
		t.Fatalf("expected session to stay open")
	}
	if !got.TotalClaimableRemaining.Equal(decimal.RequireFromString("87.5")) {
		t.Fatalf("expected remaining 87.5, got %s", got.TotalClaimableRemaining)
	}
}

func TestClaimHTTP_Record_ExceedsClaimable(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		RecordClaim(mock.Anything, mock.Anything).
		Return(nil, apperrors.ConflictError(distribution.CodeAmountExceedsClaimable, ErrAmountExceedsClaimable,
			"amount 100.01 exceeds claimable 100 in phase 1").
			WithDetails(map[string]any{"phase_id": 1, "claimable": "100"})).
		Once()

	body := fmt.Sprintf(
		`{"session_id":%q,"wallet_address":%q,"destination":%q,"tx_signature":"sig","phase_id":1,"amount":"100.01"}`,
		testSessionID, testWallet, testDestination,
	)
	rec := serve(newClaimTestServer(svc), http.MethodPost, "/claims", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
	got := decodeError(t, rec)
	if got.ErrorCode != distribution.CodeAmountExceedsClaimable {
		t.Fatalf("expected error_code %q, got %q", distribution.CodeAmountExceedsClaimable, got.ErrorCode)
	}
	if got.Details["claimable"] != "100" {
		t.Fatalf("expected claimable detail, got %+v", got.Details)
	}
}

func TestClaimHTTP_Record_WalletMismatch(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		RecordClaim(mock.Anything, mock.Anything).
		Return(nil, apperrors.ForbiddenError(distribution.CodeSessionWalletMismatch, ErrSessionMismatch,
			"claim session belongs to another wallet")).
		Once()

	body := fmt.Sprintf(
		`{"session_id":%q,"wallet_address":%q,"destination":%q,"tx_signature":"sig","phase_id":1,"amount":"1"}`,
		testSessionID, testWallet, testDestination,
	)
	rec := serve(newClaimTestServer(svc), http.MethodPost, "/claims", body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if got := decodeError(t, rec); got.ErrorCode != distribution.CodeSessionWalletMismatch {
		t.Fatalf("expected error_code %q, got %q", distribution.CodeSessionWalletMismatch, got.ErrorCode)
	}
}

func TestClaimHTTP_Claimable(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		GetClaimable(mock.Anything, testWallet).
		Return(&claim.Claimable{
			WalletAddress: testWallet,
			Phases: []*distribution.PhaseClaimable{{
				PhaseID:   1,
				PhaseNo:   1,
				Allocated: decimal.NewFromInt(100),
				Claimed:   decimal.NewFromInt(40),
				Claimable: decimal.NewFromInt(60),
			}},
			TotalClaimable: decimal.NewFromInt(60),
		}, nil).
		Once()

	rec := serve(newClaimTestServer(svc), http.MethodGet, "/claims/"+testWallet, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var got claim.Claimable
	decodeData(t, rec, &got)
	if len(got.Phases) != 1 || !got.Phases[0].Claimable.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("unexpected phases: %+v", got.Phases)
	}
	if !got.TotalClaimable.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected total 60, got %s", got.TotalClaimable)
	}
}

func TestClaimHTTP_Claimable_InternalError(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		GetClaimable(mock.Anything, testWallet).
		Return(nil, fmt.Errorf("connection reset")).
		Once()

	rec := serve(newClaimTestServer(svc), http.MethodGet, "/claims/"+testWallet, "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	if got := decodeError(t, rec); got.ErrorCode != distribution.CodeInternalError {
		t.Fatalf("expected error_code %q, got %q", distribution.CodeInternalError, got.ErrorCode)
	}
}
