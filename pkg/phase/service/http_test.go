package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/phase-distributor/pkg/app/errors"
	apphttp "github.com/chainsafe/phase-distributor/pkg/app/http"
	"github.com/chainsafe/phase-distributor/pkg/distribution"
	"github.com/chainsafe/phase-distributor/pkg/ledgerstore"
	"github.com/chainsafe/phase-distributor/pkg/phase"
	"github.com/chainsafe/phase-distributor/pkg/phase/service/mocks"
)

type errorBody struct {
	Error     string         `json:"error"`
	Code      int            `json:"code"`
	ErrorCode string         `json:"error_code"`
	Details   map[string]any `json:"details"`
}

func newPhaseTestServer(svc Service) http.Handler {
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
	return got
}

func TestPhaseHTTP_List(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		ListPhasesWithVirtualAllocation(mock.Anything).
		Return(&phase.Listing{
			Phases: []*phase.View{{
				ID:      1,
				PhaseNo: 1,
				Name:    "seed",
				Status:  distribution.PhaseStatusActive,
				UsedUSD: decimal.NewFromInt(250),
				FillPct: decimal.RequireFromString("0.25"),
			}},
			TotalUSD:       decimal.NewFromInt(250),
			UnallocatedUSD: decimal.Zero,
		}, nil).
		Once()

	rec := serve(newPhaseTestServer(svc), http.MethodGet, "/phases", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var got phase.Listing
	decodeData(t, rec, &got)
	if len(got.Phases) != 1 || got.Phases[0].Name != "seed" {
		t.Fatalf("unexpected phases: %+v", got.Phases)
	}
	if !got.Phases[0].FillPct.Equal(decimal.RequireFromString("0.25")) {
		t.Fatalf("expected fill 0.25, got %s", got.Phases[0].FillPct)
	}
}

func TestPhaseHTTP_Create_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	svc := mocks.NewService(t)

	rec := serve(newPhaseTestServer(svc), http.MethodPost, "/phases", "{invalid")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	got := decodeError(t, rec)
	if got.ErrorCode != apphttp.CodeInvalidRequest {
		t.Fatalf("expected error_code %q, got %q", apphttp.CodeInvalidRequest, got.ErrorCode)
	}
}

func TestPhaseHTTP_Create_ReturnsCreated(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		CreatePhase(mock.Anything, mock.MatchedBy(func(req *phase.CreateRequest) bool {
			return req.Name == "seed" &&
				req.PoolMEGY.Equal(decimal.NewFromInt(1000)) &&
				req.TargetUSD.Valid && req.TargetUSD.Decimal.Equal(decimal.NewFromInt(500))
		})).
		Return(&distribution.Phase{
			ID:             4,
			PhaseNo:        2,
			Name:           "seed",
			PoolMEGY:       decimal.NewFromInt(1000),
			RateUSDPerMEGY: decimal.RequireFromString("0.5"),
			TargetUSD:      decimal.NewNullDecimal(decimal.NewFromInt(500)),
			Status:         distribution.PhaseStatusPlanned,
		}, nil).
		Once()

	body := `{"name":"seed","pool_megy":"1000","rate_usd_per_megy":"0.5","target_usd":"500"}`
	rec := serve(newPhaseTestServer(svc), http.MethodPost, "/phases", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var got phase.View
	decodeData(t, rec, &got)
	if got.ID != 4 || got.PhaseNo != 2 || got.Status != distribution.PhaseStatusPlanned {
		t.Fatalf("unexpected phase: %+v", got)
	}
}

func TestPhaseHTTP_Finalize_BadID(t *testing.T) {
	svc := mocks.NewService(t)

	rec := serve(newPhaseTestServer(svc), http.MethodPost, "/phases/abc/finalize", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if got := decodeError(t, rec); got.ErrorCode != distribution.CodeBadPhaseID {
		t.Fatalf("expected error_code %q, got %q", distribution.CodeBadPhaseID, got.ErrorCode)
	}
}

func TestPhaseHTTP_Finalize_MismatchCarriesDetails(t *testing.T) {
	svc := mocks.NewService(t)
	mismatch := apperrors.ConflictError(distribution.CodeFinalizeBlockedMismatch, ErrReconcileMismatch,
		"phase 7 allocation and snapshot totals do not reconcile").
		WithDetails(map[string]any{
			"allocation_totals": distribution.Totals{USD: decimal.NewFromInt(500)},
			"snapshot_totals":   distribution.Totals{USD: decimal.RequireFromString("499.9")},
		})
	svc.EXPECT().FinalizePhase(mock.Anything, int64(7)).Return(nil, mismatch).Once()

	rec := serve(newPhaseTestServer(svc), http.MethodPost, "/phases/7/finalize", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
	got := decodeError(t, rec)
	if got.ErrorCode != distribution.CodeFinalizeBlockedMismatch {
		t.Fatalf("expected error_code %q, got %q", distribution.CodeFinalizeBlockedMismatch, got.ErrorCode)
	}
	if _, ok := got.Details["snapshot_totals"]; !ok {
		t.Fatalf("expected snapshot_totals in details, got %v", got.Details)
	}
}

func TestPhaseHTTP_Move(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		MovePhase(mock.Anything, int64(3), ledgerstore.DirectionUp).
		Return(&phase.Listing{Phases: []*phase.View{{ID: 3, PhaseNo: 1}, {ID: 1, PhaseNo: 2}}}, nil).
		Once()
	handler := newPhaseTestServer(svc)

	rec := serve(handler, http.MethodPost, "/phases/3/move", `{"direction":"up"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = serve(handler, http.MethodPost, "/phases/3/move", `{"direction":"sideways"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestPhaseHTTP_Assign(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		AssignContributions(mock.Anything, int64(2), []int64{5, 6}).
		Return(&phase.AssignResult{PhaseID: 2, Assigned: []int64{5, 6}}, nil).
		Once()

	rec := serve(newPhaseTestServer(svc), http.MethodPost, "/phases/2/assign", `{"contribution_ids":[5,6]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestContributionHTTP_SplitNotFound(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		SplitContribution(mock.Anything, int64(9), mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.NewFromInt(40))
		})).
		Return(nil, apperrors.ResourceNotFoundError(distribution.CodeContributionNotFound, nil, "contribution 9 not found")).
		Once()

	rec := serve(newPhaseTestServer(svc), http.MethodPost, "/contributions/9/split", `{"usd_amount":"40"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
	if got := decodeError(t, rec); got.ErrorCode != distribution.CodeContributionNotFound {
		t.Fatalf("expected error_code %q, got %q", distribution.CodeContributionNotFound, got.ErrorCode)
	}
}

func TestContributionHTTP_Record(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		RecordContribution(mock.Anything, mock.AnythingOfType("*phase.ContributionRequest")).
		Return(&distribution.Contribution{
			ID:            11,
			WalletAddress: "So11111111111111111111111111111111111111112",
			USDValue:      decimal.NewFromInt(75),
			Network:       distribution.NetworkSolana,
			AllocStatus:   distribution.AllocStatusPending,
		}, nil).
		Once()

	body := `{"wallet_address":"So11111111111111111111111111111111111111112","usd_value":"75"}`
	rec := serve(newPhaseTestServer(svc), http.MethodPost, "/contributions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var got phase.ContributionView
	decodeData(t, rec, &got)
	if got.ID != 11 || got.AllocStatus != distribution.AllocStatusPending {
		t.Fatalf("unexpected contribution: %+v", got)
	}
}
