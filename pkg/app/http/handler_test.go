package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/chainsafe/phase-distributor/pkg/app/errors"
)

type decodeTarget struct {
	Name   string `json:"name" validate:"required"`
	Amount string `json:"amount" validate:"required,numeric"`
}

func TestDefaultErrorHandler_ServiceError(t *testing.T) {
	rec := httptest.NewRecorder()
	err := apperrors.LockedError("FINALIZE_BLOCKED_MISMATCH", nil, "totals differ").
		WithDetails(map[string]any{"phase_id": 7})

	DefaultErrorHandler(rec, err)

	if rec.Code != http.StatusLocked {
		t.Fatalf("expected status %d, got %d", http.StatusLocked, rec.Code)
	}
	var got errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.Success {
		t.Fatalf("expected success=false")
	}
	if got.ErrorCode != "FINALIZE_BLOCKED_MISMATCH" {
		t.Fatalf("expected error_code FINALIZE_BLOCKED_MISMATCH, got %q", got.ErrorCode)
	}
	if got.Details["phase_id"] != float64(7) {
		t.Fatalf("expected phase_id detail, got %v", got.Details)
	}
}

func TestDefaultErrorHandler_UnknownError(t *testing.T) {
	rec := httptest.NewRecorder()
	DefaultErrorHandler(rec, errors.New("db exploded"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	var got errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.ErrorCode != apperrors.CodeInternal {
		t.Fatalf("expected %s, got %q", apperrors.CodeInternal, got.ErrorCode)
	}
	if got.ErrMsg != "Unexpected Service Error" {
		t.Fatalf("unexpected message %q", got.ErrMsg)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst decodeTarget
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"a","amount":"1.5"}`))
	if err := DecodeJSON(req, &dst); err != nil {
		t.Fatalf("DecodeJSON() failed: %v", err)
	}
	if dst.Name != "a" || dst.Amount != "1.5" {
		t.Fatalf("unexpected decode result %+v", dst)
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{invalid`))
	err := DecodeJSON(req, &dst)
	if apperrors.CodeOf(err) != CodeInvalidRequest {
		t.Fatalf("expected %s, got %v", CodeInvalidRequest, err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"a","amount":"x"}`))
	var other decodeTarget
	err = DecodeJSON(req, &other)
	if !apperrors.Is(err, apperrors.CategoryDataError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWriteSuccess_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, http.StatusCreated, map[string]any{"id": 3})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var got struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if !got.Success || got.Data["id"] != float64(3) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
