// Package http provides HTTP utilities including chi-compatible error handling
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/chainsafe/phase-distributor/pkg/app/errors"
)

const maxBodyBytes = 1 << 20

// CodeInvalidRequest is returned when a request body cannot be decoded or validated.
const CodeInvalidRequest = "INVALID_REQUEST"

var validate = validator.New()

// HandlerFunc defines a function that returns an error for clean error handling
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// HandleError wraps an error-returning HandlerFunc into a standard http.HandlerFunc
//
// Usage with chi:
//
//	r.Post("/phases", http.HandleError(handler.createPhase))
func HandleError(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			DefaultErrorHandler(w, err)
		}
	}
}

type errorResponse struct {
	Success    bool           `json:"success"`
	ErrMsg     string         `json:"error"`
	ErrMsgCode int            `json:"code"`
	ErrorCode  string         `json:"error_code"`
	Details    map[string]any `json:"details,omitempty"`
}

// DefaultErrorHandler handles errors returned from HTTP handlers.
// Every response carries a stable error_code; unknown errors map to INTERNAL_ERROR.
func DefaultErrorHandler(w http.ResponseWriter, err error) {
	var svcErr *apperrors.ServiceError

	if errors.As(err, &svcErr) {
		code := svcErr.Code
		if code == "" {
			code = apperrors.CodeInternal
		}
		WriteJSON(w, svcErr.StatusCode(), &errorResponse{
			ErrMsg:     svcErr.Message,
			ErrMsgCode: svcErr.StatusCode(),
			ErrorCode:  code,
			Details:    svcErr.Details,
		})
		return
	}

	WriteJSON(w, http.StatusInternalServerError, &errorResponse{
		ErrMsg:     "Unexpected Service Error",
		ErrMsgCode: http.StatusInternalServerError,
		ErrorCode:  apperrors.CodeInternal,
	})
}

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// WriteSuccess writes data inside the {"success":true,"data":...} envelope
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, &successResponse{Success: true, Data: data})
}

// WriteJSON writes data as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// DecodeJSON reads a size-limited JSON body into dst and runs struct validation on it.
func DecodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperrors.BadRequestError(CodeInvalidRequest, err, "failed to read request")
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.BadRequestError(CodeInvalidRequest, err, "invalid JSON")
	}
	if err := validate.Struct(dst); err != nil {
		return apperrors.BadRequestError(CodeInvalidRequest, err, "invalid request: "+err.Error())
	}
	return nil
}
