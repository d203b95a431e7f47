package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apphttp "github.com/chainsafe/phase-distributor/pkg/app/http"
	"github.com/chainsafe/phase-distributor/pkg/claim"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the claim endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Route("/claims", func(r chi.Router) {
		r.Post("/", apphttp.HandleError(h.record))
		r.Post("/sessions", apphttp.HandleError(h.openSession))
		r.Get("/{wallet}", apphttp.HandleError(h.claimable))
	})
}

func (h *HTTP) openSession(w http.ResponseWriter, r *http.Request) error {
	var req claim.OpenSessionRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	session, err := h.service.OpenSession(r.Context(), &req)
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusOK, claim.NewSessionView(session))
	return nil
}

func (h *HTTP) record(w http.ResponseWriter, r *http.Request) error {
	var req claim.RecordRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	res, err := h.service.RecordClaim(r.Context(), &req)
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusCreated, res)
	return nil
}

func (h *HTTP) claimable(w http.ResponseWriter, r *http.Request) error {
	res, err := h.service.GetClaimable(r.Context(), chi.URLParam(r, "wallet"))
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusOK, res)
	return nil
}
