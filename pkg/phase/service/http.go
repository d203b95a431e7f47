package service

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/phase-distributor/pkg/app/errors"
	apphttp "github.com/chainsafe/phase-distributor/pkg/app/http"
	"github.com/chainsafe/phase-distributor/pkg/distribution"
	"github.com/chainsafe/phase-distributor/pkg/ledgerstore"
	"github.com/chainsafe/phase-distributor/pkg/phase"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the phase and contribution endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Route("/phases", func(r chi.Router) {
		r.Get("/", apphttp.HandleError(h.list))
		r.Post("/", apphttp.HandleError(h.create))
		r.Post("/advance", apphttp.HandleError(h.advance))
		r.Route("/{id}", func(r chi.Router) {
			r.Post("/open", apphttp.HandleError(h.open))
			r.Post("/close", apphttp.HandleError(h.close))
			r.Post("/move", apphttp.HandleError(h.move))
			r.Post("/snapshot", apphttp.HandleError(h.snapshot))
			r.Post("/finalize", apphttp.HandleError(h.finalize))
			r.Post("/assign", apphttp.HandleError(h.assign))
		})
	})
	r.Route("/contributions", func(r chi.Router) {
		r.Post("/", apphttp.HandleError(h.recordContribution))
		r.Post("/{id}/invalidate", apphttp.HandleError(h.invalidateContribution))
		r.Post("/{id}/split", apphttp.HandleError(h.splitContribution))
	})
}

func phaseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.BadRequestError(distribution.CodeBadPhaseID, err, "invalid phase id")
	}
	return id, nil
}

func contributionID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.BadRequestError(apphttp.CodeInvalidRequest, err, "invalid contribution id")
	}
	return id, nil
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	listing, err := h.service.ListPhasesWithVirtualAllocation(r.Context())
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusOK, listing)
	return nil
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) error {
	var req phase.CreateRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	p, err := h.service.CreatePhase(r.Context(), &req)
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusCreated, phase.NewView(p, nil))
	return nil
}

func (h *HTTP) advance(w http.ResponseWriter, r *http.Request) error {
	res, err := h.service.AdvancePhase(r.Context())
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusOK, res)
	return nil
}

func (h *HTTP) open(w http.ResponseWriter, r *http.Request) error {
	id, err := phaseID(r)
	if err != nil {
		return err
	}
	p, err := h.service.OpenPhase(r.Context(), id)
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusOK, phase.NewView(p, nil))
	return nil
}

func (h *HTTP) close(w http.ResponseWriter, r *http.Request) error {
	id, err := phaseID(r)
	if err != nil {
		return err
	}
	p, err := h.service.ClosePhase(r.Context(), id)
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusOK, phase.NewView(p, nil))
	return nil
}

func (h *HTTP) move(w http.ResponseWriter, r *http.Request) error {
	id, err := phaseID(r)
	if err != nil {
		return err
	}
	var req phase.MoveRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	listing, err := h.service.MovePhase(r.Context(), id, ledgerstore.Direction(req.Direction))
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusOK, listing)
	return nil
}

func (h *HTTP) snapshot(w http.ResponseWriter, r *http.Request) error {
	id, err := phaseID(r)
	if err != nil {
		return err
	}
	res, err := h.service.SnapshotPhase(r.Context(), id)
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusOK, res)
	return nil
}

func (h *HTTP) finalize(w http.ResponseWriter, r *http.Request) error {
	id, err := phaseID(r)
	if err != nil {
		return err
	}
	res, err := h.service.FinalizePhase(r.Context(), id)
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusOK, res)
	return nil
}

func (h *HTTP) assign(w http.ResponseWriter, r *http.Request) error {
	id, err := phaseID(r)
	if err != nil {
		return err
	}
	var req phase.AssignRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	res, err := h.service.AssignContributions(r.Context(), id, req.ContributionIDs)
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusOK, res)
	return nil
}

func (h *HTTP) recordContribution(w http.ResponseWriter, r *http.Request) error {
	var req phase.ContributionRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	c, err := h.service.RecordContribution(r.Context(), &req)
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusCreated, phase.NewContributionView(c))
	return nil
}

func (h *HTTP) invalidateContribution(w http.ResponseWriter, r *http.Request) error {
	id, err := contributionID(r)
	if err != nil {
		return err
	}
	c, err := h.service.InvalidateContribution(r.Context(), id)
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusOK, phase.NewContributionView(c))
	return nil
}

func (h *HTTP) splitContribution(w http.ResponseWriter, r *http.Request) error {
	id, err := contributionID(r)
	if err != nil {
		return err
	}
	var req phase.SplitRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}
	res, err := h.service.SplitContribution(r.Context(), id, req.USDAmount)
	if err != nil {
		return err
	}
	apphttp.WriteSuccess(w, http.StatusOK, res)
	return nil
}
