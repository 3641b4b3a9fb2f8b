package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/middleware"
	"github.com/Marcos1701/finquest-backend/internal/response"
)

type indicatorService interface {
	Get(ctx context.Context, uid string) (dto.IndicatorSnapshot, error)
	ComputeAt(ctx context.Context, uid string, asOf time.Time) (dto.IndicatorSnapshot, error)
	Invalidate(ctx context.Context, uid string) error
}

type indicatorHandlers struct {
	ResponseHandler response.ResponseHandler
	IndicatorSvc    indicatorService
}

func NewIndicatorHandlers(deps *Deps) *indicatorHandlers {
	return &indicatorHandlers{
		ResponseHandler: deps.ResponseHandler,
		IndicatorSvc:    deps.IndicatorSvc,
	}
}

func (h *indicatorHandlers) IndicatorRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Post("/refresh", h.Refresh)
	return r
}

// Get returns the indicator snapshot, cached when fresh. An asOf query
// parameter forces a historical computation that bypasses the cache.
func (h *indicatorHandlers) Get(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())

	if raw := r.URL.Query().Get("asOf"); raw != "" {
		asOf, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("asOf must be an RFC 3339 timestamp"))
			return
		}
		snapshot, err := h.IndicatorSvc.ComputeAt(r.Context(), uid, asOf)
		if err != nil {
			h.ResponseHandler.HandleError(w, r, err)
			return
		}
		h.ResponseHandler.WriteSuccess(w, http.StatusOK, snapshot)
		return
	}

	snapshot, err := h.IndicatorSvc.Get(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, snapshot)
}

func (h *indicatorHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.IndicatorSvc.Invalidate(r.Context(), uid); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	snapshot, err := h.IndicatorSvc.Get(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, snapshot)
}
