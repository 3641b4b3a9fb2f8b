package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/response"
)

type generatorService interface {
	GenerateBatch(ctx context.Context, tier dto.Tier, count int, useAI bool) (dto.GenerateBatchResult, error)
}

type generatorHandlers struct {
	ResponseHandler response.ResponseHandler
	GeneratorSvc    generatorService
}

func NewGeneratorHandlers(deps *Deps) *generatorHandlers {
	return &generatorHandlers{
		ResponseHandler: deps.ResponseHandler,
		GeneratorSvc:    deps.GeneratorSvc,
	}
}

func (h *generatorHandlers) GeneratorRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/generate", h.GenerateBatch)
	return r
}

func (h *generatorHandlers) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	result, err := h.GeneratorSvc.GenerateBatch(r.Context(), dto.Tier(req.Tier), req.Count, req.UseAI)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, result)
}
