package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/middleware"
	"github.com/Marcos1701/finquest-backend/internal/models"
	"github.com/Marcos1701/finquest-backend/internal/response"
)

type missionService interface {
	Start(ctx context.Context, uid, missionID string) (*models.MissionProgress, error)
	Skip(ctx context.Context, uid, missionID string) (*models.MissionProgress, error)
	EvaluateProgress(ctx context.Context, uid, progressID string) (dto.ProgressResult, error)
	ApplyReward(ctx context.Context, uid, progressID string) (dto.RewardResult, error)
	ListActive(ctx context.Context, uid string) ([]dto.ActiveMission, error)
}

type assignmentService interface {
	AssignMissions(ctx context.Context, uid string, maxActive int) ([]models.MissionProgress, error)
}

type missionHandlers struct {
	ResponseHandler response.ResponseHandler
	MissionSvc      missionService
	AssignmentSvc   assignmentService
	MaxActive       int
}

func NewMissionHandlers(deps *Deps) *missionHandlers {
	return &missionHandlers{
		ResponseHandler: deps.ResponseHandler,
		MissionSvc:      deps.MissionSvc,
		AssignmentSvc:   deps.AssignmentSvc,
		MaxActive:       deps.MaxActiveMissions,
	}
}

func (h *missionHandlers) MissionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/active", h.ListActive)
	r.Post("/assign", h.Assign)
	r.Post("/{missionId}/start", h.Start)
	r.Post("/{missionId}/skip", h.Skip)
	r.Get("/progress/{progressId}", h.EvaluateProgress)
	r.Post("/progress/{progressId}/reward", h.ApplyReward)
	return r
}

func (h *missionHandlers) ListActive(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	missions, err := h.MissionSvc.ListActive(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, missions)
}

func (h *missionHandlers) Assign(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	assigned, err := h.AssignmentSvc.AssignMissions(r.Context(), uid, h.MaxActive)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, assigned)
}

func (h *missionHandlers) Start(w http.ResponseWriter, r *http.Request) {
	missionID := chi.URLParam(r, "missionId")
	uid := middleware.UID(r.Context())
	progress, err := h.MissionSvc.Start(r.Context(), uid, missionID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, progress)
}

func (h *missionHandlers) Skip(w http.ResponseWriter, r *http.Request) {
	missionID := chi.URLParam(r, "missionId")
	uid := middleware.UID(r.Context())
	progress, err := h.MissionSvc.Skip(r.Context(), uid, missionID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, progress)
}

func (h *missionHandlers) EvaluateProgress(w http.ResponseWriter, r *http.Request) {
	progressID := chi.URLParam(r, "progressId")
	uid := middleware.UID(r.Context())
	result, err := h.MissionSvc.EvaluateProgress(r.Context(), uid, progressID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, result)
}

func (h *missionHandlers) ApplyReward(w http.ResponseWriter, r *http.Request) {
	progressID := chi.URLParam(r, "progressId")
	uid := middleware.UID(r.Context())
	result, err := h.MissionSvc.ApplyReward(r.Context(), uid, progressID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, result)
}
