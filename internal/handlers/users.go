package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/middleware"
	"github.com/Marcos1701/finquest-backend/internal/models"
	"github.com/Marcos1701/finquest-backend/internal/response"
)

type userService interface {
	Register(ctx context.Context, uid, email string, req dto.RegisterRequest) (*models.UserProfile, error)
	GetProfile(ctx context.Context, uid string) (dto.ProfileResponse, error)
	UpdateTargets(ctx context.Context, uid string, req dto.UpdateTargetsRequest) (*models.UserProfile, error)
	CreateGoal(ctx context.Context, uid string, req dto.CreateGoalRequest) (*models.Goal, error)
	ListGoals(ctx context.Context, uid string) ([]models.Goal, error)
}

type userHandlers struct {
	ResponseHandler response.ResponseHandler
	UserSvc         userService
}

func NewUserHandlers(deps *Deps) *userHandlers {
	return &userHandlers{
		ResponseHandler: deps.ResponseHandler,
		UserSvc:         deps.UserSvc,
	}
}

func (h *userHandlers) UserRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Get("/profile", h.GetProfile)
	r.Patch("/profile/targets", h.UpdateTargets)
	r.Post("/goals", h.CreateGoal)
	r.Get("/goals", h.ListGoals)
	return r
}

func (h *userHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	email := middleware.Email(r.Context())
	profile, err := h.UserSvc.Register(r.Context(), uid, email, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusCreated, profile)
}

func (h *userHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	resp, err := h.UserSvc.GetProfile(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, resp)
}

func (h *userHandlers) UpdateTargets(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateTargetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	profile, err := h.UserSvc.UpdateTargets(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, profile)
}

func (h *userHandlers) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	goal, err := h.UserSvc.CreateGoal(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusCreated, goal)
}

func (h *userHandlers) ListGoals(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	goals, err := h.UserSvc.ListGoals(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, goals)
}
