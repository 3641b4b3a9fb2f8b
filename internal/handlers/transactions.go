package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Marcos1701/finquest-backend/internal/dto"
	"github.com/Marcos1701/finquest-backend/internal/errs"
	"github.com/Marcos1701/finquest-backend/internal/middleware"
	"github.com/Marcos1701/finquest-backend/internal/models"
	"github.com/Marcos1701/finquest-backend/internal/response"
)

type transactionService interface {
	Create(ctx context.Context, uid string, req dto.CreateTransactionRequest) (*models.Transaction, error)
	Update(ctx context.Context, uid, txID string, req dto.UpdateTransactionRequest) (*models.Transaction, error)
	Delete(ctx context.Context, uid, txID string) error
	Get(ctx context.Context, uid, txID string) (*models.Transaction, error)
	List(ctx context.Context, uid string, q dto.TransactionQuery) ([]models.Transaction, error)
	CreateLink(ctx context.Context, uid string, req dto.CreateLinkRequest) (*models.TransactionLink, error)
}

type transactionHandlers struct {
	ResponseHandler response.ResponseHandler
	TransactionSvc  transactionService
}

func NewTransactionHandlers(deps *Deps) *transactionHandlers {
	return &transactionHandlers{
		ResponseHandler: deps.ResponseHandler,
		TransactionSvc:  deps.TransactionSvc,
	}
}

func (h *transactionHandlers) TransactionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Post("/links", h.CreateLink)
	r.Get("/{txId}", h.Get)
	r.Put("/{txId}", h.Update)
	r.Delete("/{txId}", h.Delete)
	return r
}

func (h *transactionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	tx, err := h.TransactionSvc.Create(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusCreated, tx)
}

func (h *transactionHandlers) Update(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "txId")
	var req dto.UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	tx, err := h.TransactionSvc.Update(r.Context(), uid, txID, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, tx)
}

func (h *transactionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "txId")
	uid := middleware.UID(r.Context())
	if err := h.TransactionSvc.Delete(r.Context(), uid, txID); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, nil)
}

func (h *transactionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "txId")
	uid := middleware.UID(r.Context())
	tx, err := h.TransactionSvc.Get(r.Context(), uid, txID)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, tx)
}

func (h *transactionHandlers) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseTransactionQuery(r)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	uid := middleware.UID(r.Context())
	txs, err := h.TransactionSvc.List(r.Context(), uid, q)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusOK, txs)
}

func (h *transactionHandlers) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid request body"))
		return
	}
	uid := middleware.UID(r.Context())
	link, err := h.TransactionSvc.CreateLink(r.Context(), uid, req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, http.StatusCreated, link)
}

func parseTransactionQuery(r *http.Request) (dto.TransactionQuery, error) {
	var q dto.TransactionQuery
	params := r.URL.Query()

	if raw := params.Get("type"); raw != "" {
		t := models.TransactionType(raw)
		if t != models.TransactionIncome && t != models.TransactionExpense {
			return q, errs.NewValidationError("type must be INCOME or EXPENSE")
		}
		q.Type = &t
	}
	if raw := params.Get("categoryId"); raw != "" {
		q.CategoryID = &raw
	}
	if raw := params.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, errs.NewValidationError("from must be an RFC 3339 timestamp")
		}
		q.DateFrom = &from
	}
	if raw := params.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, errs.NewValidationError("to must be an RFC 3339 timestamp")
		}
		q.DateTo = &to
	}
	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return q, errs.NewValidationError("limit must be a positive integer")
		}
		q.Limit = limit
	}
	return q, nil
}
