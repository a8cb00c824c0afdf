package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"txguard/internal/model"
	"txguard/internal/service"
	"txguard/internal/validator"
)

type Handler struct {
	svc service.ValidationService
	log *zap.Logger
}

func NewHandler(svc service.ValidationService, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/operations", h.Evaluate)
		r.Post("/audits", h.Audit)
		r.Get("/outcomes", h.Recent)
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req model.OperationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	out, err := h.svc.Evaluate(r.Context(), req)
	if err != nil {
		if errors.Is(err, validator.ErrUnsupportedOperation) {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, "evaluate", err)
		return
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	var req model.AuditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Records == nil {
		h.respondError(w, http.StatusBadRequest, "missing_records")
		return
	}
	report, err := h.svc.Audit(r.Context(), req)
	if err != nil {
		h.internalError(w, "audit", err)
		return
	}
	h.respondJSON(w, http.StatusOK, report)
}

func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = n
	}
	events, err := h.svc.Recent(r.Context(), limit)
	if err != nil {
		h.internalError(w, "recent outcomes", err)
		return
	}
	if events == nil {
		events = []model.OutcomeEvent{}
	}
	h.respondJSON(w, http.StatusOK, events)
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.log.Error("http: request failed", zap.String("op", op), zap.Error(err))
	h.respondError(w, http.StatusInternalServerError, "internal_error")
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
