package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/paysentinel/transfer-risk-backend/internal/domain/errors"
	"github.com/paysentinel/transfer-risk-backend/internal/metrics"
	"github.com/paysentinel/transfer-risk-backend/internal/service/risk"
)

const maxRequestBody = 1 << 20 // 1 MB

// Handler serves the assessment API. History is resolved here so the
// scoring core stays a pure function of its input.
type Handler struct {
	service      risk.Service
	history      risk.HistoryProvider
	historyLimit int
	validate     *validator.Validate
	logger       *slog.Logger
	metrics      *metrics.Registry
}

func NewHandler(service risk.Service, history risk.HistoryProvider, historyLimit int, logger *slog.Logger, registry *metrics.Registry) *Handler {
	if historyLimit <= 0 {
		historyLimit = 500
	}
	return &Handler{
		service:      service,
		history:      history,
		historyLimit: historyLimit,
		validate:     validator.New(),
		logger:       logger,
		metrics:      registry,
	}
}

// Routes registers all endpoints on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/assessments", h.handleCreateAssessment)
	mux.HandleFunc("GET /health", h.handleHealth)
	return mux
}

func (h *Handler) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var req AssessmentRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domainerrors.NewValidationError("INVALID_JSON", "request body is not valid JSON").WithCause(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, r, domainerrors.NewValidationError("INVALID_REQUEST", err.Error()))
		return
	}

	ts := time.Now().UTC()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	history, err := h.history.GetUserHistory(ctx, req.UserID, h.historyLimit)
	if err != nil {
		h.writeError(w, r, domainerrors.NewInternalError("failed to load transaction history").WithCause(err))
		return
	}

	assessment, err := h.service.Assess(ctx, risk.AssessmentInput{
		UserID:    req.UserID,
		Amount:    req.Amount,
		Timestamp: ts,
		PayeeID:   req.PayeeID,
		PayeeName: req.PayeeName,
		History:   history,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordAssessment(ctx, assessment.Decision.String(),
			assessment.RiskScore,
			assessment.SubScores.Amount,
			assessment.SubScores.Time,
			assessment.SubScores.Recipient,
			time.Since(start))
	}

	h.writeJSON(w, http.StatusOK, newAssessmentResponse(assessment))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = domainerrors.NewInternalError("An internal error occurred").WithCause(err)
	}

	if appErr.StatusCode >= 500 {
		h.logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path, "code", appErr.Code, "error", err)
	} else {
		h.logger.WarnContext(r.Context(), "request rejected",
			"path", r.URL.Path, "code", appErr.Code, "error", err)
	}

	h.writeJSON(w, appErr.StatusCode, ErrorResponse{
		Error: ErrorDetail{Code: appErr.Code, Message: appErr.Message},
	})
}
