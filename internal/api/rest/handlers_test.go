package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/paysentinel/transfer-risk-backend/internal/domain/errors"
	"github.com/paysentinel/transfer-risk-backend/internal/domain/transfer"
	"github.com/paysentinel/transfer-risk-backend/internal/service/risk"
)

type stubService struct {
	result *risk.RiskAssessment
	err    error
	gotIn  risk.AssessmentInput
}

func (s *stubService) Assess(_ context.Context, input risk.AssessmentInput) (*risk.RiskAssessment, error) {
	s.gotIn = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubHistory struct {
	history transfer.History
	err     error
}

func (s *stubHistory) GetUserHistory(context.Context, uuid.UUID, int) (transfer.History, error) {
	return s.history, s.err
}

func newTestHandler(svc risk.Service, history risk.HistoryProvider) *Handler {
	return NewHandler(svc, history, 100, slog.Default(), nil)
}

func postAssessment(t *testing.T, h *Handler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestCreateAssessment(t *testing.T) {
	userID := uuid.New()
	svc := &stubService{
		result: &risk.RiskAssessment{
			UserID:       userID,
			RiskScore:    65,
			Decision:     risk.DecisionDelay,
			HoldDuration: 5 * time.Minute,
			Confidence:   0.7,
			SubScores:    risk.SubScores{Amount: 55, Recipient: 10},
			Reasons: []risk.Reason{{
				Code:   risk.ReasonAmountSigmaOutlier,
				Score:  55,
				Params: map[string]interface{}{"deviation": 20.0, "amount": 3000.0, "mean": 1000.0},
			}},
		},
	}
	h := newTestHandler(svc, &stubHistory{})

	body, err := json.Marshal(map[string]interface{}{
		"user_id":    userID.String(),
		"amount":     "3000",
		"payee_id":   "grocer@okbank",
		"payee_name": "Grocer",
	})
	require.NoError(t, err)

	rec := postAssessment(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AssessmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, userID, resp.UserID)
	assert.Equal(t, 65, resp.RiskScore)
	assert.Equal(t, "DELAY", resp.Decision)
	assert.Equal(t, "5m0s", resp.HoldDuration)
	require.Len(t, resp.Reasons, 1)
	assert.Equal(t, string(risk.ReasonAmountSigmaOutlier), resp.Reasons[0].Code)
	assert.NotEmpty(t, resp.Reasons[0].Message)

	// A request without a timestamp is assessed at the current time.
	assert.WithinDuration(t, time.Now().UTC(), svc.gotIn.Timestamp, 5*time.Second)
}

func TestCreateAssessmentExplicitTimestamp(t *testing.T) {
	svc := &stubService{result: &risk.RiskAssessment{Decision: risk.DecisionApprove}}
	h := newTestHandler(svc, &stubHistory{})

	ts := time.Date(2026, 3, 10, 11, 30, 0, 0, time.UTC)
	body, err := json.Marshal(map[string]interface{}{
		"user_id":   uuid.New().String(),
		"amount":    500,
		"timestamp": ts.Format(time.RFC3339),
		"payee_id":  "grocer@okbank",
	})
	require.NoError(t, err)

	rec := postAssessment(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.gotIn.Timestamp.Equal(ts))
}

func TestCreateAssessmentBadJSON(t *testing.T) {
	h := newTestHandler(&stubService{}, &stubHistory{})

	rec := postAssessment(t, h, []byte(`{not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_JSON", resp.Error.Code)
}

func TestCreateAssessmentMissingFields(t *testing.T) {
	h := newTestHandler(&stubService{}, &stubHistory{})

	body, err := json.Marshal(map[string]interface{}{"amount": 500})
	require.NoError(t, err)

	rec := postAssessment(t, h, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAssessmentServiceError(t *testing.T) {
	svc := &stubService{err: domainerrors.NewValidationError("INVALID_AMOUNT", "amount must be positive")}
	h := newTestHandler(svc, &stubHistory{})

	body, err := json.Marshal(map[string]interface{}{
		"user_id":  uuid.New().String(),
		"amount":   100,
		"payee_id": "grocer@okbank",
	})
	require.NoError(t, err)

	rec := postAssessment(t, h, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_AMOUNT", resp.Error.Code)
}

func TestCreateAssessmentHistoryError(t *testing.T) {
	h := newTestHandler(&stubService{}, &stubHistory{err: assert.AnError})

	body, err := json.Marshal(map[string]interface{}{
		"user_id":  uuid.New().String(),
		"amount":   100,
		"payee_id": "grocer@okbank",
	})
	require.NoError(t, err)

	rec := postAssessment(t, h, body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(&stubService{}, &stubHistory{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}
