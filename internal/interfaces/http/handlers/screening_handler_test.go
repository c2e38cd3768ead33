package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Graphyte-Intelligence/internal/application/screening"
	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/intelligence/riskclf"
	"github.com/turtacn/Graphyte-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockService struct {
	mock.Mock
}

func (m *mockService) Analyze(ctx context.Context, req *screening.AnalyzeRequest) (*screening.Screening, error) {
	args := m.Called(ctx, req)
	sc, _ := args.Get(0).(*screening.Screening)
	return sc, args.Error(1)
}

func (m *mockService) Explain(ctx context.Context, req *screening.ExplainRequest) (*screening.Explanation, error) {
	args := m.Called(ctx, req)
	e, _ := args.Get(0).(*screening.Explanation)
	return e, args.Error(1)
}

func (m *mockService) QualityReport(ctx context.Context) (*riskclf.QualityReport, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*riskclf.QualityReport)
	return r, args.Error(1)
}

func (m *mockService) Retrain(ctx context.Context, trigger string) (*screening.ModelSummary, error) {
	args := m.Called(ctx, trigger)
	s, _ := args.Get(0).(*screening.ModelSummary)
	return s, args.Error(1)
}

func (m *mockService) Model(ctx context.Context) (*screening.ModelSummary, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*screening.ModelSummary)
	return s, args.Error(1)
}

func (m *mockService) Typologies() []screening.TypologyInfo {
	return m.Called().Get(0).([]screening.TypologyInfo)
}

func (m *mockService) Entities(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	e, _ := args.Get(0).([]string)
	return e, args.Error(1)
}

func (m *mockService) GetScreening(ctx context.Context, id string) (*risk.ScreeningRecord, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*risk.ScreeningRecord)
	return r, args.Error(1)
}

func (m *mockService) ListScreenings(ctx context.Context, entity string, limit int) ([]*risk.ScreeningRecord, error) {
	args := m.Called(ctx, entity, limit)
	r, _ := args.Get(0).([]*risk.ScreeningRecord)
	return r, args.Error(1)
}

func (m *mockService) Ready() bool {
	return m.Called().Bool(0)
}

func newTestRouter(svc screening.Service) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	NewScreeningHandler(svc, nil).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func do(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestScreeningHandler_Analyze(t *testing.T) {
	svc := new(mockService)
	result := risk.NewFoundResult("Ivan Petrov", []risk.EvidenceItem{
		{PredictedRisk: risk.TypologyCorruption, Confidence: 0.9},
	})
	svc.On("Analyze", mock.Anything, mock.MatchedBy(func(req *screening.AnalyzeRequest) bool {
		return req.Entity == "petrov" && req.Mode == "local" && req.MinConfidence != nil && *req.MinConfidence == 0.7
	})).Return(&screening.Screening{
		ID:           "abc",
		Mode:         screening.ModeLocal,
		ModelVersion: "v1",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Result:       result,
		Profile:      risk.BuildProfile(result),
	}, nil)

	w := do(newTestRouter(svc), http.MethodPost, "/api/v1/screenings",
		`{"entity":"petrov","mode":"local","min_confidence":0.7}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "abc", got["id"])
	assert.Equal(t, "v1", got["model_version"])
	res := got["result"].(map[string]interface{})
	assert.Equal(t, "found", res["status"])
	assert.Equal(t, "Ivan Petrov", res["entity"])
	svc.AssertExpectations(t)
}

func TestScreeningHandler_AnalyzeErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "malformed body",
			body:       `{"entity":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   string(errors.ErrCodeBadRequest),
		},
		{
			name:       "validation",
			body:       `{"entity":""}`,
			err:        errors.New(errors.ErrCodeValidation, "entity is required"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   string(errors.ErrCodeValidation),
			wantMsg:    "entity is required",
		},
		{
			name:       "unknown typology",
			body:       `{"entity":"x","typologies":["piracy"]}`,
			err:        errors.New(errors.ErrCodeUnknownTypology, "unknown typology").WithDetail("piracy"),
			wantStatus: http.StatusBadRequest,
			wantCode:   string(errors.ErrCodeUnknownTypology),
			wantMsg:    "unknown typology: piracy",
		},
		{
			name:       "model not ready",
			body:       `{"entity":"x"}`,
			err:        screening.ErrModelNotReady,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   string(errors.ErrCodeModelNotReady),
		},
		{
			name:       "internal is masked",
			body:       `{"entity":"x"}`,
			err:        errors.New(errors.ErrCodeDatabaseError, "pq: password authentication failed"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   string(errors.ErrCodeDatabaseError),
			wantMsg:    "database error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			if tt.err != nil {
				svc.On("Analyze", mock.Anything, mock.Anything).Return(nil, tt.err)
			}
			w := do(newTestRouter(svc), http.MethodPost, "/api/v1/screenings", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)

			resp := decodeError(t, w)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.RequestID)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Message)
			}
			assert.NotContains(t, resp.Message, "password")
		})
	}
}

func TestScreeningHandler_ForeignErrorIsInternal(t *testing.T) {
	svc := new(mockService)
	svc.On("Model", mock.Anything).Return(nil, context.DeadlineExceeded)

	w := do(newTestRouter(svc), http.MethodGet, "/api/v1/model", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(errors.ErrCodeInternal), decodeError(t, w).Code)
}

func TestScreeningHandler_Explain(t *testing.T) {
	svc := new(mockService)
	svc.On("Explain", mock.Anything, &screening.ExplainRequest{Snippet: "bribes paid", Typology: "corruption"}).
		Return(&screening.Explanation{
			Typology:      risk.TypologyCorruption,
			ModelVersion:  "v1",
			Contributions: []riskclf.TokenContribution{{Token: "bribes", Weight: 1.5}},
		}, nil)

	w := do(newTestRouter(svc), http.MethodPost, "/api/v1/explanations",
		screening.ExplainRequest{Snippet: "bribes paid", Typology: "corruption"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got screening.Explanation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, risk.TypologyCorruption, got.Typology)
	require.Len(t, got.Contributions, 1)
	assert.Equal(t, "bribes", got.Contributions[0].Token)
}

func TestScreeningHandler_ModelEndpoints(t *testing.T) {
	svc := new(mockService)
	summary := &screening.ModelSummary{Version: "v2", Classes: []risk.Typology{risk.TypologyFraud, risk.TypologyNeutral}}
	svc.On("Model", mock.Anything).Return(summary, nil)
	svc.On("Retrain", mock.Anything, screening.TriggerManual).Return(summary, nil)
	svc.On("QualityReport", mock.Anything).Return(&riskclf.QualityReport{ModelVersion: "v2", Accuracy: 0.75}, nil)
	r := newTestRouter(svc)

	w := do(r, http.MethodGet, "/api/v1/model", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"v2"`)

	w = do(r, http.MethodPost, "/api/v1/model/retrain", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/v1/model/quality", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report riskclf.QualityReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 0.75, report.Accuracy)

	svc.AssertExpectations(t)
}

func TestScreeningHandler_Catalogues(t *testing.T) {
	svc := new(mockService)
	svc.On("Typologies").Return([]screening.TypologyInfo{
		{Name: risk.TypologySanctions, Severity: risk.SeverityHigh, Risk: true, Critical: true},
	})
	svc.On("Entities", mock.Anything).Return(nil, nil)
	r := newTestRouter(svc)

	w := do(r, http.MethodGet, "/api/v1/typologies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var typologies ListResponse[screening.TypologyInfo]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &typologies))
	assert.Equal(t, 1, typologies.Total)
	assert.True(t, typologies.Items[0].Critical)

	w = do(r, http.MethodGet, "/api/v1/entities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"total":0}`, w.Body.String())
}

func TestScreeningHandler_History(t *testing.T) {
	svc := new(mockService)
	rec := &risk.ScreeningRecord{ID: "r1", Query: "petrov", Mode: "local", ModelVersion: "v1"}
	svc.On("GetScreening", mock.Anything, "r1").Return(rec, nil)
	svc.On("GetScreening", mock.Anything, "missing").Return(nil, errors.NotFound("screening not found"))
	svc.On("ListScreenings", mock.Anything, "Ivan Petrov", 5).Return([]*risk.ScreeningRecord{rec}, nil)
	r := newTestRouter(svc)

	w := do(r, http.MethodGet, "/api/v1/screenings/r1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"r1"`)

	w = do(r, http.MethodGet, "/api/v1/screenings/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/v1/screenings?entity=Ivan+Petrov&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = do(r, http.MethodGet, "/api/v1/screenings?entity=Ivan+Petrov&limit=-1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	svc.AssertExpectations(t)
}

//Personal.AI order the ending
