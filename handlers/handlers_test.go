package handlers

import (
	"agencysite/database"
	"agencysite/intake"
	"agencysite/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const validBody = `{
	"name": "Jane Doe",
	"email": "jane@acme.com",
	"company": "Acme Co",
	"services": ["web", "seo"],
	"projectGoals": "Increase leads",
	"launchDate": "Q3 2025",
	"budgetRange": "10k-25k"
}`

type fakeSubmitter struct {
	receipt intake.Receipt
	err     error
	calls   int
	got     models.ProjectBriefSubmission
}

func (f *fakeSubmitter) Submit(ctx context.Context, sub models.ProjectBriefSubmission) (intake.Receipt, error) {
	f.calls++
	f.got = sub
	return f.receipt, f.err
}

func briefRouter(svc BriefSubmitter) *gin.Engine {
	r := gin.New()
	r.GET("/health", HealthCheck)
	r.POST("/api/project-brief", SubmitBrief(svc))
	r.GET("/api/project-brief", BriefStatus)
	return r
}

func request(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBrief(t *testing.T, w *httptest.ResponseRecorder) models.BriefResponse {
	t.Helper()
	var resp models.BriefResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSubmitBrief_Success(t *testing.T) {
	svc := &fakeSubmitter{receipt: intake.Receipt{ID: "lead-123", ConfirmationSent: true}}

	w := request(briefRouter(svc), http.MethodPost, "/api/project-brief", validBody)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBrief(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, msgSubmitted, resp.Message)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "lead-123", resp.Data.ID)
	assert.Empty(t, resp.Error)

	assert.Equal(t, 1, svc.calls)
	assert.Equal(t, "Acme Co", svc.got.Company)
	assert.Equal(t, []string{"web", "seo"}, svc.got.Services)
}

func TestSubmitBrief_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing fields",
			err:        &intake.ValidationError{Fields: []string{"company"}, Err: intake.ErrMissingFields},
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing required fields",
		},
		{
			name:       "invalid email",
			err:        intake.ErrInvalidEmail,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid email format",
		},
		{
			name:       "notification failed",
			err:        &intake.NotifyError{Err: errors.New("401 unauthorized")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to send notification",
		},
		{
			name:       "unexpected",
			err:        fmt.Errorf("render notification: %w", errors.New("template exploded")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSubmitter{err: tt.err}

			w := request(briefRouter(svc), http.MethodPost, "/api/project-brief", validBody)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeBrief(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Nil(t, resp.Data)
			assert.NotContains(t, w.Body.String(), "401")
			assert.NotContains(t, w.Body.String(), "exploded")
		})
	}
}

func TestSubmitBrief_InvalidBody(t *testing.T) {
	bodies := []string{
		"",
		"not json",
		`["an", "array"]`,
		`{"services": "web"}`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			svc := &fakeSubmitter{}

			w := request(briefRouter(svc), http.MethodPost, "/api/project-brief", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Invalid request body", decodeBrief(t, w).Error)
			assert.Zero(t, svc.calls)
		})
	}
}

func TestSubmitBrief_BodyTooLarge(t *testing.T) {
	svc := &fakeSubmitter{}
	body := fmt.Sprintf(`{"name":"Jane Doe","projectGoals":%q}`, strings.Repeat("a", maxBriefBytes))

	w := request(briefRouter(svc), http.MethodPost, "/api/project-brief", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Request body too large", decodeBrief(t, w).Error)
	assert.Zero(t, svc.calls)
}

func TestSubmitBrief_BodyAtLimit(t *testing.T) {
	svc := &fakeSubmitter{receipt: intake.Receipt{ID: "lead-1"}}
	goals := strings.Repeat("a", maxBriefBytes/2)
	body := fmt.Sprintf(`{"name":"Jane Doe","projectGoals":%q}`, goals)

	w := request(briefRouter(svc), http.MethodPost, "/api/project-brief", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, goals, svc.got.ProjectGoals)
}

func TestSubmitBrief_WithRealService(t *testing.T) {
	svc := intake.NewService(intake.NewDevDispatcher(zap.NewNop()), zap.NewNop())
	r := briefRouter(svc)

	w := request(r, http.MethodPost, "/api/project-brief", validBody)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBrief(t, w)
	require.NotNil(t, resp.Data)
	assert.True(t, strings.HasPrefix(resp.Data.ID, "dev-"))

	w = request(r, http.MethodPost, "/api/project-brief",
		strings.Replace(validBody, "jane@acme.com", "not-an-email", 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid email format", decodeBrief(t, w).Error)

	w = request(r, http.MethodPost, "/api/project-brief",
		strings.Replace(validBody, `["web", "seo"]`, `[]`, 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields", decodeBrief(t, w).Error)
}

func TestBriefStatus(t *testing.T) {
	w := request(briefRouter(&fakeSubmitter{}), http.MethodGet, "/api/project-brief", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Project brief API endpoint is working"}`, w.Body.String())
}

func TestHealthCheck(t *testing.T) {
	w := request(briefRouter(&fakeSubmitter{}), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

type fakeLeads struct {
	leads  []models.Lead
	total  int64
	err    error
	params models.LeadQueryParams
}

func (f *fakeLeads) QueryLeads(ctx context.Context, params models.LeadQueryParams) ([]models.Lead, int64, error) {
	f.params = params
	return f.leads, f.total, f.err
}

func (f *fakeLeads) GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.leads {
		if f.leads[i].ID == id {
			return &f.leads[i], nil
		}
	}
	return nil, database.ErrLeadNotFound
}

func leadsRouter(store LeadReader) *gin.Engine {
	r := gin.New()
	r.GET("/api/leads", ListLeads(store))
	r.GET("/api/leads/:id", GetLead(store))
	return r
}

func TestListLeads(t *testing.T) {
	lead := models.Lead{ID: uuid.New(), Company: "Acme Co", ReceivedAt: time.Now()}
	store := &fakeLeads{leads: []models.Lead{lead}, total: 3}

	w := request(leadsRouter(store), http.MethodGet, "/api/leads?service=web&budget=10k-25k&q=online+store&limit=1&offset=1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.LeadsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Total)
	assert.True(t, resp.HasMore)
	require.Len(t, resp.Leads, 1)
	assert.Equal(t, "Acme Co", resp.Leads[0].Company)

	assert.Equal(t, "web", store.params.Service)
	assert.Equal(t, "10k-25k", store.params.Budget)
	assert.Equal(t, "online store", store.params.Search)
	assert.Equal(t, 1, store.params.Limit)
}

func TestListLeads_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		err        error
		wantStatus int
	}{
		{name: "bad limit", query: "?limit=many", wantStatus: http.StatusBadRequest},
		{name: "invalid query", query: "?since=yesterday", err: fmt.Errorf("%w: invalid since", database.ErrInvalidQuery), wantStatus: http.StatusBadRequest},
		{name: "database down", err: errors.New("connection refused"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(leadsRouter(&fakeLeads{err: tt.err}), http.MethodGet, "/api/leads"+tt.query, "")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestGetLead(t *testing.T) {
	lead := models.Lead{ID: uuid.New(), Company: "Acme Co"}
	r := leadsRouter(&fakeLeads{leads: []models.Lead{lead}})

	w := request(r, http.MethodGet, "/api/leads/"+lead.ID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Acme Co")

	w = request(r, http.MethodGet, "/api/leads/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = request(r, http.MethodGet, "/api/leads/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
