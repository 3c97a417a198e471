package wizard

import (
	"agencysite/models"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *HTTPTransport {
	t.Helper()
	srv := httptest.NewServer(handler)
	transport := NewHTTPTransport(srv.URL+"/", 5*time.Second)
	t.Cleanup(func() {
		transport.Close()
		srv.Close()
	})
	return transport
}

func TestHTTPTransport_Success(t *testing.T) {
	received := make(chan models.ProjectBriefSubmission, 1)
	transport := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, BriefPath, r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		var brief models.ProjectBriefSubmission
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&brief))
		received <- brief

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"Thank you!","data":{"id":"abc-123"}}`))
	})

	result, err := transport.Submit(context.Background(), models.ProjectBriefSubmission{
		Name: "Jane Doe", Email: "jane@acme.com", Services: []string{"web", "seo"},
	})
	require.NoError(t, err)

	assert.Equal(t, "abc-123", result.ID)
	assert.Equal(t, "Thank you!", result.Message)
	got := <-received
	assert.Equal(t, "Jane Doe", got.Name)
	assert.Equal(t, []string{"web", "seo"}, got.Services)
}

func TestHTTPTransport_ServerErrorVerbatim(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "validation", status: http.StatusBadRequest, body: `{"success":false,"error":"Invalid email format"}`, wantMsg: "Invalid email format"},
		{name: "provider", status: http.StatusInternalServerError, body: `{"success":false,"error":"Failed to send notification"}`, wantMsg: "Failed to send notification"},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"success":false,"error":"Too many requests"}`, wantMsg: "Too many requests"},
		{name: "no body", status: http.StatusBadGateway, body: ``, wantMsg: "server returned 502 Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.body != "" {
					w.Header().Set("Content-Type", "application/json")
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := transport.Submit(context.Background(), models.ProjectBriefSubmission{})
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.True(t, IsServerError(err))

			var se *ServerError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
		})
	}
}

func TestHTTPTransport_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	transport := NewHTTPTransport(url, time.Second)
	defer transport.Close()

	_, err := transport.Submit(context.Background(), models.ProjectBriefSubmission{})
	require.Error(t, err)
	assert.False(t, IsServerError(err))
	assert.Contains(t, err.Error(), "failed to reach server")
}

func TestWizardWithHTTPTransport(t *testing.T) {
	var calls atomic.Int32
	transport := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"id":"lead-9"}}`))
	})

	w := New(transport)
	completeWizard(t, w)
	require.NoError(t, w.Submit(context.Background()))

	assert.Equal(t, "lead-9", w.Snapshot().ID)
	assert.Equal(t, int32(1), calls.Load())
}
