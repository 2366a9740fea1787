package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benefits-data/marginal.report/internal/testutil"
)

func TestServeMuxRoutes(t *testing.T) {
	s, _ := newTestServer()
	mux := s.ServeMux()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/states", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodPost, "/states", http.StatusMethodNotAllowed},
		{http.MethodPost, "/marginal-child", http.StatusBadRequest},
		{http.MethodGet, "/chart/marginal-child?income_max=5000&income_step=2500&max_children=1", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := testutil.NewTestRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}
}

func TestLoggingMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	wrapped := LoggingMiddleware(handler)

	rec := testutil.NewTestRecorder()
	wrapped.ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/anything"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusTeapot)
}

func TestStatusCodeColor(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, colorBoldGreen + "200" + colorReset},
		{302, colorYellow + "302" + colorReset},
		{404, colorBoldRed + "404" + colorReset},
		{502, colorBoldRed + "502" + colorReset},
		{100, "100"},
	}

	for _, tt := range tests {
		if got := statusCodeColor(tt.code); got != tt.want {
			t.Errorf("statusCodeColor(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
