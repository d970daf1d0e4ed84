package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Brownie44l1/fault-api/internal/model"
)

func TestCORS_Preflight(t *testing.T) {
	router := newTestRouter(&fakeClassifier{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code >= 300 {
		t.Fatalf("preflight rejected with %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected origin to be echoed, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials allowed, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, http.MethodPost) {
		t.Errorf("POST not in allowed methods %q", got)
	}
	allowed := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
	if strings.Contains(allowed, "*") {
		t.Errorf("wildcard allow-headers is ignored by browsers with credentials: %q", allowed)
	}
	for _, header := range []string{"content-type", "accept", "authorization", "x-request-id"} {
		if !strings.Contains(allowed, header) {
			t.Errorf("%s not in allowed headers %q", header, allowed)
		}
	}
}

func TestCORS_AnyOrigin(t *testing.T) {
	router := newTestRouter(&fakeClassifier{dist: model.Distribution{1, 0, 0, 0}}, nil)

	for _, origin := range []string{"https://fault-ui.example.org", "http://10.0.0.7:5173"} {
		req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"features": [1, 2, 3, 4]}`))
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", origin, w.Code)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != origin {
			t.Errorf("%s: got Access-Control-Allow-Origin %q", origin, got)
		}
	}
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(&fakeClassifier{}, nil)

	w := do(router, http.MethodGet, "/health", "")
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("expected caller request id to be kept, got %q", got)
	}
}
