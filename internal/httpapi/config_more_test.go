package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSetMaxBodyBytes_DefaultWhenNonPositive(t *testing.T) {
	SetMaxBodyBytes(-1)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB, got %d", maxBodyBytes)
	}
	SetMaxBodyBytes(0)
	if maxBodyBytes != 1<<20 {
		t.Fatalf("expected default 1MiB on zero, got %d", maxBodyBytes)
	}
}

func TestSetMaxBodyBytes_PositiveSetsValue(t *testing.T) {
	SetMaxBodyBytes(1234)
	defer SetMaxBodyBytes(0)
	if maxBodyBytes != 1234 {
		t.Fatalf("expected 1234, got %d", maxBodyBytes)
	}
}

func TestMaxBodyBytes_RejectsLargeBodies(t *testing.T) {
	SetMaxBodyBytes(16)
	defer SetMaxBodyBytes(0)
	h := NewMux(Deps{Service: &mockService{}})
	body := `{"data":"` + strings.Repeat("x", 64) + `"}`
	w := httptest.NewRecorder()
	h.ServeHTTP(w, jsonRequest(http.MethodPost, "/v1/build/raw", body))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCORS_PreflightWhenEnabled(t *testing.T) {
	SetCORSOptions(true, []string{"http://ide.local"}, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)
	h := NewMux(Deps{Service: &mockService{}})
	req := httptest.NewRequest(http.MethodOptions, "/v1/status", nil)
	req.Header.Set("Origin", "http://ide.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://ide.local" {
		t.Fatalf("allow-origin=%q status=%d", got, w.Code)
	}
}

func TestCORS_DisabledAddsNoHeaders(t *testing.T) {
	SetCORSOptions(false, nil, nil, nil)
	h := NewMux(Deps{Service: &mockService{}})
	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	req.Header.Set("Origin", "http://ide.local")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}
