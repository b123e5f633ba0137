package httpapi

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"buildhook/internal/coordinator"
)

func TestHookResultsCounter(t *testing.T) {
	before := testutil.ToFloat64(hookResultsTotal.WithLabelValues("cancel", "failed"))
	h := NewMux(Deps{Service: &mockService{outcome: coordinator.Failed}})
	h.ServeHTTP(newRecorder(), jsonRequest(http.MethodPost, "/v1/build/cancel", ""))
	h.ServeHTTP(newRecorder(), jsonRequest(http.MethodPost, "/v1/build/cancel", ""))
	if got := testutil.ToFloat64(hookResultsTotal.WithLabelValues("cancel", "failed")); got != before+2 {
		t.Fatalf("hook results=%v want %v", got, before+2)
	}
}
