package httpapi

import (
	"context"
	"testing"
)

func TestSetBaseContext_NilResetsToBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	SetBaseContext(ctx)
	cancel()
	if actionContext().Err() == nil {
		t.Fatalf("action context should follow the base context")
	}
	// nolint:staticcheck // SA1012: this test intentionally passes nil to verify fallback behavior
	SetBaseContext(nil)
	if actionContext().Err() != nil {
		t.Fatalf("nil base context should fall back to Background")
	}
}

func TestActionContext_IgnoresRequestCancellation(t *testing.T) {
	SetBaseContext(context.Background())
	svc := &mockService{}
	h := NewMux(Deps{Service: svc})
	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()
	req := jsonRequest("POST", "/v1/build/pre", "").WithContext(reqCtx)
	h.ServeHTTP(newRecorder(), req)
	if svc.lastCtxErr != nil {
		t.Fatalf("actions must not inherit a canceled request context: %v", svc.lastCtxErr)
	}
}
