package services_test

import (
	"context"
	"testing"

	"cutroom/internal/services"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "sess-42")
	ctx = services.WithStage(ctx, "sync")
	ctx = services.WithJobID(ctx, "render-1")

	if id, ok := services.SessionIDFromContext(ctx); !ok || id != "sess-42" {
		t.Fatalf("session id: got %q, %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "sync" {
		t.Fatalf("stage: got %q, %v", stage, ok)
	}
	if id, ok := services.JobIDFromContext(ctx); !ok || id != "render-1" {
		t.Fatalf("job id: got %q, %v", id, ok)
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id")
	}
}
