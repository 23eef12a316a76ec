package services_test

import (
	"context"
	"testing"

	"celldump/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithPluginPath(ctx, "/mods/Unofficial.esp")
	ctx = services.WithFingerprint(ctx, "7rklmfhhtsq5")

	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
	if path, ok := services.PluginPathFromContext(ctx); !ok || path != "/mods/Unofficial.esp" {
		t.Fatalf("unexpected plugin path: %v %v", path, ok)
	}
	if fp, ok := services.FingerprintFromContext(ctx); !ok || fp != "7rklmfhhtsq5" {
		t.Fatalf("unexpected fingerprint: %v %v", fp, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithPluginPath(ctx, "")
	ctx = services.WithFingerprint(ctx, "")
	ctx = services.WithRequestID(ctx, "")
	if _, ok := services.PluginPathFromContext(ctx); ok {
		t.Fatal("expected no plugin path value")
	}
	if _, ok := services.FingerprintFromContext(ctx); ok {
		t.Fatal("expected no fingerprint value")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id value")
	}
}
