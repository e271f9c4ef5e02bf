package ctxutil

import (
	"context"
	"testing"
)

func TestEnsureTraceID(t *testing.T) {
	ctx, id := EnsureTraceID(context.Background())
	if id == "" {
		t.Fatal("EnsureTraceID() returned empty id")
	}
	if got := GetTraceID(ctx); got != id {
		t.Errorf("GetTraceID() = %q, want %q", got, id)
	}

	ctx2, id2 := EnsureTraceID(ctx)
	if id2 != id || ctx2 != ctx {
		t.Error("EnsureTraceID() should keep an existing trace id")
	}
}

func TestPaginatorID(t *testing.T) {
	if got := GetPaginatorID(context.Background()); got != "" {
		t.Errorf("GetPaginatorID() = %q, want empty", got)
	}
	ctx := SetPaginatorID(context.Background(), "p1")
	if got := GetPaginatorID(ctx); got != "p1" {
		t.Errorf("GetPaginatorID() = %q, want p1", got)
	}
}
