package requestctx

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Fatalf("GetRequestID = %q, want req-123", got)
	}
}

func TestRequestIDMissing(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Fatalf("GetRequestID on empty context = %q, want empty", got)
	}
}
