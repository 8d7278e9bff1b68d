package tracing

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsCredentials(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/dashboard"),
		attribute.String("access_token", "shpat_123"),
		attribute.String("email", "ali@example.com"),
	)
	if len(attrs) != 1 || attrs[0].Key != "http.route" {
		t.Fatalf("expected only http.route to remain, got %v", attrs)
	}
}

func TestSafeErrorRedactsSecrets(t *testing.T) {
	if got := SafeError(errors.New("bad token shpat_123")); got.Error() != "redacted error" {
		t.Fatalf("expected redacted error, got %q", got.Error())
	}
	if got := SafeError(errors.New("upstream timeout")); got.Error() != "upstream timeout" {
		t.Fatalf("expected message to pass through, got %q", got.Error())
	}
	if SafeError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}
