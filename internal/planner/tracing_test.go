package planner

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestEnrichRecordsErrorSpanForDegradedCall(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	insights := &fakeInsights{failFor: map[string]int{"Place 00": -1}}
	enricher := NewEnricher(insights, &fakeImages{}, nil)
	enricher.Tracer = provider.Tracer("planner-test")

	if _, _, err := enricher.Enrich(context.Background(), "Rome", manyPlaces(1)); err != nil {
		t.Fatalf("enrich: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected insight and image spans, got %d", len(spans))
	}
	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range spans {
		byName[s.Name()] = s
	}

	insight, ok := byName["planner.insight"]
	if !ok {
		t.Fatalf("missing insight span")
	}
	if insight.Status().Code != codes.Error || len(insight.Events()) == 0 {
		t.Errorf("degraded insight should record an error, got status %+v events %d", insight.Status(), len(insight.Events()))
	}
	image, ok := byName["planner.image"]
	if !ok {
		t.Fatalf("missing image span")
	}
	if image.Status().Code == codes.Error {
		t.Errorf("successful image call must not be marked as failed")
	}
	var sawPlace bool
	for _, attr := range insight.Attributes() {
		if attr.Key == "place.name" && attr.Value.AsString() == "Place 00" {
			sawPlace = true
		}
	}
	if !sawPlace {
		t.Errorf("insight span should carry the place name")
	}
}
