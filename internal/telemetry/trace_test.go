package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer creates a test tracer with in-memory exporter
func setupTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	res, err := createResource(DefaultConfig())
	if err != nil {
		t.Fatalf("createResource failed: %v", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	providerMu.Lock()
	globalProvider = tp
	providerMu.Unlock()

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		providerMu.Lock()
		globalProvider = nil
		providerMu.Unlock()
	})

	return tp, exporter
}

func hasAttr(attrs []attribute.KeyValue, key, value string) bool {
	for _, a := range attrs {
		if string(a.Key) == key && a.Value.AsString() == value {
			return true
		}
	}
	return false
}

func TestStartCommandSpan(t *testing.T) {
	_, exporter := setupTestTracer(t)

	ctx := context.Background()
	spanCtx, span := StartCommandSpan(ctx, "users list")
	if spanCtx == ctx {
		t.Error("expected new context with span, got same context")
	}
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "command.users list" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	if !hasAttr(spans[0].Attributes, "command", "users list") {
		t.Error("missing 'command' attribute")
	}
	if !hasAttr(spans[0].Attributes, "component", "cli") {
		t.Error("missing 'component' attribute")
	}
}

func TestStartAPISpan(t *testing.T) {
	_, exporter := setupTestTracer(t)

	_, span := StartAPISpan(context.Background(), "users.delete", "DELETE", "/admin/delete/user/{id}")
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name != "api.users.delete" {
		t.Errorf("span name = %q", s.Name)
	}
	if !hasAttr(s.Attributes, "http.route", "/admin/delete/user/{id}") {
		t.Error("missing route attribute")
	}
	if !hasAttr(s.Attributes, "http.request.method", "DELETE") {
		t.Error("missing method attribute")
	}
}

func TestRecordSuccessAndError(t *testing.T) {
	_, exporter := setupTestTracer(t)

	_, ok := StartCommandSpan(context.Background(), "ok")
	RecordSuccess(ok, attribute.Int("items", 3))
	ok.End()

	_, bad := StartCommandSpan(context.Background(), "bad")
	RecordError(bad, errors.New("boom"))
	bad.End()

	_, nilErr := StartCommandSpan(context.Background(), "nil")
	RecordError(nilErr, nil)
	nilErr.End()

	spans := exporter.GetSpans()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Ok {
		t.Errorf("status = %v, want Ok", spans[0].Status.Code)
	}
	if spans[1].Status.Code != codes.Error || spans[1].Status.Description != "boom" {
		t.Errorf("status = %+v, want Error/boom", spans[1].Status)
	}
	if len(spans[1].Events) == 0 {
		t.Error("expected an exception event")
	}
	if spans[2].Status.Code != codes.Unset {
		t.Errorf("nil error should leave status unset, got %v", spans[2].Status.Code)
	}
}

func TestTransportCreatesClientSpan(t *testing.T) {
	_, exporter := setupTestTracer(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := &http.Client{Transport: Transport(nil)}

	ctx, parent := StartCommandSpan(context.Background(), "catalog")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/skills-and-subskills", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	parent.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected client and command spans, got %d", len(spans))
	}
	if spans[0].Name != "HTTP GET" {
		t.Errorf("client span name = %q", spans[0].Name)
	}
	if spans[0].Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("client span should be a child of the command span")
	}
}
