package llm

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedGenerator wraps a TextGenerator with an OpenTelemetry span
// per call, recording prompt size and token usage.
type InstrumentedGenerator struct {
	inner  TextGenerator
	tracer trace.Tracer
}

// NewInstrumentedGenerator decorates generator with tracing.
func NewInstrumentedGenerator(generator TextGenerator, tracer trace.Tracer) *InstrumentedGenerator {
	return &InstrumentedGenerator{inner: generator, tracer: tracer}
}

// GenerateContent delegates to the wrapped generator inside a span.
func (g *InstrumentedGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	ctx, span := g.tracer.Start(ctx, "llm.GenerateContent",
		trace.WithAttributes(attribute.Int("prompt_size_bytes", len(prompt))))
	defer span.End()

	resp, err := g.inner.GenerateContent(ctx, prompt)
	if err != nil {
		span.SetStatus(codes.Error, "generate content failed")
		span.RecordError(err)
		return resp, err
	}

	span.SetAttributes(
		attribute.Int("response_content_length", len(resp.Content)),
		attribute.Int("prompt_tokens", resp.Usage.PromptTokens),
		attribute.Int("completion_tokens", resp.Usage.CompletionTokens),
		attribute.String("model", resp.Usage.Model),
	)

	return resp, nil
}

// Close closes the wrapped generator when it supports closing.
func (g *InstrumentedGenerator) Close() error {
	if c, ok := g.inner.(Closer); ok {
		return c.Close()
	}
	return nil
}
