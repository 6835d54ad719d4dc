package api

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/neos-go/neos-go/errors"
	"github.com/neos-go/neos-go/logger"
)

const instrumentationName = "github.com/neos-go/neos-go/api"

// instrumentation records a span, a latency histogram and error
// counters for every dispatched request.
type instrumentation struct {
	tracer      trace.Tracer
	duration    metric.Float64Histogram
	errors      metric.Int64Counter
	rateLimited metric.Int64Counter
}

func newInstrumentation(tp trace.TracerProvider, mp metric.MeterProvider, log logger.Logger) *instrumentation {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	instr, err := newMeteredInstrumentation(tp.Tracer(instrumentationName), mp.Meter(instrumentationName))
	if err != nil {
		log.Warnf("Neos API metrics disabled: %v", err)
		instr, _ = newMeteredInstrumentation(tp.Tracer(instrumentationName), noop.NewMeterProvider().Meter(instrumentationName))
	}
	return instr
}

func newMeteredInstrumentation(tracer trace.Tracer, meter metric.Meter) (*instrumentation, error) {
	duration, err := meter.Float64Histogram(
		"neos.api.request.duration",
		metric.WithDescription("Duration of Neos API requests in seconds, rate limit waits included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errCounter, err := meter.Int64Counter(
		"neos.api.request.errors",
		metric.WithDescription("Number of failed Neos API requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	rateLimited, err := meter.Int64Counter(
		"neos.api.rate_limited",
		metric.WithDescription("Number of 429 responses from the Neos API"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, err
	}

	return &instrumentation{
		tracer:      tracer,
		duration:    duration,
		errors:      errCounter,
		rateLimited: rateLimited,
	}, nil
}

func (i *instrumentation) start(ctx context.Context, method string, path string) (context.Context, trace.Span) {
	route, _, _ := strings.Cut(path, "?")
	return i.tracer.Start(ctx, "neos.api "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("neos.api.path", route),
		),
	)
}

func (i *instrumentation) record(
	ctx context.Context,
	span trace.Span,
	method string,
	start time.Time,
	res *Response,
	err *errors.RequestError,
) {
	elapsed := time.Since(start).Seconds()
	attrs := []attribute.KeyValue{attribute.String("http.request.method", method)}

	switch {
	case err != nil:
		attrs = append(attrs, attribute.String("neos.api.error.kind", err.Kind))
		if err.StatusCode != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", err.StatusCode))
		}
		i.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
		if errors.IsRateLimited(err) {
			i.rateLimited.Add(ctx, 1, metric.WithAttributes(attrs[0]))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case res != nil:
		span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
		span.SetStatus(codes.Ok, "")
	}

	i.duration.Record(ctx, elapsed, metric.WithAttributes(attrs...))
	span.End()
}
