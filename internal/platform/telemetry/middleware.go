package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quoteswipe/internal/platform/logging"
)

const instrumentationName = "github.com/jsamuelsen/quoteswipe/internal/platform/telemetry"

// HeaderTraceID exposes the trace id to the web client for bug reports.
const HeaderTraceID = "X-Trace-ID"

type httpMetrics struct {
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

func newHTTPMetrics() (*httpMetrics, error) {
	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of gateway requests."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	active, err := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Requests in flight."),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{duration: duration, active: active}, nil
}

// Middleware returns the request instrumentation: an otelgin span per
// request, followed by a handler that exposes the trace id in the response
// and the request logger and records the request metrics.
func Middleware(serviceName string) gin.HandlersChain {
	m, err := newHTTPMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return gin.HandlersChain{
		otelgin.Middleware(serviceName),
		func(c *gin.Context) {
			ctx := c.Request.Context()

			if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
				id := sc.TraceID().String()
				c.Header(HeaderTraceID, id)
				c.Request = c.Request.WithContext(logging.WithTraceID(ctx, id))
			}

			if m == nil {
				c.Next()
				return
			}

			start := time.Now()
			route := metric.WithAttributes(attribute.String("http.route", c.FullPath()))

			m.active.Add(ctx, 1, route)
			c.Next()
			m.active.Add(ctx, -1, route)

			m.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", c.FullPath()),
				attribute.Int("http.response.status_code", c.Writer.Status()),
			))
		},
	}
}
