package tracing

import (
	"fmt"

	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var GlobalTracer = otel.Tracer("beleske-backend")

func EndSpanWithErrCheck(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Setup configures the OpenTelemetry SDK via the honeycomb otel-config
// distro; the returned func flushes and shuts the exporters down. When
// tracing is disabled it is a no-op (GlobalTracer spans then go nowhere).
func Setup(enabled bool, serviceName string) (shutdown func(), err error) {
	if !enabled {
		log.Debugln("otel tracing disabled")
		return func() {}, nil
	}

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(serviceName),
	)
	if err != nil {
		return nil, fmt.Errorf("configure opentelemetry: %w", err)
	}

	log.Debugln("otel tracing set up")

	return otelShutdown, nil
}
