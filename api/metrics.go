package api

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName         = "taskboard/api"
	observabilityEvent = "observability.event"

	projectsRoute       = "/api/projects"
	projectsSpanName    = "GET " + projectsRoute
	projectsEventName   = "taskboard.projects.request"
	projectsEventDomain = "taskboard.api"
)

type projectRequestMetrics struct {
	logger           *log.Logger
	span             trace.Span
	start            time.Time
	fetchDuration    time.Duration
	encodeDuration   time.Duration
	projectsReturned int
	done             int
	errorStage       string
}

func newProjectRequestMetrics(ctx context.Context, logger *log.Logger) (*projectRequestMetrics, context.Context) {
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, projectsSpanName, trace.WithSpanKind(trace.SpanKindServer))
	return &projectRequestMetrics{
		logger: logger,
		span:   span,
		start:  time.Now(),
	}, spanCtx
}

func (m *projectRequestMetrics) ObserveFetch(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.fetchDuration = duration
}

func (m *projectRequestMetrics) ObserveEncode(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.encodeDuration = duration
}

// SetProjectsReturned records how many projects were returned and how many of
// them derive as DONE.
func (m *projectRequestMetrics) SetProjectsReturned(count, done int) {
	if count < 0 {
		count = 0
	}
	if done < 0 {
		done = 0
	}
	m.projectsReturned = count
	m.done = done
}

func (m *projectRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

// Log emits the request as an observability event on both the log and the
// span, then ends the span.
func (m *projectRequestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	totalMs := durationToMillis(time.Since(m.start))
	kvs := []attribute.KeyValue{
		attribute.String("http.route", projectsRoute),
		attribute.Int("http.status_code", status),
		attribute.Float64("taskboard.projects.total_ms", totalMs),
		attribute.Int("taskboard.projects.returned", m.projectsReturned),
		attribute.Int("taskboard.projects.done", m.done),
	}
	attrs := map[string]any{
		"http.route":                  projectsRoute,
		"http.status_code":            status,
		"taskboard.projects.total_ms": totalMs,
		"taskboard.projects.returned": m.projectsReturned,
		"taskboard.projects.done":     m.done,
	}
	if m.fetchDuration > 0 {
		ms := durationToMillis(m.fetchDuration)
		kvs = append(kvs, attribute.Float64("taskboard.projects.fetch_ms", ms))
		attrs["taskboard.projects.fetch_ms"] = ms
	}
	if m.encodeDuration > 0 {
		ms := durationToMillis(m.encodeDuration)
		kvs = append(kvs, attribute.Float64("taskboard.projects.encode_ms", ms))
		attrs["taskboard.projects.encode_ms"] = ms
	}
	if m.errorStage != "" {
		kvs = append(kvs, attribute.String("taskboard.projects.error_stage", m.errorStage))
		attrs["taskboard.projects.error_stage"] = m.errorStage
	}
	if err != nil {
		kvs = append(kvs, attribute.String("error.message", err.Error()))
		attrs["error.message"] = err.Error()
	}

	severityText, severityNumber := severityForStatus(status, err)

	if m.span != nil {
		m.span.SetAttributes(kvs...)
		eventAttrs := append([]attribute.KeyValue{
			attribute.String("event.name", projectsEventName),
			attribute.String("event.domain", projectsEventDomain),
			attribute.String("severity_text", severityText),
			attribute.Int("severity_number", severityNumber),
		}, kvs...)
		m.span.AddEvent(observabilityEvent, trace.WithAttributes(eventAttrs...))
		switch {
		case err != nil:
			m.span.RecordError(err)
			m.span.SetStatus(codes.Error, err.Error())
		case status >= http.StatusInternalServerError:
			m.span.SetStatus(codes.Error, http.StatusText(status))
		default:
			m.span.SetStatus(codes.Ok, "")
		}
		defer m.span.End()
	}

	if m.logger == nil {
		return
	}
	fields := log.Fields{
		"event.name":      projectsEventName,
		"event.domain":    projectsEventDomain,
		"attributes":      attrs,
		"severity_text":   severityText,
		"severity_number": severityNumber,
	}
	if m.span != nil {
		if sc := m.span.SpanContext(); sc.HasTraceID() {
			fields["trace_id"] = sc.TraceID().String()
			fields["span_id"] = sc.SpanID().String()
		}
	}

	entry := m.logger.WithFields(fields)
	switch severityText {
	case "ERROR":
		entry.Error(observabilityEvent)
	case "WARN":
		entry.Warn(observabilityEvent)
	default:
		entry.Info(observabilityEvent)
	}
}

// severityForStatus maps a response to OpenTelemetry log severity.
func severityForStatus(status int, err error) (string, int) {
	switch {
	case err != nil || status >= http.StatusInternalServerError:
		return "ERROR", 17
	case status >= http.StatusBadRequest:
		return "WARN", 13
	default:
		return "INFO", 9
	}
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
