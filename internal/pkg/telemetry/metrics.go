package telemetry

// Span names used for instrumentation.
const (
	SpanInvoke    = "forecast.invoke"
	SpanAggregate = "forecast.aggregate"
	SpanRender    = "forecast.render_frame"
	SpanUpload    = "forecast.upload"
)
