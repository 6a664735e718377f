package logger

// Fields is a set of structured log fields.
type Fields map[string]interface{}

// Tracing fields, carried on the context logger through a request.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldSource is the gif provider name
	FieldSource = "source"

	// FieldCategory is the catalog category of a fetch task
	FieldCategory = "category"

	// FieldBackend is the cache backend name
	FieldBackend = "backend"
)

// Metric fields, attached per entry for aggregation.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldOffset is the pagination offset sent to a provider
	FieldOffset = "offset"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
