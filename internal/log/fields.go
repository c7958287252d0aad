package log

// Field names shared across the codebase so log lines stay greppable.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldDate        = "date"
	FieldCategory    = "category"
	FieldMood        = "mood"
	FieldAmountCents = "amount_cents"
	FieldGoalName    = "goal_name"
	FieldImpulse     = "impulse_flag"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentIntake    = "intake"
	ComponentAnalytics = "analytics"
	ComponentGoals     = "goals"
	ComponentStorage   = "storage"
	ComponentClassify  = "classify"
	ComponentOCR       = "ocr"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
)
