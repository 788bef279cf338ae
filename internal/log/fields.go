package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldMonth      = "month"
	FieldRevision   = "revision"
	FieldCategoryID = "category_id"
	FieldTxID       = "transaction_id"
	FieldMember     = "member"
	FieldAmount     = "amount"
)

// Standard component names.
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentBudget = "budget"
	ComponentStore  = "store"
	ComponentSyncer = "syncer"
	ComponentAMQP   = "amqp"
	ComponentWorker = "worker"
	ComponentMirror = "mirror"
)
