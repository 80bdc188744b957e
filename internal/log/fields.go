package log

// Common field names for structured logging
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
	FieldOwnerID    = "owner_id"
	FieldEntityID   = "entity_id"
	FieldCollection = "collection"
	FieldTaskID     = "task_id"
	FieldEntryID    = "entry_id"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentStore    = "store"
	ComponentEntities = "entities"
	ComponentTimer    = "timer"
	ComponentSummary  = "summary"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentAuth     = "auth"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpStart    = "start"
	OpStop     = "stop"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
