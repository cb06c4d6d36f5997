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
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldIndex      = "index"
	FieldLength     = "length"
	FieldActiveDate = "active_date"
	FieldSales      = "sales"
	FieldExpenses   = "expenses"
	FieldSlot       = "slot"
	FieldFormat     = "format"
	FieldBackend    = "backend"
	FieldMessageID  = "message_id"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentExport  = "export"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentBackend = "backend"
	ComponentCLI     = "cli"
	ComponentCache   = "cache"
)

// Operations defines standard operation names
const (
	OpAddSale       = "add_sale"
	OpAddExpense    = "add_expense"
	OpDeleteSale    = "delete_sale"
	OpDeleteExpense = "delete_expense"
	OpEditSale      = "edit_sale"
	OpEditExpense   = "edit_expense"
	OpCommitSale    = "commit_sale"
	OpCommitExpense = "commit_expense"
	OpSetDate       = "set_date"
	OpLoad          = "load"
	OpSave          = "save"
	OpPublish       = "publish"
	OpSync          = "sync"
	OpExport        = "export"
	OpRender        = "render"
	OpShutdown      = "shutdown"
	OpStartup       = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithIndex adds the position an edit or delete referred to and the list length at that time.
func (f LogFields) WithIndex(index, length int) LogFields {
	f[FieldIndex] = index
	f[FieldLength] = length
	return f
}

// WithLedger adds a compact description of a ledger snapshot
func (f LogFields) WithLedger(activeDate string, sales, expenses int) LogFields {
	f[FieldActiveDate] = activeDate
	f[FieldSales] = sales
	f[FieldExpenses] = expenses
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		if k == FieldComponent {
			continue
		}
		slice = append(slice, k, v)
	}
	return slice
}
