package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldUserID        = "user_id"
	FieldUsername      = "username"
	FieldTransactionID = "transaction_id"
	FieldCategory      = "category"
	FieldAmount        = "amount"
	FieldLimit         = "limit"
	FieldSpent         = "spent"
	FieldMessageID     = "message_id"
	FieldDBPath        = "db_path"
	FieldBackend       = "backend"
)

// Components
const (
	ComponentCLI      = "cli"
	ComponentNotifier = "notifier"
	ComponentBackend  = "backend"
)

// Operations
const (
	OpLogin  = "login"
	OpExport = "export"
	OpAlert  = "budget_alert"
)

// LogFields is a small builder for slog key/value pairs.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithUser(id int64) LogFields {
	f[FieldUserID] = id
	return f
}

func (f LogFields) WithBudget(category string, limit, spent float64) LogFields {
	f[FieldCategory] = category
	f[FieldLimit] = limit
	f[FieldSpent] = spent
	return f
}

// ToSlice converts the fields to slog arguments.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
